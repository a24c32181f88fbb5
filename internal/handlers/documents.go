package handlers

import (
	"net/http"

	"github.com/diewo77/gestion/httpx"
	"github.com/diewo77/gestion/internal/models"
	"github.com/diewo77/gestion/internal/services"
)

type DocumentHandler struct {
	docs    *services.DocumentService
	printer *services.PrintService
}

func NewDocumentHandler(docs *services.DocumentService, printer *services.PrintService) *DocumentHandler {
	return &DocumentHandler{docs: docs, printer: printer}
}

// CreateQuote handles POST /api/quotes.
func (h *DocumentHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.KindQuote)
}

// CreateInvoice handles POST /api/invoices.
func (h *DocumentHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.KindInvoice)
}

func (h *DocumentHandler) create(w http.ResponseWriter, r *http.Request, kind models.DocumentKind) {
	var in services.DocumentInput
	if !decode(w, r, &in) {
		return
	}
	doc, err := h.docs.Create(r.Context(), kind, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

// List handles GET /api/documents?kind=&year=&status=.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.DocumentFilter{
		Kind:   models.DocumentKind(q.Get("kind")),
		Status: models.DocumentStatus(q.Get("status")),
	}
	year, err := intParam(q.Get("year"), 0)
	if err != nil || year < 0 {
		fail(w, r, http.StatusBadRequest, "invalid_year")
		return
	}
	f.Year = year
	if (f.Kind != "" && !f.Kind.IsDocument()) || (f.Status != "" && !f.Status.Valid()) {
		fail(w, r, http.StatusBadRequest, "invalid_value")
		return
	}

	docs, err := h.docs.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	httpx.JSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.docs.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// Update replaces the client fields and every line item.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.DocumentInput
	if !decode(w, r, &in) {
		return
	}
	doc, err := h.docs.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.docs.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// SetStatus handles POST /api/documents/{id}/status with {"status": "PAID"}.
func (h *DocumentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	doc, err := h.docs.SetStatus(r.Context(), id, models.DocumentStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// Convert turns a quote into a new pending invoice.
func (h *DocumentHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.docs.ConvertQuote(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

type printResponse struct {
	*services.PrintPayload
	Fields []services.Field `json:"fields"`
}

// Print returns the data an external renderer needs to lay out the document.
func (h *DocumentHandler) Print(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.printer.Build(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, printResponse{PrintPayload: p, Fields: p.Fields()})
}
