package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/gestion/httpx"
	"github.com/diewo77/gestion/internal/models"
	"github.com/diewo77/gestion/internal/services"
)

// LedgerHandler serves charges and declarations.
type LedgerHandler struct {
	ledger *services.LedgerService
	now    func() time.Time
}

func NewLedgerHandler(ledger *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, now: time.Now}
}

// ListCharges handles GET /api/charges?year=&month=. Year defaults to the
// current one; month 0 means the whole year.
func (h *LedgerHandler) ListCharges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := intParam(q.Get("year"), h.now().Year())
	if err != nil || year <= 0 {
		fail(w, r, http.StatusBadRequest, "invalid_year")
		return
	}
	month, err := intParam(q.Get("month"), 0)
	if err != nil || month < 0 || month > 12 {
		fail(w, r, http.StatusBadRequest, "invalid_value")
		return
	}
	charges, err := h.ledger.ListCharges(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if charges == nil {
		charges = []models.Charge{}
	}
	httpx.JSON(w, http.StatusOK, charges)
}

func (h *LedgerHandler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	var in services.ChargeInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.ledger.CreateCharge(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *LedgerHandler) GetCharge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.ledger.GetCharge(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *LedgerHandler) UpdateCharge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.ChargeInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.ledger.UpdateCharge(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *LedgerHandler) DeleteCharge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.ledger.DeleteCharge(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// ListDeclarations handles GET /api/declarations?year=.
func (h *LedgerHandler) ListDeclarations(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r.URL.Query().Get("year"), h.now().Year())
	if err != nil || year <= 0 {
		fail(w, r, http.StatusBadRequest, "invalid_year")
		return
	}
	decls, err := h.ledger.ListDeclarations(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if decls == nil {
		decls = []models.Declaration{}
	}
	httpx.JSON(w, http.StatusOK, decls)
}

func (h *LedgerHandler) CreateDeclaration(w http.ResponseWriter, r *http.Request) {
	var in services.DeclarationInput
	if !decode(w, r, &in) {
		return
	}
	d, err := h.ledger.CreateDeclaration(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

func (h *LedgerHandler) UpdateDeclaration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.DeclarationInput
	if !decode(w, r, &in) {
		return
	}
	d, err := h.ledger.UpdateDeclaration(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *LedgerHandler) DeleteDeclaration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.ledger.DeleteDeclaration(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *LedgerHandler) SetDeclarationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.ledger.SetDeclarationStatus(r.Context(), id, models.DeclarationStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// MarkOverdue handles POST /api/declarations/overdue.
func (h *LedgerHandler) MarkOverdue(w http.ResponseWriter, r *http.Request) {
	n, err := h.ledger.MarkOverdue(r.Context(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"marked": n})
}
