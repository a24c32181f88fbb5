package handlers

import "net/http"

// API groups the handlers mounted under /api.
type API struct {
	Documents *DocumentHandler
	Ledger    *LedgerHandler
	Reports   *ReportHandler
	Company   *CompanyHandler
}

// Register mounts every /api route on mux.
func (a *API) Register(mux *http.ServeMux) {
	// Documents
	dh := a.Documents
	mux.HandleFunc("POST /api/quotes", dh.CreateQuote)
	mux.HandleFunc("POST /api/invoices", dh.CreateInvoice)
	mux.HandleFunc("GET /api/documents", dh.List)
	mux.HandleFunc("GET /api/documents/{id}", dh.Get)
	mux.HandleFunc("PUT /api/documents/{id}", dh.Update)
	mux.HandleFunc("DELETE /api/documents/{id}", dh.Delete)
	mux.HandleFunc("POST /api/documents/{id}/status", dh.SetStatus)
	mux.HandleFunc("POST /api/documents/{id}/convert", dh.Convert)
	mux.HandleFunc("GET /api/documents/{id}/print", dh.Print)

	// Charges
	lh := a.Ledger
	mux.HandleFunc("GET /api/charges", lh.ListCharges)
	mux.HandleFunc("POST /api/charges", lh.CreateCharge)
	mux.HandleFunc("GET /api/charges/{id}", lh.GetCharge)
	mux.HandleFunc("PUT /api/charges/{id}", lh.UpdateCharge)
	mux.HandleFunc("DELETE /api/charges/{id}", lh.DeleteCharge)

	// Declarations
	mux.HandleFunc("GET /api/declarations", lh.ListDeclarations)
	mux.HandleFunc("POST /api/declarations", lh.CreateDeclaration)
	mux.HandleFunc("POST /api/declarations/overdue", lh.MarkOverdue)
	mux.HandleFunc("PUT /api/declarations/{id}", lh.UpdateDeclaration)
	mux.HandleFunc("DELETE /api/declarations/{id}", lh.DeleteDeclaration)
	mux.HandleFunc("POST /api/declarations/{id}/status", lh.SetDeclarationStatus)

	// Reports
	mux.HandleFunc("GET /api/reports/{year}/monthly", a.Reports.Monthly)
	mux.HandleFunc("GET /api/reports/{year}/yearly", a.Reports.Yearly)

	// Company
	mux.HandleFunc("GET /api/company", a.Company.Get)
	mux.HandleFunc("PUT /api/company", a.Company.Update)
}
