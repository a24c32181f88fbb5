package handlers

import (
	"net/http"

	"github.com/diewo77/gestion/httpx"
	"github.com/diewo77/gestion/internal/services"
)

type CompanyHandler struct {
	company *services.CompanyService
}

func NewCompanyHandler(company *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{company: company}
}

type companyResponse struct {
	Configured bool `json:"configured"`
	Profile    any  `json:"profile"`
}

// Get returns the saved profile, or the configured defaults when none was
// saved yet.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	configured, err := h.company.IsConfigured(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := h.company.Profile(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, companyResponse{Configured: configured, Profile: profile})
}

// Update saves the company settings.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.CompanyInput
	if !decode(w, r, &in) {
		return
	}
	profile, err := h.company.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, companyResponse{Configured: true, Profile: profile})
}
