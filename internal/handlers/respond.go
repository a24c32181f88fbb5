// Package handlers exposes the services as a JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/gestion/httpx"
	"github.com/diewo77/gestion/i18n"
	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/services"
)

const maxBodyBytes = 1 << 20

// fail writes the reply for a code-only client error.
func fail(w http.ResponseWriter, r *http.Request, status int, code string) {
	httpx.JSONErrorMessage(w, status, code, i18n.T(lang(r), code), nil)
}

// writeError maps a service error to its status code. Internal details are
// logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	l := lang(r)

	var ve *services.ValidationError
	if errors.As(err, &ve) {
		httpx.JSONErrorMessage(w, http.StatusUnprocessableEntity, "validation_failed",
			i18n.T(l, "validation_failed"), i18n.Translate(l, ve.Violations))
		return
	}

	var code string
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, services.ErrIntegrity):
		code = "integrity_error"
	default:
		code = "internal_error"
	}
	if status >= 500 {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err,
		)
	}
	httpx.JSONErrorMessage(w, status, code, i18n.T(l, code), nil)
}

// decode reads a JSON body into dst, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

// pathID parses the {id} wildcard.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		fail(w, r, http.StatusBadRequest, "invalid_id")
		return 0, false
	}
	return uint(id), true
}

// intParam parses an optional integer, either from the path or the query.
// An empty value returns def.
func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

type statusRequest struct {
	Status string `json:"status"`
}
