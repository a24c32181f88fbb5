// Package i18n translates the error codes returned by the API.
package i18n

import "strings"

const defaultLang = "fr"

var messages = map[string]map[string]string{
	"fr": {
		"required":             "Requis",
		"must_not_be_negative": "Ne peut pas être négatif",
		"out_of_range":         "Hors limites",
		"invalid_value":        "Valeur invalide",
		"no_items":             "Au moins une ligne valide est requise",
		"validation_failed":    "Données invalides",
		"not_found":            "Introuvable",
		"conflict":             "Valeur déjà utilisée",
		"integrity_error":      "Les totaux enregistrés ne correspondent pas aux lignes",
		"internal_error":       "Erreur interne",
		"invalid_json":         "Corps JSON invalide",
		"invalid_id":           "Identifiant invalide",
		"invalid_year":         "Année invalide",
	},
	"en": {
		"required":             "Required",
		"must_not_be_negative": "Must not be negative",
		"out_of_range":         "Out of range",
		"invalid_value":        "Invalid value",
		"no_items":             "At least one valid line is required",
		"validation_failed":    "Invalid data",
		"not_found":            "Not found",
		"conflict":             "Value already in use",
		"integrity_error":      "Stored totals do not match the line items",
		"internal_error":       "Internal error",
		"invalid_json":         "Invalid JSON body",
		"invalid_id":           "Invalid identifier",
		"invalid_year":         "Invalid year",
	},
}

// DetectLanguage picks the first supported language of an Accept-Language
// header, defaulting to French.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		lang, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if _, ok := messages[lang]; ok {
			return lang
		}
	}
	return defaultLang
}

// T returns the message for code in lang. Unknown languages fall back to
// French, unknown codes to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if msg, ok := m[code]; ok {
			return msg
		}
	}
	if msg, ok := messages[defaultLang][code]; ok {
		return msg
	}
	return code
}

// Translate returns a copy of violations with every code replaced by its message.
func Translate(lang string, violations map[string]string) map[string]string {
	out := make(map[string]string, len(violations))
	for field, code := range violations {
		out[field] = T(lang, code)
	}
	return out
}
