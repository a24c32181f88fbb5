package handlers

import (
	"context"
	"net/http"

	"github.com/diewo77/gestion/i18n"
)

type ctxKey string

const ctxLang ctxKey = "pref_lang"

// Language picks the reply language (query > cookie > Accept-Language) and
// stores it in the request context. A ?lang= choice is kept in a cookie for
// about 30 days.
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil {
			lang = c.Value
		}
		if ql := r.URL.Query().Get("lang"); ql != "" && supported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: "lang", Value: lang, Path: "/", MaxAge: 86400 * 30})
		}
		if !supported(lang) {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxLang, lang)))
	})
}

func supported(lang string) bool {
	return lang != "" && i18n.DetectLanguage(lang) == lang
}

// lang returns the language chosen by Language, or the Accept-Language one
// when the middleware is not installed.
func lang(r *http.Request) string {
	if v, ok := r.Context().Value(ctxLang).(string); ok && v != "" {
		return v
	}
	return i18n.DetectLanguage(r.Header.Get("Accept-Language"))
}
