package middleware

import "net/http"

// HTMX marks requests coming from htmx so handlers can answer with fragments.
// Responses always vary on HX-Request because the same URL serves both.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "HX-Request")
		is := r.Header.Get("HX-Request") == "true"
		next.ServeHTTP(w, r.WithContext(WithHTMX(r.Context(), is)))
	})
}
