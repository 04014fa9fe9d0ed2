package mw

import "net/http"

// NoCache marks every response as uncacheable, including the ones written by
// middlewares further down the chain (403, 429) and by the recoverer.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		h.Set("Surrogate-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
