package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hecate-project/hecate/internal/auth"
)

// authorize resolves the request's principal and checks it against
// scopeKey's configured value, writing the resulting error (if any)
// to w. Callers should return immediately when ok is false.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, scopeKey string, ownerUID *int64, isWrite bool) (auth.Principal, bool) {
	token := mux.Vars(r)["token"]

	p, err := auth.ResolvePrincipal(r.Context(), r, token, h.lookup)
	if err != nil {
		h.writeError(w, err)
		return auth.Principal{}, false
	}

	scope := h.matrix.Lookup(scopeKey)
	if err := auth.Resolve(p, scope, ownerUID, isWrite); err != nil {
		h.writeError(w, err)
		return auth.Principal{}, false
	}

	return p, true
}

// loggingMiddleware logs every request, generalizing the teacher's
// loggingMiddleware (internal/api/handlers.go) verbatim in spirit.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s - %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}
