package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/dialectdeck/ledger/internal/api/respond"
)

// Middleware intercepts panics from downstream handlers, logs details, and returns HTTP 500.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error().
				Interface("panic", rec).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote", r.RemoteAddr).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			respond.WriteInternalError(w, "")
		}()
		next.ServeHTTP(w, r)
	})
}
