package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/biyonik/project-management-tool/pkg/apierror"
)

// Recovery converts handler panics into a 500 envelope instead of letting
// the connection die.
func Recovery(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					writeError(w, apierror.CodeInternal, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
