package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/modkit/errors"
	"github.com/kbukum/modkit/logger"
)

// Recovery turns a panic in a handler into a 500 response and logs the stack.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic recovered", map[string]interface{}{
						logger.FieldError:     fmt.Sprintf("%v", rec),
						logger.FieldRequestID: GetRequestID(r.Context()),
						"stack":               string(debug.Stack()),
						"path":                r.URL.Path,
						"method":              r.Method,
					})
					writeJSON(w, http.StatusInternalServerError, errors.New(errors.ErrCodeInternal, "Internal server error", http.StatusInternalServerError).ToResponse())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
