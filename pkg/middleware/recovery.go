package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/INOCcent-afk/productly-server/pkg/logger"
)

// Recovery recovers from panics in downstream handlers, logs the stack and
// responds with a generic 500 in the standard error envelope.
func Recovery(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					reqLog := logger.WithContext(r.Context(), log)
					reqLog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"status":"error","error":{"code":"INTERNAL_ERROR","message":"an internal error occurred"}}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
