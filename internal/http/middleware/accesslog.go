package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/logger"
)

// AccessLog attaches a request scoped logger to the context and logs each request once
// it completes. Requests slower than slow are logged at warn level.
func AccessLog(log zerolog.Logger, slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := log.With().Str("request_id", chimw.GetReqID(r.Context())).Logger()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			elapsed := time.Since(start)

			evt := reqLog.Info()
			if slow > 0 && elapsed >= slow {
				evt = reqLog.Warn()
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Msg("request done")
		})
	}
}
