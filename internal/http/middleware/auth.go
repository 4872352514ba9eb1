package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/auth"
	"github.com/MrJamesThe3rd/lumen/internal/http/respond"
	"github.com/MrJamesThe3rd/lumen/internal/logger"
)

// Authenticate requires a valid bearer token and stores its principal on the context.
func Authenticate(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}

			p, err := v.Verify(token)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			ctx := auth.WithPrincipal(r.Context(), p)

			log := logger.FromContext(ctx, zerolog.Nop())
			ctx = logger.WithContext(ctx, log.With().Stringer("owner", p.Owner).Logger())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
