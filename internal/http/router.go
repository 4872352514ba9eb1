package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/auth"
	"github.com/MrJamesThe3rd/lumen/internal/http/ingest"
	lumenmw "github.com/MrJamesThe3rd/lumen/internal/http/middleware"
	"github.com/MrJamesThe3rd/lumen/internal/http/poller"
)

type Options struct {
	CORSOrigins []string
	Timeout     time.Duration
	SlowRequest time.Duration
}

func New(
	log zerolog.Logger,
	opts Options,
	verifier *auth.Verifier,
	ingestV1 *ingest.Handler,
	pollerV1 *poller.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(lumenmw.AccessLog(log, opts.SlowRequest))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	authenticate := lumenmw.Authenticate(verifier)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", pollerV1.Health)

		r.Route("/ingest", func(r chi.Router) {
			r.Use(authenticate)
			ingestV1.Routes(r)
		})

		r.Route("/gmail", func(r chi.Router) {
			pollerV1.Routes(r, authenticate)
		})
	})

	return router
}
