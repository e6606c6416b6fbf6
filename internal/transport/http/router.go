package http

import (
	"net/http"
	"time"

	"voting/internal/observability/middleware"
	"voting/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	CORSOrigins []string
	// RateLimitPerMinute caps register, login and refresh calls per client
	// IP. Zero disables the limit.
	RateLimitPerMinute int
	RequestTimeout     time.Duration
}

type Services struct {
	Auth   service.AuthService
	Tokens service.TokenService
	Topics service.TopicRegistry
	Votes  service.VoteLedger
}

func NewRouter(cfg RouterConfig, svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestAndTrace)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsOrAll(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.WithMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	ah := authHandlers{auth: svc.Auth, tokens: svc.Tokens}
	r.Get("/v1/oauth/jwks", ah.jwks)
	r.Group(func(pub chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			pub.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
		}
		pub.Post("/register", ah.register)
		pub.Post("/login", ah.login)
		pub.Post("/token/refresh", ah.refresh)
	})

	th := topicHandlers{topics: svc.Topics, votes: svc.Votes}
	authed := requireCaller(svc.Auth)
	r.Route("/topics", func(tr chi.Router) {
		tr.Get("/", th.list)
		tr.With(authed).Post("/", th.create)
		tr.Route("/{id}", func(one chi.Router) {
			one.Get("/", th.detail)
			one.Get("/result", th.result)
			one.With(authed).Post("/session", th.startSession)
			one.With(authed).Post("/vote", th.vote)
		})
	})

	return r
}

func originsOrAll(in []string) []string {
	if len(in) == 0 {
		return []string{"*"}
	}
	return in
}
