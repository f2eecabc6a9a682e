package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/formrelay/relay/docs"
	"github.com/formrelay/relay/internal/api/handlers"
	mw "github.com/formrelay/relay/internal/api/middleware"
)

type Dependencies struct {
	Logger *zap.Logger
	CORS   mw.CORSPolicy
	// Limiter throttles POST /submit per client IP. Nil disables it.
	Limiter *mw.IPRateLimiter
	// MaxInFlight caps concurrently served requests; zero means unlimited.
	MaxInFlight int
	// AdminSecret guards /test and /logs when non-empty.
	AdminSecret []byte

	SubmitHandler *handlers.SubmitHandler
	AdminHandler  *handlers.AdminHandler
}

func NewRouter(dep Dependencies) http.Handler {
	log := dep.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging(log))
	r.Use(mw.Recovery(log))
	r.Use(mw.CORS(dep.CORS, log))
	if dep.MaxInFlight > 0 {
		r.Use(chimid.Throttle(dep.MaxInFlight))
	}
	r.Use(chimid.Compress(5))

	hh := handlers.NewHealthHandler()
	r.Get("/", hh.Root)
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	r.Group(func(sr chi.Router) {
		if dep.Limiter != nil {
			sr.Use(mw.RateLimit(dep.Limiter))
		}
		sr.Post("/submit", dep.SubmitHandler.Submit)
	})
	r.Options("/submit", dep.SubmitHandler.Preflight)

	r.Group(func(admin chi.Router) {
		admin.Use(mw.Auth(dep.AdminSecret))
		admin.Get("/test", dep.AdminHandler.Test)
		admin.Get("/logs", dep.AdminHandler.Logs)
	})

	return r
}
