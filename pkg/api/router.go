package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/pulse/pkg/httpserver"
	"github.com/dmitrymomot/pulse/pkg/logger"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger       *slog.Logger
	Checks       []httpserver.Check // readiness probes for /readyz
	CheckTimeout time.Duration      // per-check deadline; defaults to 2s
}

// NewRouter mounts the API routes and health probes on a chi router.
func NewRouter(h *Handler, opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	timeout := opts.CheckTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	r := chi.NewRouter()
	r.Use(RequestID, middleware.Recoverer, requestLogger(log))

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, timeout, opts.Checks...))

	r.Route("/api", func(api chi.Router) {
		api.Route("/notifications", func(n chi.Router) {
			n.Get("/", h.ListNotifications)
			n.Post("/read-all", h.MarkAllRead)
			n.Post("/{id}/read", h.MarkRead)
		})
		api.Post("/events", h.PublishEvent)
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.LogAttrs(r.Context(), slog.LevelDebug, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
