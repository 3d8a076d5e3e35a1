package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/naval-battle-backend/internal/hub"
	"github.com/DoyleJ11/naval-battle-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger, wsOpts ws.Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", ws.Handler(h, log, wsOpts))

	r.Group(func(r chi.Router) {
		r.Use(requestLogger(log))
		r.Get("/healthz", Healthz)
		r.Get("/stats", Stats(h))
	})
	return r
}
