package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORS.Origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "HX-Request", "HX-Current-URL", "HX-Target", "HX-Trigger"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.ServeWsHandler)

	r.Post("/token", s.LoginHandler)
	r.Get("/logout", s.LogoutHandler)
	r.Get("/images/{filename}", s.GetImageHandler)

	r.With(s.SessionMiddleware).Post("/upload", s.UploadHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/images", s.ListImagesHandler)
		r.Get("/events", s.GetEventsHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.SessionMiddleware)
			r.Get("/me", s.GetCurrentUserHandler)
			r.Delete("/images/{filename}", s.DeleteImageHandler)
		})
	})

	return r
}
