package web

import (
	"net/http"

	"github.com/kozaktomas/facegate/internal/web/handlers"
	"github.com/kozaktomas/facegate/internal/web/static"
)

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", handlers.HealthCheck)

	s.router.Get("/", s.recognize.Index)
	s.router.Post("/", s.recognize.Submit)

	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.GetFileSystem())))
}
