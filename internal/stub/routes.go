package stub

import "github.com/go-chi/chi/v5"

func (s *Server) setupRoutes() {
	s.router.Get("/api/health", HealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		// Comparison jobs
		r.Post("/compare/", s.submit)
		r.Get("/compare/history/", s.history)
		r.Get("/compare/status/{id}/", s.status)
		r.Post("/compare/share/{id}/", s.share)
		r.Get("/compare/{id}/", s.result)

		// Catalog
		r.Get("/celebrities/", s.listCelebrities)
		r.Get("/celebrities/{id}/", s.getCelebrity)
	})
}
