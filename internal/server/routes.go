package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trade_exchange/pkg/middlewarex"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Use(middlewarex.BearerToken(s.apiToken))

		r.Get("/bots", handler(s.getV1Bots))

		r.Route("/bots/{bot}", func(r chi.Router) {
			r.Get("/", handler(s.getV1Bot))
			r.Post("/wake", handler(s.postV1BotWake))
			r.Get("/results", handler(s.getV1BotResults))

			r.Route("/blacklist", func(r chi.Router) {
				r.Get("/", handler(s.getV1BotBlacklist))
				r.Post("/", handler(s.postV1BotBlacklist))
				r.Delete("/{steamID}", handler(s.deleteV1BotBlacklist))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			replyError(w, r, err)
		}
	}
}
