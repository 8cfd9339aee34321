package scoreserver

import (
	"github.com/go-chi/chi/v5"

	"github.com/jermochi/Hygin/pkg/scores"
)

func addRoutes(r chi.Router, store scores.Store, db Pinger, leaderboardLimit int) {
	r.Get("/healthz", handleHealth(db))

	r.Route("/api", func(r chi.Router) {
		r.Post("/players", handleCreatePlayer(store))
		r.Get("/players/{id}", handleGetPlayer(store))
		r.Put("/players/{id}/scores/{slot}", handleUpdateScore(store))
		r.Post("/players/{id}/complete", handleCompleteSession(store))
		r.Get("/leaderboard", handleLeaderboard(store, leaderboardLimit))
	})
}
