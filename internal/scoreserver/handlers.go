package scoreserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/jermochi/Hygin/pkg/scores"
)

func handleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleCreatePlayer(store scores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scores.NewPlayer
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := scores.ValidateNewPlayer(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		player, err := store.CreatePlayer(r.Context(), req)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, player)
	}
}

func handleGetPlayer(store scores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := store.GetPlayer(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, player)
	}
}

func handleUpdateScore(store scores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "slot must be a number")
			return
		}
		var req scores.ScoreRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := store.UpdateBestScore(r.Context(), chi.URLParam(r, "id"), slot, req.Score)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scores.ScoreResponse{Updated: updated})
	}
}

func handleCompleteSession(store scores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := store.CompleteSession(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

func handleLeaderboard(store scores.Store, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive number")
				return
			}
			limit = n
		}

		entries, err := store.Leaderboard(r.Context(), limit)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// writeStoreError maps store sentinels onto status codes the client understands.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scores.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, "player not found")
	case errors.Is(err, scores.ErrInvalidSlot):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, scores.ErrNoSession):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Str("component", "scoreserver").Msg("store failure")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
