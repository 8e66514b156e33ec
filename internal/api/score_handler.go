package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shaiso/mgdt/internal/atari"
)

// ListRunScores возвращает результаты всех игр run.
// GET /api/v1/runs/{id}/scores
func (h *Handler) ListRunScores(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	// Проверяем, что run существует
	_, err = h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	scores, err := h.scoreRepo.ListByRunID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ScoreResponse, len(scores))
	for i, s := range scores {
		result[i] = ScoreFromDomain(s)
	}

	List(w, result, len(result))
}

// GetRunGameScore возвращает результат одной игры внутри run.
// GET /api/v1/runs/{id}/scores/{game}
func (h *Handler) GetRunGameScore(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	game := r.PathValue("game")
	if !atari.IsKnownGame(game) {
		BadRequest(w, "unknown game")
		return
	}

	score, err := h.scoreRepo.GetByRunAndGame(r.Context(), id, game)
	if HandleRepoError(w, h.logger, err, "score not found") {
		return
	}

	Success(w, ScoreFromDomain(*score))
}

// ListGameHistory возвращает историю результатов одной игры по всем runs.
// GET /api/v1/scores/{game}?limit=...
func (h *Handler) ListGameHistory(w http.ResponseWriter, r *http.Request) {
	game := r.PathValue("game")
	if !atari.IsKnownGame(game) {
		BadRequest(w, "unknown game")
		return
	}

	limit := parseIntParam(r, "limit", 50)

	scores, err := h.scoreRepo.ListByGame(r.Context(), game, limit)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ScoreResponse, len(scores))
	for i, s := range scores {
		result[i] = ScoreFromDomain(s)
	}

	List(w, result, len(result))
}
