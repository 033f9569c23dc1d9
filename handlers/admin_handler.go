package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"manoLogAPI/internal/apperrors"
	"manoLogAPI/services"
)

const sweepTimeout = 60 * time.Second

// AdminHandler exposes streak maintenance to an external scheduler.
type AdminHandler struct {
	streakService *services.StreakService
}

func NewAdminHandler(streakService *services.StreakService) *AdminHandler {
	return &AdminHandler{
		streakService: streakService,
	}
}

// RunRepairSweep answers 200 when every user was handled and 207 with the
// failed users listed when some were not.
func (h *AdminHandler) RunRepairSweep(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), sweepTimeout)
	defer cancel()

	report, err := h.streakService.RunStreakRepairSweep(ctx)
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusOK, report)
	case errors.Is(err, apperrors.ErrRepairPartialFailure):
		respondWithJSON(w, http.StatusMultiStatus, report)
	default:
		respondWithServiceError(w, err)
	}
}

func (h *AdminHandler) RecomputeStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	st, err := h.streakService.RecomputeStreak(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, st)
}
