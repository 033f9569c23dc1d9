package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"manoLogAPI/internal/aggregation"
	"manoLogAPI/internal/apperrors"
	"manoLogAPI/internal/dates"
	"manoLogAPI/middleware"
	"manoLogAPI/services"
)

// TrendHandler serves the read-only mood views.
type TrendHandler struct {
	moodService   *services.MoodService
	trendService  *services.TrendService
	statsService  *services.StatsService
	streakService *services.StreakService
	cal           dates.Calendar
	defaultPolicy aggregation.Policy
}

func NewTrendHandler(
	moodService *services.MoodService,
	trendService *services.TrendService,
	statsService *services.StatsService,
	streakService *services.StreakService,
	cal dates.Calendar,
	defaultPolicy aggregation.Policy,
) *TrendHandler {
	return &TrendHandler{
		moodService:   moodService,
		trendService:  trendService,
		statsService:  statsService,
		streakService: streakService,
		cal:           cal,
		defaultPolicy: defaultPolicy,
	}
}

// user resolves the authenticated caller, writing the error response when
// that fails.
func (h *TrendHandler) user(ctx context.Context, w http.ResponseWriter) (uuid.UUID, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	userID, err := h.moodService.ResolveUser(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return uuid.Nil, false
	}
	return userID, true
}

func (h *TrendHandler) policy(q url.Values) (aggregation.Policy, error) {
	name := q.Get("policy")
	if name == "" {
		return h.defaultPolicy, nil
	}
	return aggregation.ParsePolicy(name)
}

// parseRange reads start and end. A bare date covers that whole day, so a
// date-only end is inclusive.
func (h *TrendHandler) parseRange(q url.Values) (time.Time, time.Time, error) {
	rawStart, rawEnd := q.Get("start"), q.Get("end")
	if rawStart == "" || rawEnd == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start and end are required", apperrors.ErrInvalidRange)
	}
	start, err := h.parseBound(rawStart, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := h.parseBound(rawEnd, true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (h *TrendHandler) parseBound(raw string, isEnd bool) (time.Time, error) {
	if d, err := dates.ParseDay(raw); err == nil {
		if isEnd {
			return h.cal.End(d), nil
		}
		return h.cal.Start(d), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is neither YYYY-MM-DD nor RFC3339", apperrors.ErrInvalidRange, raw)
	}
	return t, nil
}

func (h *TrendHandler) GetDailyAggregates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := r.URL.Query()
	policy, err := h.policy(q)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	start, end, err := h.parseRange(q)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	userID, ok := h.user(ctx, w)
	if !ok {
		return
	}

	days, err := h.trendService.GetDailyAggregates(ctx, userID, start, end, policy)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"policy": policy,
		"days":   days,
	})
}

func (h *TrendHandler) GetPeriodMoodCounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	start, end, err := h.parseRange(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	userID, ok := h.user(ctx, w)
	if !ok {
		return
	}

	counts, err := h.trendService.GetPeriodMoodCounts(ctx, userID, start, end)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, counts)
}

func (h *TrendHandler) GetWeeklyRollup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	policy, err := h.policy(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	userID, ok := h.user(ctx, w)
	if !ok {
		return
	}

	rollup, err := h.trendService.GetWeeklyRollup(ctx, userID, policy)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, rollup)
}

func (h *TrendHandler) GetMonthlyRollup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	policy, err := h.policy(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	userID, ok := h.user(ctx, w)
	if !ok {
		return
	}

	rollup, err := h.trendService.GetMonthlyRollup(ctx, userID, policy)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, rollup)
}

func (h *TrendHandler) GetMoodStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	policy, err := h.policy(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	userID, ok := h.user(ctx, w)
	if !ok {
		return
	}

	stats, err := h.statsService.GetMoodStatistics(ctx, userID, policy)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func (h *TrendHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, ok := h.user(ctx, w)
	if !ok {
		return
	}

	st, err := h.streakService.GetStreak(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, st)
}
