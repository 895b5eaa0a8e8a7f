package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/coach-core/internal/service"
)

const defaultRunsLimit = 20

type ReviewHandler struct {
	reviewService service.ReviewService
	statsService  service.StatsService
}

func NewReviewHandler(reviewService service.ReviewService, statsService service.StatsService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, statsService: statsService}
}

// GetWeeklyStats godoc
// @Summary Aggregate statistics for one week
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param week_start query string false "Any date (YYYY-MM-DD) inside the week; defaults to the current week"
// @Success 200 {object} domain.WeeklyStats
// @Router /stats/weekly [get]
func (h *ReviewHandler) GetWeeklyStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	start, end := h.statsService.GetCurrentWeekBounds()
	if raw := c.Query("week_start"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "week_start must be YYYY-MM-DD")
			return
		}
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 7).Add(-time.Second)
	}

	weekly, err := h.statsService.CalculateWeeklyStats(c.Request.Context(), userID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, weekly)
}

// RunWeeklyReview rewrites the caller's program from this week's results on demand.
func (h *ReviewHandler) RunWeeklyReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.reviewService.RunWeeklyReview(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) ListRuns(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit := int64(defaultRunsLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := h.reviewService.ListRuns(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}
