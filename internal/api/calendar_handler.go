package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/service"
)

const (
	defaultUpcomingLimit = 14
	maxUpcomingLimit     = 100
)

type CalendarHandler struct {
	calendarService service.CalendarService
	programService  service.ProgramService
}

func NewCalendarHandler(calendarService service.CalendarService, programService service.ProgramService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService, programService: programService}
}

// GetUpcoming godoc
// @Summary List the caller's upcoming scheduled sessions, soonest first
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of events (default 14, max 100)"
// @Success 200 {array} domain.CalendarEvent
// @Router /calendar/upcoming [get]
func (h *CalendarHandler) GetUpcoming(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit := int64(defaultUpcomingLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxUpcomingLimit)
	}

	events, err := h.calendarService.ListUpcoming(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []domain.CalendarEvent{}
	}
	c.JSON(http.StatusOK, events)
}

// Regenerate rebuilds the calendar from the active program.
func (h *CalendarHandler) Regenerate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	program, err := h.programService.GetActiveProgram(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if program == nil {
		respondError(c, service.ErrProgramNotFound)
		return
	}
	result, err := h.calendarService.RegenerateWeeklyCalendar(ctx, userID, program.Document, program.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CalendarHandler) CatchUp(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.calendarService.CheckAndRunCatchUpReview(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
