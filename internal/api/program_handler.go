package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/schedule"
	"alcyxob/coach-core/internal/service"
)

type ProgramHandler struct {
	programService  service.ProgramService
	profileService  service.ProfileService
	calendarService service.CalendarService
}

func NewProgramHandler(programService service.ProgramService, profileService service.ProfileService, calendarService service.CalendarService) *ProgramHandler {
	return &ProgramHandler{
		programService:  programService,
		profileService:  profileService,
		calendarService: calendarService,
	}
}

type SaveProgramRequest struct {
	Document string `json:"document" binding:"required"`
	Source   string `json:"source" binding:"omitempty,oneof=setup manual"`
}

type SaveProgramResponse struct {
	Program  *domain.Program           `json:"program"`
	Calendar *service.RegenerateResult `json:"calendar"`
}

type ParseProgramRequest struct {
	Document string `json:"document"`
}

type ParseProgramResponse struct {
	DaysPerWeek int                     `json:"days_per_week"`
	Sessions    []domain.PlannedSession `json:"sessions"`
}

// GetActiveProgram godoc
// @Summary Get the caller's active program
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Program
// @Failure 404 {object} gin.H "No active program"
// @Router /programs/active [get]
func (h *ProgramHandler) GetActiveProgram(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	program, err := h.programService.GetActiveProgram(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if program == nil {
		respondError(c, service.ErrProgramNotFound)
		return
	}
	c.JSON(http.StatusOK, program)
}

// GetProgramHistory godoc
// @Summary List every program version, newest first
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Program
// @Router /programs/history [get]
func (h *ProgramHandler) GetProgramHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	programs, err := h.programService.GetProgramHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if programs == nil {
		programs = []domain.Program{}
	}
	c.JSON(http.StatusOK, programs)
}

// SaveProgram godoc
// @Summary Save a new program version and rebuild the calendar from it
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param program body SaveProgramRequest true "Program markdown"
// @Success 201 {object} SaveProgramResponse
// @Failure 400 {object} gin.H "Empty document"
// @Router /programs [post]
func (h *ProgramHandler) SaveProgram(c *gin.Context) {
	var req SaveProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	program, err := h.programService.SaveProgramVersion(ctx, userID, req.Document, req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	calendar, err := h.calendarService.RegenerateWeeklyCalendar(ctx, userID, program.Document, program.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SaveProgramResponse{Program: program, Calendar: calendar})
}

// ParseProgram previews the sessions and training days a document yields without saving it.
func (h *ProgramHandler) ParseProgram(c *gin.Context) {
	var req ParseProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, ParseProgramResponse{
		DaysPerWeek: schedule.ParseDaysPerWeek(req.Document),
		Sessions:    schedule.ParseSessionsFromMarkdown(req.Document),
	})
}

func (h *ProgramHandler) GetWeightsProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.profileService.GetLatestProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		abortWithError(c, http.StatusNotFound, "no weights profile yet")
		return
	}
	c.JSON(http.StatusOK, profile)
}
