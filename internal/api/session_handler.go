package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"alcyxob/coach-core/internal/completion"
	"alcyxob/coach-core/internal/service"
)

type SessionHandler struct {
	sessionService service.SessionService
	actionService  service.ActionService
}

func NewSessionHandler(sessionService service.SessionService, actionService service.ActionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, actionService: actionService}
}

// --- DTOs ---

type ActionRequest struct {
	ActionType string                 `json:"action_type" binding:"required"`
	Payload    *service.ActionPayload `json:"payload"`
}

// CommandRequest is the wire form of a completion command. Fields not used by Type are ignored.
type CommandRequest struct {
	Type       completion.CommandType `json:"type" binding:"required"`
	SetIndex   *int                   `json:"set_index"`
	ActualReps *int                   `json:"actual_reps"`
	ActualLoad *float64               `json:"actual_load"`
	LoadUnit   string                 `json:"load_unit"`
	Reason     string                 `json:"reason"`
	Text       string                 `json:"text"`
}

// Command converts the request into a reducer command.
func (r CommandRequest) Command() (completion.Command, error) {
	switch r.Type {
	case completion.CmdCompleteSet:
		if r.SetIndex == nil {
			return nil, errors.New("set_index is required for complete_set")
		}
		return completion.CompleteSet{Index: *r.SetIndex, Reps: r.ActualReps, Load: r.ActualLoad, Unit: r.LoadUnit}, nil
	case completion.CmdSkipExercise:
		return completion.SkipExercise{Reason: r.Reason}, nil
	case completion.CmdUnskipExercise:
		return completion.UnskipExercise{}, nil
	case completion.CmdSetNote:
		return completion.SetNote{Text: r.Text}, nil
	default:
		return nil, errors.New("unknown command type " + strconv.Quote(string(r.Type)))
	}
}

// StartSession godoc
// @Summary Start a training session
// @Description Uses the posted workout when present, otherwise generates one for the linked
// @Description calendar event or the free-text request.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body service.StartSessionInput true "Session input"
// @Success 201 {object} service.SessionStart
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Calendar event not found"
// @Failure 502 {object} gin.H "Workout generation failed"
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req service.StartSessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	started, err := h.sessionService.StartSession(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, started)
}

func (h *SessionHandler) GetInstance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	inst, err := h.sessionService.GetLatestInstance(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

// ApplyAction godoc
// @Summary Apply a time_scale, swap_exercise or adjust_intensity action
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param action body ActionRequest true "Action"
// @Success 200 {object} domain.WorkoutInstance "The new instance version"
// @Failure 400 {object} gin.H "Missing or invalid parameters"
// @Failure 502 {object} gin.H "Replacement generation failed"
// @Router /sessions/{id}/actions [post]
func (h *SessionHandler) ApplyAction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	inst, err := h.actionService.ApplyAction(c.Request.Context(), sessionID, userID, req.ActionType, req.Payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

func (h *SessionHandler) RecordCommand(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise index.")
		return
	}
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	cmd, err := req.Command()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.sessionService.RecordCommand(c.Request.Context(), sessionID, userID, index, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) LogEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req service.LogEventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	event, err := h.sessionService.LogEvent(c.Request.Context(), sessionID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *SessionHandler) GetStates(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	states, err := h.sessionService.GetExerciseStates(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if states == nil {
		states = []completion.State{}
	}
	c.JSON(http.StatusOK, states)
}

// CompleteSession godoc
// @Summary Complete a session and return its statistics
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param completion body service.CompleteSessionInput false "Energy rating (1-10) and notes"
// @Success 200 {object} domain.SessionStats
// @Router /sessions/{id}/complete [post]
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req service.CompleteSessionInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	st, err := h.sessionService.CompleteSession(c.Request.Context(), sessionID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *SessionHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	st, err := h.sessionService.GetSessionStats(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
