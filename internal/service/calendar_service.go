package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/config"
	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/logger"
	"alcyxob/coach-core/internal/repository"
	"alcyxob/coach-core/internal/schedule"
)

// Catch-up outcomes.
const (
	ReasonHasUpcomingEvents = "has_upcoming_events"
	ReasonNoActiveProgram   = "no_active_program"
	ReasonRegenerated       = "regenerated"
	ReasonStaleProgram      = "stale_program"
)

// RegenerateResult describes one calendar regeneration.
type RegenerateResult struct {
	DaysPerWeek int                     `json:"days_per_week"`
	Sessions    []domain.PlannedSession `json:"sessions"`
	Deleted     int64                   `json:"deleted"`
	Created     int                     `json:"created"`
}

type CatchUpResult struct {
	Regenerated bool              `json:"regenerated"`
	Reason      string            `json:"reason"`
	Calendar    *RegenerateResult `json:"calendar,omitempty"`
}

type CalendarService interface {
	// RegenerateWeeklyCalendar replaces the user's future scheduled events with slots
	// derived from document. The same document and day count always yield the same slots.
	RegenerateWeeklyCalendar(ctx context.Context, userID primitive.ObjectID, document string, programVersion int) (*RegenerateResult, error)
	// CheckAndRunCatchUpReview regenerates the calendar of a user who has run out of
	// upcoming events and still has an active program. Upcoming events generated from an
	// older program version than the active one are regenerated too.
	CheckAndRunCatchUpReview(ctx context.Context, userID primitive.ObjectID) (*CatchUpResult, error)
	ListUpcoming(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.CalendarEvent, error)
}

type calendarService struct {
	calendarRepo   repository.CalendarEventRepository
	programService ProgramService
	cfg            config.CalendarConfig
	log            *logger.Logger
	now            func() time.Time
}

func NewCalendarService(calendarRepo repository.CalendarEventRepository, programService ProgramService, cfg config.CalendarConfig, log *logger.Logger) CalendarService {
	return &calendarService{
		calendarRepo:   calendarRepo,
		programService: programService,
		cfg:            cfg,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *calendarService) RegenerateWeeklyCalendar(ctx context.Context, userID primitive.ObjectID, document string, programVersion int) (*RegenerateResult, error) {
	sessions := schedule.ParseSessionsFromMarkdown(document)
	daysPerWeek := schedule.ParseDaysPerWeek(document)

	weeks := s.cfg.HorizonWeeks
	if weeks < 1 {
		weeks = 1
	}
	hour := s.cfg.SessionHour
	if hour < 0 || hour > 23 {
		hour = 18
	}

	now := s.now()
	slots := schedule.PlanSlots(sessions, daysPerWeek, schedule.MondayOf(now), weeks, hour)

	deleted, err := s.calendarRepo.DeleteScheduledFrom(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	events := make([]domain.CalendarEvent, 0, len(slots))
	for _, slot := range slots {
		if slot.StartAt.Before(now) {
			continue
		}
		planned := slot.PlannedSession
		events = append(events, domain.CalendarEvent{
			UserID:         userID,
			EventType:      domain.EventTypeWorkout,
			StartAt:        slot.StartAt,
			Status:         domain.EventScheduled,
			ProgramVersion: programVersion,
			PlannedSession: &planned,
		})
	}
	if err := s.calendarRepo.CreateMany(ctx, events); err != nil {
		return nil, err
	}

	s.log.Info("calendar regenerated",
		"user_id", userID.Hex(),
		"days_per_week", daysPerWeek,
		"parsed_sessions", len(sessions),
		"deleted", deleted,
		"created", len(events),
	)
	return &RegenerateResult{
		DaysPerWeek: daysPerWeek,
		Sessions:    sessions,
		Deleted:     deleted,
		Created:     len(events),
	}, nil
}

func (s *calendarService) CheckAndRunCatchUpReview(ctx context.Context, userID primitive.ObjectID) (*CatchUpResult, error) {
	upcoming, err := s.calendarRepo.ListUpcoming(ctx, userID, s.now(), 1)
	if err != nil {
		return nil, err
	}

	program, err := s.programService.GetActiveProgram(ctx, userID)
	if err != nil {
		return nil, err
	}

	reason := ReasonRegenerated
	switch {
	case len(upcoming) > 0 && (program == nil || !builtFromOlderVersion(upcoming[0], program.Version)):
		return &CatchUpResult{Reason: ReasonHasUpcomingEvents}, nil
	case len(upcoming) > 0:
		reason = ReasonStaleProgram
	case program == nil:
		return &CatchUpResult{Reason: ReasonNoActiveProgram}, nil
	}

	result, err := s.RegenerateWeeklyCalendar(ctx, userID, program.Document, program.Version)
	if err != nil {
		return nil, err
	}
	if reason == ReasonStaleProgram {
		s.log.Info("stale calendar replaced",
			"user_id", userID.Hex(),
			"event_version", upcoming[0].ProgramVersion,
			"program_version", program.Version,
		)
	}
	return &CatchUpResult{Regenerated: true, Reason: reason, Calendar: result}, nil
}

// builtFromOlderVersion reports whether ev was generated from a program version older than
// active. Events without a version were not generated from a program.
func builtFromOlderVersion(ev domain.CalendarEvent, active int) bool {
	return ev.ProgramVersion > 0 && ev.ProgramVersion < active
}

func (s *calendarService) ListUpcoming(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.CalendarEvent, error) {
	return s.calendarRepo.ListUpcoming(ctx, userID, s.now(), limit)
}
