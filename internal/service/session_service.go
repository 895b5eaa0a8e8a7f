package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/completion"
	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/logger"
	"alcyxob/coach-core/internal/repository"
	"alcyxob/coach-core/internal/stats"
	"alcyxob/coach-core/internal/workout"
)

// Instance intents.
const (
	IntentPlannedSession = "planned_session"
	IntentCustomRequest  = "custom_request"
	IntentUserProvided   = "user_provided"
)

type StartSessionInput struct {
	CalendarEventID *primitive.ObjectID  `json:"calendar_event_id"`
	Workout         map[string]any       `json:"workout"`
	RequestText     string               `json:"request_text"`
	ContextSources  []workout.DataSource `json:"context_sources"`
}

type SessionStart struct {
	Session  *domain.TrainingSession `json:"session"`
	Instance *domain.WorkoutInstance `json:"instance"`
}

// LogEventInput records an informational event that is not a completion command.
type LogEventInput struct {
	EventType     string   `json:"event_type"`
	ExerciseIndex *int     `json:"exercise_index"`
	DurationMin   *float64 `json:"duration_min"`
	Text          string   `json:"text"`
}

type CompleteSessionInput struct {
	EnergyRating *int   `json:"energy_rating"`
	Notes        string `json:"notes"`
}

type SessionService interface {
	StartSession(ctx context.Context, userID primitive.ObjectID, in StartSessionInput) (*SessionStart, error)
	GetLatestInstance(ctx context.Context, sessionID, userID primitive.ObjectID) (*domain.WorkoutInstance, error)
	// RecordCommand replays the exercise's log, applies cmd and appends it on success.
	RecordCommand(ctx context.Context, sessionID, userID primitive.ObjectID, exerciseIndex int, cmd completion.Command) (*completion.State, error)
	LogEvent(ctx context.Context, sessionID, userID primitive.ObjectID, in LogEventInput) (*domain.SessionEvent, error)
	GetExerciseStates(ctx context.Context, sessionID, userID primitive.ObjectID) ([]completion.State, error)
	CompleteSession(ctx context.Context, sessionID, userID primitive.ObjectID, in CompleteSessionInput) (*domain.SessionStats, error)
	GetSessionStats(ctx context.Context, sessionID, userID primitive.ObjectID) (*domain.SessionStats, error)
}

type sessionService struct {
	sessionRepo    repository.SessionRepository
	instanceRepo   repository.WorkoutInstanceRepository
	eventRepo      repository.SessionEventRepository
	calendarRepo   repository.CalendarEventRepository
	profileService ProfileService
	generator      WorkoutGenerator
	log            *logger.Logger
	now            func() time.Time
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	instanceRepo repository.WorkoutInstanceRepository,
	eventRepo repository.SessionEventRepository,
	calendarRepo repository.CalendarEventRepository,
	profileService ProfileService,
	generator WorkoutGenerator,
	log *logger.Logger,
) SessionService {
	return &sessionService{
		sessionRepo:    sessionRepo,
		instanceRepo:   instanceRepo,
		eventRepo:      eventRepo,
		calendarRepo:   calendarRepo,
		profileService: profileService,
		generator:      generator,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// loadSession returns the session when it belongs to userID. Someone else's session is
// reported as not found.
func loadSession(ctx context.Context, repo repository.SessionRepository, sessionID, userID primitive.ObjectID) (*domain.TrainingSession, error) {
	session, err := repo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func loadLatestInstance(ctx context.Context, repo repository.WorkoutInstanceRepository, sessionID primitive.ObjectID) (*domain.WorkoutInstance, error) {
	inst, err := repo.GetLatest(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return inst, nil
}

func requireActive(session *domain.TrainingSession) error {
	if session.Status != domain.SessionActive {
		return validationErr("session", "session is %s and can no longer change", session.Status)
	}
	return nil
}

func (s *sessionService) StartSession(ctx context.Context, userID primitive.ObjectID, in StartSessionInput) (*SessionStart, error) {
	var planned *domain.PlannedSession
	if in.CalendarEventID != nil {
		event, err := s.calendarRepo.GetByID(ctx, *in.CalendarEventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrEventNotFound
			}
			return nil, err
		}
		if event.UserID != userID {
			return nil, ErrEventNotFound
		}
		planned = event.PlannedSession
	}

	overrides := workout.MetadataOverrides{
		RequestText:    in.RequestText,
		PlannedSession: planned,
		GeneratedAt:    s.now(),
	}
	var raw map[string]any
	switch {
	case in.Workout != nil:
		raw = in.Workout
		overrides.Intent = IntentUserProvided
	default:
		profileText := ""
		profile, err := s.profileService.GetLatestProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		if text, ok := FormatProfileForPrompt(profile); ok {
			profileText = text
		}
		raw, err = s.generator.GenerateWorkout(ctx, WorkoutRequest{
			PlannedSession: planned,
			RequestText:    in.RequestText,
			UserContext:    workout.BuildUserContextSummary(in.ContextSources),
			WeightsProfile: profileText,
		})
		if err != nil {
			return nil, err
		}
		overrides.Intent = IntentCustomRequest
		if planned != nil {
			overrides.Intent = IntentPlannedSession
		}
	}
	inst := workout.NormalizeWorkoutInstance(raw, overrides)

	now := s.now()
	session := &domain.TrainingSession{
		UserID:          userID,
		CalendarEventID: in.CalendarEventID,
		Status:          domain.SessionActive,
		StartedAt:       &now,
	}
	if _, err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	inst.SessionID = session.ID
	inst.UserID = userID
	inst.Version = 1
	if _, err := s.instanceRepo.Create(ctx, &inst); err != nil {
		return nil, err
	}

	s.log.Info("session started", "user_id", userID.Hex(), "session_id", session.ID.Hex(), "intent", inst.Metadata.Intent, "exercises", len(inst.Exercises))
	return &SessionStart{Session: session, Instance: &inst}, nil
}

func (s *sessionService) GetLatestInstance(ctx context.Context, sessionID, userID primitive.ObjectID) (*domain.WorkoutInstance, error) {
	if _, err := loadSession(ctx, s.sessionRepo, sessionID, userID); err != nil {
		return nil, err
	}
	return loadLatestInstance(ctx, s.instanceRepo, sessionID)
}

func (s *sessionService) RecordCommand(ctx context.Context, sessionID, userID primitive.ObjectID, exerciseIndex int, cmd completion.Command) (*completion.State, error) {
	if cmd == nil {
		return nil, validationErr("command", "command is required")
	}
	session, err := loadSession(ctx, s.sessionRepo, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(session); err != nil {
		return nil, err
	}
	inst, err := loadLatestInstance(ctx, s.instanceRepo, sessionID)
	if err != nil {
		return nil, err
	}
	if exerciseIndex < 0 || exerciseIndex >= len(inst.Exercises) {
		return nil, validationErr("exercise_index", "%d is out of range (workout has %d exercises)", exerciseIndex, len(inst.Exercises))
	}

	events, err := s.eventRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	current := completion.ReplayEvents(inst.Exercises, events)[exerciseIndex]
	next, err := completion.Reduce(current, cmd)
	if err != nil {
		return nil, validationErr("command", "%v", err)
	}

	event := completion.ToEvent(exerciseIndex, inst.Exercises[exerciseIndex], cmd)
	if err := s.appendEvent(ctx, session, &event); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *sessionService) LogEvent(ctx context.Context, sessionID, userID primitive.ObjectID, in LogEventInput) (*domain.SessionEvent, error) {
	session, err := loadSession(ctx, s.sessionRepo, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(session); err != nil {
		return nil, err
	}

	event := domain.SessionEvent{EventType: in.EventType, ExerciseIndex: in.ExerciseIndex, Text: in.Text}
	switch in.EventType {
	case domain.EventIntervalLogged:
		if in.DurationMin == nil || *in.DurationMin <= 0 {
			return nil, validationErr("duration_min", "a positive duration is required for %s", in.EventType)
		}
		event.DurationMin = in.DurationMin
	case domain.EventSafetyFlag:
	case domain.EventNote:
		if in.ExerciseIndex != nil {
			return nil, validationErr("exercise_index", "exercise notes are recorded as commands")
		}
		if in.Text == "" {
			return nil, validationErr("text", "note text is empty")
		}
	default:
		return nil, validationErr("event_type", "unsupported event type %q", in.EventType)
	}
	if in.ExerciseIndex != nil {
		inst, err := loadLatestInstance(ctx, s.instanceRepo, sessionID)
		if err != nil {
			return nil, err
		}
		idx := *in.ExerciseIndex
		if idx < 0 || idx >= len(inst.Exercises) {
			return nil, validationErr("exercise_index", "%d is out of range (workout has %d exercises)", idx, len(inst.Exercises))
		}
		event.ExerciseName = inst.Exercises[idx].ExerciseName
	}

	if err := s.appendEvent(ctx, session, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// appendEvent stamps identity on event, appends it and bumps the session's UpdatedAt.
func (s *sessionService) appendEvent(ctx context.Context, session *domain.TrainingSession, event *domain.SessionEvent) error {
	now := s.now()
	event.EventID = uuid.NewString()
	event.SessionID = session.ID
	event.UserID = session.UserID
	event.CreatedAt = now
	if _, err := s.eventRepo.Append(ctx, event); err != nil {
		return err
	}
	session.UpdatedAt = &now
	return s.sessionRepo.Update(ctx, session)
}

func (s *sessionService) GetExerciseStates(ctx context.Context, sessionID, userID primitive.ObjectID) ([]completion.State, error) {
	if _, err := loadSession(ctx, s.sessionRepo, sessionID, userID); err != nil {
		return nil, err
	}
	inst, err := loadLatestInstance(ctx, s.instanceRepo, sessionID)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return completion.ReplayEvents(inst.Exercises, events), nil
}

func (s *sessionService) CompleteSession(ctx context.Context, sessionID, userID primitive.ObjectID, in CompleteSessionInput) (*domain.SessionStats, error) {
	if in.EnergyRating != nil && (*in.EnergyRating < 1 || *in.EnergyRating > 10) {
		return nil, validationErr("energy_rating", "must be between 1 and 10")
	}
	session, err := loadSession(ctx, s.sessionRepo, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(session); err != nil {
		return nil, err
	}
	inst, err := loadLatestInstance(ctx, s.instanceRepo, sessionID)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session.Status = domain.SessionCompleted
	session.CompletedAt = &now
	session.UpdatedAt = &now
	if in.EnergyRating != nil {
		rating := *in.EnergyRating
		session.EnergyRating = &rating
	}
	if in.Notes != "" {
		session.Notes = in.Notes
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	var planned *domain.PlannedSession
	if session.CalendarEventID != nil {
		if err := s.calendarRepo.UpdateStatus(ctx, *session.CalendarEventID, domain.EventCompleted); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if event, err := s.calendarRepo.GetByID(ctx, *session.CalendarEventID); err == nil {
			planned = event.PlannedSession
		}
	}

	st := stats.CalculateSessionStats(inst, events, session, planned)

	if _, err := s.profileService.UpdateFromSession(ctx, userID, session, inst, events); err != nil {
		s.log.Warn("weights profile update failed", "user_id", userID.Hex(), "session_id", sessionID.Hex(), "error", err)
	}
	s.log.Info("session completed", "user_id", userID.Hex(), "session_id", sessionID.Hex(), "completed_exercises", st.CompletedExercises, "total_volume", st.TotalVolume)
	return &st, nil
}

func (s *sessionService) GetSessionStats(ctx context.Context, sessionID, userID primitive.ObjectID) (*domain.SessionStats, error) {
	session, err := loadSession(ctx, s.sessionRepo, sessionID, userID)
	if err != nil {
		return nil, err
	}
	st, err := sessionStats(ctx, s.instanceRepo, s.eventRepo, s.calendarRepo, session)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// sessionStats loads everything one session's statistics depend on.
func sessionStats(ctx context.Context, instances repository.WorkoutInstanceRepository, events repository.SessionEventRepository, calendar repository.CalendarEventRepository, session *domain.TrainingSession) (domain.SessionStats, error) {
	inst, err := instances.GetLatest(ctx, session.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return domain.SessionStats{}, err
	}
	sessionLog, err := events.ListBySession(ctx, session.ID)
	if err != nil {
		return domain.SessionStats{}, err
	}
	var planned *domain.PlannedSession
	if session.CalendarEventID != nil {
		event, err := calendar.GetByID(ctx, *session.CalendarEventID)
		switch {
		case err == nil:
			planned = event.PlannedSession
		case !errors.Is(err, repository.ErrNotFound):
			return domain.SessionStats{}, err
		}
	}
	return stats.CalculateSessionStats(inst, sessionLog, session, planned), nil
}
