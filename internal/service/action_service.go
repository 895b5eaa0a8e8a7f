package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"alcyxob/coach-core/internal/completion"
	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/logger"
	"alcyxob/coach-core/internal/observability"
	"alcyxob/coach-core/internal/repository"
	"alcyxob/coach-core/internal/workout"
)

const (
	ActionTimeScale       = "time_scale"
	ActionSwapExercise    = "swap_exercise"
	ActionAdjustIntensity = "adjust_intensity"
)

// ActionPayload carries the parameters of every action; each action reads its own fields.
type ActionPayload struct {
	TargetDurationMin *float64 `json:"target_duration_min"`
	ExerciseIndex     *int     `json:"exercise_index"`
	ExerciseName      string   `json:"exercise_name"`
	Direction         string   `json:"direction"`
	Reason            string   `json:"reason"`
}

type ActionService interface {
	// ApplyAction mutates the latest instance of an active session and stores the result as
	// a new version. It returns the new version.
	ApplyAction(ctx context.Context, sessionID, userID primitive.ObjectID, actionType string, payload *ActionPayload) (*domain.WorkoutInstance, error)
}

// actionService has no lock around read-latest/compute/write: two concurrent actions on
// the same session race and the later write wins. Sessions are single-user, single-device.
type actionService struct {
	sessionRepo    repository.SessionRepository
	instanceRepo   repository.WorkoutInstanceRepository
	eventRepo      repository.SessionEventRepository
	profileService ProfileService
	generator      WorkoutGenerator
	log            *logger.Logger
	now            func() time.Time
}

func NewActionService(
	sessionRepo repository.SessionRepository,
	instanceRepo repository.WorkoutInstanceRepository,
	eventRepo repository.SessionEventRepository,
	profileService ProfileService,
	generator WorkoutGenerator,
	log *logger.Logger,
) ActionService {
	return &actionService{
		sessionRepo:    sessionRepo,
		instanceRepo:   instanceRepo,
		eventRepo:      eventRepo,
		profileService: profileService,
		generator:      generator,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *actionService) ApplyAction(ctx context.Context, sessionID, userID primitive.ObjectID, actionType string, payload *ActionPayload) (inst *domain.WorkoutInstance, err error) {
	ctx, span := observability.Tracer().Start(ctx, "action.apply")
	span.SetAttributes(attribute.String("action.type", actionType), attribute.String("session.id", sessionID.Hex()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if payload == nil {
		return nil, validationErr("payload", "payload is required for %s", actionType)
	}
	session, err := loadSession(ctx, s.sessionRepo, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(session); err != nil {
		return nil, err
	}
	latest, err := loadLatestInstance(ctx, s.instanceRepo, sessionID)
	if err != nil {
		return nil, err
	}

	var next domain.WorkoutInstance
	switch actionType {
	case ActionTimeScale:
		next, err = s.timeScale(ctx, *latest, payload)
	case ActionSwapExercise:
		next, err = s.swapExercise(ctx, userID, *latest, payload)
	case ActionAdjustIntensity:
		next, err = s.adjustIntensity(*latest, payload)
	default:
		return nil, validationErr("action_type", "unknown action %q", actionType)
	}
	if err != nil {
		return nil, err
	}

	next.ID = primitive.NilObjectID
	next.SessionID = latest.SessionID
	next.UserID = latest.UserID
	next.Version = latest.Version + 1
	next.Metadata.Action = actionType
	next.Metadata.GeneratedAt = s.now()
	if _, err := s.instanceRepo.Create(ctx, &next); err != nil {
		return nil, err
	}

	s.log.Info("action applied",
		"user_id", userID.Hex(),
		"session_id", sessionID.Hex(),
		"action", actionType,
		"version", next.Version,
		"estimated_duration_min", next.EstimatedDurationMin,
	)
	return &next, nil
}

func (s *actionService) timeScale(ctx context.Context, latest domain.WorkoutInstance, payload *ActionPayload) (domain.WorkoutInstance, error) {
	if payload.TargetDurationMin == nil {
		return domain.WorkoutInstance{}, validationErr("target_duration_min", "is required for %s", ActionTimeScale)
	}
	target := *payload.TargetDurationMin
	if !(target > 0) {
		return domain.WorkoutInstance{}, validationErr("target_duration_min", "must be positive")
	}
	current := latest.EstimatedDurationMin
	if current <= 0 {
		current = workout.EstimateWorkoutDuration(latest)
	}

	events, err := s.eventRepo.ListBySession(ctx, latest.SessionID)
	if err != nil {
		return domain.WorkoutInstance{}, err
	}
	logged := make([]int, len(latest.Exercises))
	for i, state := range completion.ReplayEvents(latest.Exercises, events) {
		logged[i] = state.SlotsInUse()
	}
	return workout.ScaleWorkoutInstanceKeeping(latest, target/float64(current), logged), nil
}

func (s *actionService) swapExercise(ctx context.Context, userID primitive.ObjectID, latest domain.WorkoutInstance, payload *ActionPayload) (domain.WorkoutInstance, error) {
	idx, err := resolveExercise(latest, payload)
	if err != nil {
		return domain.WorkoutInstance{}, err
	}
	if idx < 0 {
		return domain.WorkoutInstance{}, validationErr("exercise_index", "exercise_index or exercise_name is required for %s", ActionSwapExercise)
	}
	original := latest.Exercises[idx]

	others := make([]string, 0, len(latest.Exercises))
	for i, ex := range latest.Exercises {
		if i != idx && ex.ExerciseName != "" {
			others = append(others, ex.ExerciseName)
		}
	}
	req := ReplacementRequest{Original: original, Reason: payload.Reason, OtherExercises: others}
	profile, err := s.profileService.GetLatestProfile(ctx, userID)
	if err != nil {
		return domain.WorkoutInstance{}, err
	}
	if text, ok := FormatProfileForPrompt(profile); ok {
		req.WeightsProfile = text
	}

	raw, err := s.generator.GenerateReplacement(ctx, req)
	if err != nil {
		return domain.WorkoutInstance{}, err
	}
	replacement := workout.NormalizeExercise(raw)
	if replacement.ExerciseName == "" {
		return domain.WorkoutInstance{}, generationErr("swap_exercise", "replacement has no exercise_name", nil)
	}
	if replacement.ExerciseType != original.ExerciseType {
		return domain.WorkoutInstance{}, generationErr("swap_exercise", "replacement changed type from "+string(original.ExerciseType)+" to "+string(replacement.ExerciseType), nil)
	}

	next := latest.Clone()
	next.Exercises[idx] = replacement
	next.EstimatedDurationMin = workout.EstimateWorkoutDuration(next)
	return next, nil
}

func (s *actionService) adjustIntensity(latest domain.WorkoutInstance, payload *ActionPayload) (domain.WorkoutInstance, error) {
	dir, err := workout.ParseDirection(payload.Direction)
	if err != nil {
		return domain.WorkoutInstance{}, validationErr("direction", "must be %q or %q", workout.Harder, workout.Easier)
	}
	idx, err := resolveExercise(latest, payload)
	if err != nil {
		return domain.WorkoutInstance{}, err
	}

	next := latest.Clone()
	for i := range next.Exercises {
		if idx < 0 || i == idx {
			next.Exercises[i] = workout.AdjustExerciseIntensity(next.Exercises[i], dir)
		}
	}
	next.EstimatedDurationMin = workout.EstimateWorkoutDuration(next)
	return next, nil
}

// resolveExercise picks the target by explicit index, else by the first case-insensitive
// name match. It returns -1 when the payload names no exercise.
func resolveExercise(inst domain.WorkoutInstance, payload *ActionPayload) (int, error) {
	if payload.ExerciseIndex != nil {
		idx := *payload.ExerciseIndex
		if idx < 0 || idx >= len(inst.Exercises) {
			return 0, validationErr("exercise_index", "%d is out of range (workout has %d exercises)", idx, len(inst.Exercises))
		}
		return idx, nil
	}
	name := strings.TrimSpace(payload.ExerciseName)
	if name == "" {
		return -1, nil
	}
	for i, ex := range inst.Exercises {
		if strings.EqualFold(strings.TrimSpace(ex.ExerciseName), name) {
			return i, nil
		}
	}
	return 0, validationErr("exercise_name", "no exercise named %q in the current workout", name)
}
