package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/completion"
	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/logger"
	"alcyxob/coach-core/internal/repository"
)

const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"

	defaultLoadUnit  = "kg"
	defaultEquipment = "unspecified"
)

type ProfileService interface {
	// GetLatestProfile returns nil, nil when the user has no profile yet.
	GetLatestProfile(ctx context.Context, userID primitive.ObjectID) (*domain.WeightsProfile, error)
	GetNextVersion(ctx context.Context, userID primitive.ObjectID) (int, error)
	// UpdateFromSession appends a profile version derived from the loads logged in a
	// session. It returns nil, nil when the session logged no loads.
	UpdateFromSession(ctx context.Context, userID primitive.ObjectID, session *domain.TrainingSession, instance *domain.WorkoutInstance, events []domain.SessionEvent) (*domain.WeightsProfile, error)
}

type profileService struct {
	profileRepo repository.WeightsProfileRepository
	log         *logger.Logger
}

func NewProfileService(profileRepo repository.WeightsProfileRepository, log *logger.Logger) ProfileService {
	return &profileService{profileRepo: profileRepo, log: log}
}

func (s *profileService) GetLatestProfile(ctx context.Context, userID primitive.ObjectID) (*domain.WeightsProfile, error) {
	profile, err := s.profileRepo.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) GetNextVersion(ctx context.Context, userID primitive.ObjectID) (int, error) {
	latest, err := s.GetLatestProfile(ctx, userID)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 1, nil
	}
	return latest.Version + 1, nil
}

func (s *profileService) UpdateFromSession(ctx context.Context, userID primitive.ObjectID, session *domain.TrainingSession, instance *domain.WorkoutInstance, events []domain.SessionEvent) (*domain.WeightsProfile, error) {
	if instance == nil || len(events) == 0 {
		return nil, nil
	}
	observed := entriesFromSession(instance, events)
	if len(observed) == 0 {
		return nil, nil
	}

	latest, err := s.GetLatestProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	version := 1
	var previous []domain.WeightEntry
	if latest != nil {
		version = latest.Version + 1
		previous = latest.Entries
	}

	profile := &domain.WeightsProfile{
		UserID:      userID,
		Version:     version,
		Entries:     mergeEntries(previous, observed),
		TriggerType: domain.ProfileTriggerSessionCompleted,
	}
	if session != nil {
		id := session.ID
		profile.TriggerSessionID = &id
	}
	if _, err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	s.log.Info("weights profile updated", "user_id", userID.Hex(), "version", version, "entries", len(profile.Entries))
	return profile, nil
}

// entriesFromSession takes the best logged load per reps exercise. Confidence grows with the
// number of sets performed at that load.
func entriesFromSession(instance *domain.WorkoutInstance, events []domain.SessionEvent) []domain.WeightEntry {
	states := completion.ReplayEvents(instance.Exercises, events)
	var out []domain.WeightEntry
	for i, ex := range instance.Exercises {
		if ex.ExerciseType != domain.ExerciseReps || ex.ExerciseName == "" {
			continue
		}
		best, count, unit := 0.0, 0, ""
		for _, set := range states[i].Payload.Performance.Sets {
			if set == nil || set.ActualLoad == nil || *set.ActualLoad <= 0 {
				continue
			}
			switch load := *set.ActualLoad; {
			case load > best:
				best, count, unit = load, 1, set.LoadUnit
			case load == best:
				count++
			}
		}
		if count == 0 {
			continue
		}
		if unit == "" && ex.LoadUnit != nil {
			unit = *ex.LoadUnit
		}
		if unit == "" {
			unit = defaultLoadUnit
		}
		equipment := defaultEquipment
		if len(ex.Equipment) > 0 {
			equipment = ex.Equipment[0]
		}
		out = append(out, domain.WeightEntry{
			Equipment:  equipment,
			Movement:   ex.ExerciseName,
			Load:       best,
			LoadUnit:   unit,
			Confidence: confidenceFor(count),
		})
	}
	return out
}

func confidenceFor(sets int) string {
	switch {
	case sets >= 3:
		return ConfidenceHigh
	case sets == 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func entryKey(e domain.WeightEntry) string {
	return strings.ToLower(strings.TrimSpace(e.Equipment)) + "|" + strings.ToLower(strings.TrimSpace(e.Movement))
}

// mergeEntries overlays observed entries on the previous ones, keyed by equipment and
// movement, and sorts the result by movement.
func mergeEntries(previous, observed []domain.WeightEntry) []domain.WeightEntry {
	byKey := make(map[string]domain.WeightEntry, len(previous)+len(observed))
	for _, e := range previous {
		byKey[entryKey(e)] = e
	}
	for _, e := range observed {
		byKey[entryKey(e)] = e
	}
	out := make([]domain.WeightEntry, 0, len(byKey))
	for _, e := range byKey {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Movement != out[j].Movement {
			return out[i].Movement < out[j].Movement
		}
		return out[i].Equipment < out[j].Equipment
	})
	return out
}

// FormatProfileForPrompt renders a profile for a model prompt. ok is false for a missing
// profile or one without entries; the text is never an empty string when ok is true.
func FormatProfileForPrompt(profile *domain.WeightsProfile) (text string, ok bool) {
	if profile == nil || len(profile.Entries) == 0 {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Current working weights (profile v%d):\n", profile.Version)
	for _, e := range profile.Entries {
		fmt.Fprintf(&b, "- %s (%s): %s %s [%s confidence]\n", e.Movement, e.Equipment, formatLoad(e.Load), e.LoadUnit, e.Confidence)
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func formatLoad(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
