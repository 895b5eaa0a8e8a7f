package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/repository"
	"alcyxob/coach-core/internal/stats"
)

// WeekReport is everything the weekly review needs about one user's week.
type WeekReport struct {
	Sessions     []domain.TrainingSession `json:"-"`
	SessionStats []domain.SessionStats    `json:"sessions"`
	Weekly       domain.WeeklyStats       `json:"weekly"`
}

type StatsService interface {
	// CalculateWeeklyStats returns zero counts and a nil average, not an error, for a week
	// without sessions.
	CalculateWeeklyStats(ctx context.Context, userID primitive.ObjectID, weekStart, weekEnd time.Time) (*domain.WeeklyStats, error)
	CollectWeek(ctx context.Context, userID primitive.ObjectID, weekStart, weekEnd time.Time) (*WeekReport, error)
	GetCurrentWeekBounds() (time.Time, time.Time)
}

type statsService struct {
	sessionRepo  repository.SessionRepository
	instanceRepo repository.WorkoutInstanceRepository
	eventRepo    repository.SessionEventRepository
	calendarRepo repository.CalendarEventRepository
	now          func() time.Time
}

func NewStatsService(
	sessionRepo repository.SessionRepository,
	instanceRepo repository.WorkoutInstanceRepository,
	eventRepo repository.SessionEventRepository,
	calendarRepo repository.CalendarEventRepository,
) StatsService {
	return &statsService{
		sessionRepo:  sessionRepo,
		instanceRepo: instanceRepo,
		eventRepo:    eventRepo,
		calendarRepo: calendarRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *statsService) GetCurrentWeekBounds() (time.Time, time.Time) {
	return stats.WeekBounds(s.now())
}

func (s *statsService) CalculateWeeklyStats(ctx context.Context, userID primitive.ObjectID, weekStart, weekEnd time.Time) (*domain.WeeklyStats, error) {
	report, err := s.CollectWeek(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	return &report.Weekly, nil
}

// CollectWeek loads every session started in the week. Only completed sessions feed the
// aggregate; all of them are returned so callers can tell an idle week from one in flight.
func (s *statsService) CollectWeek(ctx context.Context, userID primitive.ObjectID, weekStart, weekEnd time.Time) (*WeekReport, error) {
	sessions, err := s.sessionRepo.ListStartedInRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	calendar, err := s.calendarRepo.ListInRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	completed := make([]domain.SessionStats, 0, len(sessions))
	for i := range sessions {
		if sessions[i].Status != domain.SessionCompleted {
			continue
		}
		st, err := sessionStats(ctx, s.instanceRepo, s.eventRepo, s.calendarRepo, &sessions[i])
		if err != nil {
			return nil, err
		}
		completed = append(completed, st)
	}

	return &WeekReport{
		Sessions:     sessions,
		SessionStats: completed,
		Weekly:       stats.AggregateWeek(weekStart, weekEnd, completed, calendar),
	}, nil
}
