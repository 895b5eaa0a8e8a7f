package stats

import (
	"time"

	"alcyxob/coach-core/internal/domain"
)

// WeekBounds returns Monday 00:00:00 through Sunday 23:59:59 of the week containing t, in
// t's location.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	start := time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, d-offset+6, 23, 59, 59, 0, t.Location())
	return start, end
}

// CurrentWeekBounds is WeekBounds for the current UTC time.
func CurrentWeekBounds() (time.Time, time.Time) {
	return WeekBounds(time.Now().UTC())
}

// AggregateWeek folds the stats of the completed sessions of a week together with the
// week's calendar events. An empty week yields zero counts and a nil average energy.
func AggregateWeek(weekStart, weekEnd time.Time, sessions []domain.SessionStats, calendar []domain.CalendarEvent) domain.WeeklyStats {
	ws := domain.WeeklyStats{WeekStart: weekStart, WeekEnd: weekEnd}

	for _, ev := range calendar {
		if ev.StartAt.Before(weekStart) || ev.StartAt.After(weekEnd) {
			continue
		}
		ws.SessionsPlanned++
		if ev.Status == domain.EventSkipped {
			ws.SessionsSkipped++
		}
	}

	energySum, energyCount := 0, 0
	for _, s := range sessions {
		ws.SessionsCompleted++
		ws.TotalExercises += s.TotalExercises
		ws.CompletedExercises += s.CompletedExercises
		ws.TotalSets += s.TotalSets
		ws.TotalReps += s.TotalReps
		ws.TotalVolume += s.TotalVolume
		ws.CardioTimeMin += s.CardioTimeMin
		ws.PainFlags += s.PainFlags
		if s.WorkoutDurationMin != nil {
			ws.TotalWorkoutMin += *s.WorkoutDurationMin
		}
		if s.EnergyRating != nil {
			energySum += *s.EnergyRating
			energyCount++
		}
	}

	if energyCount > 0 {
		avg := float64(energySum) / float64(energyCount)
		ws.AvgEnergyRating = &avg
	}
	if ws.SessionsPlanned > 0 {
		ws.CompletionRate = float64(ws.SessionsCompleted) / float64(ws.SessionsPlanned)
		if ws.CompletionRate > 1 {
			ws.CompletionRate = 1
		}
	}
	return ws
}
