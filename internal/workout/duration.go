package workout

import "alcyxob/coach-core/internal/domain"

const (
	// MinWorkoutMinutes floors every estimate, including an instance with no exercises.
	MinWorkoutMinutes = 10

	assumedSetWorkSec      = 40
	defaultRestSec         = 60
	defaultHoldRestSec     = 30
	defaultIntervalWorkSec = 30
	defaultIntervalRestSec = 30
)

// EstimateWorkoutDuration sums per-exercise time in seconds and returns whole minutes,
// never less than MinWorkoutMinutes.
func EstimateWorkoutDuration(inst domain.WorkoutInstance) int {
	total := 0
	for _, ex := range inst.Exercises {
		total += exerciseSeconds(ex)
	}
	minutes := (total + 59) / 60
	if minutes < MinWorkoutMinutes {
		return MinWorkoutMinutes
	}
	return minutes
}

func exerciseSeconds(ex domain.Exercise) int {
	switch ex.ExerciseType {
	case domain.ExerciseDuration:
		if ex.DurationMin == nil {
			return 0
		}
		return *ex.DurationMin * 60
	case domain.ExerciseIntervals:
		rounds := valueOr(ex.Rounds, 1)
		return rounds * (valueOr(ex.WorkSec, defaultIntervalWorkSec) + valueOr(ex.RestSeconds, defaultIntervalRestSec))
	case domain.ExerciseHold:
		if len(ex.HoldDurationSec) == 0 {
			return defaultIntervalWorkSec + defaultHoldRestSec
		}
		sec := 0
		for _, h := range ex.HoldDurationSec {
			sec += h + defaultHoldRestSec
		}
		return sec
	default:
		sets := valueOr(ex.Sets, len(ex.Reps))
		if sets < 1 {
			sets = 1
		}
		return sets * (valueOr(ex.RestSeconds, defaultRestSec) + assumedSetWorkSec)
	}
}

func valueOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
