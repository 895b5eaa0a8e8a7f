package workout

import (
	"math"

	"alcyxob/coach-core/internal/domain"
)

const MinDurationExerciseMin = 5

// ScaleWorkoutInstance multiplies every quantitative field by factor and returns a new
// snapshot with a recomputed estimate. Sets, reps, holds, rounds and work intervals never go
// below 1 and duration exercises never below MinDurationExerciseMin. Loads and rest periods
// are left alone, as are names, types and equipment.
func ScaleWorkoutInstance(inst domain.WorkoutInstance, factor float64) domain.WorkoutInstance {
	return ScaleWorkoutInstanceKeeping(inst, factor, nil)
}

// ScaleWorkoutInstanceKeeping scales like ScaleWorkoutInstance but never plans fewer sets for
// exercise i than keepSets[i], the sets the user has already logged.
func ScaleWorkoutInstanceKeeping(inst domain.WorkoutInstance, factor float64, keepSets []int) domain.WorkoutInstance {
	if !(factor > 0) || math.IsInf(factor, 0) {
		factor = 1
	}
	out := inst.Clone()
	for i := range out.Exercises {
		minSets := 1
		if i < len(keepSets) && keepSets[i] > minSets {
			minSets = keepSets[i]
		}
		scaleExercise(&out.Exercises[i], factor, minSets)
	}
	out.EstimatedDurationMin = EstimateWorkoutDuration(out)
	return out
}

func scaleExercise(ex *domain.Exercise, f float64, minSets int) {
	switch ex.ExerciseType {
	case domain.ExerciseHold:
		for i, h := range ex.HoldDurationSec {
			ex.HoldDurationSec[i] = scaleAtLeast(h, f, 1)
		}
	case domain.ExerciseDuration:
		if ex.DurationMin != nil {
			ex.DurationMin = intPtr(scaleAtLeast(*ex.DurationMin, f, MinDurationExerciseMin))
		}
	case domain.ExerciseIntervals:
		if ex.Rounds != nil {
			ex.Rounds = intPtr(scaleAtLeast(*ex.Rounds, f, 1))
		}
		if ex.WorkSec != nil {
			ex.WorkSec = intPtr(scaleAtLeast(*ex.WorkSec, f, 1))
		}
	default:
		for i, r := range ex.Reps {
			ex.Reps[i] = scaleAtLeast(r, f, 1)
		}
		if ex.Sets != nil {
			setSets(ex, scaleAtLeast(*ex.Sets, f, minSets))
		}
	}
}

func scaleAtLeast(v int, f float64, floor int) int {
	n := int(math.Round(float64(v) * f))
	if n < floor {
		return floor
	}
	return n
}

// setSets changes the set count and keeps per-set lists the same length, repeating the
// last entry when growing.
func setSets(ex *domain.Exercise, n int) {
	ex.Sets = intPtr(n)
	ex.Reps = resize(ex.Reps, n)
	ex.LoadEach = resize(ex.LoadEach, n)
}

func resize[T any](in []T, n int) []T {
	if len(in) == 0 || len(in) == n {
		return in
	}
	if len(in) > n {
		return in[:n]
	}
	out := make([]T, n)
	copy(out, in)
	for i := len(in); i < n; i++ {
		out[i] = in[len(in)-1]
	}
	return out
}
