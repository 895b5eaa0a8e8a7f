package workout

import (
	"fmt"
	"math"
	"strings"

	"alcyxob/coach-core/internal/domain"
)

type Direction string

const (
	Harder Direction = "harder"
	Easier Direction = "easier"
)

const (
	intensityStep = 0.2
	minHoldSec    = 5
	minWorkSec    = 5
	holdStepSec   = 5
	workStepSec   = 5
)

// ParseDirection accepts "harder" or "easier" in any case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Harder, Easier:
		return d, nil
	}
	return "", fmt.Errorf("unknown intensity direction %q", s)
}

// AdjustExerciseIntensity returns a copy of ex made one step harder or easier. Every change
// moves by at least one unit and respects the per-type minimums, so an easier exercise never
// drops to zero effort.
func AdjustExerciseIntensity(ex domain.Exercise, dir Direction) domain.Exercise {
	out := ex.Clone()
	up := dir == Harder
	switch out.ExerciseType {
	case domain.ExerciseHold:
		for i, h := range out.HoldDurationSec {
			out.HoldDurationSec[i] = step(h, up, holdStepSec, minHoldSec)
		}
	case domain.ExerciseDuration:
		if out.DurationMin != nil {
			out.DurationMin = intPtr(step(*out.DurationMin, up, 1, MinDurationExerciseMin))
		}
	case domain.ExerciseIntervals:
		if out.Rounds != nil {
			out.Rounds = intPtr(bump(*out.Rounds, up, 1))
		}
		if out.WorkSec != nil {
			out.WorkSec = intPtr(step(*out.WorkSec, up, workStepSec, minWorkSec))
		}
	default:
		for i, r := range out.Reps {
			out.Reps[i] = step(r, up, 1, 1)
		}
		if out.Sets != nil {
			setSets(&out, bump(*out.Sets, up, 1))
		}
	}
	return out
}

// step scales v by intensityStep in the given direction, moving at least minChange, and
// never returns below floor.
func step(v int, up bool, minChange, floor int) int {
	delta := int(math.Round(float64(v) * intensityStep))
	if delta < minChange {
		delta = minChange
	}
	if !up {
		delta = -delta
	}
	n := v + delta
	if n < floor {
		return floor
	}
	return n
}

func bump(v int, up bool, floor int) int {
	if up {
		return v + 1
	}
	if v-1 < floor {
		return floor
	}
	return v - 1
}
