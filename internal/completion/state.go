// Package completion tracks per-exercise progress during a session as a pure reducer over
// discrete commands. State is never stored; it is rebuilt by replaying the session log.
package completion

import "alcyxob/coach-core/internal/domain"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
)

// SetPerformance is what the user actually did for one set.
type SetPerformance struct {
	ActualReps *int     `json:"actual_reps"`
	ActualLoad *float64 `json:"actual_load"`
	LoadUnit   string   `json:"load_unit,omitempty"`
}

type Performance struct {
	// Sets has one slot per planned set; nil means not yet recorded.
	Sets []*SetPerformance `json:"sets"`
}

type Flags struct {
	SkipReason string `json:"skip_reason,omitempty"`
}

type Metrics struct {
	TotalReps int     `json:"total_reps"`
	Volume    float64 `json:"volume"`
}

type Payload struct {
	Performance Performance `json:"performance"`
	Flags       Flags       `json:"flags"`
	Metrics     Metrics     `json:"metrics"`
	Notes       []string    `json:"notes"`
}

// State is the completion state of one exercise.
type State struct {
	Status  Status  `json:"status"`
	Payload Payload `json:"payload"`
}

// Initial returns a pending state with plannedSets empty set slots.
func Initial(plannedSets int) State {
	if plannedSets < 0 {
		plannedSets = 0
	}
	return State{
		Status: StatusPending,
		Payload: Payload{
			Performance: Performance{Sets: make([]*SetPerformance, plannedSets)},
			Notes:       []string{},
		},
	}
}

// PlannedSets is the number of set slots an exercise is tracked with. Holds count one slot
// per hold; duration and interval blocks are logged as a single entry.
func PlannedSets(ex domain.Exercise) int {
	switch ex.ExerciseType {
	case domain.ExerciseHold:
		if n := len(ex.HoldDurationSec); n > 0 {
			return n
		}
		return 1
	case domain.ExerciseDuration, domain.ExerciseIntervals:
		return 1
	default:
		if ex.Sets != nil && *ex.Sets > 0 {
			return *ex.Sets
		}
		if n := len(ex.Reps); n > 0 {
			return n
		}
		return 1
	}
}

// RecordedSets counts set slots that have an entry.
func (s State) RecordedSets() int {
	n := 0
	for _, set := range s.Payload.Performance.Sets {
		if set != nil {
			n++
		}
	}
	return n
}

// SlotsInUse is one past the highest recorded set slot, or 0 when nothing is recorded.
func (s State) SlotsInUse() int {
	sets := s.Payload.Performance.Sets
	for i := len(sets) - 1; i >= 0; i-- {
		if sets[i] != nil {
			return i + 1
		}
	}
	return 0
}

func (s State) clone() State {
	out := s
	sets := make([]*SetPerformance, len(s.Payload.Performance.Sets))
	for i, set := range s.Payload.Performance.Sets {
		if set != nil {
			c := *set
			sets[i] = &c
		}
	}
	out.Payload.Performance.Sets = sets
	out.Payload.Notes = append([]string{}, s.Payload.Notes...)
	return out
}
