package completion

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition  = errors.New("invalid completion transition")
	ErrSetIndexOutOfRange = errors.New("set index out of range")
	ErrInvalidCommand     = errors.New("invalid completion command")
)

// Reduce applies cmd to state and returns the new state. The input is never modified, and
// metrics are recomputed from the full performance array on every call. A rejected command
// returns the unchanged state and an error wrapping one of the package errors.
func Reduce(state State, cmd Command) (State, error) {
	next := state.clone()
	switch c := cmd.(type) {
	case CompleteSet:
		if state.Status == StatusSkipped {
			return state, fmt.Errorf("%w: cannot complete a set of a skipped exercise", ErrInvalidTransition)
		}
		if c.Index < 0 || c.Index >= len(next.Payload.Performance.Sets) {
			return state, fmt.Errorf("%w: %d (exercise has %d sets)", ErrSetIndexOutOfRange, c.Index, len(next.Payload.Performance.Sets))
		}
		if c.Reps != nil && *c.Reps < 0 {
			return state, fmt.Errorf("%w: actual_reps must not be negative", ErrInvalidCommand)
		}
		if c.Load != nil && *c.Load < 0 {
			return state, fmt.Errorf("%w: actual_load must not be negative", ErrInvalidCommand)
		}
		next.Payload.Performance.Sets[c.Index] = &SetPerformance{
			ActualReps: copyInt(c.Reps),
			ActualLoad: copyFloat(c.Load),
			LoadUnit:   c.Unit,
		}
		next.Status = progressStatus(next)
	case SkipExercise:
		if state.Status == StatusCompleted {
			return state, fmt.Errorf("%w: exercise is already completed", ErrInvalidTransition)
		}
		next.Status = StatusSkipped
		next.Payload.Flags.SkipReason = strings.TrimSpace(c.Reason)
	case UnskipExercise:
		// Logged sets survive; status always restarts from pending.
		next.Status = StatusPending
		next.Payload.Flags.SkipReason = ""
	case SetNote:
		text := strings.TrimSpace(c.Text)
		if text == "" {
			return state, fmt.Errorf("%w: note text is empty", ErrInvalidCommand)
		}
		next.Payload.Notes = append(next.Payload.Notes, text)
	default:
		return state, fmt.Errorf("%w: unsupported command %T", ErrInvalidCommand, cmd)
	}
	next.Payload.Metrics = computeMetrics(next.Payload.Performance)
	return next, nil
}

// Replay folds commands over the initial state. Commands the reducer rejects are no-ops,
// exactly as they were when first submitted.
func Replay(plannedSets int, cmds []Command) State {
	state := Initial(plannedSets)
	for _, cmd := range cmds {
		if next, err := Reduce(state, cmd); err == nil {
			state = next
		}
	}
	return state
}

func progressStatus(s State) Status {
	recorded := s.RecordedSets()
	switch {
	case recorded == 0:
		return StatusPending
	case recorded == len(s.Payload.Performance.Sets):
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

func computeMetrics(p Performance) Metrics {
	var m Metrics
	for _, set := range p.Sets {
		if set == nil || set.ActualReps == nil {
			continue
		}
		m.TotalReps += *set.ActualReps
		if set.ActualLoad != nil {
			m.Volume += float64(*set.ActualReps) * *set.ActualLoad
		}
	}
	return m
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
