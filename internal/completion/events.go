package completion

import (
	"strings"

	"alcyxob/coach-core/internal/domain"
)

// ToEvent renders a command for the exercise at exerciseIndex as a session log entry. The
// exercise name is stamped on the entry so a later swap does not inherit it. Event identity
// and timestamps are left to the caller.
func ToEvent(exerciseIndex int, ex domain.Exercise, cmd Command) domain.SessionEvent {
	ev := domain.SessionEvent{ExerciseIndex: copyInt(&exerciseIndex), ExerciseName: ex.ExerciseName}
	switch c := cmd.(type) {
	case CompleteSet:
		ev.EventType = domain.EventSetCompleted
		ev.SetIndex = copyInt(&c.Index)
		ev.ActualReps = copyInt(c.Reps)
		ev.ActualLoad = copyFloat(c.Load)
		ev.LoadUnit = c.Unit
	case SkipExercise:
		ev.EventType = domain.EventExerciseSkipped
		ev.Text = c.Reason
	case UnskipExercise:
		ev.EventType = domain.EventExerciseUnskipped
	case SetNote:
		ev.EventType = domain.EventNote
		ev.Text = c.Text
	}
	return ev
}

// FromEvent maps a logged event back to the command it recorded. Events that are not
// exercise-scoped reducer commands report ok=false.
func FromEvent(ev domain.SessionEvent) (exerciseIndex int, cmd Command, ok bool) {
	if ev.ExerciseIndex == nil {
		return 0, nil, false
	}
	switch ev.EventType {
	case domain.EventSetCompleted:
		if ev.SetIndex == nil {
			return 0, nil, false
		}
		cmd = CompleteSet{Index: *ev.SetIndex, Reps: copyInt(ev.ActualReps), Load: copyFloat(ev.ActualLoad), Unit: ev.LoadUnit}
	case domain.EventExerciseSkipped:
		cmd = SkipExercise{Reason: ev.Text}
	case domain.EventExerciseUnskipped:
		cmd = UnskipExercise{}
	case domain.EventNote:
		cmd = SetNote{Text: ev.Text}
	default:
		return 0, nil, false
	}
	return *ev.ExerciseIndex, cmd, true
}

// BelongsTo reports whether ev was logged against ex. Entries without a name predate
// identity stamping and match by position alone.
func BelongsTo(ev domain.SessionEvent, ex domain.Exercise) bool {
	if ev.ExerciseName == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(ev.ExerciseName), strings.TrimSpace(ex.ExerciseName))
}

// ReplayEvents rebuilds the state of every exercise from the session log. events must be in
// log order. Entries for unknown indices, or logged against an exercise that has since been
// swapped out, are ignored. An exercise keeps a slot for every set already logged even when
// the current instance plans fewer.
func ReplayEvents(exercises []domain.Exercise, events []domain.SessionEvent) []State {
	cmds := make([][]Command, len(exercises))
	slots := make([]int, len(exercises))
	for i, ex := range exercises {
		slots[i] = PlannedSets(ex)
	}
	for _, ev := range events {
		idx, cmd, ok := FromEvent(ev)
		if !ok || idx < 0 || idx >= len(exercises) || !BelongsTo(ev, exercises[idx]) {
			continue
		}
		if set, isSet := cmd.(CompleteSet); isSet && set.Index >= slots[idx] {
			slots[idx] = set.Index + 1
		}
		cmds[idx] = append(cmds[idx], cmd)
	}
	states := make([]State, len(exercises))
	for i := range exercises {
		states[i] = Replay(slots[i], cmds[i])
	}
	return states
}
