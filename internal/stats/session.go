// Package stats derives session and weekly statistics. Nothing here is a source of truth:
// every figure is recomputable from instances, the session log and calendar events.
package stats

import (
	"math"
	"regexp"

	"alcyxob/coach-core/internal/completion"
	"alcyxob/coach-core/internal/domain"
)

var painRe = regexp.MustCompile(`(?i)\b(pain|painful|hurt|hurts|hurting|injur\w*|sharp|twinge|strain\w*|tweak\w*)\b`)

// CalculateSessionStats summarizes one session. A nil instance or an empty log yields zeroed
// stats. Set figures come from the replayed completion state so overwritten sets count once.
func CalculateSessionStats(inst *domain.WorkoutInstance, events []domain.SessionEvent, session *domain.TrainingSession, planned *domain.PlannedSession) domain.SessionStats {
	var st domain.SessionStats
	if session != nil {
		st.SessionID = session.ID
	}
	switch {
	case planned != nil && planned.Name != "":
		st.SessionName = planned.Name
	case inst != nil:
		st.SessionName = inst.Title
	}
	if inst == nil || len(events) == 0 {
		return st
	}

	st.TotalExercises = len(inst.Exercises)
	states := completion.ReplayEvents(inst.Exercises, events)
	logged := make([]bool, len(inst.Exercises))

	for _, ev := range events {
		switch ev.EventType {
		case domain.EventIntervalLogged:
			if ev.DurationMin != nil && *ev.DurationMin > 0 {
				st.CardioTimeMin += *ev.DurationMin
			}
			markLogged(logged, inst.Exercises, ev)
		case domain.EventSetCompleted:
			markLogged(logged, inst.Exercises, ev)
		case domain.EventSafetyFlag:
			st.PainFlags++
		case domain.EventNote:
			if painRe.MatchString(ev.Text) {
				st.PainFlags++
			}
		}
	}

	for i, ex := range inst.Exercises {
		state := states[i]
		switch {
		case state.Status == completion.StatusSkipped:
			st.SkippedExercises++
		case logged[i]:
			st.CompletedExercises++
		}
		st.TotalSets += state.RecordedSets()
		st.TotalReps += state.Payload.Metrics.TotalReps
		st.TotalVolume += state.Payload.Metrics.Volume
		if ex.ExerciseType == domain.ExerciseDuration && ex.DurationMin != nil {
			st.CardioTimeMin += float64(*ex.DurationMin)
		}
	}

	if session != nil {
		if painRe.MatchString(session.Notes) {
			st.PainFlags++
		}
		if session.StartedAt != nil && session.UpdatedAt != nil {
			if d := session.UpdatedAt.Sub(*session.StartedAt); d >= 0 {
				minutes := int(math.Round(d.Minutes()))
				st.WorkoutDurationMin = &minutes
			}
		}
		if session.EnergyRating != nil {
			e := *session.EnergyRating
			st.EnergyRating = &e
		}
	}
	return st
}

func markLogged(logged []bool, exercises []domain.Exercise, ev domain.SessionEvent) {
	idx := ev.ExerciseIndex
	if idx != nil && *idx >= 0 && *idx < len(logged) && completion.BelongsTo(ev, exercises[*idx]) {
		logged[*idx] = true
	}
}
