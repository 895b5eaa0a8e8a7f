// Package workout holds the pure logic around workout instances: normalizing generated or
// historical shapes into the canonical Exercise, estimating duration, and the deterministic
// mutations used by the action engine.
package workout

import (
	"strings"
	"time"

	"alcyxob/coach-core/internal/domain"
)

const DefaultTitle = "Today's Workout"

// exerciseAliases is the single alias-resolution table for exercise documents. Keys are the
// canonical field names; values are accepted source keys in priority order.
var exerciseAliases = map[string][]string{
	"exercise_name":     {"exercise_name", "name", "exercise"},
	"exercise_type":     {"exercise_type", "type"},
	"muscles_utilized":  {"muscles_utilized", "muscles", "muscle_groups"},
	"goals_addressed":   {"goals_addressed", "goals"},
	"reasoning":         {"reasoning", "rationale"},
	"equipment":         {"equipment"},
	"sets":              {"sets"},
	"reps":              {"reps"},
	"load_each":         {"load_each", "load_kg_each", "load"},
	"load_unit":         {"load_unit", "unit"},
	"rest_seconds":      {"rest_seconds", "rest_sec"},
	"hold_duration_sec": {"hold_duration_sec", "hold_sec"},
	"duration_min":      {"duration_min", "duration"},
	"rounds":            {"rounds"},
	"work_sec":          {"work_sec", "work_seconds"},
}

var instanceAliases = map[string][]string{
	"title":                  {"title", "name"},
	"estimated_duration_min": {"estimated_duration_min", "duration_min"},
	"focus":                  {"focus"},
	"exercises":              {"exercises"},
	"metadata":               {"metadata"},
}

// resolve returns the first non-nil value among the aliases of field, and the key it came from.
func resolve(raw map[string]any, aliases map[string][]string, field string) (any, string) {
	for _, key := range aliases[field] {
		if v, ok := raw[key]; ok && v != nil {
			return v, key
		}
	}
	return nil, ""
}

// NormalizeExercise maps any accepted exercise shape onto domain.Exercise. Unset scalars stay
// nil, unset list fields become empty lists, and fields of other exercise types are dropped.
func NormalizeExercise(raw map[string]any) domain.Exercise {
	ex := domain.Exercise{
		MusclesUtilized: []string{},
		GoalsAddressed:  []string{},
		Equipment:       []string{},
	}
	if raw == nil {
		ex.ExerciseType = domain.ExerciseReps
		return ex
	}
	get := func(field string) any {
		v, _ := resolve(raw, exerciseAliases, field)
		return v
	}

	if s, ok := toString(get("exercise_name")); ok {
		ex.ExerciseName = s
	}
	ex.ExerciseType = inferType(raw)
	ex.MusclesUtilized = toStringList(get("muscles_utilized"))
	ex.GoalsAddressed = toStringList(get("goals_addressed"))
	ex.Equipment = toStringList(get("equipment"))
	if s, ok := toString(get("reasoning")); ok {
		ex.Reasoning = stringPtr(s)
	}

	switch ex.ExerciseType {
	case domain.ExerciseReps:
		sets, hasSets := toInt(get("sets"))
		if hasSets && sets > 0 {
			ex.Sets = intPtr(sets)
		} else {
			sets = 1
		}
		ex.Reps = toIntList(get("reps"), sets)
		if ex.Sets == nil && len(ex.Reps) > 0 {
			ex.Sets = intPtr(len(ex.Reps))
		}
		loadRaw, loadKey := resolve(raw, exerciseAliases, "load_each")
		ex.LoadEach = toFloatList(loadRaw, valueOr(ex.Sets, 1))
		if s, ok := toString(get("load_unit")); ok {
			ex.LoadUnit = stringPtr(s)
		} else if loadKey == "load_kg_each" && ex.LoadEach != nil {
			ex.LoadUnit = stringPtr("kg")
		}
		if rest, ok := toInt(get("rest_seconds")); ok {
			ex.RestSeconds = intPtr(rest)
		}
	case domain.ExerciseHold:
		n := 1
		if sets, ok := toInt(get("sets")); ok && sets > 0 {
			n = sets
		}
		ex.HoldDurationSec = toIntList(get("hold_duration_sec"), n)
	case domain.ExerciseDuration:
		if d, ok := toInt(get("duration_min")); ok {
			ex.DurationMin = intPtr(d)
		}
	case domain.ExerciseIntervals:
		if r, ok := toInt(get("rounds")); ok {
			ex.Rounds = intPtr(r)
		}
		if w, ok := toInt(get("work_sec")); ok {
			ex.WorkSec = intPtr(w)
		}
		if rest, ok := toInt(get("rest_seconds")); ok {
			ex.RestSeconds = intPtr(rest)
		}
	}
	return ex
}

// inferType honours an explicit valid type, otherwise guesses from the fields present.
func inferType(raw map[string]any) domain.ExerciseType {
	if v, _ := resolve(raw, exerciseAliases, "exercise_type"); v != nil {
		if s, ok := toString(v); ok {
			t := domain.ExerciseType(strings.ToLower(s))
			if t.Valid() {
				return t
			}
		}
	}
	has := func(field string) bool {
		v, _ := resolve(raw, exerciseAliases, field)
		return v != nil
	}
	switch {
	case has("hold_duration_sec"):
		return domain.ExerciseHold
	case has("rounds") || has("work_sec"):
		return domain.ExerciseIntervals
	case has("duration_min") && !has("reps"):
		return domain.ExerciseDuration
	default:
		return domain.ExerciseReps
	}
}

// MetadataOverrides replaces metadata values found in the raw instance. Zero values are ignored.
type MetadataOverrides struct {
	Intent         string
	RequestText    string
	PlannedSession *domain.PlannedSession
	GeneratedAt    time.Time
	Action         string
}

// NormalizeWorkoutInstance wraps generation output or user input into the canonical
// WorkoutInstance shape. Identity fields (ID, SessionID, Version) are left for the caller.
func NormalizeWorkoutInstance(raw map[string]any, overrides MetadataOverrides) domain.WorkoutInstance {
	inst := domain.WorkoutInstance{
		Title:     DefaultTitle,
		Focus:     []string{},
		Exercises: []domain.Exercise{},
	}
	if raw == nil {
		raw = map[string]any{}
	}
	get := func(field string) any {
		v, _ := resolve(raw, instanceAliases, field)
		return v
	}

	if s, ok := toString(get("title")); ok {
		inst.Title = s
	}
	inst.Focus = toStringList(get("focus"))
	if items, ok := asSlice(get("exercises")); ok {
		for _, item := range items {
			m, ok := asMap(item)
			if !ok {
				continue
			}
			inst.Exercises = append(inst.Exercises, NormalizeExercise(m))
		}
	}

	if meta, ok := asMap(get("metadata")); ok {
		if s, ok := toString(meta["intent"]); ok {
			inst.Metadata.Intent = s
		}
		if s, ok := toString(meta["request_text"]); ok {
			inst.Metadata.RequestText = s
		}
		if ps, ok := asMap(meta["planned_session"]); ok {
			inst.Metadata.PlannedSession = plannedSessionFromMap(ps)
		}
		if t, ok := meta["generated_at"].(time.Time); ok {
			inst.Metadata.GeneratedAt = t
		} else if s, ok := toString(meta["generated_at"]); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				inst.Metadata.GeneratedAt = t
			}
		}
	}
	applyOverrides(&inst.Metadata, overrides)
	if inst.Metadata.GeneratedAt.IsZero() {
		inst.Metadata.GeneratedAt = time.Now().UTC()
	}

	if d, ok := toInt(get("estimated_duration_min")); ok && d > 0 {
		inst.EstimatedDurationMin = d
	} else {
		inst.EstimatedDurationMin = EstimateWorkoutDuration(inst)
	}
	return inst
}

func applyOverrides(meta *domain.InstanceMetadata, o MetadataOverrides) {
	if o.Intent != "" {
		meta.Intent = o.Intent
	}
	if o.RequestText != "" {
		meta.RequestText = o.RequestText
	}
	if o.PlannedSession != nil {
		ps := *o.PlannedSession
		meta.PlannedSession = &ps
	}
	if !o.GeneratedAt.IsZero() {
		meta.GeneratedAt = o.GeneratedAt
	}
	if o.Action != "" {
		meta.Action = o.Action
	}
}

func plannedSessionFromMap(m map[string]any) *domain.PlannedSession {
	ps := &domain.PlannedSession{}
	if v, ok := toInt(firstOf(m, "dayNumber", "day_number")); ok {
		ps.DayNumber = v
	}
	if s, ok := toString(m["name"]); ok {
		ps.Name = s
	}
	if v, ok := toInt(firstOf(m, "durationMin", "duration_min")); ok {
		ps.DurationMin = v
	}
	if s, ok := toString(m["intensity"]); ok {
		ps.Intensity = s
	}
	return ps
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
