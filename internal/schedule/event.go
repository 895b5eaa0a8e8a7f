package schedule

import "reflect"

const (
	// PlannedSessionsJoinKey is the one-to-many join produced by the store.
	PlannedSessionsJoinKey = "planned_sessions"
	// PlannedSessionKey is the collapsed single-object field handed to callers.
	PlannedSessionKey = "planned_session"
)

// NormalizeEvent collapses the raw planned-sessions join into a single planned_session
// (first element, or nil when the join is empty or not an array) and drops the join key.
// All other fields pass through unchanged; the input map is not modified.
func NormalizeEvent(event map[string]any) map[string]any {
	if event == nil {
		return nil
	}
	out := make(map[string]any, len(event))
	for k, v := range event {
		if k == PlannedSessionsJoinKey {
			continue
		}
		out[k] = v
	}
	out[PlannedSessionKey] = firstElement(event[PlannedSessionsJoinKey])
	return out
}

func firstElement(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	if rv.Len() == 0 {
		return nil
	}
	return rv.Index(0).Interface()
}
