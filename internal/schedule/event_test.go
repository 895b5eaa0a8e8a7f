package schedule

import (
	"reflect"
	"testing"
)

func TestNormalizeEvent(t *testing.T) {
	push := map[string]any{"name": "Push", "durationMin": 45}
	pull := map[string]any{"name": "Pull", "durationMin": 45}

	tests := []struct {
		name string
		in   map[string]any
		want any
	}{
		{name: "first of many", in: map[string]any{"status": "scheduled", PlannedSessionsJoinKey: []any{push, pull}}, want: push},
		{name: "typed slice", in: map[string]any{"status": "scheduled", PlannedSessionsJoinKey: []map[string]any{pull}}, want: pull},
		{name: "empty join", in: map[string]any{"status": "scheduled", PlannedSessionsJoinKey: []any{}}, want: nil},
		{name: "non-array join", in: map[string]any{"status": "scheduled", PlannedSessionsJoinKey: "oops"}, want: nil},
		{name: "missing join", in: map[string]any{"status": "scheduled"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeEvent(tt.in)
			if _, ok := got[PlannedSessionsJoinKey]; ok {
				t.Fatalf("raw join key must be stripped")
			}
			if got["status"] != "scheduled" {
				t.Fatalf("other fields must pass through, got %v", got["status"])
			}
			if !reflect.DeepEqual(got[PlannedSessionKey], tt.want) {
				t.Fatalf("planned_session = %v, want %v", got[PlannedSessionKey], tt.want)
			}
		})
	}
}

func TestNormalizeEvent_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{PlannedSessionsJoinKey: []any{"a"}}
	_ = NormalizeEvent(in)
	if _, ok := in[PlannedSessionsJoinKey]; !ok {
		t.Fatalf("input map was modified")
	}
}
