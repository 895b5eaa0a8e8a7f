package schedule

import (
	"reflect"
	"testing"

	"alcyxob/coach-core/internal/domain"
)

const threeDayProgram = `# Strength Foundations

You will train **3** days per week with a focus on compound lifts.

## Goals
- Build a base of strength

## Training Sessions

### Day 1: Push
- **Duration:** 45 minutes
- **Intensity:** moderate
- Bench Press 4x8
- Plank 1 min

### Day 2: Lower
- Duration: 60 minutes
- Intensity: High
- Back Squat 5x5

### Day 3: Pull
- Duration: 45 min
- Intensity: moderate
- Barbell Row 4x8

## Progression
Add 2.5 kg when all sets are completed.
`

func TestParseSessionsFromMarkdown_ThreeSessionProgram(t *testing.T) {
	got := ParseSessionsFromMarkdown(threeDayProgram)
	want := []domain.PlannedSession{
		{DayNumber: 1, Name: "Push", DurationMin: 45, Intensity: "moderate"},
		{DayNumber: 2, Name: "Lower", DurationMin: 60, Intensity: "high"},
		{DayNumber: 3, Name: "Pull", DurationMin: 45, Intensity: "moderate"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseSessionsFromMarkdown() = %+v, want %+v", got, want)
	}
}

func TestParseSessionsFromMarkdown_EmptyResults(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty document", doc: ""},
		{name: "whitespace only", doc: "  \n\t\n"},
		{name: "no training sessions section", doc: "# Program\n\n### Day 1: Push\n- Duration: 45 minutes\n"},
		{name: "section without day headers", doc: "# Program\n## Training Sessions\nJust move every day.\n## Notes\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSessionsFromMarkdown(tt.doc)
			if got == nil {
				t.Fatalf("expected non-nil empty slice")
			}
			if len(got) != 0 {
				t.Fatalf("expected no sessions, got %+v", got)
			}
		})
	}
}

func TestParseSessionsFromMarkdown_DefaultsAndInlineHints(t *testing.T) {
	doc := `# Plan
# Training Sessions
**Day 1: Full Body**
- Goblet Squat 3x10
Day 2: Conditioning (30 min, high)
- Bike intervals
## Day 3 - Mobility
- Intensity: low
`
	got := ParseSessionsFromMarkdown(doc)
	want := []domain.PlannedSession{
		{DayNumber: 1, Name: "Full Body", DurationMin: DefaultDurationMin, Intensity: DefaultIntensity},
		{DayNumber: 2, Name: "Conditioning", DurationMin: 30, Intensity: "high"},
		{DayNumber: 3, Name: "Mobility", DurationMin: DefaultDurationMin, Intensity: "low"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseSessionsFromMarkdown() = %+v, want %+v", got, want)
	}
}

func TestParseSessionsFromMarkdown_DashSeparatedHeaderHints(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   domain.PlannedSession
	}{
		{
			name:   "em dash",
			header: "### Day 1: Push — 60 min, high",
			want:   domain.PlannedSession{DayNumber: 1, Name: "Push", DurationMin: 60, Intensity: "high"},
		},
		{
			name:   "en dash",
			header: "### Day 1: Pull – 50 min, low",
			want:   domain.PlannedSession{DayNumber: 1, Name: "Pull", DurationMin: 50, Intensity: "low"},
		},
		{
			name:   "hyphen",
			header: "### Day 1: Legs - 40 min",
			want:   domain.PlannedSession{DayNumber: 1, Name: "Legs", DurationMin: 40, Intensity: DefaultIntensity},
		},
		{
			name:   "hyphenated name keeps its hyphen",
			header: "### Day 1: Full-Body — 55 min",
			want:   domain.PlannedSession{DayNumber: 1, Name: "Full-Body", DurationMin: 55, Intensity: DefaultIntensity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSessionsFromMarkdown("## Training Sessions\n" + tt.header + "\n- Bench 3x8\n")
			if len(got) != 1 {
				t.Fatalf("got %d sessions, want 1", len(got))
			}
			if got[0] != tt.want {
				t.Errorf("got %+v, want %+v", got[0], tt.want)
			}
		})
	}
}

func TestParseSessionsFromMarkdown_ExerciseMinutesDoNotOverrideDefault(t *testing.T) {
	doc := "## Training Sessions\n### Day 1: Core\n- Plank 2 min\n- Dead bug 3x10\n"
	got := ParseSessionsFromMarkdown(doc)
	if len(got) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got))
	}
	if got[0].DurationMin != DefaultDurationMin {
		t.Fatalf("DurationMin = %d, want %d", got[0].DurationMin, DefaultDurationMin)
	}
}

func TestParseDaysPerWeek(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{name: "empty input", doc: "", want: 3},
		{name: "pattern absent", doc: "# Plan\nLift things.", want: 3},
		{name: "bold number", doc: "You will train **4** days per week.", want: 4},
		{name: "plain number singular", doc: "Train 1 day per week to start.", want: 1},
		{name: "a week phrasing", doc: "We'll be training 5 days a week.", want: 5},
		{name: "out of range falls back", doc: "train 9 days per week", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDaysPerWeek(tt.doc); got != tt.want {
				t.Errorf("ParseDaysPerWeek() = %d, want %d", got, tt.want)
			}
		})
	}
}
