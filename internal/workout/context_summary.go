package workout

import (
	"fmt"
	"sort"
	"strings"
)

const unknown = "unknown"

// DataSource is one heterogeneous record fed into the prompt context: a profile, a location,
// settings, or workout history. Data is whatever shape the record was stored with.
type DataSource struct {
	Kind string         `json:"kind"`
	Data map[string]any `json:"data"`
}

type summaryField struct {
	label string
	keys  []string
}

// Known kinds render a fixed set of fields so that missing values show up as "unknown".
var summaryFields = map[string][]summaryField{
	"profile": {
		{"age", []string{"age"}},
		{"sex", []string{"sex", "gender"}},
		{"experience", []string{"experience_level", "experience"}},
		{"goals", []string{"goals", "primary_goals"}},
		{"injuries", []string{"injuries", "limitations"}},
	},
	"location": {
		{"name", []string{"name", "location"}},
		{"equipment", []string{"equipment", "available_equipment"}},
	},
	"settings": {
		{"units", []string{"units", "weight_unit"}},
		{"session length (min)", []string{"session_length_min", "preferred_duration_min"}},
		{"days per week", []string{"days_per_week"}},
	},
	"history": {
		{"recent workouts", []string{"recent_workouts", "workouts"}},
		{"last workout", []string{"last_workout_at", "last_workout"}},
	},
}

var kindOrder = []string{"profile", "location", "settings", "history"}

// BuildUserContextSummary flattens data sources into a compact text block, one line per
// source. Known kinds come first in a fixed order. An empty input yields "".
func BuildUserContextSummary(sources []DataSource) string {
	if len(sources) == 0 {
		return ""
	}
	ordered := make([]DataSource, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return kindRank(ordered[i].Kind) < kindRank(ordered[j].Kind)
	})

	lines := make([]string, 0, len(ordered))
	for _, src := range ordered {
		kind := strings.ToLower(strings.TrimSpace(src.Kind))
		if kind == "" {
			kind = "other"
		}
		var parts []string
		if fields, ok := summaryFields[kind]; ok {
			for _, f := range fields {
				parts = append(parts, f.label+": "+renderValue(firstPresent(src.Data, f.keys)))
			}
		} else {
			keys := make([]string, 0, len(src.Data))
			for k := range src.Data {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				parts = append(parts, strings.ReplaceAll(k, "_", " ")+": "+renderValue(src.Data[k]))
			}
		}
		if len(parts) == 0 {
			parts = append(parts, unknown)
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s", strings.ToUpper(kind[:1]), kind[1:], strings.Join(parts, "; ")))
	}
	return strings.Join(lines, "\n")
}

func kindRank(kind string) int {
	k := strings.ToLower(strings.TrimSpace(kind))
	for i, known := range kindOrder {
		if k == known {
			return i
		}
	}
	return len(kindOrder)
}

func firstPresent(data map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := data[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// renderValue prints scalars as-is and lists comma separated. nil and blank strings are
// unknown; an empty list is "none".
func renderValue(v any) string {
	if v == nil {
		return unknown
	}
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return unknown
		}
		return strings.TrimSpace(s)
	}
	if items, ok := asSlice(v); ok {
		if len(items) == 0 {
			return "none"
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if r := renderValue(item); r != unknown {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			return "none"
		}
		return strings.Join(out, ", ")
	}
	if m, ok := asMap(v); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, k+"="+renderValue(m[k]))
		}
		return strings.Join(out, " ")
	}
	if f, ok := toFloat(v); ok {
		if f == float64(int64(f)) {
			return fmt.Sprintf("%d", int64(f))
		}
		return fmt.Sprintf("%g", f)
	}
	return fmt.Sprint(v)
}
