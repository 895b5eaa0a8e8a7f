package workout

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Loose readers for values that arrive from model JSON or historical store documents.
// They never panic and report ok=false for anything they cannot interpret.

var leadingNumberRe = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		m := leadingNumberRe.FindString(strings.TrimSpace(n))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
		return f, err == nil
	case bool:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// asSlice returns the elements of any slice or array value.
func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false // []byte is not a list
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asMap accepts string-keyed maps of any named type, and ordered documents shaped
// as a slice of {Key, Value} structs.
func asMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Slice:
		elem := rv.Type().Elem()
		if elem.Kind() != reflect.Struct {
			return nil, false
		}
		keyField, okKey := elem.FieldByName("Key")
		valField, okVal := elem.FieldByName("Value")
		if !okKey || !okVal || keyField.Type.Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			e := rv.Index(i)
			out[e.FieldByIndex(keyField.Index).String()] = e.FieldByIndex(valField.Index).Interface()
		}
		return out, true
	}
	return nil, false
}

// toStringList accepts a list of strings or a single comma separated string.
func toStringList(v any) []string {
	out := []string{}
	if s, ok := toString(v); ok {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	items, ok := asSlice(v)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := toString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// toIntList accepts a list of numbers, or a scalar that is repeated n times.
func toIntList(v any, n int) []int {
	if items, ok := asSlice(v); ok {
		out := make([]int, 0, len(items))
		for _, item := range items {
			if i, ok := toInt(item); ok {
				out = append(out, i)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	i, ok := toInt(v)
	if !ok {
		return nil
	}
	if n < 1 {
		n = 1
	}
	out := make([]int, n)
	for k := range out {
		out[k] = i
	}
	return out
}

func toFloatList(v any, n int) []float64 {
	if items, ok := asSlice(v); ok {
		out := make([]float64, 0, len(items))
		for _, item := range items {
			if f, ok := toFloat(item); ok {
				out = append(out, f)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for k := range out {
		out[k] = f
	}
	return out
}

func intPtr(v int) *int          { return &v }
func stringPtr(v string) *string { return &v }
