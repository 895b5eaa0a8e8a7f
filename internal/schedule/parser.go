// Package schedule derives planned sessions and calendar slots from a program document.
// Every function here is pure and tolerant: AI-authored or historical text never causes an
// error, it only yields empty or default results.
package schedule

import (
	"regexp"
	"strconv"
	"strings"

	"alcyxob/coach-core/internal/domain"
)

const (
	DefaultDurationMin = 45
	DefaultIntensity   = "moderate"
	DefaultDaysPerWeek = 3
)

var (
	headingRe         = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	dayHeaderRe       = regexp.MustCompile(`(?i)^(?:#{1,6}\s*|\*\*\s*|[-*]\s+\*\*\s*)day\s+(\d+)\b\s*(?:[:.\-–—]\s*)?(.*)$`)
	plainDayHeaderRe  = regexp.MustCompile(`(?i)^day\s+(\d+)\s*[:\-–—]\s*(.+)$`)
	durationRe        = regexp.MustCompile(`(?i)(\d{1,3})\s*(?:-\s*\d{1,3}\s*)?(?:min\b|mins\b|minutes\b|minute\b|')`)
	durationLabelRe   = regexp.MustCompile(`(?i)duration\**\s*[:\-]\s*\**\s*(\d{1,3})`)
	intensityLabelRe  = regexp.MustCompile(`(?i)intensity\**\s*[:\-]\s*\**\s*([a-z][a-z \-]*)`)
	intensityInlineRe = regexp.MustCompile(`(?i)\b(very high|very low|low|moderate|medium|high)\s+intensity\b`)
	intensityWordRe   = regexp.MustCompile(`(?i)\b(very high|very low|low|moderate|medium|high)\b`)
	daysPerWeekRe     = regexp.MustCompile(`(?i)train(?:s|ing)?\s+(?:for\s+)?\**\s*(\d{1,2})\s*\**\s+days?\s+(?:per|a|each|every)\s+week`)
	parenRe           = regexp.MustCompile(`\s*\(([^)]*)\)\s*$`)
)

// ParseSessionsFromMarkdown extracts one PlannedSession per "Day N" header found inside the
// "Training Sessions" section. It returns an empty slice when the document is empty, the
// section is missing, or no day headers match.
func ParseSessionsFromMarkdown(document string) []domain.PlannedSession {
	sessions := []domain.PlannedSession{}
	section := trainingSessionsSection(document)
	if len(section) == 0 {
		return sessions
	}

	var current *domain.PlannedSession
	var body []string
	flush := func() {
		if current == nil {
			return
		}
		applyDetails(current, body)
		sessions = append(sessions, *current)
		current = nil
		body = nil
	}

	for _, line := range section {
		trimmed := strings.TrimSpace(line)
		if m := matchDayHeader(trimmed); m != nil {
			day, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			flush()
			name, inline := splitHeaderName(m[2])
			if name == "" {
				name = "Day " + m[1]
			}
			current = &domain.PlannedSession{DayNumber: day, Name: name}
			body = append(body, inline)
			continue
		}
		if current != nil {
			body = append(body, trimmed)
		}
	}
	flush()
	return sessions
}

// ParseDaysPerWeek reads the "train **N** days per week" statement. Missing or out-of-range
// values fall back to DefaultDaysPerWeek.
func ParseDaysPerWeek(document string) int {
	if strings.TrimSpace(document) == "" {
		return DefaultDaysPerWeek
	}
	m := daysPerWeekRe.FindStringSubmatch(document)
	if m == nil {
		return DefaultDaysPerWeek
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 7 {
		return DefaultDaysPerWeek
	}
	return n
}

func matchDayHeader(line string) []string {
	if m := dayHeaderRe.FindStringSubmatch(line); m != nil {
		return m
	}
	return plainDayHeaderRe.FindStringSubmatch(line)
}

// trainingSessionsSection returns the lines under the first heading that mentions
// "training sessions", up to the next non-day heading of the same or higher level.
func trainingSessionsSection(document string) []string {
	if strings.TrimSpace(document) == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(document, "\r\n", "\n"), "\n")
	start, level := -1, 0
	for i, line := range lines {
		m := headingRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if start < 0 {
			if strings.Contains(strings.ToLower(m[2]), "training sessions") {
				start, level = i+1, len(m[1])
			}
			continue
		}
		if len(m[1]) <= level && matchDayHeader(strings.TrimSpace(line)) == nil {
			return lines[start:i]
		}
	}
	if start < 0 {
		return nil
	}
	return lines[start:]
}

// splitHeaderName separates "Push (45 min, high)" or "Push — 45 min, high" into "Push" and
// "45 min, high".
func splitHeaderName(raw string) (string, string) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "**", ""))
	inline := ""
	if m := parenRe.FindStringSubmatch(raw); m != nil {
		inline = m[1]
		raw = strings.TrimSpace(raw[:len(raw)-len(m[0])])
	}
	if i, sep := indexHeaderSeparator(raw); i > 0 {
		inline = strings.TrimSpace(inline + " " + raw[i+len(sep):])
		raw = strings.TrimSpace(raw[:i])
	}
	return raw, inline
}

var headerSeparators = []string{" - ", " – ", " — "}

// indexHeaderSeparator finds the earliest spaced hyphen, en dash or em dash.
func indexHeaderSeparator(raw string) (int, string) {
	best, sep := -1, ""
	for _, candidate := range headerSeparators {
		if i := strings.Index(raw, candidate); i >= 0 && (best < 0 || i < best) {
			best, sep = i, candidate
		}
	}
	return best, sep
}

// applyDetails fills duration and intensity. Labelled values ("Duration: 60 min") anywhere in
// the day block win; otherwise the header's inline hints are used; otherwise defaults.
// body[0] is always the header's inline text.
func applyDetails(s *domain.PlannedSession, body []string) {
	s.DurationMin = DefaultDurationMin
	s.Intensity = DefaultIntensity
	durationSet, intensitySet := false, false
	for _, line := range body {
		if !durationSet {
			if m := durationLabelRe.FindStringSubmatch(line); m != nil {
				durationSet = setDuration(s, m[1])
			}
		}
		if !intensitySet {
			if m := intensityLabelRe.FindStringSubmatch(line); m != nil {
				intensitySet = setIntensity(s, m[1])
			} else if m := intensityInlineRe.FindStringSubmatch(line); m != nil {
				intensitySet = setIntensity(s, m[1])
			}
		}
	}
	if len(body) == 0 || body[0] == "" {
		return
	}
	if !durationSet {
		if m := durationRe.FindStringSubmatch(body[0]); m != nil {
			setDuration(s, m[1])
		}
	}
	if !intensitySet {
		if m := intensityWordRe.FindStringSubmatch(body[0]); m != nil {
			setIntensity(s, m[1])
		}
	}
}

func setDuration(s *domain.PlannedSession, raw string) bool {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return false
	}
	s.DurationMin = n
	return true
}

func setIntensity(s *domain.PlannedSession, raw string) bool {
	v := strings.ToLower(strings.TrimSpace(strings.Trim(raw, "*-_ ")))
	switch {
	case strings.HasPrefix(v, "very high"):
		v = "very high"
	case strings.HasPrefix(v, "very low"):
		v = "very low"
	case strings.HasPrefix(v, "high"):
		v = "high"
	case strings.HasPrefix(v, "low"):
		v = "low"
	case strings.HasPrefix(v, "moderate"), strings.HasPrefix(v, "medium"):
		v = "moderate"
	default:
		return false
	}
	s.Intensity = v
	return true
}
