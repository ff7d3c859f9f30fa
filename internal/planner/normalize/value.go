package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Scalar and list coercion helpers. The model is inconsistent about quoting
// numbers, padding times and formatting dates, so everything here accepts
// the loose variants and emits the canonical form.

const isoDate = "2006-01-02"

var dateLayouts = []string{
	isoDate,
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006.1.2",
	"2006年1月2日",
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::\d{1,2})?$`)

// listDelimiters split a delimiter-joined string into a string list.
var listDelimiters = map[rune]bool{'\n': true, ',': true, ';': true, '；': true, '、': true}

func stringFromAny(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s := stringFromAny(m[key]); s != "" {
			return s
		}
	}
	return ""
}

// numberFromAny coerces numeric variants: native numbers, json.Number, and
// numeric strings with currency decoration stripped.
func numberFromAny(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(val)
		s = strings.Trim(s, "¥￥$元 ")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func firstNumber(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, exists := m[key]; exists {
			if f, ok := numberFromAny(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func firstInt(m map[string]interface{}, keys ...string) (int, bool) {
	f, ok := firstNumber(m, keys...)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// normalizeDate emits YYYY-MM-DD for any recognized date variant. An
// unrecognized but non-empty value is returned trimmed so the validator can
// flag it instead of the field silently disappearing.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}
	return s
}

// normalizeClock emits zero-padded HH:MM, dropping seconds. Values that are
// not recognizable clock times come back empty.
func normalizeClock(s string) string {
	s = strings.TrimSpace(s)
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func daySpan(start, end string) int {
	s, err := time.Parse(isoDate, start)
	if err != nil {
		return 0
	}
	e, err := time.Parse(isoDate, end)
	if err != nil {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

func offsetDate(start string, offset int) string {
	t, err := time.Parse(isoDate, start)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, offset).Format(isoDate)
}

// stringListPreserveNil normalizes a tips/notes/suggestions field. A JSON
// null is explicit absence and stays null. An array is filtered to
// non-empty trimmed strings. A string is split on common delimiters,
// falling back to a single-element list.
func stringListPreserveNil(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, item := range val {
			if s := stringFromAny(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return splitList(val)
	}
	return []interface{}{}
}

func splitList(s string) []interface{} {
	parts := strings.FieldsFunc(s, func(r rune) bool { return listDelimiters[r] })
	out := make([]interface{}, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
