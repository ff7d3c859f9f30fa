package normalize

import (
	"fmt"
	"strings"
)

var dayListKeys = []string{"days", "dailyItinerary", "itinerary", "dailyPlans", "dailySchedule", "plans"}

var activityListKeys = []string{"activities", "items", "schedule", "events", "spots", "plan"}

var mealListKeys = []string{"meals", "dining", "food"}

var accommodationKeys = []string{"accommodations", "accommodation", "hotels", "hotel", "lodging"}

// resolveDays locates the day list under its canonical or alternate keys,
// taking the first non-empty array. The second return reports whether a day
// list belongs in the output at all: an explicitly empty list is preserved
// as empty (the strict schema then rejects it, surfacing the defect) unless
// fallbacks synthesize placeholder days from the request date span.
func (n *Normalizer) resolveDays(payload map[string]interface{}, fb Context, currency string) ([]interface{}, bool) {
	var list []interface{}
	found := false
	for _, key := range dayListKeys {
		arr, ok := payload[key].([]interface{})
		if !ok {
			continue
		}
		found = true
		if len(arr) > 0 {
			list = arr
			break
		}
	}

	if len(list) == 0 {
		if n.fallbacks {
			if synthesized := n.synthesizeDays(fb, currency); synthesized != nil {
				return synthesized, true
			}
		}
		if found {
			return []interface{}{}, true
		}
		return nil, false
	}

	out := make([]interface{}, 0, len(list))
	for _, raw := range list {
		dayMap, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, n.normalizeDay(len(out), dayMap, fb, currency))
	}
	return out, true
}

// synthesizeDays builds one placeholder day per date in the request span.
// Only reachable with fallbacks enabled.
func (n *Normalizer) synthesizeDays(fb Context, currency string) []interface{} {
	start := normalizeDate(fb.StartDate)
	end := normalizeDate(fb.EndDate)
	if start == "" || end == "" {
		return nil
	}
	span := daySpan(start, end)
	if span < 1 {
		return nil
	}
	days := make([]interface{}, 0, span)
	for i := 0; i < span; i++ {
		day := map[string]interface{}{
			"day":        i + 1,
			"date":       offsetDate(start, i),
			"activities": []interface{}{n.placeholderActivity()},
		}
		day["title"] = dayTitle(i+1, fb.Destination)
		day["summary"] = "自由活动"
		days = append(days, day)
	}
	return days
}

func (n *Normalizer) normalizeDay(index int, raw map[string]interface{}, fb Context, currency string) map[string]interface{} {
	out := map[string]interface{}{}

	dayNum, ok := firstInt(raw, "day", "dayNumber", "index")
	if !ok || dayNum < 1 {
		dayNum = index + 1
	}
	out["day"] = dayNum

	date := normalizeDate(firstString(raw, "date"))
	if date == "" {
		if start := normalizeDate(fb.StartDate); start != "" {
			date = offsetDate(start, dayNum-1)
		}
	}
	if date != "" {
		out["date"] = date
	}

	activities := n.normalizeActivityList(raw, activityListKeys, currency)
	if len(activities) == 0 && n.fallbacks {
		activities = []interface{}{n.placeholderActivity()}
	}
	out["activities"] = activities

	if meals := n.normalizeActivityList(raw, mealListKeys, currency); len(meals) > 0 {
		out["meals"] = meals
	}
	if acc := n.normalizeAccommodations(raw, currency); len(acc) > 0 {
		out["accommodations"] = acc
	}
	if rawNotes, exists := raw["notes"]; exists {
		out["notes"] = stringListPreserveNil(rawNotes)
	}

	title := firstString(raw, "title", "name")
	if title == "" {
		title = dayTitle(dayNum, fb.Destination)
	}
	out["title"] = title

	summary := firstString(raw, "summary", "description")
	if summary == "" {
		summary = summarizeActivities(activities)
	}
	if summary == "" {
		summary = title
	}
	out["summary"] = summary

	return out
}

func (n *Normalizer) normalizeActivityList(raw map[string]interface{}, keys []string, currency string) []interface{} {
	var list []interface{}
	for _, key := range keys {
		if arr, ok := raw[key].([]interface{}); ok && len(arr) > 0 {
			list = arr
			break
		}
	}
	out := make([]interface{}, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			if act := n.normalizeActivity(m, currency); act != nil {
				out = append(out, act)
			}
		}
	}
	return out
}

func (n *Normalizer) normalizeAccommodations(raw map[string]interface{}, currency string) []interface{} {
	var list []interface{}
	for _, key := range accommodationKeys {
		switch v := raw[key].(type) {
		case []interface{}:
			if len(v) > 0 {
				list = v
			}
		case map[string]interface{}:
			list = []interface{}{v}
		}
		if list != nil {
			break
		}
	}
	out := make([]interface{}, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			if acc := n.normalizeAccommodation(m, currency); acc != nil {
				out = append(out, acc)
			}
		}
	}
	return out
}

func (n *Normalizer) placeholderActivity() map[string]interface{} {
	return map[string]interface{}{
		"name":    "自由活动",
		"type":    "休闲",
		"summary": "根据个人喜好自由安排",
	}
}

func dayTitle(dayNum int, destination string) string {
	if destination != "" {
		return fmt.Sprintf("第%d天 · %s", dayNum, destination)
	}
	return fmt.Sprintf("第%d天", dayNum)
}

// summarizeActivities derives a day summary from the first up-to-3 activity
// names.
func summarizeActivities(activities []interface{}) string {
	names := make([]string, 0, 3)
	for _, item := range activities {
		if m, ok := item.(map[string]interface{}); ok {
			if name := stringFromAny(m["name"]); name != "" {
				names = append(names, name)
			}
		}
		if len(names) == 3 {
			break
		}
	}
	return strings.Join(names, "、")
}
