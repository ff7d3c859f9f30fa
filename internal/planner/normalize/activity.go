package normalize

import "strings"

// timeRangeSeparators split a combined "09:00-11:30" style field into a
// start/end pair. Both ASCII and CJK range markers occur in model output.
var timeRangeSeparators = []string{"-", "~", "～", "至", "到"}

var activityCostKeys = []string{"cost", "price", "estimatedCost", "estimated_cost", "amount", "fee"}

// normalizeActivity repairs one activity or meal entry. Entries without a
// usable name are dropped entirely: a nameless activity carries no
// information worth keeping.
func (n *Normalizer) normalizeActivity(raw map[string]interface{}, currency string) map[string]interface{} {
	name := firstString(raw, "name", "title", "activity")
	if name == "" {
		return nil
	}
	out := map[string]interface{}{"name": name}

	typ := firstString(raw, "type", "category")
	if typ == "" && n.fallbacks {
		typ = "观光"
	}
	if typ != "" {
		out["type"] = typ
	}

	if summary := firstString(raw, "summary", "description"); summary != "" {
		out["summary"] = summary
	}
	if location := firstString(raw, "location", "address", "place"); location != "" {
		out["location"] = location
	}

	start := normalizeClock(firstString(raw, "startTime", "start_time", "start"))
	end := normalizeClock(firstString(raw, "endTime", "end_time", "end"))
	if start == "" && end == "" {
		start, end = splitTimeRange(firstString(raw, "time", "timeRange", "time_range", "duration"))
	}
	if start != "" {
		out["startTime"] = start
	}
	if end != "" {
		out["endTime"] = end
	}

	if rawTips, exists := raw["tips"]; exists {
		out["tips"] = stringListPreserveNil(rawTips)
	}

	if budget := n.normalizeMoney(raw, currency); budget != nil {
		out["budget"] = budget
	}

	return out
}

func (n *Normalizer) normalizeAccommodation(raw map[string]interface{}, currency string) map[string]interface{} {
	name := firstString(raw, "name", "hotel", "title")
	if name == "" {
		return nil
	}
	out := map[string]interface{}{"name": name}

	if address := firstString(raw, "address", "location"); address != "" {
		out["address"] = address
	}
	if checkIn := firstString(raw, "checkIn", "check_in", "checkin"); checkIn != "" {
		out["checkIn"] = checkIn
	}
	if checkOut := firstString(raw, "checkOut", "check_out", "checkout"); checkOut != "" {
		out["checkOut"] = checkOut
	}
	if budget := n.normalizeMoney(raw, currency); budget != nil {
		out["budget"] = budget
	}
	return out
}

// normalizeMoney derives a {currency, amount} object either from a nested
// budget map or from loose numeric cost fields, defaulting the currency to
// the plan's currency.
func (n *Normalizer) normalizeMoney(raw map[string]interface{}, currency string) map[string]interface{} {
	if nested, ok := raw["budget"].(map[string]interface{}); ok {
		amount, okAmount := firstNumber(nested, "amount", "total", "cost")
		if okAmount && amount >= 0 {
			cur := firstString(nested, "currency")
			if cur == "" {
				cur = currency
			}
			return map[string]interface{}{"currency": cur, "amount": amount}
		}
		return nil
	}

	amount, ok := firstNumber(raw, activityCostKeys...)
	if !ok {
		// A bare numeric budget field counts as a loose cost too.
		amount, ok = firstNumber(raw, "budget")
	}
	if !ok || amount < 0 {
		return nil
	}
	return map[string]interface{}{"currency": currency, "amount": amount}
}

// splitTimeRange splits a combined range like "09:00-11:30" or "9:00 至
// 11:00" into a validated pair. Either side may come back empty.
func splitTimeRange(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	for _, sep := range timeRangeSeparators {
		if idx := strings.Index(s, sep); idx > 0 {
			return normalizeClock(s[:idx]), normalizeClock(s[idx+len(sep):])
		}
	}
	return normalizeClock(s), ""
}
