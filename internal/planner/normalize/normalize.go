// Package normalize is the best-effort repair pass applied to whatever JSON
// the model returns. It coerces type variants, resolves alternate field
// names, derives missing aggregates, and — only when fallbacks are enabled —
// synthesizes placeholder content so a caller always receives a minimally
// well-formed object. It never rejects anything: validity enforcement
// belongs to the schema validator, not here.
//
// Every transform is idempotent: normalizing already-normalized output is a
// no-op.
package normalize

import (
	"fmt"

	"tripplanner/internal/planner/prompt"
)

// Context carries request facts the normalizer may fall back to. It is
// derived from the original trip request, never from model output.
type Context struct {
	Title       string
	Destination string
	StartDate   string
	EndDate     string
	Budget      float64
	TravelStyle string
}

// Normalizer holds the fallback toggle. With fallbacks disabled (the
// default) it never invents titles, destinations, placeholder days or
// placeholder activities; defects are left in place for the validator to
// surface.
type Normalizer struct {
	fallbacks       bool
	defaultCurrency string
}

// New builds a Normalizer. defaultCurrency is used when a money value has
// no currency of its own; empty means CNY.
func New(enableFallbacks bool, defaultCurrency string) *Normalizer {
	if defaultCurrency == "" {
		defaultCurrency = "CNY"
	}
	return &Normalizer{fallbacks: enableFallbacks, defaultCurrency: defaultCurrency}
}

// Normalize returns a repaired copy of payload. The input is never mutated
// and the output contains only contract fields.
func (n *Normalizer) Normalize(payload map[string]interface{}, fb Context) map[string]interface{} {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	out := map[string]interface{}{}

	overview := n.resolveOverview(payload, fb)
	if overview != nil {
		out["overview"] = overview
	}

	budget := n.resolveBudget(payload, fb)
	if budget != nil {
		out["budget"] = budget
	}

	currency := n.defaultCurrency
	if budget != nil {
		if c := stringFromAny(budget["currency"]); c != "" {
			currency = c
		}
	}

	days, found := n.resolveDays(payload, fb, currency)
	if found {
		out["days"] = days
	}

	if raw, exists := payload["suggestions"]; exists {
		out["suggestions"] = stringListPreserveNil(raw)
	}

	return out
}

// resolveOverview merges an existing overview object with top-level alias
// fields and derives the aggregate fields. Returns nil when no summary can
// be derived at all, leaving the overview absent.
func (n *Normalizer) resolveOverview(payload map[string]interface{}, fb Context) map[string]interface{} {
	raw, _ := payload["overview"].(map[string]interface{})

	title := firstString(raw, "title")
	if title == "" {
		title = firstString(payload, "title", "tripTitle", "name")
	}
	destination := firstString(raw, "destination")
	if destination == "" {
		destination = firstString(payload, "destination", "city", "region", "country")
	}

	startDate := normalizeDate(firstString(raw, "startDate", "start_date", "start"))
	endDate := normalizeDate(firstString(raw, "endDate", "end_date", "end"))
	if startDate == "" || endDate == "" {
		s, e := dateAliases(payload)
		if startDate == "" {
			startDate = s
		}
		if endDate == "" {
			endDate = e
		}
	}

	totalDays, haveDays := firstInt(raw, "totalDays", "duration")
	if !haveDays {
		totalDays, haveDays = firstInt(payload, "totalDays", "duration")
	}

	style := firstString(raw, "travelStyle", "style")
	if style == "" {
		style = firstString(payload, "travelStyle", "style")
	}
	if style == "" {
		if prefs, ok := payload["preferences"].(map[string]interface{}); ok {
			style = firstString(prefs, "travelStyle", "style")
		}
	}

	summary := firstString(raw, "summary", "description")
	if summary == "" {
		summary = firstString(payload, "summary", "description")
	}

	if n.fallbacks {
		if destination == "" {
			destination = fb.Destination
		}
		if startDate == "" {
			startDate = normalizeDate(fb.StartDate)
		}
		if endDate == "" {
			endDate = normalizeDate(fb.EndDate)
		}
		if title == "" {
			title = fb.Title
		}
		if title == "" && destination != "" {
			title = destination + "之旅"
		}
		if title == "" {
			title = "行程计划"
		}
		if style == "" {
			style = fb.TravelStyle
		}
	}

	if !haveDays && startDate != "" && endDate != "" {
		totalDays = prompt.TripDays(startDate, endDate)
		haveDays = true
	}

	if summary == "" && destination != "" && startDate != "" && endDate != "" {
		summary = fmt.Sprintf("%s %d日行程（%s 至 %s）", destination, totalDays, startDate, endDate)
	}
	if summary == "" && n.fallbacks {
		if destination != "" {
			summary = destination + "行程概览"
		} else {
			summary = "行程概览"
		}
	}
	if summary == "" {
		return nil
	}

	overview := map[string]interface{}{"summary": summary}
	if title != "" {
		overview["title"] = title
	}
	if destination != "" {
		overview["destination"] = destination
	}
	if startDate != "" {
		overview["startDate"] = startDate
	}
	if endDate != "" {
		overview["endDate"] = endDate
	}
	if haveDays && totalDays >= 1 {
		overview["totalDays"] = totalDays
	}
	if style != "" {
		overview["travelStyle"] = style
	}
	return overview
}

// dateAliases resolves start/end dates from flat aliases or a nested dates
// object.
func dateAliases(payload map[string]interface{}) (string, string) {
	start := firstString(payload, "startDate", "start_date", "start", "from")
	end := firstString(payload, "endDate", "end_date", "end", "to")
	if dates, ok := payload["dates"].(map[string]interface{}); ok {
		if start == "" {
			start = firstString(dates, "start", "startDate", "from")
		}
		if end == "" {
			end = firstString(dates, "end", "endDate", "to")
		}
	}
	return normalizeDate(start), normalizeDate(end)
}
