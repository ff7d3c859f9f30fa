package normalize

// Canonical budget category labels of the plan contract.
const (
	categoryLodging    = "住宿"
	categoryDining     = "餐饮"
	categoryTransport  = "交通"
	categoryActivities = "活动"
	categoryShopping   = "购物"
	categoryOther      = "其他"
)

// categoryAliases maps loose English keys of a flat key→amount budget map to
// canonical category labels. Order matters: it fixes the output order of
// converted breakdown entries. Keys absent here (including known
// non-category keys like "currency" or "notes") are dropped.
var categoryAliases = []struct {
	key   string
	label string
}{
	{"accommodation", categoryLodging},
	{"lodging", categoryLodging},
	{"hotel", categoryLodging},
	{"hotels", categoryLodging},
	{"stay", categoryLodging},
	{"dining", categoryDining},
	{"food", categoryDining},
	{"meals", categoryDining},
	{"restaurants", categoryDining},
	{"transportation", categoryTransport},
	{"transport", categoryTransport},
	{"transit", categoryTransport},
	{"flights", categoryTransport},
	{"activities", categoryActivities},
	{"attractions", categoryActivities},
	{"entertainment", categoryActivities},
	{"sightseeing", categoryActivities},
	{"tickets", categoryActivities},
	{"shopping", categoryShopping},
	{"other", categoryOther},
	{"misc", categoryOther},
	{"miscellaneous", categoryOther},
}

// syntheticRatios is the fixed split used when only a total is known and
// fallbacks are enabled.
var syntheticRatios = []struct {
	label string
	ratio float64
}{
	{categoryLodging, 0.40},
	{categoryDining, 0.25},
	{categoryTransport, 0.20},
	{categoryActivities, 0.15},
}

// resolveBudget repairs the budget block: coerced total, aliased or
// converted breakdown, and — under fallbacks only — a default currency and
// a synthetic fixed-ratio breakdown. Returns nil when no budget information
// exists at all.
func (n *Normalizer) resolveBudget(payload map[string]interface{}, fb Context) map[string]interface{} {
	var raw map[string]interface{}
	for _, key := range []string{"budget", "costs", "cost"} {
		if m, ok := payload[key].(map[string]interface{}); ok {
			raw = m
			break
		}
	}

	if raw == nil {
		if n.fallbacks && fb.Budget > 0 {
			return map[string]interface{}{
				"currency":  n.defaultCurrency,
				"total":     fb.Budget,
				"breakdown": syntheticBreakdown(fb.Budget),
			}
		}
		return nil
	}

	out := map[string]interface{}{}

	total, haveTotal := firstNumber(raw, "total", "amount", "totalAmount", "totalCost", "estimatedTotal", "totalBudget")
	if haveTotal && total >= 0 {
		out["total"] = total
	}

	currency := firstString(raw, "currency")
	if currency == "" && n.fallbacks {
		currency = n.defaultCurrency
	}
	if currency != "" {
		out["currency"] = currency
	}

	breakdown := normalizeBreakdownList(raw)
	if len(breakdown) == 0 {
		breakdown = convertFlatBreakdown(raw)
	}
	if len(breakdown) == 0 && haveTotal && total > 0 && n.fallbacks {
		breakdown = syntheticBreakdown(total)
	}
	if len(breakdown) > 0 {
		out["breakdown"] = breakdown
	}

	if rawTips, exists := raw["tips"]; exists {
		out["tips"] = stringListPreserveNil(rawTips)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeBreakdownList validates an explicit breakdown array item by
// item. Items without a category or a usable amount are dropped.
func normalizeBreakdownList(raw map[string]interface{}) []interface{} {
	var list []interface{}
	for _, key := range []string{"breakdown", "items", "categories"} {
		if arr, ok := raw[key].([]interface{}); ok && len(arr) > 0 {
			list = arr
			break
		}
	}
	out := make([]interface{}, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		category := firstString(m, "category", "name")
		amount, okAmount := firstNumber(m, "amount", "cost", "value")
		if category == "" || !okAmount || amount < 0 {
			continue
		}
		entry := map[string]interface{}{"category": category, "amount": amount}
		if desc := firstString(m, "description"); desc != "" {
			entry["description"] = desc
		}
		if pct, okPct := firstNumber(m, "percentage"); okPct && pct >= 0 && pct <= 100 {
			entry["percentage"] = pct
		}
		out = append(out, entry)
	}
	return out
}

// convertFlatBreakdown turns a flat key→amount map (e.g. {"accommodation":
// 400, "dining": 250}) into list form via the alias table, summing
// duplicate aliases into one entry per canonical label.
func convertFlatBreakdown(raw map[string]interface{}) []interface{} {
	sums := map[string]float64{}
	order := []string{}
	for _, alias := range categoryAliases {
		amount, ok := firstNumber(raw, alias.key)
		if !ok || amount < 0 {
			continue
		}
		if _, seen := sums[alias.label]; !seen {
			order = append(order, alias.label)
		}
		sums[alias.label] += amount
	}
	out := make([]interface{}, 0, len(order))
	for _, label := range order {
		out = append(out, map[string]interface{}{"category": label, "amount": sums[label]})
	}
	return out
}

func syntheticBreakdown(total float64) []interface{} {
	out := make([]interface{}, 0, len(syntheticRatios))
	for _, r := range syntheticRatios {
		out = append(out, map[string]interface{}{
			"category":   r.label,
			"amount":     total * r.ratio,
			"percentage": r.ratio * 100,
		})
	}
	return out
}
