package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asMap(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	m, ok := v.(map[string]interface{})
	require.True(t, ok, "expected map, got %T", v)
	return m
}

func asList(t *testing.T, v interface{}) []interface{} {
	t.Helper()
	l, ok := v.([]interface{})
	require.True(t, ok, "expected list, got %T", v)
	return l
}

// sloppyPayload is a typical model answer: aliased keys, combined time
// ranges, a flat budget map and a newline-joined suggestion string.
func sloppyPayload() map[string]interface{} {
	return map[string]interface{}{
		"title":       "京都之行",
		"destination": "京都",
		"dates":       map[string]interface{}{"start": "2025/6/1", "end": "2025/6/2"},
		"itinerary": []interface{}{
			map[string]interface{}{
				"day": 1,
				"items": []interface{}{
					map[string]interface{}{
						"name": "清水寺",
						"type": "观光",
						"time": "9:00-11:30",
						"cost": "80",
					},
					map[string]interface{}{
						"title":       "祇园漫步",
						"category":    "文化",
						"description": "傍晚漫步花见小路",
					},
				},
			},
			map[string]interface{}{
				"activities": []interface{}{
					map[string]interface{}{"name": "岚山竹林", "type": "自然"},
				},
			},
		},
		"budget": map[string]interface{}{
			"total":         "3000",
			"accommodation": 1200,
			"dining":        800,
			"transport":     400,
			"souvenirs":     100,
		},
		"suggestions": "提前购买门票\n注意寺庙开放时间",
	}
}

func TestNormalize_ResolvesAliases(t *testing.T) {
	n := New(false, "")
	out := n.Normalize(sloppyPayload(), Context{})

	overview := asMap(t, out["overview"])
	assert.Equal(t, "京都之行", overview["title"])
	assert.Equal(t, "京都", overview["destination"])
	assert.Equal(t, "2025-06-01", overview["startDate"])
	assert.Equal(t, "2025-06-02", overview["endDate"])
	assert.Equal(t, 2, overview["totalDays"])

	days := asList(t, out["days"])
	require.Len(t, days, 2)

	day1 := asMap(t, days[0])
	assert.Equal(t, 1, day1["day"])
	activities := asList(t, day1["activities"])
	require.Len(t, activities, 2)

	temple := asMap(t, activities[0])
	assert.Equal(t, "清水寺", temple["name"])
	assert.Equal(t, "09:00", temple["startTime"])
	assert.Equal(t, "11:30", temple["endTime"])
	assert.NotContains(t, temple, "time")

	walk := asMap(t, activities[1])
	assert.Equal(t, "祇园漫步", walk["name"])
	assert.Equal(t, "文化", walk["type"])
	assert.Equal(t, "傍晚漫步花见小路", walk["summary"])

	day2 := asMap(t, days[1])
	assert.Equal(t, 2, day2["day"])

	suggestions := asList(t, out["suggestions"])
	assert.Equal(t, []interface{}{"提前购买门票", "注意寺庙开放时间"}, suggestions)
}

func TestNormalize_Idempotent(t *testing.T) {
	fb := Context{
		Destination: "京都",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-02",
		Budget:      3000,
	}

	for _, fallbacks := range []bool{false, true} {
		n := New(fallbacks, "")
		once := n.Normalize(sloppyPayload(), fb)
		twice := n.Normalize(once, fb)
		assert.Equal(t, once, twice, "fallbacks=%v", fallbacks)
	}
}

func TestNormalize_InputNotMutated(t *testing.T) {
	payload := sloppyPayload()
	New(true, "").Normalize(payload, Context{})

	assert.Contains(t, payload, "itinerary")
	assert.Equal(t, "3000", payload["budget"].(map[string]interface{})["total"])
}

func TestNormalize_NoFallbacksPreservesDefects(t *testing.T) {
	n := New(false, "")

	out := n.Normalize(map[string]interface{}{"days": []interface{}{}}, Context{
		Destination: "京都",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-03",
		Budget:      3000,
	})

	days, exists := out["days"]
	assert.True(t, exists)
	assert.Empty(t, days)
	assert.NotContains(t, out, "overview")
	assert.NotContains(t, out, "budget")
}

func TestNormalize_FallbacksSynthesize(t *testing.T) {
	n := New(true, "")

	out := n.Normalize(map[string]interface{}{}, Context{
		Destination: "京都",
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-03",
		Budget:      3000,
	})

	overview := asMap(t, out["overview"])
	assert.Equal(t, "京都之旅", overview["title"])
	assert.Equal(t, "京都", overview["destination"])
	assert.Equal(t, 3, overview["totalDays"])
	assert.NotEmpty(t, overview["summary"])

	days := asList(t, out["days"])
	require.Len(t, days, 3)
	day2 := asMap(t, days[1])
	assert.Equal(t, 2, day2["day"])
	assert.Equal(t, "2025-09-02", day2["date"])
	placeholder := asMap(t, asList(t, day2["activities"])[0])
	assert.Equal(t, "自由活动", placeholder["name"])

	budget := asMap(t, out["budget"])
	assert.Equal(t, "CNY", budget["currency"])
	assert.Equal(t, 3000.0, budget["total"])

	breakdown := asList(t, budget["breakdown"])
	require.Len(t, breakdown, 4)
	lodging := asMap(t, breakdown[0])
	assert.Equal(t, "住宿", lodging["category"])
	assert.Equal(t, 1200.0, lodging["amount"])
	assert.Equal(t, 40.0, lodging["percentage"])
}

func TestResolveBudget_FlatAliases(t *testing.T) {
	n := New(false, "")

	out := n.Normalize(map[string]interface{}{
		"budget": map[string]interface{}{
			"total":         1000,
			"accommodation": 400,
			"dining":        250,
			"souvenirs":     50,
		},
	}, Context{})

	budget := asMap(t, out["budget"])
	assert.Equal(t, 1000.0, budget["total"])
	assert.NotContains(t, budget, "currency")

	breakdown := asList(t, budget["breakdown"])
	require.Len(t, breakdown, 2)
	assert.Equal(t, map[string]interface{}{"category": "住宿", "amount": 400.0}, breakdown[0])
	assert.Equal(t, map[string]interface{}{"category": "餐饮", "amount": 250.0}, breakdown[1])
}

func TestResolveBudget_DuplicateAliasesSum(t *testing.T) {
	n := New(false, "")

	out := n.Normalize(map[string]interface{}{
		"budget": map[string]interface{}{
			"hotel":   300,
			"lodging": 200,
		},
	}, Context{})

	breakdown := asList(t, asMap(t, out["budget"])["breakdown"])
	require.Len(t, breakdown, 1)
	assert.Equal(t, map[string]interface{}{"category": "住宿", "amount": 500.0}, breakdown[0])
}

func TestNormalize_MoneyVariants(t *testing.T) {
	n := New(false, "USD")

	out := n.Normalize(map[string]interface{}{
		"days": []interface{}{
			map[string]interface{}{
				"day": 1,
				"activities": []interface{}{
					map[string]interface{}{"name": "Museum", "type": "culture", "price": "¥120"},
					map[string]interface{}{"name": "Boat tour", "type": "leisure", "budget": map[string]interface{}{"amount": 45, "currency": "EUR"}},
				},
			},
		},
	}, Context{})

	activities := asList(t, asMap(t, asList(t, out["days"])[0])["activities"])

	museum := asMap(t, activities[0])
	assert.Equal(t, map[string]interface{}{"currency": "USD", "amount": 120.0}, museum["budget"])

	boat := asMap(t, activities[1])
	assert.Equal(t, map[string]interface{}{"currency": "EUR", "amount": 45.0}, boat["budget"])
}

func TestNormalize_DateVariants(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already canonical", "2025-06-01", "2025-06-01"},
		{"slashes", "2025/6/1", "2025-06-01"},
		{"dots", "2025.06.01", "2025-06-01"},
		{"unpadded", "2025-6-1", "2025-06-01"},
		{"chinese", "2025年6月1日", "2025-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeDate(tt.input))
		})
	}

	assert.Equal(t, "", normalizeDate("  "))
	assert.Equal(t, "sometime in June", normalizeDate("sometime in June"))
}

func TestNormalize_ClockVariants(t *testing.T) {
	assert.Equal(t, "09:00", normalizeClock("9:00"))
	assert.Equal(t, "09:05", normalizeClock("9:5"))
	assert.Equal(t, "14:30", normalizeClock("14:30:00"))
	assert.Equal(t, "", normalizeClock("25:00"))
	assert.Equal(t, "", normalizeClock("noon"))
}

func TestSplitTimeRange(t *testing.T) {
	tests := []struct {
		input string
		start string
		end   string
	}{
		{"9:00-11:30", "09:00", "11:30"},
		{"09:00~18:00", "09:00", "18:00"},
		{"9:00至11:00", "09:00", "11:00"},
		{"14:00", "14:00", ""},
		{"all day", "", ""},
	}

	for _, tt := range tests {
		start, end := splitTimeRange(tt.input)
		assert.Equal(t, tt.start, start, "input %q", tt.input)
		assert.Equal(t, tt.end, end, "input %q", tt.input)
	}
}

func TestStringListPreserveNil(t *testing.T) {
	assert.Nil(t, stringListPreserveNil(nil))
	assert.Equal(t, []interface{}{"a", "b"}, stringListPreserveNil([]interface{}{" a ", "", "b"}))
	assert.Equal(t, []interface{}{"带伞", "早点出门"}, stringListPreserveNil("带伞、早点出门"))
	assert.Equal(t, []interface{}{"one tip"}, stringListPreserveNil("one tip"))
	assert.Equal(t, []interface{}{}, stringListPreserveNil(42))
}
