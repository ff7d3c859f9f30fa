package prompt

import (
	"testing"

	"tripplanner/internal/planner/models"

	"github.com/stretchr/testify/assert"
)

func TestBuild_MessageShape(t *testing.T) {
	budget := 8000.0
	req := models.TripRequestContext{
		Title:       "Kyoto culture trip",
		Destination: "Kyoto",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-05",
		Budget:      &budget,
		Tags:        []string{"temples", "food"},
		TravelStyle: "slow travel",
		Notes:       "vegetarian meals preferred",
	}

	messages := Build(req)

	assert.Len(t, messages, 2)
	assert.Equal(t, models.RoleSystem, messages[0].Role)
	assert.Equal(t, models.RoleUser, messages[1].Role)

	system := messages[0].Content
	assert.Contains(t, system, "same language as the trip request")
	assert.Contains(t, system, "realistic current prices")

	user := messages[1].Content
	assert.Contains(t, user, "Kyoto")
	assert.Contains(t, user, "2025-06-01 to 2025-06-05 (5 days)")
	assert.Contains(t, user, "8000.00")
	assert.Contains(t, user, "temples, food")
	assert.Contains(t, user, "slow travel")
	assert.Contains(t, user, "vegetarian meals preferred")
	assert.Contains(t, user, "covering all 5 days")
	assert.Contains(t, user, "pure JSON only")
}

func TestBuild_Deterministic(t *testing.T) {
	req := models.TripRequestContext{
		Destination: "Lisbon",
		StartDate:   "2025-03-10",
		EndDate:     "2025-03-12",
		Tags:        []string{"food", "history"},
	}

	assert.Equal(t, Build(req), Build(req))
}

func TestBuild_MissingFieldsDegrade(t *testing.T) {
	messages := Build(models.TripRequestContext{})
	user := messages[1].Content

	assert.Contains(t, user, "Destination: unspecified")
	assert.Contains(t, user, "2 adults, unspecified")
	assert.Contains(t, user, "no tags provided")
	assert.Contains(t, user, "(1 days)")
	assert.NotContains(t, user, "Total budget")
	assert.NotContains(t, user, "Travel style")
}

func TestBuild_TravelerSummaries(t *testing.T) {
	age := 8
	req := models.TripRequestContext{
		Destination: "Tokyo",
		Travelers: []models.Traveler{
			{Name: "Wei", Role: "adult"},
			{Role: "child", Age: &age},
		},
	}

	user := Build(req)[1].Content
	assert.Contains(t, user, "Wei (adult)")
	assert.Contains(t, user, "child, age 8")
}

func TestTripDays(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected int
	}{
		{"five day span", "2025-06-01", "2025-06-05", 5},
		{"single day", "2025-06-01", "2025-06-01", 1},
		{"reversed dates", "2025-06-05", "2025-06-01", 1},
		{"unparseable start", "June 1st", "2025-06-05", 1},
		{"unparseable end", "2025-06-01", "", 1},
		{"month boundary", "2025-01-30", "2025-02-02", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TripDays(tt.start, tt.end))
		})
	}
}
