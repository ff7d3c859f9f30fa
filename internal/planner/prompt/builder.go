// Package prompt builds the role-tagged message list sent to the generation
// provider. Building is pure: the same request context always produces the
// same messages, and bad input degrades instead of failing.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"tripplanner/internal/planner/models"
)

const systemInstructions = `You are a professional travel planner with deep knowledge of destinations, local transport, dining and seasonal pricing.
Respond in the same language as the trip request.
Base all cost estimates on realistic current prices for the destination.
When information is missing from the request, state your assumptions explicitly inside the plan summaries instead of asking questions.`

// Build produces exactly two messages: the fixed system instructions and the
// concrete user request. Secrets and infrastructure details never belong in
// message content.
func Build(ctx models.TripRequestContext) []models.PromptMessage {
	return []models.PromptMessage{
		{Role: models.RoleSystem, Content: systemInstructions},
		{Role: models.RoleUser, Content: buildUserMessage(ctx)},
	}
}

func buildUserMessage(ctx models.TripRequestContext) string {
	days := TripDays(ctx.StartDate, ctx.EndDate)

	var b strings.Builder
	b.WriteString("Plan the following trip:\n")
	fmt.Fprintf(&b, "- Title: %s\n", orUnspecified(ctx.Title))
	fmt.Fprintf(&b, "- Destination: %s\n", orUnspecified(ctx.Destination))
	fmt.Fprintf(&b, "- Dates: %s to %s (%d days)\n", orUnspecified(ctx.StartDate), orUnspecified(ctx.EndDate), days)
	if ctx.Budget != nil {
		fmt.Fprintf(&b, "- Total budget: %.2f\n", *ctx.Budget)
	}
	fmt.Fprintf(&b, "- Travelers: %s\n", summarizeTravelers(ctx.Travelers))
	fmt.Fprintf(&b, "- Preferences: %s\n", summarizeTags(ctx.Tags))
	if ctx.TravelStyle != "" {
		fmt.Fprintf(&b, "- Travel style: %s\n", ctx.TravelStyle)
	}
	if ctx.Notes != "" {
		fmt.Fprintf(&b, "- Additional notes: %s\n", ctx.Notes)
	}

	b.WriteString("\nOutput requirements:\n")
	fmt.Fprintf(&b, "- Produce a day-by-day itinerary covering all %d days.\n", days)
	b.WriteString("- Use exactly the field names of the provided JSON schema; do not add fields.\n")
	b.WriteString("- Dates must be formatted YYYY-MM-DD and times HH:MM (24-hour).\n")
	b.WriteString("- Every day must contain at least 3 activities.\n")
	b.WriteString("- Activity locations must be concrete, navigable places (full venue or street address), never just the city name.\n")
	b.WriteString("- The budget breakdown must cover at least accommodation, dining, transportation and activities.\n")
	b.WriteString("- Output pure JSON only, with no surrounding prose, markdown or code fences.\n")

	return b.String()
}

// TripDays returns the inclusive day span between two ISO dates. Prompt
// construction must never fail on bad but present input, so unparseable
// dates fall back to a single day.
func TripDays(startDate, endDate string) int {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 1
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return 1
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func summarizeTravelers(travelers []models.Traveler) string {
	if len(travelers) == 0 {
		return "2 adults, unspecified"
	}
	parts := make([]string, 0, len(travelers))
	for _, t := range travelers {
		desc := t.Role
		if desc == "" {
			desc = "traveler"
		}
		if t.Name != "" {
			desc = fmt.Sprintf("%s (%s)", t.Name, desc)
		}
		if t.Age != nil {
			desc = fmt.Sprintf("%s, age %d", desc, *t.Age)
		}
		parts = append(parts, desc)
	}
	return strings.Join(parts, "; ")
}

func summarizeTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return "no tags provided"
	}
	return strings.Join(cleaned, ", ")
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return s
}
