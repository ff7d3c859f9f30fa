// Package models holds the request and plan types shared by every stage of
// the trip-plan generation pipeline.
package models

import "encoding/json"

// Message roles accepted by the generation provider.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// TripRequestContext carries everything the caller knows about the requested
// trip. It is immutable for the duration of one generation call and has no
// persisted identity.
type TripRequestContext struct {
	Title       string     `json:"title"`
	Destination string     `json:"destination"`
	StartDate   string     `json:"startDate"` // YYYY-MM-DD
	EndDate     string     `json:"endDate"`   // YYYY-MM-DD
	Budget      *float64   `json:"budget,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Travelers   []Traveler `json:"travelers,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	TravelStyle string     `json:"travelStyle,omitempty"`
}

// Traveler describes one member of the travel party.
type Traveler struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	Age  *int   `json:"age,omitempty"`
}

// PromptMessage is one role-tagged message sent to the provider.
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StructuredTripPlan is the schema-conformant itinerary produced by the
// pipeline. Field names mirror the wire contract exactly.
type StructuredTripPlan struct {
	Overview    Overview    `json:"overview"`
	Days        []DailyPlan `json:"days"`
	Budget      Budget      `json:"budget"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

type Overview struct {
	Title       string `json:"title"`
	Destination string `json:"destination"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	TotalDays   int    `json:"totalDays"`
	Summary     string `json:"summary"`
	TravelStyle string `json:"travelStyle,omitempty"`
}

type DailyPlan struct {
	Day            int             `json:"day"`
	Date           string          `json:"date"`
	Title          string          `json:"title"`
	Summary        string          `json:"summary"`
	Activities     []Activity      `json:"activities"`
	Accommodations []Accommodation `json:"accommodations,omitempty"`
	Meals          []Activity      `json:"meals,omitempty"`
	Notes          []string        `json:"notes,omitempty"`
}

type Activity struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Summary   string   `json:"summary,omitempty"`
	Location  string   `json:"location,omitempty"`
	StartTime string   `json:"startTime,omitempty"` // HH:MM, 24h
	EndTime   string   `json:"endTime,omitempty"`   // HH:MM, 24h
	Tips      []string `json:"tips,omitempty"`
	Budget    *Money   `json:"budget,omitempty"`
}

type Accommodation struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	Budget   *Money `json:"budget,omitempty"`
}

type Money struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

type Budget struct {
	Currency  string       `json:"currency"`
	Total     float64      `json:"total"`
	Breakdown []BudgetItem `json:"breakdown"`
	Tips      []string     `json:"tips,omitempty"`
}

type BudgetItem struct {
	Category    string   `json:"category"`
	Amount      float64  `json:"amount"`
	Description string   `json:"description,omitempty"`
	Percentage  *float64 `json:"percentage,omitempty"`
}

// Usage carries the provider's token and request accounting when present.
type Usage struct {
	InputTokens  int    `json:"inputTokens,omitempty"`
	OutputTokens int    `json:"outputTokens,omitempty"`
	RequestID    string `json:"requestId,omitempty"`
}

// GenerationResult is what a successful generation call returns. Raw is the
// unmodified provider envelope, kept for diagnostics only.
type GenerationResult struct {
	Plan      *StructuredTripPlan `json:"plan"`
	Raw       json.RawMessage     `json:"raw,omitempty"`
	Attempts  int                 `json:"attempts"`
	Usage     *Usage              `json:"usage,omitempty"`
	FromCache bool                `json:"fromCache,omitempty"`
}
