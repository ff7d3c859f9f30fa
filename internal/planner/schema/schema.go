// Package schema declares the wire contract of a structured trip plan and
// validates payloads against it.
package schema

import "sync"

// Field patterns shared by the schema and the normalizer.
const (
	DatePattern = `^\d{4}-\d{2}-\d{2}$`
	TimePattern = `^(?:[01]\d|2[0-3]):[0-5]\d$`
)

// Schema pairs a name with a JSON-schema definition. Validator compilation
// is cached by *Schema identity, so a schema must be built once and shared
// by reference, never reconstructed per call.
type Schema struct {
	Name       string
	Definition map[string]interface{}
}

var (
	tripPlanOnce sync.Once
	tripPlan     *Schema
)

// TripPlanSchema returns the shared trip-plan schema. Every object level is
// closed: unknown keys are validation failures, not extension points.
func TripPlanSchema() *Schema {
	tripPlanOnce.Do(func() {
		tripPlan = &Schema{
			Name:       "structured_trip_plan",
			Definition: buildTripPlanDefinition(),
		}
	})
	return tripPlan
}

func buildTripPlanDefinition() map[string]interface{} {
	money := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []interface{}{"currency", "amount"},
		"properties": map[string]interface{}{
			"currency": map[string]interface{}{"type": "string", "minLength": 1},
			"amount":   map[string]interface{}{"type": "number", "minimum": 0},
		},
	}

	stringList := map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": "string"},
	}

	activity := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []interface{}{"name", "type"},
		"properties": map[string]interface{}{
			"name":      map[string]interface{}{"type": "string", "minLength": 1},
			"type":      map[string]interface{}{"type": "string", "minLength": 1},
			"summary":   map[string]interface{}{"type": "string"},
			"location":  map[string]interface{}{"type": "string"},
			"startTime": map[string]interface{}{"type": "string", "pattern": TimePattern},
			"endTime":   map[string]interface{}{"type": "string", "pattern": TimePattern},
			"tips":      stringList,
			"budget":    money,
		},
	}

	accommodation := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []interface{}{"name"},
		"properties": map[string]interface{}{
			"name":     map[string]interface{}{"type": "string", "minLength": 1},
			"address":  map[string]interface{}{"type": "string"},
			"checkIn":  map[string]interface{}{"type": "string"},
			"checkOut": map[string]interface{}{"type": "string"},
			"budget":   money,
		},
	}

	day := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []interface{}{"day", "date", "title", "summary", "activities"},
		"properties": map[string]interface{}{
			"day":     map[string]interface{}{"type": "integer", "minimum": 1},
			"date":    map[string]interface{}{"type": "string", "pattern": DatePattern},
			"title":   map[string]interface{}{"type": "string", "minLength": 1},
			"summary": map[string]interface{}{"type": "string"},
			"activities": map[string]interface{}{
				"type":     "array",
				"minItems": 1,
				"items":    activity,
			},
			"accommodations": map[string]interface{}{
				"type":  "array",
				"items": accommodation,
			},
			"meals": map[string]interface{}{
				"type":  "array",
				"items": activity,
			},
			"notes": stringList,
		},
	}

	overview := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []interface{}{"title", "destination", "startDate", "endDate", "totalDays", "summary"},
		"properties": map[string]interface{}{
			"title":       map[string]interface{}{"type": "string", "minLength": 1},
			"destination": map[string]interface{}{"type": "string", "minLength": 1},
			"startDate":   map[string]interface{}{"type": "string", "pattern": DatePattern},
			"endDate":     map[string]interface{}{"type": "string", "pattern": DatePattern},
			"totalDays":   map[string]interface{}{"type": "integer", "minimum": 1},
			"summary":     map[string]interface{}{"type": "string"},
			"travelStyle": map[string]interface{}{"type": "string"},
		},
	}

	budgetItem := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []interface{}{"category", "amount"},
		"properties": map[string]interface{}{
			"category":    map[string]interface{}{"type": "string", "minLength": 1},
			"amount":      map[string]interface{}{"type": "number", "minimum": 0},
			"description": map[string]interface{}{"type": "string"},
			"percentage":  map[string]interface{}{"type": "number", "minimum": 0, "maximum": 100},
		},
	}

	budget := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []interface{}{"currency", "total", "breakdown"},
		"properties": map[string]interface{}{
			"currency": map[string]interface{}{"type": "string", "minLength": 1},
			"total":    map[string]interface{}{"type": "number", "minimum": 0},
			"breakdown": map[string]interface{}{
				"type":     "array",
				"minItems": 1,
				"items":    budgetItem,
			},
			"tips": stringList,
		},
	}

	return map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []interface{}{"overview", "days", "budget"},
		"properties": map[string]interface{}{
			"overview": overview,
			"days": map[string]interface{}{
				"type":     "array",
				"minItems": 1,
				"items":    day,
			},
			"budget":      budget,
			"suggestions": stringList,
		},
	}
}
