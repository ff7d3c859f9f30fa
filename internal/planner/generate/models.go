package generate

import (
	"encoding/json"

	"tripplanner/internal/planner/models"
)

// Options tunes a single generation call. Zero values fall back to the
// client configuration.
type Options struct {
	Temperature *float64
	MaxRetries  int

	// PreValidate, when set, runs over the parsed payload of every attempt
	// before schema validation. The pipeline plugs the normalizer in here as
	// a repair pass.
	PreValidate func(map[string]interface{}) map[string]interface{}
}

// RawResult is the outcome of a successful structured generation: the
// schema-valid payload, the untouched provider envelope, and attempt/usage
// accounting.
type RawResult struct {
	Payload  map[string]interface{}
	Raw      json.RawMessage
	Attempts int
	Usage    *models.Usage
}

// providerEnvelope tolerates the two known output shapes: a direct
// output.text, or a choices list with either output_text or a message
// content field.
type providerEnvelope struct {
	Output *struct {
		Text    string `json:"text"`
		Choices []struct {
			OutputText string `json:"output_text"`
			Message    struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	RequestID string `json:"request_id"`
}

// extractText pulls the model's JSON answer out of the envelope, checking
// output.text, then the first choice's output_text, then its message
// content. Empty string means no text was present.
func (e *providerEnvelope) extractText() string {
	if e.Output == nil {
		return ""
	}
	if e.Output.Text != "" {
		return e.Output.Text
	}
	if len(e.Output.Choices) > 0 {
		first := e.Output.Choices[0]
		if first.OutputText != "" {
			return first.OutputText
		}
		return first.Message.Content
	}
	return ""
}

func (e *providerEnvelope) usage() *models.Usage {
	if e.Usage == nil && e.RequestID == "" {
		return nil
	}
	u := &models.Usage{RequestID: e.RequestID}
	if e.Usage != nil {
		u.InputTokens = e.Usage.InputTokens
		u.OutputTokens = e.Usage.OutputTokens
	}
	return u
}
