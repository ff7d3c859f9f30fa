// Package generate owns the provider transport and the bounded retry loop
// of the structured-generation pipeline.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "tripplanner/internal/common/errors"
	"tripplanner/internal/common/httpclient"
	"tripplanner/internal/common/logger"
	"tripplanner/internal/planner/models"
	"tripplanner/internal/planner/schema"
)

const generatePath = "/api/v1/services/aigc/text-generation/generation"

// Client sends message lists to the LLM endpoint and turns the response into
// a schema-valid JSON payload, retrying classified failures up to a bound.
type Client struct {
	cfg    Config
	httpc  *httpclient.Client
	logger logger.Logger
}

// NewClient builds a generation client. A missing API key is a config-kind
// error raised here, before any network activity can happen.
func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigError("generation provider API key is not configured", "set provider.api_key or PROVIDER_API_KEY")
	}
	if cfg.BaseURL == "" {
		return nil, apperrors.NewConfigError("generation provider base URL is not configured", "set provider.base_url")
	}
	cfg.applyDefaults()
	return &Client{
		cfg:    cfg,
		httpc:  httpclient.NewClient(cfg.Timeout),
		logger: log.With(map[string]interface{}{"component": "generate"}),
	}, nil
}

// GenerateStructuredJSON runs the retry loop: send messages plus schema,
// extract the model's JSON text from the provider envelope, parse it,
// normalize it through opts.PreValidate when set, and validate it against s.
// Any classified failure is retried with a linear backoff of
// attempt*BackoffUnit until the attempt budget is spent; the last classified
// error is then returned with its kind, attempt and details intact.
// Cancellation through ctx is terminal: no new attempt starts once the
// context is done.
func (c *Client) GenerateStructuredJSON(ctx context.Context, messages []models.PromptMessage, s *schema.Schema, opts Options) (*RawResult, error) {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = c.cfg.MaxRetries
	}
	temperature := c.cfg.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	body, err := json.Marshal(map[string]interface{}{
		"model": c.cfg.Model,
		"input": map[string]interface{}{
			"messages": messages,
		},
		"parameters": map[string]interface{}{
			"temperature":   temperature,
			"result_format": "json",
		},
		"response_format": map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   s.Name,
				"schema": s.Definition,
			},
		},
	})
	if err != nil {
		return nil, apperrors.NewUnexpectedError("failed to encode provider request", 0, err)
	}

	var lastErr *apperrors.GenerationError
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, genErr := c.attempt(ctx, body, s, opts.PreValidate, attempt)
		if genErr == nil {
			result.Attempts = attempt
			c.logger.Info("generation succeeded", map[string]interface{}{
				"attempt": attempt,
			})
			return result, nil
		}
		lastErr = genErr
		c.logger.Warn("generation attempt failed", map[string]interface{}{
			"attempt": attempt,
			"kind":    string(genErr.Kind),
			"error":   genErr.Message,
		})

		if ctx.Err() != nil {
			return nil, apperrors.NewNetworkError("generation cancelled", attempt, ctx.Err())
		}
		if attempt == maxRetries {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * c.cfg.BackoffUnit):
		case <-ctx.Done():
			return nil, apperrors.NewNetworkError("generation cancelled", attempt, ctx.Err())
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, body []byte, s *schema.Schema, preValidate func(map[string]interface{}) map[string]interface{}, attempt int) (*RawResult, *apperrors.GenerationError) {
	status, respBody, err := c.httpc.PostJSON(ctx, c.cfg.BaseURL+generatePath, c.cfg.APIKey, body)
	if err != nil {
		return nil, apperrors.NewNetworkError("provider request failed", attempt, err)
	}
	if status < 200 || status >= 300 {
		genErr := apperrors.NewNetworkError(fmt.Sprintf("provider returned status %d", status), attempt, nil)
		genErr.Details = string(respBody)
		return nil, genErr
	}

	var envelope providerEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, apperrors.NewUnexpectedError("provider envelope is not valid JSON", attempt, err)
	}

	text := envelope.extractText()
	if text == "" {
		return nil, apperrors.NewValidationError("provider envelope carried no output text", "", attempt)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, apperrors.NewValidationError("model output is not valid JSON", err.Error(), attempt)
	}

	if preValidate != nil {
		payload = preValidate(payload)
	}

	res := schema.Validate(s, payload)
	if !res.Valid {
		return nil, apperrors.NewValidationError("model output failed schema validation", res.ErrorString(), attempt)
	}

	return &RawResult{
		Payload: res.Payload,
		Raw:     json.RawMessage(respBody),
		Usage:   envelope.usage(),
	}, nil
}
