// Package pipeline wires the generation stages together: cache lookup,
// prompt construction, the retrying provider call with the normalizer as
// its repair pass, and decoding into the typed plan.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	apperrors "tripplanner/internal/common/errors"
	"tripplanner/internal/common/logger"
	"tripplanner/internal/common/metrics"
	"tripplanner/internal/common/observability"
	"tripplanner/internal/planner/cache"
	"tripplanner/internal/planner/generate"
	"tripplanner/internal/planner/models"
	"tripplanner/internal/planner/normalize"
	"tripplanner/internal/planner/prompt"
	"tripplanner/internal/planner/schema"

	"github.com/google/uuid"
)

// Generator is the provider-facing surface the pipeline depends on.
// *generate.Client satisfies it; tests substitute their own.
type Generator interface {
	GenerateStructuredJSON(ctx context.Context, messages []models.PromptMessage, s *schema.Schema, opts generate.Options) (*generate.RawResult, error)
}

// Service runs trip-plan generations end to end.
type Service struct {
	client     Generator
	normalizer *normalize.Normalizer
	planCache  *cache.PlanCache
	obs        *observability.Observability
	log        logger.Logger
}

// New builds a Service. planCache and obs may be nil; both are optional.
func New(client Generator, normalizer *normalize.Normalizer, planCache *cache.PlanCache, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		client:     client,
		normalizer: normalizer,
		planCache:  planCache,
		obs:        obs,
		log:        log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// GeneratePlan produces a structured plan for the request. Identical
// requests are served from the cache when one is configured; a fresh
// generation runs the full prompt/generate/normalize/validate loop and the
// resulting plan is cached for next time.
func (s *Service) GeneratePlan(ctx context.Context, req models.TripRequestContext) (*models.GenerationResult, error) {
	log := s.log.With(map[string]interface{}{
		"generation_id": uuid.NewString(),
		"destination":   req.Destination,
	})

	key := cache.Key(req)
	if s.planCache != nil {
		if plan, ok := s.planCache.Get(ctx, key); ok {
			log.Info("plan served from cache", nil)
			return &models.GenerationResult{Plan: plan, FromCache: true}, nil
		}
	}

	fb := normalize.Context{
		Title:       req.Title,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TravelStyle: req.TravelStyle,
	}
	if req.Budget != nil {
		fb.Budget = *req.Budget
	}

	messages := prompt.Build(req)
	opts := generate.Options{
		PreValidate: func(payload map[string]interface{}) map[string]interface{} {
			return s.normalizer.Normalize(payload, fb)
		},
	}

	start := time.Now()
	raw, err := s.client.GenerateStructuredJSON(ctx, messages, schema.TripPlanSchema(), opts)
	elapsed := time.Since(start)
	if err != nil {
		s.record(ctx, "failure", elapsed)
		metrics.GenerationFailures.WithLabelValues(string(apperrors.KindOf(err))).Inc()
		log.WithError(err).Error("plan generation failed", map[string]interface{}{
			"kind": string(apperrors.KindOf(err)),
		})
		return nil, err
	}

	plan, decodeErr := decodePlan(raw.Payload)
	if decodeErr != nil {
		s.record(ctx, "failure", elapsed)
		metrics.GenerationFailures.WithLabelValues(string(apperrors.KindUnexpected)).Inc()
		return nil, apperrors.NewUnexpectedError("validated payload does not decode into a plan", raw.Attempts, decodeErr)
	}

	s.record(ctx, "success", elapsed)
	metrics.GenerationAttempts.Observe(float64(raw.Attempts))
	fields := map[string]interface{}{"attempts": raw.Attempts, "duration_ms": elapsed.Milliseconds()}
	if raw.Usage != nil {
		fields["input_tokens"] = raw.Usage.InputTokens
		fields["output_tokens"] = raw.Usage.OutputTokens
		fields["request_id"] = raw.Usage.RequestID
	}
	log.Info("plan generated", fields)

	if s.planCache != nil {
		s.planCache.Put(ctx, key, plan)
	}

	return &models.GenerationResult{
		Plan:     plan,
		Raw:      raw.Raw,
		Attempts: raw.Attempts,
		Usage:    raw.Usage,
	}, nil
}

func (s *Service) record(ctx context.Context, status string, elapsed time.Duration) {
	metrics.GenerationsTotal.WithLabelValues(status).Inc()
	metrics.GenerationDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	if s.obs != nil {
		s.obs.RecordGeneration(ctx, status)
		s.obs.RecordGenerationDuration(ctx, elapsed, status)
	}
}

// decodePlan round-trips the schema-valid payload through JSON into the
// typed plan.
func decodePlan(payload map[string]interface{}) (*models.StructuredTripPlan, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var plan models.StructuredTripPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
