package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tripplanner/internal/common/database"
	apperrors "tripplanner/internal/common/errors"
	"tripplanner/internal/common/logger"
	"tripplanner/internal/planner/cache"
	"tripplanner/internal/planner/generate"
	"tripplanner/internal/planner/models"
	"tripplanner/internal/planner/normalize"
	"tripplanner/internal/planner/schema"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator mimics the provider client: it runs the PreValidate hook
// over a canned payload and validates the result, like the real retry loop
// does per attempt.
type fakeGenerator struct {
	payload map[string]interface{}
	err     error
	calls   int
}

func (f *fakeGenerator) GenerateStructuredJSON(ctx context.Context, messages []models.PromptMessage, s *schema.Schema, opts generate.Options) (*generate.RawResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	payload := f.payload
	if opts.PreValidate != nil {
		payload = opts.PreValidate(payload)
	}
	res := schema.Validate(s, payload)
	if !res.Valid {
		return nil, apperrors.NewValidationError("model output failed schema validation", res.ErrorString(), 1)
	}
	return &generate.RawResult{
		Payload:  res.Payload,
		Raw:      json.RawMessage(`{"request_id":"req-1"}`),
		Attempts: 1,
		Usage:    &models.Usage{InputTokens: 100, OutputTokens: 900, RequestID: "req-1"},
	}, nil
}

// sloppyPlanPayload is schema-invalid as-is (aliased keys, string numbers)
// but normalizable into a valid plan.
func sloppyPlanPayload() map[string]interface{} {
	return map[string]interface{}{
		"title":       "京都之行",
		"destination": "京都",
		"startDate":   "2025/6/1",
		"endDate":     "2025/6/2",
		"itinerary": []interface{}{
			map[string]interface{}{
				"day": 1,
				"activities": []interface{}{
					map[string]interface{}{"name": "清水寺", "type": "观光", "time": "9:00-11:30"},
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
			"currency":      "CNY",
			"accommodation": 1200,
			"dining":        800,
		},
	}
}

func testRequest() models.TripRequestContext {
	budget := 3000.0
	return models.TripRequestContext{
		Title:       "京都之行",
		Destination: "京都",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-02",
		Budget:      &budget,
	}
}

func newService(t *testing.T, gen Generator, planCache *cache.PlanCache) *Service {
	return New(gen, normalize.New(false, "CNY"), planCache, nil, logger.NewTestLogger(t))
}

func TestGeneratePlan_NormalizesSloppyOutput(t *testing.T) {
	gen := &fakeGenerator{payload: sloppyPlanPayload()}
	service := newService(t, gen, nil)

	result, err := service.GeneratePlan(context.Background(), testRequest())

	require.NoError(t, err)
	require.NotNil(t, result.Plan)
	assert.False(t, result.FromCache)
	assert.Equal(t, 1, result.Attempts)

	assert.Equal(t, "京都之行", result.Plan.Overview.Title)
	assert.Equal(t, "2025-06-01", result.Plan.Overview.StartDate)
	assert.Equal(t, 2, result.Plan.Overview.TotalDays)

	require.Len(t, result.Plan.Days, 2)
	assert.Equal(t, "09:00", result.Plan.Days[0].Activities[0].StartTime)
	assert.Equal(t, 2, result.Plan.Days[1].Day)
	assert.Equal(t, "2025-06-02", result.Plan.Days[1].Date)

	assert.Equal(t, 3000.0, result.Plan.Budget.Total)
	require.Len(t, result.Plan.Budget.Breakdown, 2)
	assert.Equal(t, "住宿", result.Plan.Budget.Breakdown[0].Category)

	require.NotNil(t, result.Usage)
	assert.Equal(t, "req-1", result.Usage.RequestID)
}

func TestGeneratePlan_ErrorPassthrough(t *testing.T) {
	gen := &fakeGenerator{err: apperrors.NewNetworkError("provider unreachable", 3, nil)}
	service := newService(t, gen, nil)

	_, err := service.GeneratePlan(context.Background(), testRequest())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(err))
}

func TestGeneratePlan_CacheHitSkipsProvider(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	planCache := cache.New(database.NewRedisFromClient(client), time.Minute, logger.NewTestLogger(t))

	gen := &fakeGenerator{payload: sloppyPlanPayload()}
	service := newService(t, gen, planCache)

	first, err := service.GeneratePlan(context.Background(), testRequest())
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, gen.calls)

	second, err := service.GeneratePlan(context.Background(), testRequest())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, first.Plan, second.Plan)
}

func TestGeneratePlan_DistinctRequestsMissCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	planCache := cache.New(database.NewRedisFromClient(client), time.Minute, logger.NewTestLogger(t))

	gen := &fakeGenerator{payload: sloppyPlanPayload()}
	service := newService(t, gen, planCache)

	_, err := service.GeneratePlan(context.Background(), testRequest())
	require.NoError(t, err)

	other := testRequest()
	other.EndDate = "2025-06-03"
	_, err = service.GeneratePlan(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
}
