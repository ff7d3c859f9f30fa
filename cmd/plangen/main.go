// cmd/plangen/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tripplanner/internal/common/config"
	"tripplanner/internal/common/database"
	"tripplanner/internal/common/logger"
	"tripplanner/internal/common/observability"
	"tripplanner/internal/planner/cache"
	"tripplanner/internal/planner/generate"
	"tripplanner/internal/planner/models"
	"tripplanner/internal/planner/normalize"
	"tripplanner/internal/planner/pipeline"
)

// retryWithBackoff retries an init step with exponential backoff. Used for
// the cache connection, which may come up after the process does.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	requestPath := flag.String("request", "-", "path to the trip request JSON, or - for stdin")
	rawOutput := flag.Bool("raw", false, "print the full generation result instead of just the plan")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Optional plan cache ---
	var planCache *cache.PlanCache
	if cfg.Cache.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Cache.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("plan cache unavailable, continuing without it", zap.Error(err))
		} else {
			defer rdb.Close()
			planCache = cache.New(rdb, time.Duration(cfg.Cache.TTLSeconds)*time.Second, log)
			zapLog.Info("Plan cache connected")
		}
	}

	// --- Metrics endpoint ---
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		zapLog.Info("Metrics endpoint listening", zap.String("address", cfg.Metrics.Address))
	}

	client, err := generate.NewClient(generate.Config{
		BaseURL:     cfg.Provider.BaseURL,
		APIKey:      cfg.Provider.APIKey,
		Model:       cfg.Provider.Model,
		Temperature: cfg.Generation.Temperature,
		MaxRetries:  cfg.Generation.MaxRetries,
		BackoffUnit: time.Duration(cfg.Generation.BackoffUnitMs) * time.Millisecond,
		Timeout:     time.Duration(cfg.Provider.Timeout) * time.Millisecond,
	}, log)
	if err != nil {
		zapLog.Fatal("generation client init failed", zap.Error(err))
	}

	normalizer := normalize.New(cfg.Normalizer.EnableFallbacks, cfg.Normalizer.DefaultCurrency)
	service := pipeline.New(client, normalizer, planCache, obs, log)

	req, err := readRequest(*requestPath)
	if err != nil {
		zapLog.Fatal("could not read trip request", zap.Error(err))
	}

	result, err := service.GeneratePlan(ctx, req)
	if err != nil {
		zapLog.Fatal("plan generation failed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if *rawOutput {
		err = enc.Encode(result)
	} else {
		err = enc.Encode(result.Plan)
	}
	if err != nil {
		zapLog.Fatal("could not encode plan", zap.Error(err))
	}
}

func readRequest(path string) (models.TripRequestContext, error) {
	var req models.TripRequestContext

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, err
	}

	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("trip request is not valid JSON: %w", err)
	}
	return req, nil
}
