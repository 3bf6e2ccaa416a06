package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/mowems/rbac-system/internal/jobs"
	"github.com/mowems/rbac-system/internal/permissions"
	"github.com/mowems/rbac-system/internal/roles"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// CacheWarmupJob re-primes the role and permission collection caches so the
// first request after an expiry does not pay the store round trip.
type CacheWarmupJob struct {
	Roles       *roles.Service
	Permissions *permissions.Service
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

// NewCacheWarmupJob wires dependencies for the warmup handler.
func NewCacheWarmupJob(rolesSvc *roles.Service, permsSvc *permissions.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheWarmupJob {
	return &CacheWarmupJob{Roles: rolesSvc, Permissions: permsSvc, Logger: logger, Metrics: metrics}
}

// Handle processes cache warmup tasks. Listing through the services populates
// the collection keys as a side effect.
func (j *CacheWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("cache warmup: handler not configured")
	}
	var payload CacheWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if !payload.Roles && !payload.Permissions {
		payload.Roles = true
		payload.Permissions = true
	}

	tracker := j.metrics().Track(TaskCacheWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting cache warmup")
	start := time.Now()

	warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if payload.Roles && j.Roles != nil {
		if _, err := j.Roles.List(warmCtx); err != nil {
			resultErr = err
			logger.Error("warm roles", slog.Any("error", err))
			return resultErr
		}
	}
	if payload.Permissions && j.Permissions != nil {
		if _, err := j.Permissions.List(warmCtx); err != nil {
			resultErr = err
			logger.Error("warm permissions", slog.Any("error", err))
			return resultErr
		}
	}

	logger.Info("completed cache warmup", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *CacheWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCacheWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCacheWarmup))
}

func (j *CacheWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
