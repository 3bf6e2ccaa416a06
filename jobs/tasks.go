package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCacheWarmup re-primes the role and permission collection caches.
	TaskCacheWarmup = "rbac:cache:warmup"
)

// CacheWarmupPayload controls which collections the warmup touches.
type CacheWarmupPayload struct {
	Roles       bool `json:"roles"`
	Permissions bool `json:"permissions"`
}

// NewCacheWarmupTask constructs an Asynq task.
func NewCacheWarmupTask(payload CacheWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCacheWarmup, data), nil
}
