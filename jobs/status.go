package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"json2video/config"
	"json2video/types"
)

// State is the lifecycle position of a render job
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Status is what callers see when they poll a job
type Status struct {
	JobID     string       `json:"job_id"`
	State     State        `json:"state"`
	Result    types.Result `json:"result"`
	OutputURL string       `json:"output_url,omitempty"`
	VideoID   string       `json:"video_id,omitempty"`
	Skipped   []string     `json:"skipped,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// StatusStore persists job status between the worker and the API
type StatusStore interface {
	Save(ctx context.Context, s Status) error
	Get(ctx context.Context, jobID string) (Status, bool, error)
}

// MemoryStatusStore keeps statuses in process; used when Redis is not configured
type MemoryStatusStore struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{statuses: make(map[string]Status)}
}

func (m *MemoryStatusStore) Save(_ context.Context, s Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[s.JobID] = s
	return nil
}

func (m *MemoryStatusStore) Get(_ context.Context, jobID string) (Status, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.statuses[jobID]
	return s, ok, nil
}

// KV is the subset of the redis client the status store uses
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStatusStore shares job status across API and consumer processes
type RedisStatusStore struct {
	kv  KV
	ttl time.Duration
}

func NewRedisStatusStore(kv KV) *RedisStatusStore {
	return &RedisStatusStore{kv: kv, ttl: config.JobStatusTTL}
}

func statusKey(jobID string) string { return "json2video:job:" + jobID }

func (r *RedisStatusStore) Save(ctx context.Context, s Status) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	return r.kv.Set(ctx, statusKey(s.JobID), data, r.ttl).Err()
}

func (r *RedisStatusStore) Get(ctx context.Context, jobID string) (Status, bool, error) {
	data, err := r.kv.Get(ctx, statusKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Status{}, false, nil
	}
	if err != nil {
		return Status{}, false, err
	}
	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return Status{}, false, fmt.Errorf("corrupt status for job %s: %w", jobID, err)
	}
	return s, true, nil
}
