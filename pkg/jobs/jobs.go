// Package jobs tracks asynchronous extraction jobs in memory.
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mbelalia/facture-engine/internal/domain/invoice"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is a snapshot of one extraction job.
type Job struct {
	ID        string            `json:"id"`
	Status    Status            `json:"status"`
	Progress  int               `json:"progress"`
	Products  []invoice.Product `json:"products,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store keeps jobs in memory. Completed and failed jobs are kept until the
// reaper removes entries older than the TTL.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	ttl  time.Duration
	now  func() time.Time
}

// NewStore creates a store whose entries expire after ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		jobs: make(map[string]*Job),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Create registers a new pending job and returns its ID.
func (s *Store) Create() string {
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = &Job{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id
}

// Get returns a copy of the job, if it exists.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// SetProgress marks the job processing at the given percentage.
func (s *Store) SetProgress(id string, progress int) error {
	return s.update(id, func(j *Job) {
		j.Status = StatusProcessing
		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}
		j.Progress = progress
	})
}

// Complete stores the job's products and marks it completed.
func (s *Store) Complete(id string, products []invoice.Product) error {
	return s.update(id, func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = 100
		j.Products = products
	})
}

// Fail records the error message and marks the job failed.
func (s *Store) Fail(id string, message string) error {
	return s.update(id, func(j *Job) {
		j.Status = StatusFailed
		j.Error = message
	})
}

func (s *Store) update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	fn(j)
	j.UpdatedAt = s.now()
	return nil
}

// Reap removes terminal jobs older than the TTL and returns how many were
// dropped. In-flight jobs are never reaped.
func (s *Store) Reap() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, j := range s.jobs {
		if j.Status != StatusCompleted && j.Status != StatusFailed {
			continue
		}
		if j.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// Len reports how many jobs are currently tracked.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
