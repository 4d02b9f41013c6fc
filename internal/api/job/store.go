// internal/api/job/store.go
package job

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/taengine/internal/core"
)

// Status represents job status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Failure is the JSON form of a job error.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Job represents an async job.
type Job struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    Status    `json:"status"`
	Result    any       `json:"result,omitempty"`
	Error     *Failure  `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Done reports whether the job reached a final status.
func (j *Job) Done() bool {
	return j.Status == StatusComplete || j.Status == StatusFailed
}

// Store keeps a bounded set of jobs in memory. Jobs older than the TTL and
// the oldest jobs beyond maxSize are evicted.
type Store struct {
	jobs    map[string]*Job
	order   []string // Track insertion order for eviction
	maxSize int
	ttl     time.Duration
	mu      sync.RWMutex
	now     func() time.Time
}

// NewStore creates a new job store.
func NewStore(maxSize int, ttl time.Duration) *Store {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Store{
		jobs:    make(map[string]*Job),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create creates a new pending job and returns a copy of it.
func (s *Store) Create(jobType string) Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)

	job := &Job{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Type:      jobType,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Evict oldest if at capacity
	for len(s.jobs) >= s.maxSize && len(s.order) > 0 {
		delete(s.jobs, s.order[0])
		s.order = s.order[1:]
	}

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)

	return *job
}

// Get retrieves a job by ID.
func (s *Store) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok || s.expired(job, s.now()) {
		return Job{}, core.ErrJobNotFound
	}
	return *job, nil
}

// Start marks a job as running.
func (s *Store) Start(id string) error {
	return s.update(id, func(j *Job) { j.Status = StatusRunning })
}

// Finish records the outcome of a job. A nil err completes it with result.
func (s *Store) Finish(id string, result any, err error) error {
	return s.update(id, func(j *Job) {
		if err != nil {
			j.Status = StatusFailed
			j.Error = failureOf(err)
			return
		}
		j.Status = StatusComplete
		j.Result = result
	})
}

// List returns all live jobs, newest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	result := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if !s.expired(job, now) {
			result = append(result, *job)
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].ID > result[k].ID })
	return result
}

func (s *Store) update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return core.ErrJobNotFound
	}

	fn(job)
	job.UpdatedAt = s.now()
	return nil
}

func (s *Store) expired(j *Job, now time.Time) bool {
	return s.ttl > 0 && now.Sub(j.CreatedAt) > s.ttl
}

// evictExpired drops expired jobs from the front of the insertion order.
func (s *Store) evictExpired(now time.Time) {
	for len(s.order) > 0 {
		job, ok := s.jobs[s.order[0]]
		if ok && !s.expired(job, now) {
			return
		}
		delete(s.jobs, s.order[0])
		s.order = s.order[1:]
	}
}

func failureOf(err error) *Failure {
	var coded *core.Error
	if errors.As(err, &coded) {
		return &Failure{Code: coded.Code, Message: err.Error()}
	}
	return &Failure{Code: "INTERNAL", Message: err.Error()}
}
