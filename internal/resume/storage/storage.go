package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
)

// JobStore provides in-memory storage for parse jobs.
// Uploaded bytes never land here; jobs expire after a TTL.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ParseJob
	ttl  time.Duration
	now  func() time.Time
	done chan struct{}
	once sync.Once
}

// NewJobStore creates a store and starts its cleanup loop. Call Close to stop it.
func NewJobStore(ttl time.Duration) *JobStore {
	s := &JobStore{
		jobs: make(map[string]*domain.ParseJob),
		ttl:  ttl,
		now:  time.Now,
		done: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// GenerateJobID creates a random job ID
func GenerateJobID() string {
	return uuid.NewString()
}

// StoreJob stores a parse job
func (s *JobStore) StoreJob(job *domain.ParseJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job
}

// GetJob returns a snapshot of the job, or nil when unknown or expired
func (s *JobStore) GetJob(jobID string) *domain.ParseJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok || s.expired(job) {
		return nil
	}
	cp := *job
	cp.Warnings = append([]string(nil), job.Warnings...)
	return &cp
}

// UpdateJob applies update to an existing job under the write lock
func (s *JobStore) UpdateJob(jobID string, update func(*domain.ParseJob)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if ok {
		update(job)
	}
	return ok
}

// DeleteJob removes a job from storage
func (s *JobStore) DeleteJob(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

// Len returns the number of stored jobs, expired ones included until the next sweep
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Close stops the cleanup loop
func (s *JobStore) Close() {
	s.once.Do(func() { close(s.done) })
}

// ZeroBytes overwrites a byte slice with zeros so resume content does not linger in memory
func ZeroBytes(b []byte) {
	clear(b)
}

func (s *JobStore) expired(job *domain.ParseJob) bool {
	return job.CreatedAt.Before(s.now().Add(-s.ttl))
}

// cleanupLoop periodically removes expired jobs
func (s *JobStore) cleanupLoop() {
	interval := s.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.done:
			return
		}
	}
}

// Sweep removes expired jobs and returns how many were dropped
func (s *JobStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, job := range s.jobs {
		if s.expired(job) {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}
