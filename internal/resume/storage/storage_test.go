package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) *JobStore {
	t.Helper()
	s := NewJobStore(ttl)
	t.Cleanup(s.Close)
	return s
}

func TestJobStore_StoreAndGet(t *testing.T) {
	s := newStore(t, time.Hour)
	job := &domain.ParseJob{JobID: GenerateJobID(), Status: domain.JobPending, CreatedAt: time.Now()}
	s.StoreJob(job)

	got := s.GetJob(job.JobID)
	require.NotNil(t, got)
	assert.Equal(t, domain.JobPending, got.Status)

	assert.Nil(t, s.GetJob("missing"))
}

func TestJobStore_GetReturnsSnapshot(t *testing.T) {
	s := newStore(t, time.Hour)
	s.StoreJob(&domain.ParseJob{JobID: "j1", Status: domain.JobProcessing, Warnings: []string{"a"}, CreatedAt: time.Now()})

	snap := s.GetJob("j1")
	snap.Status = domain.JobFailed
	snap.Warnings[0] = "changed"

	again := s.GetJob("j1")
	assert.Equal(t, domain.JobProcessing, again.Status)
	assert.Equal(t, []string{"a"}, again.Warnings)
}

func TestJobStore_Update(t *testing.T) {
	s := newStore(t, time.Hour)
	s.StoreJob(&domain.ParseJob{JobID: "j1", Status: domain.JobProcessing, CreatedAt: time.Now()})

	ok := s.UpdateJob("j1", func(j *domain.ParseJob) { j.Status = domain.JobCompleted })
	assert.True(t, ok)
	assert.Equal(t, domain.JobCompleted, s.GetJob("j1").Status)

	assert.False(t, s.UpdateJob("missing", func(*domain.ParseJob) { t.Fatal("must not be called") }))
}

func TestJobStore_Delete(t *testing.T) {
	s := newStore(t, time.Hour)
	s.StoreJob(&domain.ParseJob{JobID: "j1", CreatedAt: time.Now()})
	s.DeleteJob("j1")
	assert.Nil(t, s.GetJob("j1"))
	assert.Equal(t, 0, s.Len())
}

func TestJobStore_Expiry(t *testing.T) {
	s := newStore(t, 10*time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.StoreJob(&domain.ParseJob{JobID: "old", CreatedAt: now.Add(-11 * time.Minute)})
	s.StoreJob(&domain.ParseJob{JobID: "fresh", CreatedAt: now.Add(-time.Minute)})

	assert.Nil(t, s.GetJob("old"), "expired jobs are hidden before the sweep")
	assert.NotNil(t, s.GetJob("fresh"))

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestJobStore_ConcurrentAccess(t *testing.T) {
	s := newStore(t, time.Hour)
	s.StoreJob(&domain.ParseJob{JobID: "j1", CreatedAt: time.Now()})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.UpdateJob("j1", func(j *domain.ParseJob) { j.Warnings = append(j.Warnings, "w") })
		}()
		go func() {
			defer wg.Done()
			_ = s.GetJob("j1")
		}()
	}
	wg.Wait()

	assert.Len(t, s.GetJob("j1").Warnings, 20)
}

func TestJobStore_CloseIsIdempotent(t *testing.T) {
	s := NewJobStore(time.Hour)
	s.Close()
	s.Close()
}

func TestGenerateJobID_Unique(t *testing.T) {
	assert.NotEqual(t, GenerateJobID(), GenerateJobID())
	assert.Len(t, GenerateJobID(), 36)
}

func TestZeroBytes(t *testing.T) {
	b := []byte("Jane Doe, jane@example.com")
	ZeroBytes(b)
	assert.Equal(t, make([]byte, len(b)), b)
}
