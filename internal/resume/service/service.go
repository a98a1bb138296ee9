package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/resumeflow/resumeflow-backend/internal/resume/events"
	"github.com/resumeflow/resumeflow-backend/internal/resume/pipeline"
	"github.com/resumeflow/resumeflow-backend/internal/resume/storage"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
	"github.com/resumeflow/resumeflow-backend/pkg/messaging"
)

// recordTimeout bounds the audit insert and event publish after a run
const recordTimeout = 10 * time.Second

// ErrAuditDisabled is returned by RecentAudit when no audit store is configured
var ErrAuditDisabled = errors.New("audit log is disabled")

// AuditStore persists run metadata
type AuditStore interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListRecent(ctx context.Context, errorKind string, limit int) ([]*domain.AuditEntry, error)
}

// Service orchestrates resume parsing: run pipeline → record outcome → wipe upload
type Service struct {
	controller *pipeline.Controller
	store      *storage.JobStore
	audit      AuditStore
	events     *events.Publisher
	jobTimeout time.Duration
	log        *logger.Logger

	wg sync.WaitGroup
}

// Option configures optional collaborators
type Option func(*Service)

// WithAudit enables the audit log
func WithAudit(a AuditStore) Option {
	return func(s *Service) { s.audit = a }
}

// WithEvents enables event publishing
func WithEvents(p *events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithJobTimeout bounds each background job
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) { s.jobTimeout = d }
}

// NewService creates a new parse service
func NewService(controller *pipeline.Controller, store *storage.JobStore, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		controller: controller,
		store:      store,
		jobTimeout: 2 * time.Minute,
		log:        log.WithComponent("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse runs the pipeline synchronously. data is zeroed before returning.
func (s *Service) Parse(ctx context.Context, fileName string, data []byte, requestedBy string) (*pipeline.Run, error) {
	defer storage.ZeroBytes(data)

	run, err := s.controller.Run(ctx, domain.Document{FileName: fileName, Content: bytes.NewReader(data)})
	s.recordOutcome(ctx, run, "", requestedBy)
	return run, err
}

// StartJob creates a job and processes the document asynchronously.
// Returns the job immediately so the caller can poll for results.
func (s *Service) StartJob(ctx context.Context, fileName string, data []byte, requestedBy string) *domain.ParseJob {
	jobID := storage.GenerateJobID()

	s.store.StoreJob(&domain.ParseJob{
		JobID:     jobID,
		Status:    domain.JobPending,
		FileName:  fileName,
		Stage:     domain.StageReceived,
		CreatedAt: time.Now(),
	})

	s.wg.Add(1)
	go s.processAsync(jobID, fileName, data, requestedBy, messaging.CorrelationID(ctx))

	return s.store.GetJob(jobID)
}

// processAsync runs the pipeline in a background goroutine
func (s *Service) processAsync(jobID, fileName string, data []byte, requestedBy, correlationID string) {
	defer s.wg.Done()
	defer storage.ZeroBytes(data)

	// Detached so the request cancellation doesn't kill processing
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()
	if correlationID != "" {
		ctx = messaging.WithCorrelationID(ctx, correlationID)
	}

	log := s.log.WithJobID(jobID)
	s.store.UpdateJob(jobID, func(j *domain.ParseJob) { j.Status = domain.JobProcessing })
	log.Info().Str("file_name", fileName).Msg("parse job started")

	run, err := s.controller.Run(ctx, domain.Document{FileName: fileName, Content: bytes.NewReader(data)})
	finished := time.Now()

	s.store.UpdateJob(jobID, func(j *domain.ParseJob) {
		j.CompletedAt = &finished
		if run != nil {
			j.Stage = run.Stage
			j.Warnings = run.Warnings
		}
		if err != nil {
			j.Status = domain.JobFailed
			j.Error = jobError(err)
			return
		}
		j.Status = domain.JobCompleted
		j.Result = run.Record
	})

	if err != nil {
		log.Error().Err(err).Msg("parse job failed")
	} else {
		log.Info().Int("warnings", len(run.Warnings)).Msg("parse job completed")
	}

	s.recordOutcome(ctx, run, jobID, requestedBy)
}

// GetJob retrieves a job by ID
func (s *Service) GetJob(jobID string) *domain.ParseJob {
	return s.store.GetJob(jobID)
}

// RecentAudit lists recent audit entries
func (s *Service) RecentAudit(ctx context.Context, errorKind string, limit int) ([]*domain.AuditEntry, error) {
	if s.audit == nil {
		return nil, ErrAuditDisabled
	}
	return s.audit.ListRecent(ctx, errorKind, limit)
}

// Wait blocks until background jobs finish or ctx is done
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recordOutcome writes the audit row and publishes the run event.
// It outlives the run's context so timed out or abandoned runs are still recorded.
func (s *Service) recordOutcome(ctx context.Context, run *pipeline.Run, jobID, requestedBy string) {
	if run == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	s.events.RunFinished(ctx, run, jobID)

	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, AuditEntry(run, jobID, requestedBy)); err != nil {
		s.log.Error().Err(err).Str("file_name", run.FileName).Msg("failed to write resume parse audit log")
	}
}

// AuditEntry converts a finished run into its audit row
func AuditEntry(run *pipeline.Run, jobID, requestedBy string) *domain.AuditEntry {
	entry := &domain.AuditEntry{
		JobID:       optional(jobID),
		FileName:    run.FileName,
		Strategy:    optional(string(run.Strategy)),
		FinalStage:  string(run.Stage),
		TextLength:  run.TextLength,
		Warnings:    len(run.Warnings),
		DurationMS:  run.Duration().Milliseconds(),
		RequestedBy: optional(requestedBy),
	}
	if run.Err != nil {
		entry.ErrorKind = optional(string(run.Err.Kind))
		entry.ErrorMessage = optional(run.Err.Error())
	}
	return entry
}

func jobError(err error) *domain.JobError {
	var pe *domain.PipelineError
	if errors.As(err, &pe) {
		return &domain.JobError{Kind: pe.Kind, Message: pe.Error()}
	}
	return &domain.JobError{Message: err.Error()}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
