// Package events publishes resume.parsed and resume.failed after each run.
package events

import (
	"context"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/resumeflow/resumeflow-backend/internal/resume/pipeline"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
	"github.com/resumeflow/resumeflow-backend/pkg/messaging"
)

// Publisher turns finished runs into messaging events.
// A nil messaging publisher disables publishing.
type Publisher struct {
	pub messaging.EventPublisher
	log *logger.Logger
}

// NewPublisher creates an event publisher
func NewPublisher(pub messaging.EventPublisher, log *logger.Logger) *Publisher {
	return &Publisher{pub: pub, log: log.WithComponent("events")}
}

// RunFinished publishes the outcome of run. Publishing errors are logged, never returned.
func (p *Publisher) RunFinished(ctx context.Context, run *pipeline.Run, jobID string) {
	if p == nil || p.pub == nil || run == nil {
		return
	}

	eventType, payload := Payload(run, jobID)
	if err := p.pub.Publish(ctx, eventType, payload); err != nil {
		p.log.WithError(err).Warn().
			Str("event_type", eventType).
			Str("file_name", run.FileName).
			Msg("failed to publish resume event")
	}
}

// Payload builds the event type and body for run
func Payload(run *pipeline.Run, jobID string) (string, any) {
	if run.Stage == domain.StageFailed && run.Err != nil {
		return messaging.EventResumeFailed, messaging.ResumeFailedEvent{
			JobID:      jobID,
			FileName:   run.FileName,
			Strategy:   string(run.Strategy),
			ErrorKind:  string(run.Err.Kind),
			Message:    run.Err.Error(),
			Stage:      string(run.FailedAt()),
			DurationMS: run.Duration().Milliseconds(),
		}
	}
	return messaging.EventResumeParsed, messaging.ResumeParsedEvent{
		JobID:      jobID,
		FileName:   run.FileName,
		Strategy:   string(run.Strategy),
		TextLength: run.TextLength,
		Warnings:   len(run.Warnings),
		DurationMS: run.Duration().Milliseconds(),
	}
}
