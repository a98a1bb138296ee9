// Package pipeline drives one document through extraction, prompting and parsing.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/resumeflow/resumeflow-backend/internal/resume/classifier"
	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/resumeflow/resumeflow-backend/internal/resume/llm"
	"github.com/resumeflow/resumeflow-backend/internal/resume/prompt"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
)

// TextSource turns a document into text
type TextSource interface {
	Extract(ctx context.Context, doc domain.Document) (string, domain.Strategy, error)
}

// PromptBuilder renders the generation request for extracted text
type PromptBuilder interface {
	Build(text, fileName string) (*prompt.Request, error)
}

// Model performs the three model-facing steps
type Model interface {
	Probe(ctx context.Context) error
	Generate(ctx context.Context, req *prompt.Request) (string, error)
	Parse(payload string) (any, error)
}

// Transition records when a run entered a stage
type Transition struct {
	Stage domain.Stage `json:"stage"`
	At    time.Time    `json:"at"`
}

// Run is the outcome of one pipeline execution.
// Record is only set when Stage is done; Err only when Stage is failed.
type Run struct {
	FileName   string
	Strategy   domain.Strategy
	Stage      domain.Stage
	History    []Transition
	TextLength int
	Record     any
	Warnings   []string
	Err        *domain.PipelineError
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall time of the run
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailedAt returns the last stage reached before the failure
func (r *Run) FailedAt() domain.Stage {
	if r.Stage != domain.StageFailed || len(r.History) < 2 {
		return ""
	}
	return r.History[len(r.History)-2].Stage
}

func (r *Run) enter(stage domain.Stage) {
	r.Stage = stage
	r.History = append(r.History, Transition{Stage: stage, At: time.Now()})
}

// Controller sequences the stages. It holds no per-run state and is safe for concurrent use.
type Controller struct {
	source  TextSource
	builder PromptBuilder
	model   Model
	log     *logger.Logger
}

// New creates a controller from its collaborators
func New(source TextSource, builder PromptBuilder, model Model, log *logger.Logger) *Controller {
	return &Controller{
		source:  source,
		builder: builder,
		model:   model,
		log:     log.WithComponent("pipeline"),
	}
}

// Run executes received → classified → text_extracted → probe_ok → generation_ok → response_parsed → done.
// On failure the returned run is in the failed stage and the error is its single PipelineError.
func (c *Controller) Run(ctx context.Context, doc domain.Document) (*Run, error) {
	run, text, err := c.extract(ctx, doc)
	if err != nil {
		return run, err
	}

	if err := c.model.Probe(ctx); err != nil {
		return c.fail(run, err)
	}
	run.enter(domain.StageProbeOK)

	req, err := c.builder.Build(text, doc.FileName)
	if err != nil {
		return c.fail(run, domain.Errorf(domain.ErrModelGenerationFailure, err, "Structured content generation failed: %v", err))
	}

	payload, err := c.model.Generate(ctx, req)
	if err != nil {
		return c.fail(run, err)
	}
	run.enter(domain.StageGenerationOK)

	record, err := c.model.Parse(payload)
	if err != nil {
		return c.fail(run, err)
	}
	run.enter(domain.StageResponseParsed)

	run.Record = record
	run.Warnings = llm.CheckRecord(record)
	run.enter(domain.StageDone)
	run.FinishedAt = time.Now()

	c.log.Info().
		Str("file_name", run.FileName).
		Str("strategy", string(run.Strategy)).
		Int("text_length", run.TextLength).
		Int("warnings", len(run.Warnings)).
		Dur("duration", run.Duration()).
		Msg("resume parsed")

	return run, nil
}

// ExtractText runs only the stages up to text_extracted and returns the text
func (c *Controller) ExtractText(ctx context.Context, doc domain.Document) (string, *Run, error) {
	run, text, err := c.extract(ctx, doc)
	if err != nil {
		return "", run, err
	}
	run.FinishedAt = time.Now()
	return text, run, nil
}

func (c *Controller) extract(ctx context.Context, doc domain.Document) (*Run, string, error) {
	run := &Run{FileName: doc.FileName, StartedAt: time.Now()}
	run.enter(domain.StageReceived)

	strategy, err := classifier.Classify(doc.FileName)
	if err != nil {
		_, err = c.fail(run, err)
		return run, "", err
	}
	run.Strategy = strategy
	run.enter(domain.StageClassified)

	text, _, err := c.source.Extract(ctx, doc)
	if err != nil {
		_, err = c.fail(run, err)
		return run, "", err
	}
	run.TextLength = len(text)
	run.enter(domain.StageTextExtracted)

	return run, text, nil
}

// fail moves the run to the failed stage with exactly one PipelineError
func (c *Controller) fail(run *Run, err error) (*Run, error) {
	var pe *domain.PipelineError
	if !errors.As(err, &pe) {
		pe = domain.Errorf(kindFor(run.Stage), err, "%v", err)
	}

	run.Err = pe
	run.Record = nil
	run.enter(domain.StageFailed)
	run.FinishedAt = time.Now()

	c.log.WithError(pe).Error().
		Str("file_name", run.FileName).
		Str("kind", string(pe.Kind)).
		Str("stage", string(run.FailedAt())).
		Dur("duration", run.Duration()).
		Msg("resume parse failed")

	return run, pe
}

// kindFor maps the stage a failure happened after to its error kind
func kindFor(stage domain.Stage) domain.ErrorKind {
	switch stage {
	case domain.StageReceived:
		return domain.ErrUnsupportedFormat
	case domain.StageClassified:
		return domain.ErrExtractionFailure
	case domain.StageTextExtracted:
		return domain.ErrModelConnectivityFailure
	case domain.StageProbeOK:
		return domain.ErrModelGenerationFailure
	default:
		return domain.ErrResponseParseFailure
	}
}
