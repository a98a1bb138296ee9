package extractor

import (
	"context"
	"errors"
	"io"

	"github.com/resumeflow/resumeflow-backend/internal/resume/classifier"
	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
)

// Dispatcher holds the registered extractors and routes documents to them
type Dispatcher struct {
	extractors map[domain.Strategy]Extractor
	log        *logger.Logger
}

// NewDispatcher creates a dispatcher. A later extractor for the same strategy replaces an earlier one.
func NewDispatcher(log *logger.Logger, extractors ...Extractor) *Dispatcher {
	m := make(map[domain.Strategy]Extractor, len(extractors))
	for _, e := range extractors {
		m[e.Strategy()] = e
	}
	return &Dispatcher{extractors: m, log: log.WithComponent("dispatcher")}
}

// Extract rewinds the document, classifies it and runs the matching extractor.
// Classification errors are UNSUPPORTED_FORMAT; everything after is EXTRACTION_FAILURE.
func (d *Dispatcher) Extract(ctx context.Context, doc domain.Document) (string, domain.Strategy, error) {
	strategy, err := classifier.Classify(doc.FileName)
	if err != nil {
		return "", "", err
	}

	if doc.Content == nil {
		return "", strategy, extractionError(strategy, errors.New("document has no content"))
	}
	if _, err := doc.Content.Seek(0, io.SeekStart); err != nil {
		return "", strategy, extractionError(strategy, err)
	}

	ext, ok := d.extractors[strategy]
	if !ok {
		return "", strategy, extractionError(strategy, errors.New("no extractor registered"))
	}

	text, err := ext.Extract(ctx, doc.Content)
	if err != nil {
		d.log.WithError(err).Warn().
			Str("file_name", doc.FileName).
			Str("strategy", string(strategy)).
			Msg("text extraction failed")
		return "", strategy, extractionError(strategy, err)
	}

	d.log.Debug().
		Str("file_name", doc.FileName).
		Str("strategy", string(strategy)).
		Int("text_length", len(text)).
		Msg("text extracted")

	return text, strategy, nil
}

func extractionError(s domain.Strategy, err error) *domain.PipelineError {
	return domain.Errorf(domain.ErrExtractionFailure, err, "Error extracting text from %s: %v", s.Label(), err)
}
