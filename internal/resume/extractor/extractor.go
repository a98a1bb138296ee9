// Package extractor turns uploaded documents into plain text.
package extractor

import (
	"context"
	"io"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
)

// Extractor defines the interface for document text extraction.
// Implementations must not retain r after returning.
type Extractor interface {
	// Extract reads the whole document from r and returns its text
	Extract(ctx context.Context, r io.Reader) (string, error)

	// Strategy returns the strategy this extractor serves
	Strategy() domain.Strategy
}
