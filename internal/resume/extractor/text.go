package extractor

import (
	"context"
	"fmt"
	"io"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextExtractor decodes UTF-8 text. Ill-formed bytes become U+FFFD.
type TextExtractor struct{}

// NewTextExtractor creates a plain text extractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Strategy() domain.Strategy { return domain.StrategyText }

// Extract only fails when r itself fails
func (e *TextExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	out, err := io.ReadAll(transform.NewReader(r, unicode.UTF8.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(out), nil
}
