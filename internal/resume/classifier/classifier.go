// Package classifier maps upload filenames to extraction strategies.
package classifier

import (
	"path/filepath"
	"strings"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
)

type entry struct {
	ext      string
	strategy domain.Strategy
}

// Order is significant: it is the order shown to clients in rejection messages.
var table = []entry{
	{".pdf", domain.StrategyPDF},
	{".docx", domain.StrategyDOCX},
	{".doc", domain.StrategyDOCX},
	{".txt", domain.StrategyText},
	{".jpg", domain.StrategyImage},
	{".jpeg", domain.StrategyImage},
	{".png", domain.StrategyImage},
}

// Extension returns the lower-cased suffix of name starting at the last dot.
// Leading-dot names without another dot have no extension.
func Extension(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return strings.ToLower(ext)
}

// Classify returns the strategy for filename or an UNSUPPORTED_FORMAT error naming its extension
func Classify(filename string) (domain.Strategy, error) {
	ext := Extension(filename)
	for _, e := range table {
		if e.ext == ext {
			return e.strategy, nil
		}
	}
	return "", domain.Errorf(domain.ErrUnsupportedFormat, nil, "Unsupported file format: %s", ext)
}

// IsSupported reports whether filename has an accepted extension
func IsSupported(filename string) bool {
	_, err := Classify(filename)
	return err == nil
}

// SupportedExtensions lists accepted extensions
func SupportedExtensions() []string {
	out := make([]string, len(table))
	for i, e := range table {
		out[i] = e.ext
	}
	return out
}
