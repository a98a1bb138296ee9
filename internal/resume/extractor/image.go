package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/resumeflow/resumeflow-backend/pkg/config"
)

// ErrNotAnImage is returned when the upload does not start with a JPEG or PNG signature
var ErrNotAnImage = errors.New("data is not a JPEG or PNG image")

// ImageExtractor runs tesseract OCR over JPEG and PNG uploads
type ImageExtractor struct {
	runner      Runner
	binary      string
	language    string
	tessdataDir string
	timeout     time.Duration
}

// NewImageExtractor creates an OCR extractor from the OCR configuration
func NewImageExtractor(cfg config.OCRConfig, runner Runner) *ImageExtractor {
	return &ImageExtractor{
		runner:      runner,
		binary:      cfg.TesseractPath,
		language:    cfg.Language,
		tessdataDir: cfg.TessdataDir,
		timeout:     cfg.Timeout,
	}
}

func (e *ImageExtractor) Strategy() domain.Strategy { return domain.StrategyImage }

// Extract returns tesseract's stdout verbatim
func (e *ImageExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if !isImageData(data) {
		return "", ErrNotAnImage
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := []string{"stdin", "stdout", "-l", e.language}
	if e.tessdataDir != "" {
		args = append(args, "--tessdata-dir", e.tessdataDir)
	}

	stdout, stderr, err := e.runner.Run(ctx, data, e.binary, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 512))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}

	return string(stdout), nil
}

// isImageData checks magic bytes for JPEG (FF D8 FF) or PNG (89 50 4E 47)
func isImageData(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47})
}
