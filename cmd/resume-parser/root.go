package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/resumeflow/resumeflow-backend/internal/resume/extractor"
	"github.com/resumeflow/resumeflow-backend/internal/resume/llm"
	"github.com/resumeflow/resumeflow-backend/internal/resume/pipeline"
	"github.com/resumeflow/resumeflow-backend/internal/resume/prompt"
	"github.com/resumeflow/resumeflow-backend/pkg/config"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
	"github.com/spf13/cobra"
)

const serviceName = "resume-parser"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Extract structured resume data from PDF, DOCX, text and image uploads",
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newParseCmd(), newTokenCmd())
	return root
}

// newDispatcher wires one extractor per strategy
func newDispatcher(cfg *config.Config, log *logger.Logger) *extractor.Dispatcher {
	return extractor.NewDispatcher(log,
		extractor.NewPDFExtractor(),
		extractor.NewDOCXExtractor(),
		extractor.NewTextExtractor(),
		extractor.NewImageExtractor(cfg.OCR, extractor.NewExecRunner(log)),
	)
}

// newController builds the full pipeline backed by Gemini
func newController(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pipeline.Controller, error) {
	gen, err := llm.NewGeminiGenerator(ctx, cfg.Gemini, &http.Client{Timeout: cfg.Gemini.Timeout})
	if err != nil {
		return nil, err
	}
	log.Info().Str("model", gen.Model()).Msg("gemini client ready")

	return pipeline.New(newDispatcher(cfg, log), prompt.NewBuilder(), llm.NewClient(gen, log), log), nil
}

// newTextController builds a pipeline that only runs extraction
func newTextController(cfg *config.Config, log *logger.Logger) *pipeline.Controller {
	return pipeline.New(newDispatcher(cfg, log), nil, nil, log)
}
