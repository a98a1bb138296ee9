package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/resumeflow/resumeflow-backend/pkg/config"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var textOnly bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse one resume file and print the structured record",
		Long: `Parse runs the same pipeline as the HTTP service on a local file.
With --text-only it stops after text extraction and prints the text.
On failure it prints the error kind and message and exits with status 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return parseFile(cmd.Context(), cmd.OutOrStdout(), args[0], textOnly)
		},
	}

	cmd.Flags().BoolVar(&textOnly, "text-only", false, "print the extracted text and skip the model")
	return cmd
}

func parseFile(ctx context.Context, out io.Writer, path string, textOnly bool) error {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Logs go to stderr so stdout carries only the result
	log := logger.NewWithWriter(os.Stderr, serviceName, cfg.Server.Environment)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc := domain.Document{FileName: filepath.Base(path), Content: bytes.NewReader(data)}

	if textOnly {
		text, _, err := newTextController(cfg, log).ExtractText(ctx, doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, text)
		return err
	}

	if cfg.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY or RESUME_GEMINI_API_KEY must be set")
	}

	controller, err := newController(ctx, cfg, log)
	if err != nil {
		return err
	}

	run, err := controller.Run(ctx, doc)
	if err != nil {
		return err
	}
	for _, w := range run.Warnings {
		log.Warn().Str("warning", w).Msg("record does not match the resume schema")
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(run.Record)
}
