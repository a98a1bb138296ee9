// Package llm wraps the generative model used for structured resume extraction.
package llm

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/resumeflow/resumeflow-backend/internal/resume/prompt"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
)

const (
	// ProbePrompt is sent before every generation to check the model is reachable
	ProbePrompt = "Test API connection. Please respond with 'API connection successful'."

	// ExcerptLimit bounds the payload excerpt kept on parse failures
	ExcerptLimit = 200
)

// Client runs the probe, generation and parse steps against a Generator.
// It performs exactly one attempt per step.
type Client struct {
	gen Generator
	log *logger.Logger
}

// NewClient creates a client around an injected generator
func NewClient(gen Generator, log *logger.Logger) *Client {
	return &Client{
		gen: gen,
		log: log.WithComponent("llm"),
	}
}

// Probe checks connectivity with a fixed prompt, JSON mode off
func (c *Client) Probe(ctx context.Context) error {
	reply, err := c.gen.Generate(ctx, ProbePrompt, false)
	if err != nil {
		return domain.Errorf(domain.ErrModelConnectivityFailure, err, "API connection test failed: %v", err)
	}
	c.log.Debug().Str("reply", reply).Msg("model probe succeeded")
	return nil
}

// Generate sends the built prompt and returns the raw payload
func (c *Client) Generate(ctx context.Context, req *prompt.Request) (string, error) {
	payload, err := c.gen.Generate(ctx, req.Prompt, req.JSONMode)
	if err != nil {
		return "", domain.Errorf(domain.ErrModelGenerationFailure, err, "Structured content generation failed: %v", err)
	}
	c.log.Debug().Int("payload_bytes", len(payload)).Msg("structured content generated")
	return payload, nil
}

// Parse decodes the payload into a generic JSON value
func (c *Client) Parse(payload string) (any, error) {
	var record any
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		excerpt := Excerpt(payload)
		c.log.Warn().Err(err).Str("excerpt", excerpt).Msg("model response is not JSON")
		pe := domain.Errorf(domain.ErrResponseParseFailure, err, "Failed to parse response as JSON: %v", err)
		pe.Excerpt = excerpt
		return nil, pe
	}
	return record, nil
}

// Excerpt returns at most ExcerptLimit bytes from the start of payload without splitting a rune
func Excerpt(payload string) string {
	if len(payload) <= ExcerptLimit {
		return payload
	}
	cut := ExcerptLimit
	for cut > 0 && !utf8.RuneStart(payload[cut]) {
		cut--
	}
	return payload[:cut]
}
