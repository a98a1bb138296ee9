// Package prompt builds the structured-extraction request sent to the model.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Label that introduces the raw text at the end of every prompt
const ResumeTextLabel = "RESUME TEXT:"

const instructions = `You are a resume parser.

Extract the following details from the resume text below and return the data in the following strict JSON format:

%s

When extracting websites, identify the type (e.g., LinkedIn, GitHub, Portfolio, Personal) and provide the full URL. If multiple websites are found, include them all as separate objects in the websites array.
For skills, extract all technical, soft, and domain-specific skills from the resume and present them as a comma-separated string.

Only return the JSON. Do not use Markdown, bullet points, or extra text. Do not explain anything.

`

// Request is a prompt ready to send with the generation options it needs
type Request struct {
	Prompt   string
	Template *Template
	JSONMode bool
}

// Builder renders prompts. The zero value is ready to use.
type Builder struct{}

// NewBuilder creates a prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the instruction prompt for text extracted from fileName.
// The text appears escaped in data.plain_text and verbatim after the RESUME TEXT label.
func (b *Builder) Build(text, fileName string) (*Request, error) {
	tmpl := NewTemplate(fileName, text)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(tmpl); err != nil {
		return nil, fmt.Errorf("encode prompt template: %w", err)
	}

	var sb strings.Builder
	sb.Grow(len(instructions) + buf.Len() + len(ResumeTextLabel) + len(text) + 2)
	fmt.Fprintf(&sb, instructions, strings.TrimRight(buf.String(), "\n"))
	sb.WriteString(ResumeTextLabel)
	sb.WriteString("\n")
	sb.WriteString(text)

	return &Request{
		Prompt:   sb.String(),
		Template: tmpl,
		JSONMode: true,
	}, nil
}
