package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/resumeflow/resumeflow-backend/internal/resume/llm"
	"github.com/resumeflow/resumeflow-backend/internal/resume/prompt"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	prompt   string
	jsonMode bool
}

type fakeGenerator struct {
	replies []string
	errs    []error
	calls   []call
}

func (f *fakeGenerator) Generate(ctx context.Context, p string, jsonMode bool) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, call{prompt: p, jsonMode: jsonMode})
	var reply string
	var err error
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return reply, err
}

func TestClient_Probe(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"API connection successful"}}
	client := llm.NewClient(gen, logger.Nop())

	require.NoError(t, client.Probe(context.Background()))
	require.Len(t, gen.calls, 1)
	assert.Equal(t, llm.ProbePrompt, gen.calls[0].prompt)
	assert.False(t, gen.calls[0].jsonMode)
}

func TestClient_ProbeFailure(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("dial tcp: connection refused")}}
	client := llm.NewClient(gen, logger.Nop())

	err := client.Probe(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConnectivity)
	assert.Equal(t, "API connection test failed: dial tcp: connection refused", err.Error())
}

func TestClient_Generate(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`{"data":{}}`}}
	client := llm.NewClient(gen, logger.Nop())
	req := &prompt.Request{Prompt: "build me", JSONMode: true}

	payload, err := client.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"data":{}}`, payload)
	assert.Equal(t, []call{{prompt: "build me", jsonMode: true}}, gen.calls)
}

func TestClient_GenerateFailure(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("quota exceeded")}}
	client := llm.NewClient(gen, logger.Nop())

	_, err := client.Generate(context.Background(), &prompt.Request{Prompt: "x", JSONMode: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, "Structured content generation failed: quota exceeded", err.Error())
	assert.Len(t, gen.calls, 1)
}

func TestClient_Parse(t *testing.T) {
	client := llm.NewClient(&fakeGenerator{}, logger.Nop())

	record, err := client.Parse(`{"data":{"full_name":"Jane Doe"},"skills":["Go"]}`)
	require.NoError(t, err)

	m := record.(map[string]any)
	assert.Equal(t, "Jane Doe", m["data"].(map[string]any)["full_name"])
	assert.Equal(t, []any{"Go"}, m["skills"])
}

func TestClient_ParseAcceptsAnyJSONValue(t *testing.T) {
	client := llm.NewClient(&fakeGenerator{}, logger.Nop())

	record, err := client.Parse(`[1, "two"]`)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), "two"}, record)
}

func TestClient_ParseFailure(t *testing.T) {
	client := llm.NewClient(&fakeGenerator{}, logger.Nop())
	payload := "Sure! Here is the JSON you asked for: " + strings.Repeat("x", 400)

	record, err := client.Parse(payload)
	require.Error(t, err)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, domain.ErrResponse)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to parse response as JSON: "))

	var pe *domain.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Len(t, pe.Excerpt, llm.ExcerptLimit)
	assert.True(t, strings.HasPrefix(payload, pe.Excerpt))
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"short", "not json"},
		{"exact", strings.Repeat("a", llm.ExcerptLimit)},
		{"long ascii", strings.Repeat("b", 1000)},
		{"multibyte on boundary", strings.Repeat("a", llm.ExcerptLimit-1) + "€€€"},
		{"all multibyte", strings.Repeat("東", 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := llm.Excerpt(tt.payload)
			assert.True(t, strings.HasPrefix(tt.payload, got))
			assert.LessOrEqual(t, len(got), llm.ExcerptLimit)
			assert.True(t, utf8.ValidString(got))
			if len(tt.payload) <= llm.ExcerptLimit {
				assert.Equal(t, tt.payload, got)
			}
		})
	}
}
