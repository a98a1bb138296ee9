package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	nullableString = map[string]any{"type": []any{"string", "null"}}
	websiteList    = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"Type": nullableString,
				"Url":  nullableString,
			},
		},
	}
)

// recordSchema describes the record the prompt asks for. It is advisory only.
var recordSchema = map[string]any{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"type":     "object",
	"required": []any{"data"},
	"properties": map[string]any{
		"data": map[string]any{
			"type":     "object",
			"required": []any{"full_name", "email_id"},
			"properties": map[string]any{
				"file_name":       nullableString,
				"first_name":      nullableString,
				"last_name":       nullableString,
				"full_name":       nullableString,
				"email_id":        nullableString,
				"phone_number":    nullableString,
				"websites":        websiteList,
				"address":         map[string]any{"type": "array"},
				"employment_data": map[string]any{"type": "array"},
			},
		},
		"skills":   map[string]any{"type": []any{"array", "string"}},
		"websites": websiteList,
	},
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(recordSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("resume.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("resume.json")
})

// CheckRecord validates a parsed record and returns one warning per violation, sorted.
// A nil result means the record matches.
func CheckRecord(record any) []string {
	schema, err := compileSchema()
	if err != nil {
		return []string{"schema unavailable: " + err.Error()}
	}

	err = schema.Validate(record)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}

	var warnings []string
	collect(ve, &warnings)
	sort.Strings(warnings)
	return warnings
}

func collect(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, c := range ve.Causes {
		collect(c, out)
	}
}
