package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_GET_ENV_VAR", "test_value")

	assert.Equal(t, "test_value", GetEnv("TEST_GET_ENV_VAR", "default"))
	assert.Equal(t, "default_value", GetEnv("NON_EXISTING_VAR_FOR_RESUME_TESTS", "default_value"))
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		envValue string
		want     string
	}{
		{"development", "development"},
		{"DEVELOPMENT", "development"},
		{"staging", "staging"},
		{"Production", "production"},
		{"", "development"},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv("RESUME_SERVER_ENVIRONMENT", tt.envValue)
			assert.Equal(t, tt.want, GetEnvironment())
		})
	}
}

func TestIsProductionLike(t *testing.T) {
	t.Setenv("RESUME_SERVER_ENVIRONMENT", "production")
	assert.True(t, IsProductionLike())

	t.Setenv("RESUME_SERVER_ENVIRONMENT", "staging")
	assert.True(t, IsProductionLike())

	t.Setenv("RESUME_SERVER_ENVIRONMENT", "development")
	assert.False(t, IsProductionLike())
}
