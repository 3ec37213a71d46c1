package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "spaces and blanks", in: " a:1, ,b:2 ,", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("CSRF_ENABLED", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_BASE_URL", "https://shop.example.com/")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, cfg.CSRFEnabled)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "https://shop.example.com", cfg.BaseURL)
	require.Len(t, cfg.KafkaBrokers, 2)
	assert.Equal(t, "products", cfg.ESIndex)
}

func TestEnvBoolDefault(t *testing.T) {
	t.Setenv("FLAG_ON", "true")
	t.Setenv("FLAG_BAD", "maybe")

	assert.True(t, EnvBoolDefault("FLAG_ON", false))
	assert.True(t, EnvBoolDefault("FLAG_BAD", true))
	assert.False(t, EnvBoolDefault("FLAG_MISSING", false))
}

func TestRequire(t *testing.T) {
	t.Parallel()

	require.NoError(t, Require(map[string]string{"DATABASE_URL": "postgres://x"}))

	err := Require(map[string]string{"JWT_SECRET": " ", "DATABASE_URL": "", "SERVICE_NAME": "shop"})
	require.Error(t, err)
	assert.Equal(t, "missing required env DATABASE_URL, JWT_SECRET", err.Error())
}
