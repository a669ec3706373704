package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
)

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(
		&config.AppConfig{Name: "quotekeeper", Environment: "test", Version: "1.2.3"},
		&config.TelemetryConfig{Enabled: true, Endpoint: "localhost:4317", ServiceName: "qk", SamplingRate: 0.5},
	)

	assert.Equal(t, &Config{
		Enabled:      true,
		Endpoint:     "localhost:4317",
		ServiceName:  "qk",
		Version:      "1.2.3",
		Environment:  "test",
		SamplingRate: 0.5,
	}, cfg)
}

func TestNew_DisabledIsNoop(t *testing.T) {
	provider, err := New(t.Context(), &Config{Enabled: false})

	require.NoError(t, err)
	assert.Nil(t, provider.tracerProvider)
	assert.NoError(t, provider.Shutdown(t.Context()))
}
