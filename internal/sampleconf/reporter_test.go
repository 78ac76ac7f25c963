package sampleconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReporterConfigParsesBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracing.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
reporter:
  logSpans: true
  zipkinEndpoint: "http://collector:9411/api/v2/spans"
`), 0o644))

	cfg := LoadReporterConfig(path, nil)
	assert.True(t, cfg.LogSpans)
	assert.Equal(t, "http://collector:9411/api/v2/spans", cfg.Endpoint())
}

func TestLoadReporterConfigMissingFileUsesDefaults(t *testing.T) {
	cfg := LoadReporterConfig(filepath.Join(t.TempDir(), "missing.yml"), nil)
	assert.False(t, cfg.LogSpans)
	assert.Contains(t, cfg.Endpoint(), "127.0.0.1:9411")
}

func TestReporterConfigEndpointPrefersJaegerAliasOverLocalAgent(t *testing.T) {
	cfg := ReporterConfig{JaegerEndpoint: "http://jaeger:9411/api/v2/spans", LocalAgentHostPort: "otherhost:9411"}
	assert.Equal(t, "http://jaeger:9411/api/v2/spans", cfg.Endpoint())
}

func TestReporterConfigEndpointFromLocalAgentHostPort(t *testing.T) {
	cfg := ReporterConfig{LocalAgentHostPort: "collector.internal:9999"}
	assert.Equal(t, "http://collector.internal:9999/api/v2/spans", cfg.Endpoint())
}
