package sampleconf

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const defaultLocalAgentHostPort = "127.0.0.1:9411"

// ReporterConfig is the reporter: block of the sampling config file. It
// is read once at facade construction time and is not hot-reloaded:
// the exporter endpoint is fixed for the life of the process.
type ReporterConfig struct {
	LogSpans           bool   `yaml:"logSpans"`
	ZipkinEndpoint     string `yaml:"zipkinEndpoint"`
	JaegerEndpoint     string `yaml:"jaegerEndpoint"`
	LocalAgentHostPort string `yaml:"localAgentHostPort"`
}

type yamlReporterConfig struct {
	Reporter ReporterConfig `yaml:"reporter"`
}

// LoadReporterConfig parses the reporter: block from path. A missing
// or malformed file yields the zero-value config (logSpans=false, no
// explicit endpoint), in which case Endpoint() falls back to a
// loopback collector address.
func LoadReporterConfig(path string, logger *zap.Logger) ReporterConfig {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("reporter config stat failed, using defaults", zap.String("path", path), zap.Error(err))
		return ReporterConfig{}
	}
	cfg := yamlReporterConfig{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Warn("reporter config parse failed, using defaults", zap.String("path", path), zap.Error(err))
		return ReporterConfig{}
	}
	return cfg.Reporter
}

// Endpoint resolves the HTTP collector URL spans should be reported to,
// preferring an explicit zipkinEndpoint, then jaegerEndpoint (accepted
// as an alias since many Jaeger collectors also speak the Zipkin v2
// HTTP API), then localAgentHostPort, falling back to a loopback
// default.
func (c ReporterConfig) Endpoint() string {
	if c.ZipkinEndpoint != "" {
		return c.ZipkinEndpoint
	}
	if c.JaegerEndpoint != "" {
		return c.JaegerEndpoint
	}
	hostPort := c.LocalAgentHostPort
	if hostPort == "" {
		hostPort = defaultLocalAgentHostPort
	}
	if !strings.Contains(hostPort, ":") {
		hostPort = fmt.Sprintf("%s:9411", hostPort)
	}
	return fmt.Sprintf("http://%s/api/v2/spans", hostPort)
}
