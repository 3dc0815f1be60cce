package observability

import (
	"strings"

	"github.com/smallbiznis/skyfare/internal/config"
)

const defaultServiceName = "skyfare"

// Config is the observability view of the service configuration.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel    string
	LogFormat   string
	LogSampling bool

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
	MetricsExport        bool
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	t := cfg.Telemetry
	ratio := t.OTelSampleRatio
	if ratio < 0 || ratio > 1 {
		ratio = 0.1
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             normalizeLevel(t.LogLevel),
		LogFormat:            strings.ToLower(strings.TrimSpace(t.LogFormat)),
		LogSampling:          t.LogSampling,
		OtelEnabled:          t.OTelEnabled,
		OtelExporterEndpoint: strings.TrimSpace(cfg.OTLPEndpoint),
		OtelExporterProtocol: normalizeProtocol(t.OTelProtocol),
		OtelSamplingRatio:    ratio,
		MetricsExport:        t.OTelEnabled && t.MetricsEnabled,
	}
}

// Debug turns on development logging and verbose error fields.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return "info"
	}
	return level
}

func normalizeProtocol(protocol string) string {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		return "http"
	default:
		return "grpc"
	}
}
