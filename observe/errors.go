package observe

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("observe: invalid config")

var (
	ErrMissingServiceName     = fmt.Errorf("%w: service name is required", ErrInvalidConfig)
	ErrInvalidSamplePct       = fmt.Errorf("%w: sample percentage must be between 0.0 and 1.0", ErrInvalidConfig)
	ErrInvalidTracingExporter = fmt.Errorf("%w: unknown tracing exporter", ErrInvalidConfig)
	ErrInvalidMetricsExporter = fmt.Errorf("%w: unknown metrics exporter", ErrInvalidConfig)
	ErrInvalidLogLevel        = fmt.Errorf("%w: unknown log level", ErrInvalidConfig)
)

// ErrNilObserver is returned by MiddlewareFromObserver for a nil Observer.
var ErrNilObserver = errors.New("observe: observer is nil")

// Accepted names per subsystem. "" selects the default.
var (
	ValidTracingExporters = []string{"otlp", "stdout", "none", ""}
	ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}
	ValidLogLevels        = []string{"debug", "info", "warn", "error", ""}
)

// RedactedFields are log field keys whose values are never written.
// Provider credentials and storage keys flow through config and must stay
// out of logs.
var RedactedFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apiKey",
	"authorization",
	"signing_key",
	"obfuscation_key",
	"credential",
}
