package config

import (
	"fmt"
	"sort"
	"strings"
)

// normalizer provides string-to-enum normalization with a fallback value.
type normalizer[T comparable] struct {
	values   map[string]T
	fallback T
	keys     []string
}

func newNormalizer[T comparable](values map[string]T, fallback T) *normalizer[T] {
	n := &normalizer[T]{values: make(map[string]T, len(values)), fallback: fallback}
	for k, v := range values {
		key := normalizeKey(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

func (n *normalizer[T]) normalize(raw string) T {
	if v, ok := n.values[normalizeKey(raw)]; ok {
		return v
	}
	return n.fallback
}

func (n *normalizer[T]) parse(raw string) (T, error) {
	if v, ok := n.values[normalizeKey(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.keys)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = newNormalizer(map[string]LogLevel{
	"debug": LogLevelDebug,
	"info":  LogLevelInfo,
	"warn":  LogLevelWarn,
	"error": LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.normalize(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = newNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.normalize(raw)
}

// DeclareSink enumerates the dependency declaration transports.
type DeclareSink string

const (
	DeclareNone   DeclareSink = "none"
	DeclareStdout DeclareSink = "stdout"
	DeclareJSON   DeclareSink = "json"
	DeclareNATS   DeclareSink = "nats"
)

var declareSinkNormalizer = newNormalizer(map[string]DeclareSink{
	"none":   DeclareNone,
	"stdout": DeclareStdout,
	"json":   DeclareJSON,
	"nats":   DeclareNATS,
}, DeclareStdout)

func NormalizeDeclareSink(raw string) DeclareSink {
	return declareSinkNormalizer.normalize(raw)
}

// ParseDeclareSink is the strict variant used for CLI flags.
func ParseDeclareSink(raw string) (DeclareSink, error) {
	return declareSinkNormalizer.parse(raw)
}
