package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyDocument   = "document"
	KeyStage      = "stage"
	KeyIteration  = "iteration"
	KeyDigest     = "digest"
	KeyProgram    = "program"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Document(p string) slog.Attr      { return slog.String(KeyDocument, p) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Iteration(i int) slog.Attr        { return slog.Int(KeyIteration, i) }
func Digest(hex string) slog.Attr      { return slog.String(KeyDigest, hex) }
func Program(name string) slog.Attr    { return slog.String(KeyProgram, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
