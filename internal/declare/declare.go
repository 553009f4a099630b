// Package declare reports the dependencies and products of a build to the
// surrounding build system. The driver only sees the Sink interface.
package declare

import (
	"context"
	"fmt"
	"io"

	"git.home.luguber.info/inful/texbuild/internal/config"
	"git.home.luguber.info/inful/texbuild/internal/retry"
)

// Kind classifies declared paths.
type Kind string

const (
	// KindInput: a file the build reads and that must exist beforehand.
	KindInput Kind = "inp"
	// KindOutput: a file the build produces.
	KindOutput Kind = "out"
	// KindVolatile: a by-product whose content is not reproducible.
	KindVolatile Kind = "vol"
	// KindUntracked: an input discovered only after compiling, from the recorder file.
	KindUntracked Kind = "untracked"
)

// Declaration is one batch of paths of the same kind for a document.
type Declaration struct {
	Document string   `json:"document"`
	Kind     Kind     `json:"kind"`
	Paths    []string `json:"paths"`
}

// Sink receives declarations. Close flushes anything buffered.
type Sink interface {
	Declare(ctx context.Context, d Declaration) error
	Close(ctx context.Context) error
}

// Nop discards declarations.
type Nop struct{}

func (Nop) Declare(context.Context, Declaration) error { return nil }
func (Nop) Close(context.Context) error                 { return nil }

// Open builds the sink selected by cfg. Line and JSON sinks write to w.
func Open(cfg config.DeclareConfig, w io.Writer) (Sink, error) {
	switch cfg.Sink {
	case config.DeclareNone:
		return Nop{}, nil
	case config.DeclareStdout, "":
		return NewLineSink(w), nil
	case config.DeclareJSON:
		return NewJSONSink(w), nil
	case config.DeclareNATS:
		s, err := ConnectNATS(context.Background(), cfg.NATSURL, cfg.Subject, retry.DefaultPolicy())
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown declaration sink %q", cfg.Sink)
	}
}
