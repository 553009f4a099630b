package declare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// LineSink writes one "<kind> <path>" line per declared path as soon as it
// is declared.
type LineSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLineSink(w io.Writer) *LineSink { return &LineSink{w: w} }

func (s *LineSink) Declare(_ context.Context, d Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range d.Paths {
		if _, err := fmt.Fprintf(s.w, "%s %s\n", d.Kind, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *LineSink) Close(context.Context) error { return nil }

// JSONSink buffers declarations and writes them as one JSON array on Close.
type JSONSink struct {
	Collector
	w io.Writer
}

func NewJSONSink(w io.Writer) *JSONSink { return &JSONSink{w: w} }

func (s *JSONSink) Close(context.Context) error {
	decls := s.Declarations()
	if decls == nil {
		decls = []Declaration{}
	}
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(decls)
}

// Collector keeps declarations in memory.
type Collector struct {
	mu    sync.Mutex
	decls []Declaration
}

func (c *Collector) Declare(_ context.Context, d Declaration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d.Paths = append([]string(nil), d.Paths...)
	c.decls = append(c.decls, d)
	return nil
}

func (c *Collector) Close(context.Context) error { return nil }

// Declarations returns a copy of everything declared so far.
func (c *Collector) Declarations() []Declaration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Declaration(nil), c.decls...)
}

// Paths returns every path declared with kind k, in declaration order.
func (c *Collector) Paths(k Kind) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, d := range c.decls {
		if d.Kind == k {
			out = append(out, d.Paths...)
		}
	}
	return out
}
