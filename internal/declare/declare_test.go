package declare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/texbuild/internal/config"
	"git.home.luguber.info/inful/texbuild/internal/retry"
)

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	flushed  bool
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakePublisher) FlushWithContext(context.Context) error {
	f.flushed = true
	return nil
}

func TestLineSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLineSink(&buf)
	ctx := context.Background()
	require.NoError(t, s.Declare(ctx, Declaration{Document: "main.tex", Kind: KindInput, Paths: []string{"a.tex", "b.bib"}}))
	require.NoError(t, s.Declare(ctx, Declaration{Document: "main.tex", Kind: KindVolatile, Paths: []string{"main.log"}}))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, "inp a.tex\ninp b.bib\nvol main.log\n", buf.String())
}

func TestJSONSinkWritesOnClose(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONSink(&buf)
	ctx := context.Background()
	require.NoError(t, s.Declare(ctx, Declaration{Document: "main.tex", Kind: KindOutput, Paths: []string{"main.pdf"}}))
	assert.Zero(t, buf.Len())
	require.NoError(t, s.Close(ctx))

	var got []Declaration
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []Declaration{{Document: "main.tex", Kind: KindOutput, Paths: []string{"main.pdf"}}}, got)
}

func TestJSONSinkEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONSink(&buf).Close(context.Background()))
	assert.Equal(t, "[]\n", buf.String())
}

func TestCollectorCopiesPaths(t *testing.T) {
	var c Collector
	paths := []string{"x.tex"}
	require.NoError(t, c.Declare(context.Background(), Declaration{Kind: KindInput, Paths: paths}))
	paths[0] = "mutated"
	require.NoError(t, c.Declare(context.Background(), Declaration{Kind: KindInput, Paths: []string{"y.tex"}}))
	assert.Equal(t, []string{"x.tex", "y.tex"}, c.Paths(KindInput))
	assert.Empty(t, c.Paths(KindOutput))
}

func TestNATSSink(t *testing.T) {
	pub := &fakePublisher{}
	s := newNATSSink(pub, "texbuild.declarations")
	ctx := context.Background()
	require.NoError(t, s.Declare(ctx, Declaration{Document: "main.tex", Kind: KindInput, Paths: []string{"a.tex"}}))
	require.NoError(t, s.Declare(ctx, Declaration{Document: "main.tex", Kind: KindOutput}))
	require.NoError(t, s.Close(ctx))

	require.Len(t, pub.payloads, 1, "empty batches are not published")
	assert.Equal(t, []string{"texbuild.declarations"}, pub.subjects)
	assert.True(t, pub.flushed)
	var d Declaration
	require.NoError(t, json.Unmarshal(pub.payloads[0], &d))
	assert.Equal(t, KindInput, d.Kind)
	assert.Equal(t, []string{"a.tex"}, d.Paths)
}

func TestNATSSinkPublishError(t *testing.T) {
	s := newNATSSink(&fakePublisher{err: errors.New("no responders")}, "x")
	err := s.Declare(context.Background(), Declaration{Kind: KindInput, Paths: []string{"a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no responders")
}

func TestOpen(t *testing.T) {
	var buf bytes.Buffer
	cases := []struct {
		sink config.DeclareSink
		want any
	}{
		{config.DeclareNone, Nop{}},
		{config.DeclareStdout, &LineSink{}},
		{config.DeclareJSON, &JSONSink{}},
	}
	for _, tc := range cases {
		s, err := Open(config.DeclareConfig{Sink: tc.sink}, &buf)
		require.NoError(t, err)
		assert.IsType(t, tc.want, s)
	}
	_, err := Open(config.DeclareConfig{Sink: "carrier-pigeon"}, &buf)
	assert.Error(t, err)
}

func TestConnectNATSGivesUpAfterRetries(t *testing.T) {
	policy := retry.NewPolicy(retry.Fixed, time.Millisecond, time.Millisecond, 1)
	_, err := ConnectNATS(context.Background(), "nats://127.0.0.1:1", "texbuild.test", policy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to NATS")
}
