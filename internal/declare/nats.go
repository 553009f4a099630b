package declare

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/texbuild/internal/logfields"
	"git.home.luguber.info/inful/texbuild/internal/retry"
)

// publisher is the subset of *nats.Conn used by NATSSink.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSSink publishes each declaration as a JSON message on a fixed subject.
type NATSSink struct {
	pub     publisher
	subject string
	closeFn func()
}

// ConnectNATS dials url, retrying per policy, and returns a sink publishing
// on subject.
func ConnectNATS(ctx context.Context, url, subject string, policy retry.Policy, opts ...nats.Option) (*NATSSink, error) {
	opts = append([]nats.Option{nats.Name("texbuild")}, opts...)
	var conn *nats.Conn
	err := policy.Do(ctx, func(attempt int) error {
		c, err := nats.Connect(url, opts...)
		if err != nil {
			slog.Debug("NATS connect attempt failed", "url", url, "attempt", attempt, logfields.Error(err))
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Debug("NATS declaration sink connected", "url", url, "subject", subject)
	return &NATSSink{pub: conn, subject: subject, closeFn: conn.Close}, nil
}

func newNATSSink(pub publisher, subject string) *NATSSink {
	return &NATSSink{pub: pub, subject: subject}
}

func (s *NATSSink) Declare(_ context.Context, d Declaration) error {
	if len(d.Paths) == 0 {
		return nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal declaration: %w", err)
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish declaration: %w", err)
	}
	slog.Debug("Published declaration", logfields.Document(d.Document), "kind", string(d.Kind), logfields.Count(len(d.Paths)))
	return nil
}

// Close flushes pending messages and drops the connection.
func (s *NATSSink) Close(ctx context.Context) error {
	err := s.pub.FlushWithContext(ctx)
	if s.closeFn != nil {
		s.closeFn()
	}
	if err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}
	return nil
}
