package events

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
)

// StdoutWriter logs every event. Used in development.
type StdoutWriter struct{}

func (s *StdoutWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	zap.S().Named("stdout_writer").Infow("event wrote", "event", e, "topic", topic)
	return nil
}

func (s *StdoutWriter) Close(_ context.Context) error {
	return nil
}

// StreamWriter writes every event as one line of structured JSON.
type StreamWriter struct {
	lock sync.Mutex
	enc  *json.Encoder
}

func NewStreamWriter(out io.Writer) *StreamWriter {
	return &StreamWriter{enc: json.NewEncoder(out)}
}

func (s *StreamWriter) Write(_ context.Context, _ string, e cloudevents.Event) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.enc.Encode(e)
}

func (s *StreamWriter) Close(_ context.Context) error {
	return nil
}
