package events

import (
	"context"
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// HTTPWriter delivers events to an HTTP sink in cloudevents binary mode.
type HTTPWriter struct {
	client cloudevents.Client
	sink   string
}

func NewHTTPWriter(sink string) (*HTTPWriter, error) {
	c, err := cloudevents.NewClientHTTP()
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudevents client: %w", err)
	}
	return &HTTPWriter{client: c, sink: sink}, nil
}

func (h *HTTPWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	e.SetExtension("topic", topic)
	result := h.client.Send(cloudevents.ContextWithTarget(ctx, h.sink), e)
	if cloudevents.IsUndelivered(result) {
		return fmt.Errorf("failed to deliver event %s: %w", e.ID(), result)
	}
	if !cloudevents.IsACK(result) {
		return fmt.Errorf("event %s rejected by sink: %w", e.ID(), result)
	}
	return nil
}

func (h *HTTPWriter) Close(_ context.Context) error {
	return nil
}
