package events

import (
	"context"
	"io"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	TransitionMessageKind string = "pitch.analyzer.events.transition"
	ShareMessageKind      string = "pitch.analyzer.events.share"
	DeleteMessageKind     string = "pitch.analyzer.events.delete"
	defaultTopic          string = "pitch.analyzer.events"
	defaultSource         string = "pitch.analyzer"
)

// Writer is the interface to be implemented by the underlying writer.
type Writer interface {
	Write(ctx context.Context, topic string, e cloudevents.Event) error
	Close(ctx context.Context) error
}

// EventProducer is a wrapper around a Writer with the buffer.
// It has a buffer to store pending events to not block the caller if the writer takes time to write the event.
type EventProducer struct {
	buffer           *buffer
	startConsumingCh chan struct{}
	doneCh           chan struct{}
	stoppedCh        chan struct{}
	closeOnce        sync.Once
	writer           Writer
	topic            string
	source           string
}

func NewEventProducer(w Writer, opts ...ProducerOptions) *EventProducer {
	ep := &EventProducer{
		buffer:           newBuffer(),
		startConsumingCh: make(chan struct{}, 1),
		doneCh:           make(chan struct{}),
		stoppedCh:        make(chan struct{}),
		writer:           w,
		topic:            defaultTopic,
		source:           defaultSource,
	}

	for _, o := range opts {
		o(ep)
	}

	go ep.run()
	return ep
}

// Write queues an event of the given kind. It never waits for the writer.
func (ep *EventProducer) Write(ctx context.Context, kind string, body io.Reader) error {
	d, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	if err := ep.buffer.PushBack(&message{
		Kind: kind,
		Data: d,
	}); err != nil {
		return err
	}

	// unblock the consumer
	select {
	case ep.startConsumingCh <- struct{}{}:
	default:
	}

	return nil
}

// Close sends the pending events and closes the writer.
func (ep *EventProducer) Close() error {
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	ep.closeOnce.Do(func() {
		g, ctx := errgroup.WithContext(closeCtx)
		g.Go(func() error {
			close(ep.doneCh)
			select {
			case <-ep.stoppedCh:
			case <-ctx.Done():
				zap.S().Named("event_producer").Warnw("pending events dropped", "count", ep.buffer.Size())
			}
			return ep.writer.Close(ctx)
		})
		if err = g.Wait(); err != nil {
			zap.S().Named("event_producer").Errorf("event producer closed with error: %s", err)
			return
		}
		zap.S().Named("event_producer").Debug("event producer closed")
	})

	return err
}

func (ep *EventProducer) run() {
	defer close(ep.stoppedCh)

	for {
		if ep.buffer.Size() == 0 {
			select {
			case <-ep.startConsumingCh:
			case <-ep.doneCh:
				return
			}
		}

		msg := ep.buffer.Pop()
		if msg == nil {
			continue
		}

		e := cloudevents.NewEvent()
		e.SetID(uuid.NewString())
		e.SetSource(ep.source)
		e.SetType(msg.Kind)
		e.SetTime(time.Now())
		_ = e.SetData(*cloudevents.StringOfApplicationJSON(), msg.Data)

		if err := ep.writer.Write(context.TODO(), ep.topic, e); err != nil {
			zap.S().Named("event_producer").Errorw("failed to send message", "error", err, "event", e)
		}
	}
}
