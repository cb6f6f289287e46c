package intake

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DropEvent is emitted when a document lands in a watched drop folder.
type DropEvent struct {
	Path string
}

// Watcher turns a directory into a drop target: every file with an accepted
// extension that is created or written in it is reported as a DropEvent.
type Watcher struct {
	watcher *fsnotify.Watcher
}

func NewWatcher() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{watcher: w}, nil
}

// Watch starts monitoring dir. The returned channel is closed when ctx is
// done or the watcher is stopped.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan DropEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	events := make(chan DropEvent, 16)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !HasAcceptedExtension(event.Name) {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}

				select {
				case events <- DropEvent{Path: event.Name}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				zap.S().Named("watcher").Errorw("drop folder watch error", "dir", dir, "error", err)
			}
		}
	}()

	return events, nil
}

func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
