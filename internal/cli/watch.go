package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/intake"
	"github.com/pitchpilot/pitch-analyzer/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type WatchOptions struct {
	GlobalOptions

	Title       string
	Description string
	Focus       string
	Output      string
	OpenURL     bool
	Settle      time.Duration

	out    io.Writer
	reader *intake.Reader
}

func DefaultWatchOptions() *WatchOptions {
	return &WatchOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Settle:        500 * time.Millisecond,
		out:           os.Stdout,
		reader:        intake.NewReader(),
	}
}

func NewCmdWatch() *cobra.Command {
	o := DefaultWatchOptions()
	cmd := &cobra.Command{
		Use:   "watch DIR --title TITLE --focus FOCUS",
		Short: "Analyze every pitch document dropped into a folder.",
		Long: "Watch DIR and submit each document written into it. " +
			"Only one analysis runs at a time: documents dropped while one is processing are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *WatchOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Title, "title", "t", o.Title, "Pitch title used for every document")
	fs.StringVarP(&o.Description, "description", "d", o.Description, "Optional pitch description")
	fs.StringVarP(&o.Focus, "focus", "q", o.Focus, "What the analysis should focus on")
	fs.StringVarP(&o.Output, "output", "o", o.Output, outputUsage())
	fs.BoolVar(&o.OpenURL, "open-url", o.OpenURL, "Print the results view URL of every analysis")
	fs.DurationVar(&o.Settle, "settle", o.Settle, "Quiet period after the last write before a document is submitted")
}

func (o *WatchOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	fi, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a folder", args[0])
	}
	return validateOutput(o.Output)
}

func (o *WatchOptions) Run(ctx context.Context, args []string) error {
	watcher, err := intake.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Stop()

	drops, err := watcher.Watch(ctx, args[0])
	if err != nil {
		return err
	}

	controller, done := o.Controller(o.out)
	defer done()

	unsubscribe := controller.Subscribe(func(s workflow.Snapshot) {
		zap.S().Named("cli").Infow("analysis state changed", "state", s.State, "document", s.Document)
	})
	defer unsubscribe()

	d := newDebouncer(o.Settle)
	defer d.Stop()

	fmt.Fprintf(os.Stderr, "watching %s, press Ctrl+C to stop\n", args[0])
	for drop := range drops {
		path := drop.Path
		d.Trigger(path, func() {
			o.analyze(ctx, controller, path)
		})
	}
	return nil
}

// analyze selects path into its own intake so concurrent drops never swap
// documents between Drop and Build.
func (o *WatchOptions) analyze(ctx context.Context, controller *workflow.Controller, path string) {
	if !controller.CanSubmit() {
		zap.S().Named("cli").Warnw("analysis in flight, skipping dropped document", "document", path)
		return
	}

	in := intake.New(o.reader)
	warnings, err := in.Drop(path)
	if err != nil {
		zap.S().Named("cli").Errorw("failed to read dropped document", "document", path, "error", err)
		return
	}
	printWarnings(warnings)

	req := analysis.Build(in.Document(), o.Title, o.Description, o.Focus)
	if req == nil {
		zap.S().Named("cli").Errorw("document is not submittable", "document", path)
		return
	}

	if err := controller.Submit(ctx, req); err != nil {
		if errors.Is(err, workflow.ErrSubmissionInFlight) {
			zap.S().Named("cli").Warnw("analysis in flight, skipping dropped document", "document", path)
			return
		}
		zap.S().Named("cli").Errorw("analysis failed", "document", path, "error", describeFailure(controller.Snapshot(), err))
		return
	}

	if err := printResult(o.out, controller.Snapshot().Result, o.Output); err != nil {
		zap.S().Named("cli").Errorw("failed to print result", "document", path, "error", err)
		return
	}
	if o.OpenURL {
		u, err := controller.HandOff(o.ResultsUrl)
		if err != nil {
			zap.S().Named("cli").Errorw("failed to build results url", "document", path, "error", err)
			return
		}
		fmt.Fprintf(o.out, "Results: %s\n", u)
	}
}

// debouncer runs the callback of a key once no trigger for that key arrived
// for the settle period.
type debouncer struct {
	mu      sync.Mutex
	settle  time.Duration
	timers  map[string]*time.Timer
	running sync.WaitGroup
	stopped bool
}

func newDebouncer(settle time.Duration) *debouncer {
	return &debouncer{settle: settle, timers: map[string]*time.Timer{}}
}

func (d *debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.settle, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.running.Add(1)
		d.mu.Unlock()

		defer d.running.Done()
		fn()
	})
}

// Stop drops the pending callbacks and waits for the running ones.
func (d *debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
	d.mu.Unlock()

	d.running.Wait()
}
