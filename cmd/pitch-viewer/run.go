package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pitchpilot/pitch-analyzer/internal/config"
	"github.com/pitchpilot/pitch-analyzer/internal/events"
	"github.com/pitchpilot/pitch-analyzer/internal/store"
	"github.com/pitchpilot/pitch-analyzer/internal/viewer"
	"github.com/pitchpilot/pitch-analyzer/pkg/log"
	"github.com/pitchpilot/pitch-analyzer/pkg/migrations"
	"github.com/pitchpilot/pitch-analyzer/pkg/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the results viewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer utilruntime.HandleCrash()

		cfg, err := config.New()
		if err != nil {
			return err
		}

		undo := log.Setup(cfg.LogLevel)
		defer undo()

		zap.S().Infof("Starting results viewer %s", version.Get().String())
		defer zap.S().Info("results viewer stopped")

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := migrations.MigrateStore(db, cfg, migrationFolder); err != nil {
			zap.S().Fatalf("running migrations: %v", err)
		}

		var publisher viewer.Publisher
		if cfg.Events.Enabled {
			producer := newProducer(cfg)
			defer func() { _ = producer.Close() }()
			publisher = producer
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		listener, err := newListener(cfg.Viewer.Address)
		if err != nil {
			zap.S().Fatalf("creating listener: %s", err)
		}

		server := viewer.New(cfg, s, listener, publisher)
		if err := server.Run(ctx); err != nil {
			zap.S().Errorf("Error running server: %s", err)
			return err
		}
		return nil
	},
}

func newProducer(cfg *config.Config) *events.EventProducer {
	var w events.Writer = &events.StdoutWriter{}
	if cfg.Events.Sink != "" {
		hw, err := events.NewHTTPWriter(cfg.Events.Sink)
		if err != nil {
			zap.S().Warnw("events sink unusable, writing events to the log", "sink", cfg.Events.Sink, "error", err)
		} else {
			w = hw
		}
	}
	return events.NewEventProducer(w, events.WithOutputTopic(cfg.Events.Topic), events.WithSource("pitch-viewer"))
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
