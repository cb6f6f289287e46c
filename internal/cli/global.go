package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/client"
	"github.com/pitchpilot/pitch-analyzer/internal/config"
	"github.com/pitchpilot/pitch-analyzer/internal/events"
	"github.com/pitchpilot/pitch-analyzer/internal/workflow"
	"github.com/pitchpilot/pitch-analyzer/pkg/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type GlobalOptions struct {
	ServerUrl      string
	ResultsUrl     string
	ConfigFilePath string
	Timeout        time.Duration
	LogLevel       string
	Events         bool

	cfg *config.Config
}

func DefaultGlobalOptions() GlobalOptions {
	o := GlobalOptions{
		ServerUrl:      "http://localhost:8000",
		ResultsUrl:     "http://localhost:3000/results",
		ConfigFilePath: client.DefaultClientConfigPath(),
		Timeout:        120 * time.Second,
		LogLevel:       "info",
	}

	cfg, err := config.New()
	if err != nil {
		return o
	}
	o.cfg = cfg
	o.ServerUrl = cfg.Client.APIURL
	o.ResultsUrl = cfg.Client.ResultsURL
	o.Timeout = cfg.Client.Timeout
	o.LogLevel = cfg.LogLevel
	o.Events = cfg.Events.Enabled
	return o
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ServerUrl, "server-url", "u", o.ServerUrl, "Address of the analysis service")
	fs.StringVar(&o.ResultsUrl, "results-url", o.ResultsUrl, "Address of the results view")
	fs.StringVarP(&o.ConfigFilePath, "config", "c", o.ConfigFilePath, "Path to the client configuration file")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Maximum duration of a single analysis call, 0 disables it")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level: debug, info, warn or error")
	fs.BoolVar(&o.Events, "events", o.Events, "Publish workflow transitions as cloudevents")
}

// Complete reads the client configuration file, when there is one. Flags
// given on the command line win over the file.
func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	// the previous logger is never restored, the process exits with the command
	log.Setup(o.LogLevel)

	if o.ConfigFilePath == "" {
		return nil
	}

	cfgFile, err := client.ParseConfigFile(o.ConfigFilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
			return nil
		}
		return err
	}

	if !cmd.Flags().Changed("server-url") {
		o.ServerUrl = cfgFile.Service.Server
	}
	if !cmd.Flags().Changed("results-url") && cfgFile.Service.Results != "" {
		o.ResultsUrl = cfgFile.Service.Results
	}
	if !cmd.Flags().Changed("timeout") && cfgFile.Service.Timeout != "" {
		if o.Timeout, err = time.ParseDuration(cfgFile.Service.Timeout); err != nil {
			return fmt.Errorf("invalid timeout in %s: %w", o.ConfigFilePath, err)
		}
	}
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if o.ServerUrl == "" {
		return fmt.Errorf("server url must not be empty")
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

func (o *GlobalOptions) Client() *client.AnalysisClient {
	return client.NewAnalysisClient(o.ServerUrl, client.WithHTTPClient(client.NewHTTPClient()))
}

// ResultsClient talks to the viewer serving ResultsUrl.
func (o *GlobalOptions) ResultsClient() (*client.ResultsClient, error) {
	base, err := viewerBase(o.ResultsUrl)
	if err != nil {
		return nil, err
	}
	return client.NewResultsClient(base, client.WithHTTPClient(client.NewHTTPClient())), nil
}

// Controller builds a workflow controller over the analysis client. The
// returned func flushes pending events and must be called once done.
func (o *GlobalOptions) Controller(eventsOut io.Writer) (*workflow.Controller, func()) {
	opts := []workflow.Option{workflow.WithTimeout(o.Timeout)}

	producer := o.eventProducer(eventsOut)
	if producer != nil {
		opts = append(opts, workflow.WithPublisher(producer))
	}

	return workflow.New(o.Client(), opts...), func() {
		if producer != nil {
			if err := producer.Close(); err != nil {
				zap.S().Named("cli").Warnw("failed to flush events", "error", err)
			}
		}
	}
}

func (o *GlobalOptions) eventProducer(out io.Writer) *events.EventProducer {
	if !o.Events {
		return nil
	}

	topic := ""
	sink := ""
	if o.cfg != nil {
		topic = o.cfg.Events.Topic
		sink = o.cfg.Events.Sink
	}

	var w events.Writer = events.NewStreamWriter(out)
	if sink != "" {
		hw, err := events.NewHTTPWriter(sink)
		if err != nil {
			zap.S().Named("cli").Warnw("events sink unusable, writing events to the output", "sink", sink, "error", err)
		} else {
			w = hw
		}
	}

	opts := []events.ProducerOptions{events.WithSource("pitchctl")}
	if topic != "" {
		opts = append(opts, events.WithOutputTopic(topic))
	}
	return events.NewEventProducer(w, opts...)
}
