package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/intake"
	"github.com/pitchpilot/pitch-analyzer/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type SubmitOptions struct {
	GlobalOptions

	File        string
	Title       string
	Description string
	Focus       string
	Output      string
	OpenURL     bool
	Share       bool

	out    io.Writer
	reader *intake.Reader
}

func DefaultSubmitOptions() *SubmitOptions {
	o := &SubmitOptions{
		GlobalOptions: DefaultGlobalOptions(),
		out:           os.Stdout,
		reader:        intake.NewReader(),
	}
	if o.cfg != nil {
		o.Share = o.cfg.Client.Share
	}
	return o
}

func NewCmdSubmit() *cobra.Command {
	o := DefaultSubmitOptions()
	cmd := &cobra.Command{
		Use:   "submit --file FILE --title TITLE --focus FOCUS",
		Short: "Submit a pitch document for analysis.",
		Args:  cobra.NoArgs,
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

func (o *SubmitOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.File, "file", "f", o.File, "Pitch document: PDF, PPTX, DOCX or TXT")
	fs.StringVarP(&o.Title, "title", "t", o.Title, "Pitch title")
	fs.StringVarP(&o.Description, "description", "d", o.Description, "Optional pitch description")
	fs.StringVarP(&o.Focus, "focus", "q", o.Focus, "What the analysis should focus on")
	fs.StringVarP(&o.Output, "output", "o", o.Output, outputUsage())
	fs.BoolVar(&o.OpenURL, "open-url", o.OpenURL, "Print the results view URL")
	fs.BoolVar(&o.Share, "share", o.Share, "Store the result in the results viewer and print a short URL")
}

func (o *SubmitOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.File == "" {
		return fmt.Errorf("a document is required, use --file")
	}
	return validateOutput(o.Output)
}

func (o *SubmitOptions) Run(ctx context.Context, args []string) error {
	in := intake.New(o.reader)
	warnings, err := in.Browse(o.File)
	if err != nil {
		return err
	}
	printWarnings(warnings)

	req := analysis.Build(in.Document(), o.Title, o.Description, o.Focus)
	if req == nil {
		return fmt.Errorf("a document, a title and a focus are required")
	}

	controller, done := o.Controller(os.Stderr)
	defer done()

	if err := controller.Submit(ctx, req); err != nil {
		return describeFailure(controller.Snapshot(), err)
	}

	return o.handOff(ctx, controller, req.Title)
}

func (o *SubmitOptions) handOff(ctx context.Context, controller *workflow.Controller, title string) error {
	snap := controller.Snapshot()
	if err := printResult(o.out, snap.Result, o.Output); err != nil {
		return err
	}

	if !o.OpenURL && !o.Share {
		return nil
	}

	var (
		u   string
		err error
	)
	if o.Share {
		results, rerr := o.ResultsClient()
		if rerr != nil {
			return rerr
		}
		u, err = controller.HandOffShared(ctx, o.ResultsUrl, results.WithTitle(title))
	} else {
		u, err = controller.HandOff(o.ResultsUrl)
	}
	if err != nil {
		return fmt.Errorf("building results url: %w", err)
	}

	_, err = fmt.Fprintf(o.out, "Results: %s\n", u)
	return err
}

func printWarnings(warnings []intake.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

// describeFailure prefixes err with the failure kind recorded by the controller.
func describeFailure(snap workflow.Snapshot, err error) error {
	var invalid *analysis.ErrInvalidRequest
	if errors.As(err, &invalid) || errors.Is(err, workflow.ErrSubmissionInFlight) {
		return err
	}
	return fmt.Errorf("analysis %s (%s): %w", snap.State, workflow.ErrKind(err), err)
}
