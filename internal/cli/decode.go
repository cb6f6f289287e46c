package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/transfer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type DecodeOptions struct {
	Output string

	out io.Writer
}

func DefaultDecodeOptions() *DecodeOptions {
	return &DecodeOptions{out: os.Stdout}
}

func NewCmdDecode() *cobra.Command {
	o := DefaultDecodeOptions()
	cmd := &cobra.Command{
		Use:   "decode (URL | DATA)",
		Short: "Show the analysis carried by a results view URL.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(o.Output); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *DecodeOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Output, "output", "o", o.Output, outputUsage())
}

// Run prints the decoded result. Input that does not decode gives the
// empty view, as the results page does.
func (o *DecodeOptions) Run(ctx context.Context, args []string) error {
	result, err := decodeArg(args[0])
	if err != nil {
		zap.S().Named("cli").Debugw("failed to decode results data", "error", err)
		result = nil
	}
	return printResult(o.out, result, o.Output)
}

func decodeArg(arg string) (*analysis.Result, error) {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "?") {
		return transfer.FromURL(arg)
	}
	return transfer.Decode(strings.TrimPrefix(arg, transfer.QueryParam+"="))
}
