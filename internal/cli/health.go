package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type HealthOptions struct {
	GlobalOptions

	out io.Writer
}

func DefaultHealthOptions() *HealthOptions {
	return &HealthOptions{
		GlobalOptions: DefaultGlobalOptions(),
		out:           os.Stdout,
	}
}

func NewCmdHealth() *cobra.Command {
	o := DefaultHealthOptions()
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis service is up.",
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

func (o *HealthOptions) Run(ctx context.Context, args []string) error {
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	status, err := o.Client().Health(ctx)
	if err != nil {
		return fmt.Errorf("checking %s: %w", o.ServerUrl, err)
	}
	_, err = fmt.Fprintf(o.out, "%s: %s\n", o.ServerUrl, status.Status)
	return err
}
