package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pitchpilot/pitch-analyzer/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	command := NewPitchCtlCommand()
	if err := command.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func NewPitchCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pitchctl [flags] [options]",
		Short: "pitchctl submits pitch documents to the analysis service.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdSubmit())
	cmd.AddCommand(cli.NewCmdGet())
	cmd.AddCommand(cli.NewCmdHealth())
	cmd.AddCommand(cli.NewCmdWatch())
	cmd.AddCommand(cli.NewCmdDecode())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}
