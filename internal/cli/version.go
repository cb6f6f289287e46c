package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pitchpilot/pitch-analyzer/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"
)

type VersionOptions struct {
	Output string

	out io.Writer
}

func DefaultVersionOptions() *VersionOptions {
	return &VersionOptions{
		Output: "",
		out:    os.Stdout,
	}
}

func NewCmdVersion() *cobra.Command {
	o := DefaultVersionOptions()
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print pitchctl version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context(), args)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *VersionOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format. One of: (json, yaml).")
}

func (o *VersionOptions) Run(ctx context.Context, args []string) error {
	versionInfo := version.Get()
	switch o.Output {
	case jsonFormat:
		marshalled, err := json.Marshal(versionInfo)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(o.out, "%s\n", marshalled)
		return err
	case yamlFormat:
		marshalled, err := yaml.Marshal(versionInfo)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(o.out, "%s", marshalled)
		return err
	case "":
		_, err := fmt.Fprintf(o.out, "pitchctl version: %s\n", versionInfo.String())
		return err
	default:
		return fmt.Errorf("output format must be one of json, yaml")
	}
}
