package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shreya0626/secret-santa/internal/config"
)

// NewRosterCommand creates the roster command.
func NewRosterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "Print the participant roster in draw order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoster(rootOpts, cmd.OutOrStdout())
		},
	}
}

func runRoster(opts *RootOptions, out io.Writer) error {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return err
	}
	roster, err := config.LoadRoster(cfg.RosterFile)
	if err != nil {
		return err
	}

	if opts.Format == "yaml" {
		enc := yaml.NewEncoder(out)
		defer enc.Close() //nolint:errcheck
		return enc.Encode(map[string][]string{"participants": roster.Names()})
	}
	for _, name := range roster.Names() {
		if _, err := fmt.Fprintln(out, name); err != nil {
			return err
		}
	}
	return nil
}
