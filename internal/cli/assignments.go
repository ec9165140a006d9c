package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shreya0626/secret-santa/internal/config"
	"github.com/shreya0626/secret-santa/internal/domain"
)

// AssignmentsReport is the printed view of a cycle.
type AssignmentsReport struct {
	Cycle       string               `yaml:"cycle"`
	Assignments domain.AssignmentMap `yaml:"assignments"`
	Pending     []string             `yaml:"pending"`
}

// NewAssignmentsCommand creates the assignments command.
func NewAssignmentsCommand(rootOpts *RootOptions) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "assignments",
		Short: "Print the santa -> recipient map of a cycle and who has not drawn yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssignments(cmd.Context(), rootOpts, year, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "cycle year (default: CYCLE_YEAR or the current year)")
	return cmd
}

func runAssignments(ctx context.Context, opts *RootOptions, year int, out io.Writer) error {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return err
	}
	if year != 0 {
		cfg.CycleYear = year
	}
	log := cfg.NewLogger(io.Discard)

	roster, err := config.LoadRoster(cfg.RosterFile)
	if err != nil {
		return err
	}
	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	svc, err := newServices(cfg, st, roster, log, nil)
	if err != nil {
		return err
	}

	report := AssignmentsReport{Cycle: strconv.Itoa(cfg.CycleYear)}
	if report.Assignments, err = svc.engine.Assignments(ctx, report.Cycle); err != nil {
		return err
	}
	if report.Pending, err = svc.engine.Pending(ctx, report.Cycle); err != nil {
		return err
	}

	if opts.Format == "yaml" {
		enc := yaml.NewEncoder(out)
		defer enc.Close() //nolint:errcheck
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "cycle %s: %d drawn, %d pending\n", report.Cycle, len(report.Assignments), len(report.Pending))
	for _, santa := range report.Assignments.Santas() {
		fmt.Fprintf(out, "  %s -> %s\n", santa, report.Assignments[santa])
	}
	for _, name := range report.Pending {
		fmt.Fprintf(out, "  %s (pending)\n", name)
	}
	return nil
}
