package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paymentops/vigil/internal/cli"
	"github.com/paymentops/vigil/internal/common"
)

func cycleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run a single decision cycle",
		Long: `Run exactly one observe → diagnose → decide → record cycle and print
the agent's decision. With --events the window is first seeded with
synthetic transactions; a cycle over a near-empty window is refused.`,
		RunE: runCycle,
	}

	cmd.Flags().Int("events", 25, "synthetic events to feed before the cycle (0 to disable)")

	_ = viper.BindPFlag("cycle.events", cmd.Flags().Lookup("events"))

	return cmd
}

func runCycle(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	a := newAgent(store, nil)

	if n := viper.GetInt("cycle.events"); n > 0 {
		a.Ingest(newSimulator().Batch(n)...)
		slog.Debug("Seeded window with synthetic traffic", "events", n)
	}

	report, err := a.RunCycle(ctx)
	if err != nil {
		if errors.Is(err, common.ErrInsufficientEvents) {
			return common.NewUserError("Not enough transactions in the window; feed more events (try --events 25) and retry", err)
		}
		return fmt.Errorf("cycle failed: %w", err)
	}

	fmt.Println(cli.FormatSnapshot(report.Snapshot))
	fmt.Println(cli.FormatCycleReport(report))

	return nil
}
