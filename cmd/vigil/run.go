package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paymentops/vigil/internal/cli"
	"github.com/paymentops/vigil/internal/service"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the agent loop continuously",
		Long: `Run the observe → diagnose → decide → record loop until interrupted.

By default one cycle runs every tick; with --schedule the loop follows
a cron expression instead. With --simulate the agent feeds itself
synthetic traffic each cycle.`,
		RunE: runRun,
	}

	cmd.Flags().Duration("tick", 0, "cycle interval (default from config, 5s)")
	cmd.Flags().String("schedule", "", "cron expression for cycles (overrides --tick)")
	cmd.Flags().Bool("simulate", false, "feed synthetic transactions each cycle")

	_ = viper.BindPFlag("run.tick", cmd.Flags().Lookup("tick"))
	_ = viper.BindPFlag("run.schedule", cmd.Flags().Lookup("schedule"))
	_ = viper.BindPFlag("run.simulate", cmd.Flags().Lookup("simulate"))

	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var source service.EventSource
	if viper.GetBool("run.simulate") {
		source = newSimulator()
		slog.Info("Simulated event source attached")
	}

	a := newAgent(store, source)

	slog.Info(cli.FormatTitle("vigil agent running"))

	if spec := viper.GetString("run.schedule"); spec != "" {
		err = a.RunSchedule(ctx, spec)
	} else {
		tick := viper.GetDuration("run.tick")
		if tick <= 0 {
			tick = viper.GetDuration("cycle.tick")
		}
		err = a.Run(ctx, tick)
	}

	// Interrupt-driven shutdown is a clean exit.
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
