package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paymentops/vigil/internal/cli"
	"github.com/paymentops/vigil/internal/model"
	"github.com/paymentops/vigil/internal/observe"
)

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate synthetic payment traffic",
		Long: `Generate synthetic transactions and print the aggregate statistics the
agent would observe. With --json the raw events are written to stdout
instead, one JSON object per line.`,
		RunE: runSimulate,
	}

	cmd.Flags().IntP("count", "c", 200, "number of transactions to generate")
	cmd.Flags().Bool("json", false, "emit raw events as JSON lines")

	_ = viper.BindPFlag("simulate.count", cmd.Flags().Lookup("count"))
	_ = viper.BindPFlag("simulate.json", cmd.Flags().Lookup("json"))

	return cmd
}

func runSimulate(_ *cobra.Command, _ []string) error {
	count := viper.GetInt("simulate.count")
	sim := newSimulator()

	if viper.GetBool("simulate.json") {
		encoder := json.NewEncoder(os.Stdout)
		for i := 0; i < count; i++ {
			if err := encoder.Encode(sim.Generate()); err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
		}
		return nil
	}

	bar := progressbar.Default(int64(count), "generating traffic")
	events := make([]model.TransactionEvent, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, sim.Generate())
		_ = bar.Add(1)
	}

	snap := observe.Aggregate(events, viper.GetInt("window.seconds"))
	fmt.Println(cli.FormatSnapshot(snap))

	return nil
}
