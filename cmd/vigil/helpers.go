package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/paymentops/vigil/internal/agent"
	"github.com/paymentops/vigil/internal/dispatch"
	"github.com/paymentops/vigil/internal/guardrail"
	"github.com/paymentops/vigil/internal/service"
	"github.com/paymentops/vigil/internal/simulate"
	"github.com/paymentops/vigil/internal/storage"
	"github.com/paymentops/vigil/internal/tools"
	"github.com/paymentops/vigil/internal/window"
)

// storePath resolves the configured lesson database path.
func storePath() (string, error) {
	dbPath := viper.GetString("storage.path")
	if dbPath != "" {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "vigil", "lessons.db"), nil
}

// openStore opens (and migrates) the configured lesson database.
func openStore(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath, err := storePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open lesson store: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate lesson store: %w", err)
	}

	return store, nil
}

// newAgent wires an agent from configuration. The source may be nil
// when events are fed directly.
func newAgent(store *storage.SQLiteStorage, source service.EventSource) *agent.Agent {
	w := window.New(
		time.Duration(viper.GetInt("window.seconds"))*time.Second,
		viper.GetInt("window.max_events"),
	)

	guard := guardrail.New(
		viper.GetFloat64("guardrail.confidence_threshold"),
		viper.GetInt("guardrail.max_autonomous_volume"),
	)

	notifier := tools.NewOpsNotifier()
	dispatcher := dispatch.New(tools.NewOpsTools(), notifier)

	return agent.New(w, store, guard, dispatcher, notifier, source, agent.Config{
		MinSample:     viper.GetInt("cycle.min_sample"),
		HistoryDepth:  viper.GetInt("cycle.history"),
		EventsPerTick: viper.GetInt("cycle.events_per_tick"),
	})
}

// newSimulator builds the synthetic event source from configuration.
func newSimulator() *simulate.Simulator {
	return simulate.New(viper.GetInt64("simulate.seed"))
}
