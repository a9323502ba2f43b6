package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paymentops/vigil/internal/cli"
	"github.com/paymentops/vigil/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run lesson database migrations",
		RunE:  runMigrate,
	}

	cmd.Flags().Bool("status", false, "show current schema version without migrating")

	_ = viper.BindPFlag("migrate.status", cmd.Flags().Lookup("status"))

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// --status opens the database directly so pending migrations are
	// reported, not applied.
	if viper.GetBool("migrate.status") {
		dbPath, err := storePath()
		if err != nil {
			return err
		}

		store, err := storage.NewSQLiteStorage(dbPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		version, err := store.SchemaVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		fmt.Printf("Schema version: %d (expected %d)\n", version, storage.ExpectedSchemaVersion)
		return nil
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Database migrated to schema version %d (%s)", version, store.Path())))
	return nil
}
