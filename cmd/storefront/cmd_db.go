package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations (sql store)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close(db)

		fmt.Println("Running migrations…")
		n, err := migration.New(db, os.Stdout).Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("✅ %d migration(s) applied\n", n)
		return nil
	},
}

// storefront migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close(db)

		fmt.Println("Rolling back last batch…")
		n, err := migration.New(db, os.Stdout).Rollback(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("✅ %d migration(s) rolled back\n", n)
		return nil
	},
}

// storefront migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close(db)

		statuses, err := migration.New(db, os.Stdout).Status(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
		for _, s := range statuses {
			ran, batch := "no", "-"
			if s.Ran {
				ran, batch = "yes", fmt.Sprint(s.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, ran, batch)
		}
		return w.Flush()
	},
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the admin user and demo catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		store, db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		if db != nil {
			if _, err := migration.New(db, os.Stdout).Run(cmd.Context()); err != nil {
				return err
			}
		}

		fmt.Println("Running seeders…")
		return seeders.RunAll(cmd.Context(), store, os.Stdout)
	},
}
