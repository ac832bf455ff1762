package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/internal/storage"
)

var importDB string

var importCmd = &cobra.Command{
	Use:   "import <dataset-file>",
	Short: "Import a dataset file into the SQLite store",
	Long: `Read a YAML, TOML, or JSON dataset and replace the contents of the SQLite
store with it. Records without an id are given a generated one.

The store is the configured dataset when dataset.driver is sqlite, or the
database given with --db.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ds, err := storage.NewFileSource(args[0]).Load(ctx)
		if err != nil {
			return err
		}

		store := SQLiteStore
		if importDB != "" {
			opened, err := storage.OpenSQLite(importDB)
			if err != nil {
				return err
			}
			defer opened.Close()
			store = opened
		}
		if store == nil {
			return fmt.Errorf("no SQLite store configured: set dataset.driver to sqlite or pass --db")
		}

		revision, err := store.Import(ctx, ds)
		if err != nil {
			return fmt.Errorf("importing %s: %w", args[0], err)
		}
		if DemandSvc != nil {
			DemandSvc.Invalidate()
		}

		logEvent(core.EventDatasetImport, map[string]any{
			"source":      args[0],
			"revision":    revision,
			"assignments": len(ds.Assignments),
			"clients":     len(ds.Clients),
			"staff":       len(ds.Staff),
			"skills":      len(ds.Skills),
		})
		if Logger != nil {
			Logger.Info("dataset imported", "source", args[0], "revision", revision)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d assignment(s), %d client(s), %d staff, %d skill(s) (revision %d)\n",
			len(ds.Assignments), len(ds.Clients), len(ds.Staff), len(ds.Skills), revision)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDB, "db", "", "SQLite database to import into")
	rootCmd.AddCommand(importCmd)
}
