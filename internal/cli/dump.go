package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/storage"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <output-file>",
	Short: "Write the current dataset to a YAML, TOML, or JSON file",
	Long: `Load the configured dataset (a file or the SQLite store) and write it to
<output-file>. The extension picks the format, so dump also converts
between dataset formats.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Source == nil {
			return fmt.Errorf("data source not initialized")
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ds, err := Source.Load(ctx)
		if err != nil {
			return err
		}
		if err := storage.WriteDataset(args[0], ds); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d assignment(s) to %s\n", len(ds.Assignments), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
