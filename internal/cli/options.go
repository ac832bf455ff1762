package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
)

var optionsJSON bool

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the values usable as filters",
	Long: `List every skill, client, and preferred staff member that can be passed to
--skill, --client, and --staff, with the number of active assignments each
covers.`,
	Args: cobra.NoArgs,
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
			return fmt.Errorf("loading dataset: %w", err)
		}
		opts := core.ListFilterOptions(ds)
		out := cmd.OutOrStdout()

		if optionsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(opts)
		}

		printOptionGroup(out, "SKILLS", opts.Skills)
		printOptionGroup(out, "CLIENTS", opts.Clients)
		printOptionGroup(out, "STAFF", opts.Staff)
		fmt.Fprintf(out, "Unassigned tasks: %d\n", opts.Unassigned)
		return nil
	},
}

func printOptionGroup(w io.Writer, title string, opts []core.FilterOption) {
	fmt.Fprintf(w, "== %s (%d) ==\n", title, len(opts))
	for _, o := range opts {
		if o.Label != o.ID {
			fmt.Fprintf(w, "  %-24s %-28s %d\n", o.Label, o.ID, o.TaskCount)
			continue
		}
		fmt.Fprintf(w, "  %-24s %-28s %d\n", o.Label, "", o.TaskCount)
	}
	fmt.Fprintln(w)
}

func init() {
	optionsCmd.Flags().BoolVar(&optionsJSON, "json", false, "Print the options as JSON")
	rootCmd.AddCommand(optionsCmd)
}
