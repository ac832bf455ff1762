package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
)

// ProjectInit is the ProjectInitializer used by the init command.
// Set during application wiring.
var ProjectInit core.ProjectInitializer

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a staffplan workspace",
	Long: `Write a .staffplan.yaml configuration and, unless --no-sample is given, a
small example dataset to get started with.

Safe to run on existing workspaces -- files that already exist are skipped
and not overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ProjectInit == nil {
			return fmt.Errorf("project initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		dataset, _ := cmd.Flags().GetString("dataset")
		exportDir, _ := cmd.Flags().GetString("export-dir")
		noSample, _ := cmd.Flags().GetBool("no-sample")

		result, err := ProjectInit.Init(core.InitConfig{
			BasePath:    absPath,
			DatasetFile: dataset,
			ExportDir:   exportDir,
			Start:       Now(),
			Sample:      !noSample,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(result.Created) > 0 {
			fmt.Fprintln(out, "Created:")
			for _, p := range result.Created {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Fprintf(out, "  %s\n", rel)
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Fprintln(out, "Skipped (already exist):")
			for _, p := range result.Skipped {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Fprintf(out, "  %s\n", rel)
			}
		}

		fmt.Fprintf(out, "\nWorkspace initialized at %s\n", absPath)
		return nil
	},
}

func init() {
	initCmd.Flags().String("dataset", "staffplan.yaml", "Dataset file name (.yaml, .toml, or .json)")
	initCmd.Flags().String("export-dir", "exports", "Directory exports are written to")
	initCmd.Flags().Bool("no-sample", false, "Do not write the example dataset")
	rootCmd.AddCommand(initCmd)
}
