package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

var (
	exportOpts       matrixFlags
	exportFormat     string
	exportOutput     string
	exportToStdout   bool
	exportBreakdown  bool
	exportClients    bool
	exportRevenue    bool
	exportRecurrence bool
	exportTrends     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the demand matrix as CSV or JSON",
	Long: `Serialize the demand matrix to a file named
demand-matrix-<grouping>-<YYYY-MM-DD>.<ext> in the export directory, or to
the path given with --output.

Optional sections: --breakdown (per-cell tasks), --include-revenue
(requires --group client --revenue), and the JSON only --clients (client
summary), --recurrence and --trends. Section defaults come from export.options in the
config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := models.ExportFormat(exportFormat)
		if _, err := core.MIMEType(format); err != nil {
			return err
		}

		result, err := exportOpts.compute(cmd)
		if err != nil {
			return fmt.Errorf("computing matrix: %w", err)
		}

		opts := exportOptions(cmd)
		artifact, err := core.ExportMatrix(result.Matrix, opts, format, Now())
		if err != nil {
			if errors.Is(err, core.ErrRevenueNotApplied) {
				return fmt.Errorf("%w; pass --revenue with --group client", err)
			}
			return err
		}

		if exportToStdout {
			_, err := fmt.Fprint(cmd.OutOrStdout(), artifact.Content)
			return err
		}

		path := exportOutput
		if path == "" {
			dir := "."
			if Config != nil && Config.Export.Dir != "" {
				dir = Config.Export.Dir
			}
			if !filepath.IsAbs(dir) && BasePath != "" {
				dir = filepath.Join(BasePath, dir)
			}
			path = filepath.Join(dir, artifact.Filename)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(artifact.Content), 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}

		logEvent(core.EventMatrixExported, map[string]any{
			"path":   path,
			"format": string(format),
			"mode":   string(result.Matrix.GroupingMode),
			"bytes":  len(artifact.Content),
		})
		if Logger != nil {
			Logger.Info("matrix exported", "path", path, "format", format)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d bytes)\n", path, len(artifact.Content))
		return nil
	},
}

// exportOptions starts from the configured defaults and applies any
// section flags given explicitly.
func exportOptions(cmd *cobra.Command) models.ExportOptions {
	var opts models.ExportOptions
	if Config != nil {
		opts = Config.Export.Options
	}
	flags := cmd.Flags()
	if flags.Changed("breakdown") {
		opts.IncludeTaskBreakdown = exportBreakdown
	}
	if flags.Changed("clients") {
		opts.IncludeClientSummary = exportClients
	}
	if flags.Changed("include-revenue") {
		opts.IncludeRevenue = exportRevenue
	}
	if flags.Changed("recurrence") {
		opts.IncludeRecurrenceSummary = exportRecurrence
	}
	if flags.Changed("trends") {
		opts.IncludeTrendAnalysis = exportTrends
	}
	return opts
}

func init() {
	exportOpts.register(exportCmd)
	f := exportCmd.Flags()
	f.StringVarP(&exportFormat, "format", "f", string(models.FormatCSV), "Export format: csv or json")
	f.StringVarP(&exportOutput, "output", "o", "", "Write to this path instead of the export directory")
	f.BoolVar(&exportToStdout, "stdout", false, "Write the export to stdout")
	f.BoolVar(&exportBreakdown, "breakdown", false, "Include per-cell task breakdowns")
	f.BoolVar(&exportClients, "clients", false, "Include the client summary (client grouping, JSON)")
	f.BoolVar(&exportRevenue, "include-revenue", false, "Include revenue columns")
	f.BoolVar(&exportRecurrence, "recurrence", false, "Include a recurrence pattern summary (JSON)")
	f.BoolVar(&exportTrends, "trends", false, "Include month-over-month trends (JSON)")
	rootCmd.AddCommand(exportCmd)
}
