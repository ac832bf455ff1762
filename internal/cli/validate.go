package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

var (
	validateOpts     matrixFlags
	validateSeverity string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report data-quality and integrity issues",
	Long: `Build the matrix and list every issue found: skipped or malformed
assignments, unknown skills, skills without capacity, empty months, clients
without rates (with --revenue), and internal consistency failures.

Exits with an error when any critical issue is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := validateOpts.compute(cmd)
		if err != nil {
			return fmt.Errorf("computing matrix: %w", err)
		}
		out := cmd.OutOrStdout()

		min := models.IssueSeverity(validateSeverity)
		switch min {
		case models.SeverityInfo, models.SeverityWarning, models.SeverityCritical:
		default:
			return fmt.Errorf("invalid --min-severity %q (use info, warning, or critical)", validateSeverity)
		}

		var shown []models.ValidationIssue
		for _, issue := range result.Issues {
			if countAtLeast([]models.ValidationIssue{issue}, min) == 1 {
				shown = append(shown, issue)
			}
		}
		if len(shown) == 0 {
			fmt.Fprintln(out, "No issues found.")
		} else {
			fmt.Fprintf(out, "== ISSUES (%d) ==\n", len(shown))
			for _, line := range core.IssueMessages(shown) {
				fmt.Fprintf(out, "  %s\n", line)
			}
		}

		if core.HasCritical(result.Issues) {
			return fmt.Errorf("matrix failed integrity checks")
		}
		return nil
	},
}

func init() {
	validateOpts.register(validateCmd)
	validateCmd.Flags().StringVar(&validateSeverity, "min-severity", string(models.SeverityInfo), "Lowest severity to list: info, warning, critical")
	rootCmd.AddCommand(validateCmd)
}
