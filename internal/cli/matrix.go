package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

var (
	matrixOpts       matrixFlags
	matrixJSON       bool
	matrixShowIssues bool
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the monthly demand matrix",
	Long: `Show demand hours per skill (or per client with --group client) for each
month of the horizon.

Filters narrow the matrix to matching tasks: --skill, --client, --staff with
--staff-mode, and a visible month window via --preset or --from/--to.
With --group client --revenue, suggested and expected revenue are shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := matrixOpts.compute(cmd)
		if err != nil {
			return fmt.Errorf("computing matrix: %w", err)
		}
		out := cmd.OutOrStdout()

		if matrixJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Matrix)
		}

		printMatrix(out, result.Matrix)
		if matrixShowIssues {
			printIssues(out, result.Issues)
		} else if n := countAtLeast(result.Issues, models.SeverityWarning); n > 0 {
			fmt.Fprintf(out, "\n%d warning(s); run with --issues or `staffplan validate` for details.\n", n)
		}
		return nil
	},
}

// printMatrix renders a matrix as a fixed-width table with row and column
// totals.
func printMatrix(w io.Writer, m *models.DemandMatrixData) {
	if len(m.Skills) == 0 {
		fmt.Fprintln(w, "No demand in this view.")
		return
	}

	labelWidth := len("GROUP")
	for _, g := range m.Skills {
		if n := len(m.GroupLabel(g)); n > labelWidth {
			labelWidth = n
		}
	}
	const cellWidth = 9

	header := []string{fmt.Sprintf("%-*s", labelWidth, "GROUP")}
	for _, month := range m.Months {
		header = append(header, fmt.Sprintf("%*s", cellWidth, month.Label))
	}
	header = append(header, fmt.Sprintf("%*s", cellWidth, "TOTAL"))
	if m.HasRevenue() {
		header = append(header, fmt.Sprintf("%*s %*s %*s", 11, "SUGGESTED", 11, "EXPECTED", 11, "DIFF"))
	}
	fmt.Fprintln(w, strings.Join(header, " "))

	monthTotals := make([]float64, len(m.Months))
	for _, g := range m.Skills {
		row := []string{fmt.Sprintf("%-*s", labelWidth, m.GroupLabel(g))}
		for i, month := range m.Months {
			hours := 0.0
			if p := m.FindDataPoint(g, month.Key); p != nil {
				hours = p.DemandHours
			}
			monthTotals[i] += hours
			row = append(row, fmt.Sprintf("%*s", cellWidth, formatHours(hours)))
		}
		row = append(row, fmt.Sprintf("%*s", cellWidth, formatHours(m.SkillSummary[g].TotalHours)))
		if m.HasRevenue() {
			rev := m.ClientRevenue[g]
			row = append(row, fmt.Sprintf("%11.2f %11.2f %11.2f", rev.SuggestedRevenue, rev.ExpectedRevenue, rev.ExpectedLessSuggested))
		}
		fmt.Fprintln(w, strings.Join(row, " "))
	}

	footer := []string{fmt.Sprintf("%-*s", labelWidth, "TOTAL")}
	for _, total := range monthTotals {
		footer = append(footer, fmt.Sprintf("%*s", cellWidth, formatHours(total)))
	}
	footer = append(footer, fmt.Sprintf("%*s", cellWidth, formatHours(m.TotalDemand)))
	if m.HasRevenue() {
		t := m.RevenueTotals
		footer = append(footer, fmt.Sprintf("%11.2f %11.2f %11.2f", t.TotalSuggestedRevenue, t.TotalExpectedRevenue, t.TotalExpectedLessSuggested))
	}
	fmt.Fprintln(w, strings.Join(footer, " "))

	fmt.Fprintf(w, "\n%s hours across %d task-months and %d client(s).\n", formatHours(m.TotalDemand), m.TotalTasks, m.TotalClients)
}

func printIssues(w io.Writer, issues []models.ValidationIssue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "\nNo issues found.")
		return
	}
	fmt.Fprintf(w, "\n== ISSUES (%d) ==\n", len(issues))
	for _, line := range core.IssueMessages(issues) {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func countAtLeast(issues []models.ValidationIssue, min models.IssueSeverity) int {
	rank := map[models.IssueSeverity]int{
		models.SeverityInfo:     0,
		models.SeverityWarning:  1,
		models.SeverityCritical: 2,
	}
	n := 0
	for _, issue := range issues {
		if rank[issue.Severity] >= rank[min] {
			n++
		}
	}
	return n
}

func formatHours(h float64) string {
	if h == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", h)
}

func init() {
	matrixOpts.register(matrixCmd)
	matrixCmd.Flags().BoolVar(&matrixJSON, "json", false, "Print the matrix as JSON")
	matrixCmd.Flags().BoolVar(&matrixShowIssues, "issues", false, "List validation issues after the table")
	rootCmd.AddCommand(matrixCmd)
}
