package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

var drilldownOpts matrixFlags

var drilldownCmd = &cobra.Command{
	Use:   "drilldown <group> [month]",
	Short: "List the tasks behind a matrix cell or row",
	Long: `List the recurring tasks that contribute demand to one cell of the matrix.

<group> is a skill name, or a client id or name with --group client.
[month] is a month key (YYYY-MM); omit it to list the whole row.
The same filters as 'staffplan matrix' apply.`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeDrillDownArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := drilldownOpts.compute(cmd)
		if err != nil {
			return fmt.Errorf("computing matrix: %w", err)
		}
		m := result.Matrix
		out := cmd.OutOrStdout()

		key, ok := core.ResolveGroupKey(m, args[0])
		if !ok {
			fmt.Fprintf(out, "No demand for %q in this view.\n", args[0])
			return nil
		}

		if len(args) == 1 {
			tasks := core.ResolveGroupDrillDown(m, key)
			summary := m.SkillSummary[key]
			fmt.Fprintf(out, "== %s: %.1f hours, %d task-months ==\n", m.GroupLabel(key), summary.TotalHours, summary.TaskCount)
			printContributions(out, tasks, m.GroupingMode)
			return nil
		}

		if _, err := core.ParseMonthKey(args[1]); err != nil {
			return err
		}
		detail, found := core.DescribeCell(m, key, args[1])
		if !found {
			fmt.Fprintf(out, "No demand for %s in %s.\n", detail.GroupLabel, args[1])
			return nil
		}
		fmt.Fprintf(out, "== %s / %s: %.1f hours, %d task(s), %d client(s) ==\n",
			detail.GroupLabel, detail.MonthLabel, detail.DemandHours, detail.TaskCount, detail.ClientCount)
		printContributions(out, detail.Tasks, m.GroupingMode)
		return nil
	},
}

// printContributions prints one line per task. The second column is the
// client in skill grouping and the skill in client grouping.
func printContributions(w io.Writer, tasks []models.TaskContribution, mode models.GroupingMode) {
	second := "CLIENT"
	if mode == models.GroupByClient {
		second = "SKILL"
	}
	fmt.Fprintf(w, "  %-24s %-20s %-10s %-10s %8s  %s\n", "TASK", second, "RECURS", "STAFF", "HOURS", "ID")
	for _, c := range tasks {
		col := c.ClientName
		if mode == models.GroupByClient {
			col = string(c.SkillType)
		}
		staff := "-"
		if c.PreferredStaffName != nil {
			staff = *c.PreferredStaffName
		} else if c.PreferredStaffID != nil {
			staff = *c.PreferredStaffID
		}
		fmt.Fprintf(w, "  %-24s %-20s %-10s %-10s %8.1f  %s\n",
			truncate(c.TaskName, 24), truncate(col, 20), c.RecurrencePattern.Type, truncate(staff, 10), c.MonthlyHours, c.TaskID)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func init() {
	drilldownOpts.register(drilldownCmd)
	rootCmd.AddCommand(drilldownCmd)
}
