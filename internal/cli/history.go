package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/observability"
)

var (
	historyType    string
	historyLimit   int
	historySince   string
	historySummary bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent matrix computes, exports, and imports",
	Long: `Read the event log (.staffplan_events.jsonl) and list recent events.

Filter by type with --type (e.g. matrix.computed, or matrix.* for every
matrix event) and by age with --since (e.g. 7d, 24h).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}

		filter := observability.EventFilter{Type: historyType, Limit: historyLimit}
		if historySince != "" {
			since, err := parseSince(historySince, Now())
			if err != nil {
				return err
			}
			filter.Since = &since
		}
		if historySummary {
			filter.Limit = 0
		}

		events, err := EventLog.Read(filter)
		if err != nil {
			return fmt.Errorf("reading event log: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No events found.")
			return nil
		}

		if historySummary {
			fmt.Fprintf(out, "  %-20s %s\n", "TYPE", "COUNT")
			for _, c := range observability.CountByType(events) {
				fmt.Fprintf(out, "  %-20s %d\n", c.Type, c.Count)
			}
			return nil
		}

		fmt.Fprintf(out, "  %-20s %-18s %s\n", "TIME", "TYPE", "DETAILS")
		for _, e := range events {
			fmt.Fprintf(out, "  %-20s %-18s %s\n", e.Time.Local().Format("2006-01-02 15:04:05"), e.Type, formatEventData(e.Data))
		}
		return nil
	},
}

func formatEventData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return strings.Join(parts, " ")
}

// parseSince parses a human-friendly duration string like "7d" or "24h"
// into the corresponding time before now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}

func init() {
	historyCmd.Flags().StringVar(&historyType, "type", "", "Only show events of this type (suffix .* matches a prefix)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Show at most this many recent events")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only show events newer than this (e.g. 7d, 24h)")
	historyCmd.Flags().BoolVar(&historySummary, "summary", false, "Count events by type instead of listing them")
	rootCmd.AddCommand(historyCmd)
}
