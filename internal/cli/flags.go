package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
)

// matrixFlags holds the flags shared by every command that computes a
// matrix. Each command owns its own instance.
type matrixFlags struct {
	grouping   string
	start      string
	months     int
	skills     []string
	clients    []string
	staff      []string
	staffMode  string
	preset     string
	rangeStart int
	rangeEnd   int
	revenue    bool
}

func (f *matrixFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.grouping, "group", "g", "", "Row grouping: skill or client (default from config)")
	fs.StringVar(&f.start, "start", "", "First month of the horizon (YYYY-MM)")
	fs.IntVar(&f.months, "months", 0, "Horizon length in months")
	fs.StringSliceVar(&f.skills, "skill", nil, "Keep only these skills (repeatable or comma-separated)")
	fs.StringSliceVar(&f.clients, "client", nil, "Keep only these client ids")
	fs.StringSliceVar(&f.staff, "staff", nil, "Keep only tasks preferring these staff ids")
	fs.StringVar(&f.staffMode, "staff-mode", "", "Preferred staff filter: all, specific, none")
	fs.StringVar(&f.preset, "preset", "", "Visible window: quarter, half-year, year, custom")
	fs.IntVar(&f.rangeStart, "from", 0, "First visible month index for a custom window")
	fs.IntVar(&f.rangeEnd, "to", 0, "Last visible month index (inclusive) for a custom window")
	fs.BoolVar(&f.revenue, "revenue", false, "Annotate client-grouped matrices with revenue")
	registerMatrixCompletions(cmd)
}

// params converts the flags to request params. The window indices only
// count when --from or --to was given.
func (f *matrixFlags) params(cmd *cobra.Command) core.RequestParams {
	p := core.RequestParams{
		Grouping:    f.grouping,
		Start:       f.start,
		Months:      f.months,
		Skills:      f.skills,
		Clients:     f.clients,
		Staff:       f.staff,
		StaffMode:   f.staffMode,
		Preset:      f.preset,
		WithRevenue: f.revenue,
	}
	if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
		start, end := f.rangeStart, f.rangeEnd
		if !cmd.Flags().Changed("to") {
			end = start
		}
		p.RangeStart = &start
		p.RangeEnd = &end
	}
	return p
}

// compute runs the demand service for the command's flags.
func (f *matrixFlags) compute(cmd *cobra.Command) (*core.ComputeResult, error) {
	if DemandSvc == nil {
		return nil, fmt.Errorf("demand service not initialized")
	}
	req, err := core.ParseRequest(f.params(cmd), requestDefaults())
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return DemandSvc.Compute(ctx, req)
}
