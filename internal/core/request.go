package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// RequestParams is the loosely typed form of a ComputeRequest accepted by
// the CLI flags and the MCP tools. Empty fields fall back to defaults.
type RequestParams struct {
	Grouping    string
	Start       string // YYYY-MM
	Months      int
	Skills      []string
	Clients     []string
	Staff       []string
	StaffMode   string
	Preset      string
	RangeStart  *int
	RangeEnd    *int
	WithRevenue bool
}

// RequestDefaults supplies the values used for empty RequestParams fields.
type RequestDefaults struct {
	Grouping models.GroupingMode
	Start    string
	Months   int
	Now      func() time.Time
}

// ParseRequest validates params and turns them into a ComputeRequest.
func ParseRequest(params RequestParams, defaults RequestDefaults) (ComputeRequest, error) {
	req := ComputeRequest{WithRevenue: params.WithRevenue}

	grouping := strings.ToLower(strings.TrimSpace(params.Grouping))
	if grouping == "" {
		grouping = string(defaults.Grouping)
	}
	if grouping == "" {
		grouping = string(models.GroupBySkill)
	}
	req.GroupingMode = models.GroupingMode(grouping)
	if !ValidGroupingMode(req.GroupingMode) {
		return ComputeRequest{}, fmt.Errorf("%w: %q (use skill or client)", ErrUnsupportedGrouping, params.Grouping)
	}

	start := params.Start
	if start == "" {
		start = defaults.Start
	}
	if start != "" {
		t, err := ParseMonthKey(start)
		if err != nil {
			return ComputeRequest{}, fmt.Errorf("%w: start month: %v", ErrInvalidHorizon, err)
		}
		req.HorizonStart = t
	} else {
		now := time.Now
		if defaults.Now != nil {
			now = defaults.Now
		}
		req.HorizonStart = firstOfMonth(now())
	}

	req.HorizonMonths = params.Months
	if req.HorizonMonths == 0 {
		req.HorizonMonths = defaults.Months
	}
	if req.HorizonMonths == 0 {
		req.HorizonMonths = DefaultHorizonMonths
	}
	if req.HorizonMonths < 0 {
		return ComputeRequest{}, fmt.Errorf("%w: length must be positive, got %d", ErrInvalidHorizon, req.HorizonMonths)
	}

	req.Filters = models.DemandFilters{
		Skills:         cleanList(params.Skills),
		Clients:        cleanList(params.Clients),
		PreferredStaff: cleanList(params.Staff),
	}
	mode := models.PreferredStaffFilterMode(strings.ToLower(strings.TrimSpace(params.StaffMode)))
	if mode == "" && len(req.Filters.PreferredStaff) > 0 {
		mode = models.StaffFilterSpecific
	}
	switch mode {
	case "", models.StaffFilterAll, models.StaffFilterSpecific, models.StaffFilterNone:
		req.Filters.PreferredStaffFilterMode = mode
	default:
		return ComputeRequest{}, fmt.Errorf("%w: %q (use all, specific, or none)", ErrInvalidStaffMode, params.StaffMode)
	}

	window, err := parseWindow(params, req.HorizonMonths)
	if err != nil {
		return ComputeRequest{}, err
	}
	req.Filters.MonthRange = window
	return req, nil
}

func parseWindow(params RequestParams, horizonLen int) (*models.MonthRange, error) {
	preset := models.MonthPreset(strings.ToLower(strings.TrimSpace(params.Preset)))
	hasRange := params.RangeStart != nil || params.RangeEnd != nil
	if preset == "" && !hasRange {
		return nil, nil
	}
	if preset == "" {
		preset = models.PresetCustom
	}

	if preset != models.PresetCustom && hasRange {
		return nil, fmt.Errorf("%w: preset %s cannot be combined with an explicit start or end", ErrInvalidMonthRange, preset)
	}

	var custom *models.MonthRange
	if preset == models.PresetCustom {
		if params.RangeStart == nil || params.RangeEnd == nil {
			return nil, fmt.Errorf("%w: custom range needs both start and end", ErrInvalidMonthRange)
		}
		custom = &models.MonthRange{Start: *params.RangeStart, End: *params.RangeEnd}
	}
	return PresetRange(preset, horizonLen, custom)
}

// cleanList splits comma-separated entries and drops blanks.
func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
