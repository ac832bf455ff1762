package models

// PreferredStaffFilterMode controls how the preferred staff filter treats
// task contributions.
type PreferredStaffFilterMode string

const (
	// StaffFilterAll keeps every contribution regardless of preferred staff.
	StaffFilterAll PreferredStaffFilterMode = "all"
	// StaffFilterSpecific keeps contributions whose preferred staff id is
	// in the selection.
	StaffFilterSpecific PreferredStaffFilterMode = "specific"
	// StaffFilterNone keeps only contributions with no preferred staff.
	StaffFilterNone PreferredStaffFilterMode = "none"
)

// MonthRange is an inclusive, zero-based index window into a horizon.
type MonthRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of months the range covers.
func (r MonthRange) Len() int {
	return r.End - r.Start + 1
}

// MonthPreset names a predefined month window.
type MonthPreset string

const (
	PresetQuarter  MonthPreset = "quarter"
	PresetHalfYear MonthPreset = "half-year"
	PresetYear     MonthPreset = "year"
	PresetCustom   MonthPreset = "custom"
)

// DemandFilters is the filter state applied to a demand matrix. Empty
// slices mean no restriction.
type DemandFilters struct {
	Skills                   []string                 `json:"skills,omitempty"`
	Clients                  []string                 `json:"clients,omitempty"`
	PreferredStaff           []string                 `json:"preferredStaff,omitempty"`
	PreferredStaffFilterMode PreferredStaffFilterMode `json:"preferredStaffFilterMode,omitempty"`
	MonthRange               *MonthRange              `json:"monthRange,omitempty"`
}

// IsEmpty reports whether the filters leave a matrix unchanged.
func (f DemandFilters) IsEmpty() bool {
	mode := f.PreferredStaffFilterMode
	return len(f.Skills) == 0 &&
		len(f.Clients) == 0 &&
		(mode == "" || mode == StaffFilterAll) &&
		f.MonthRange == nil
}
