package models

// GroupingMode selects what the rows of a demand matrix represent.
type GroupingMode string

const (
	GroupBySkill  GroupingMode = "skill"
	GroupByClient GroupingMode = "client"
)

// MonthDescriptor identifies one month of the reporting horizon.
type MonthDescriptor struct {
	Key   string `json:"key"`   // "2006-01"
	Label string `json:"label"` // "Jan 2006"
}

// TaskContribution is one row of a cell's breakdown: the hours a single
// recurring task contributes in one specific month.
type TaskContribution struct {
	TaskID             string            `json:"taskId"`
	ClientID           string            `json:"clientId"`
	ClientName         string            `json:"clientName"`
	TaskName           string            `json:"taskName"`
	SkillType          SkillType         `json:"skillType"`
	MonthlyHours       float64           `json:"monthlyHours"`
	EstimatedHours     float64           `json:"estimatedHours"`
	RecurrencePattern  RecurrencePattern `json:"recurrencePattern"`
	PreferredStaffID   *string           `json:"preferredStaffId,omitempty"`
	PreferredStaffName *string           `json:"preferredStaffName,omitempty"`
}

// DemandDataPoint is one (group, month) cell of the matrix. In client
// grouping mode SkillType carries the client id.
type DemandDataPoint struct {
	SkillType     string             `json:"skillType"`
	Month         string             `json:"month"`
	MonthLabel    string             `json:"monthLabel"`
	DemandHours   float64            `json:"demandHours"`
	TaskCount     int                `json:"taskCount"`
	ClientCount   int                `json:"clientCount"`
	TaskBreakdown []TaskContribution `json:"taskBreakdown"`

	HourlyRate       float64 `json:"hourlyRate,omitempty"`
	SuggestedRevenue float64 `json:"suggestedRevenue,omitempty"`
}

// SkillSummary aggregates one group across all visible months.
type SkillSummary struct {
	TotalHours  float64 `json:"totalHours"`
	TaskCount   int     `json:"taskCount"`
	ClientCount int     `json:"clientCount"`
}

// ClientRevenue holds revenue figures for one client (client mode only).
type ClientRevenue struct {
	HourlyRate            float64 `json:"hourlyRate"`
	TotalHours            float64 `json:"totalHours"`
	SuggestedRevenue      float64 `json:"suggestedRevenue"`
	ExpectedRevenue       float64 `json:"expectedRevenue"`
	ExpectedLessSuggested float64 `json:"expectedLessSuggested"`
}

// RevenueTotals sums ClientRevenue across all clients of a matrix.
type RevenueTotals struct {
	TotalSuggestedRevenue      float64 `json:"totalSuggestedRevenue"`
	TotalExpectedRevenue       float64 `json:"totalExpectedRevenue"`
	TotalExpectedLessSuggested float64 `json:"totalExpectedLessSuggested"`
}

// DemandMatrixData is the full demand grid. Horizon is the horizon the
// matrix was built over; Months is the visible window of it.
type DemandMatrixData struct {
	GroupingMode  GroupingMode             `json:"groupingMode"`
	Horizon       []MonthDescriptor        `json:"horizon"`
	Months        []MonthDescriptor        `json:"months"`
	Skills        []string                 `json:"skills"`
	DataPoints    []DemandDataPoint        `json:"dataPoints"`
	TotalDemand   float64                  `json:"totalDemand"`
	TotalTasks    int                      `json:"totalTasks"`
	TotalClients  int                      `json:"totalClients"`
	SkillSummary  map[string]SkillSummary  `json:"skillSummary"`
	GroupLabels   map[string]string        `json:"groupLabels,omitempty"`
	ClientRevenue map[string]ClientRevenue `json:"clientRevenue,omitempty"`
	RevenueTotals *RevenueTotals           `json:"revenueTotals,omitempty"`
}

// GroupLabel returns the display name for a group key.
func (m *DemandMatrixData) GroupLabel(key string) string {
	if m == nil {
		return key
	}
	if label, ok := m.GroupLabels[key]; ok && label != "" {
		return label
	}
	return key
}

// FindDataPoint returns the cell for (groupKey, monthKey), or nil.
func (m *DemandMatrixData) FindDataPoint(groupKey, monthKey string) *DemandDataPoint {
	if m == nil {
		return nil
	}
	for i := range m.DataPoints {
		if m.DataPoints[i].SkillType == groupKey && m.DataPoints[i].Month == monthKey {
			return &m.DataPoints[i]
		}
	}
	return nil
}

// HasRevenue reports whether revenue annotation has been applied.
func (m *DemandMatrixData) HasRevenue() bool {
	return m != nil && m.RevenueTotals != nil
}
