package core

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// recurrenceOrder fixes the order recurrence summaries are reported in.
var recurrenceOrder = []models.RecurrenceType{
	models.RecurrenceDaily,
	models.RecurrenceWeekly,
	models.RecurrenceMonthly,
	models.RecurrenceQuarterly,
	models.RecurrenceAnnually,
}

// RecurrencePatternSummary aggregates contributions by recurrence type.
type RecurrencePatternSummary struct {
	Type              models.RecurrenceType `json:"type"`
	TaskCount         int                   `json:"taskCount"`
	ContributionCount int                   `json:"contributionCount"`
	TotalHours        float64               `json:"totalHours"`
}

// TrendPoint is the month-over-month change of one group. ChangePercent is
// nil when the previous month had no demand.
type TrendPoint struct {
	Group         string   `json:"group"`
	GroupName     string   `json:"groupName"`
	Month         string   `json:"month"`
	PreviousHours float64  `json:"previousHours"`
	DemandHours   float64  `json:"demandHours"`
	ChangePercent *float64 `json:"changePercent"`
}

// ClientSummary is one client's row in a client-mode export.
type ClientSummary struct {
	ClientID              string   `json:"clientId"`
	ClientName            string   `json:"clientName"`
	TotalHours            float64  `json:"totalHours"`
	TaskCount             int      `json:"taskCount"`
	MonthsWithDemand      int      `json:"monthsWithDemand"`
	HourlyRate            *float64 `json:"hourlyRate,omitempty"`
	SuggestedRevenue      *float64 `json:"suggestedRevenue,omitempty"`
	ExpectedRevenue       *float64 `json:"expectedRevenue,omitempty"`
	ExpectedLessSuggested *float64 `json:"expectedLessSuggested,omitempty"`
}

type exportMetadata struct {
	GroupingMode   models.GroupingMode  `json:"groupingMode"`
	Months         []string             `json:"months"`
	StartMonth     string               `json:"startMonth,omitempty"`
	EndMonth       string               `json:"endMonth,omitempty"`
	Groups         []string             `json:"groups"`
	TotalDemand    float64              `json:"totalDemand"`
	TotalTasks     int                  `json:"totalTasks"`
	TotalClients   int                  `json:"totalClients"`
	DataPointCount int                  `json:"dataPointCount"`
	Options        models.ExportOptions `json:"options"`
}

type exportDataPoint struct {
	Group            string                    `json:"group"`
	GroupName        string                    `json:"groupName"`
	Month            string                    `json:"month"`
	MonthLabel       string                    `json:"monthLabel"`
	DemandHours      float64                   `json:"demandHours"`
	TaskCount        int                       `json:"taskCount"`
	ClientCount      int                       `json:"clientCount"`
	HourlyRate       *float64                  `json:"hourlyRate,omitempty"`
	SuggestedRevenue *float64                  `json:"suggestedRevenue,omitempty"`
	TaskBreakdown    []models.TaskContribution `json:"taskBreakdown,omitempty"`
}

type exportDocument struct {
	Metadata           exportMetadata             `json:"metadata"`
	MatrixData         []exportDataPoint          `json:"matrixData"`
	ClientSummary      []ClientSummary            `json:"clientSummary,omitempty"`
	RevenueTotals      *models.RevenueTotals      `json:"revenueTotals,omitempty"`
	RecurrencePatterns []RecurrencePatternSummary `json:"recurrencePatterns,omitempty"`
	Trends             []TrendPoint               `json:"trends,omitempty"`
}

// SerializeMatrix renders matrix in the given format. Client summary and
// revenue sections only apply to client-grouped matrices; asking for
// revenue on a client matrix that was never annotated is an error.
// CSV has no place for the client summary, so that option only shapes JSON.
func SerializeMatrix(matrix *models.DemandMatrixData, opts models.ExportOptions, format models.ExportFormat) (string, error) {
	if matrix == nil {
		return "", ErrNilMatrix
	}
	if format != models.FormatCSV && format != models.FormatJSON {
		return "", fmt.Errorf("%w: %q (use csv or json)", ErrUnsupportedFormat, format)
	}
	withRevenue, err := revenueApplies(matrix, opts)
	if err != nil {
		return "", err
	}

	if format == models.FormatCSV {
		return serializeCSV(matrix, opts, withRevenue)
	}
	return serializeJSON(matrix, opts, withRevenue)
}

// ExportMatrix serializes matrix and wraps it with a download filename and
// MIME type.
func ExportMatrix(matrix *models.DemandMatrixData, opts models.ExportOptions, format models.ExportFormat, now time.Time) (*models.ExportArtifact, error) {
	content, err := SerializeMatrix(matrix, opts, format)
	if err != nil {
		return nil, err
	}
	mime, err := MIMEType(format)
	if err != nil {
		return nil, err
	}
	return &models.ExportArtifact{
		Filename: ExportFilename(matrix.GroupingMode, format, now),
		MIMEType: mime,
		Content:  content,
	}, nil
}

// ExportFilename returns demand-matrix-<mode>-<YYYY-MM-DD>.<ext>.
func ExportFilename(mode models.GroupingMode, format models.ExportFormat, now time.Time) string {
	return fmt.Sprintf("demand-matrix-%s-%s.%s", mode, now.Format("2006-01-02"), format)
}

// MIMEType returns the content type for an export format.
func MIMEType(format models.ExportFormat) (string, error) {
	switch format {
	case models.FormatCSV:
		return "text/csv", nil
	case models.FormatJSON:
		return "application/json", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func revenueApplies(matrix *models.DemandMatrixData, opts models.ExportOptions) (bool, error) {
	if !opts.IncludeRevenue || matrix.GroupingMode != models.GroupByClient {
		return false, nil
	}
	if !matrix.HasRevenue() {
		return false, fmt.Errorf("%w: annotate the client matrix before exporting revenue columns", ErrRevenueNotApplied)
	}
	return true, nil
}

func serializeCSV(matrix *models.DemandMatrixData, opts models.ExportOptions, withRevenue bool) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Group Name", "Month", "Month Label", "Demand Hours", "Task Count", "Client Count"}
	if withRevenue {
		header = append(header, "Hourly Rate", "Suggested Revenue", "Expected Less Suggested")
	}
	if opts.IncludeTaskBreakdown {
		header = append(header, "Task Breakdown")
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}

	for _, p := range matrix.DataPoints {
		row := []string{
			matrix.GroupLabel(p.SkillType),
			p.Month,
			p.MonthLabel,
			formatDecimal(p.DemandHours),
			strconv.Itoa(p.TaskCount),
			strconv.Itoa(p.ClientCount),
		}
		if withRevenue {
			rev := matrix.ClientRevenue[p.SkillType]
			row = append(row,
				formatDecimal(p.HourlyRate),
				formatDecimal(p.SuggestedRevenue),
				formatDecimal(rev.ExpectedLessSuggested),
			)
		}
		if opts.IncludeTaskBreakdown {
			row = append(row, breakdownSummary(p.TaskBreakdown))
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}
	return buf.String(), nil
}

func serializeJSON(matrix *models.DemandMatrixData, opts models.ExportOptions, withRevenue bool) (string, error) {
	doc := exportDocument{
		Metadata: exportMetadata{
			GroupingMode:   matrix.GroupingMode,
			Months:         make([]string, len(matrix.Months)),
			Groups:         append([]string{}, matrix.Skills...),
			TotalDemand:    matrix.TotalDemand,
			TotalTasks:     matrix.TotalTasks,
			TotalClients:   matrix.TotalClients,
			DataPointCount: len(matrix.DataPoints),
			Options:        opts,
		},
		MatrixData: make([]exportDataPoint, 0, len(matrix.DataPoints)),
	}
	for i, m := range matrix.Months {
		doc.Metadata.Months[i] = m.Key
	}
	if n := len(matrix.Months); n > 0 {
		doc.Metadata.StartMonth = matrix.Months[0].Key
		doc.Metadata.EndMonth = matrix.Months[n-1].Key
	}

	for _, p := range matrix.DataPoints {
		dp := exportDataPoint{
			Group:       p.SkillType,
			GroupName:   matrix.GroupLabel(p.SkillType),
			Month:       p.Month,
			MonthLabel:  p.MonthLabel,
			DemandHours: p.DemandHours,
			TaskCount:   p.TaskCount,
			ClientCount: p.ClientCount,
		}
		if withRevenue {
			rate, suggested := p.HourlyRate, p.SuggestedRevenue
			dp.HourlyRate = &rate
			dp.SuggestedRevenue = &suggested
		}
		if opts.IncludeTaskBreakdown {
			dp.TaskBreakdown = append([]models.TaskContribution{}, p.TaskBreakdown...)
		}
		doc.MatrixData = append(doc.MatrixData, dp)
	}

	if opts.IncludeClientSummary && matrix.GroupingMode == models.GroupByClient {
		doc.ClientSummary = ClientSummaries(matrix, withRevenue)
	}
	if withRevenue {
		totals := *matrix.RevenueTotals
		doc.RevenueTotals = &totals
	}
	if opts.IncludeRecurrenceSummary {
		doc.RecurrencePatterns = SummarizeRecurrence(matrix)
	}
	if opts.IncludeTrendAnalysis {
		doc.Trends = AnalyzeTrends(matrix)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling export: %w", err)
	}
	return string(data), nil
}

// ClientSummaries returns one summary per client group, in group order.
func ClientSummaries(matrix *models.DemandMatrixData, withRevenue bool) []ClientSummary {
	months := make(map[string]int, len(matrix.Skills))
	for _, p := range matrix.DataPoints {
		months[p.SkillType]++
	}

	out := make([]ClientSummary, 0, len(matrix.Skills))
	for _, clientID := range matrix.Skills {
		s := matrix.SkillSummary[clientID]
		row := ClientSummary{
			ClientID:         clientID,
			ClientName:       matrix.GroupLabel(clientID),
			TotalHours:       s.TotalHours,
			TaskCount:        s.TaskCount,
			MonthsWithDemand: months[clientID],
		}
		if withRevenue {
			rev := matrix.ClientRevenue[clientID]
			row.HourlyRate = &rev.HourlyRate
			row.SuggestedRevenue = &rev.SuggestedRevenue
			row.ExpectedRevenue = &rev.ExpectedRevenue
			row.ExpectedLessSuggested = &rev.ExpectedLessSuggested
		}
		out = append(out, row)
	}
	return out
}

// SummarizeRecurrence aggregates every contribution of the matrix by
// recurrence type. Types without contributions are omitted.
func SummarizeRecurrence(matrix *models.DemandMatrixData) []RecurrencePatternSummary {
	byType := make(map[models.RecurrenceType]*RecurrencePatternSummary)
	tasks := make(map[models.RecurrenceType]map[string]struct{})
	for _, p := range matrix.DataPoints {
		for _, c := range p.TaskBreakdown {
			t := c.RecurrencePattern.Type
			s, ok := byType[t]
			if !ok {
				s = &RecurrencePatternSummary{Type: t}
				byType[t] = s
				tasks[t] = make(map[string]struct{})
			}
			s.ContributionCount++
			s.TotalHours = roundHours(s.TotalHours + c.MonthlyHours)
			tasks[t][c.TaskID+"|"+c.ClientID+"|"+c.TaskName] = struct{}{}
		}
	}

	var out []RecurrencePatternSummary
	for _, t := range recurrenceOrder {
		if s, ok := byType[t]; ok {
			s.TaskCount = len(tasks[t])
			out = append(out, *s)
			delete(byType, t)
		}
	}
	var rest []models.RecurrenceType
	for t := range byType {
		rest = append(rest, t)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, t := range rest {
		s := byType[t]
		s.TaskCount = len(tasks[t])
		out = append(out, *s)
	}
	return out
}

// AnalyzeTrends computes month-over-month change for each group over the
// visible months.
func AnalyzeTrends(matrix *models.DemandMatrixData) []TrendPoint {
	var out []TrendPoint
	for _, group := range matrix.Skills {
		for i := 1; i < len(matrix.Months); i++ {
			prev := cellHours(matrix, group, matrix.Months[i-1].Key)
			cur := cellHours(matrix, group, matrix.Months[i].Key)
			tp := TrendPoint{
				Group:         group,
				GroupName:     matrix.GroupLabel(group),
				Month:         matrix.Months[i].Key,
				PreviousHours: prev,
				DemandHours:   cur,
			}
			if prev > 0 {
				pct := roundHours((cur - prev) / prev * 100)
				tp.ChangePercent = &pct
			}
			out = append(out, tp)
		}
	}
	return out
}

func cellHours(matrix *models.DemandMatrixData, group, month string) float64 {
	if p := matrix.FindDataPoint(group, month); p != nil {
		return p.DemandHours
	}
	return 0
}

func breakdownSummary(breakdown []models.TaskContribution) string {
	parts := make([]string, 0, len(breakdown))
	for _, c := range breakdown {
		parts = append(parts, fmt.Sprintf("%s (%s): %sh", c.TaskName, c.ClientName, formatDecimal(c.MonthlyHours)))
	}
	return strings.Join(parts, "; ")
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
