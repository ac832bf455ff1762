package core

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

func acmeMatrix(t *testing.T) *models.DemandMatrixData {
	t.Helper()
	return mustBuild(t, []models.RecurringTaskAssignment{monthly("acme-1", "client-acme", "Acme", models.SkillSenior, 10)},
		mustHorizon(t, "2025-01", 3), models.GroupBySkill)
}

func readCSV(t *testing.T, content string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}
	return rows
}

func TestExportFilenameAndMIME(t *testing.T) {
	now := time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC)
	if got := ExportFilename(models.GroupByClient, models.FormatCSV, now); got != "demand-matrix-client-2025-03-04.csv" {
		t.Errorf("ExportFilename = %q", got)
	}

	artifact, err := ExportMatrix(acmeMatrix(t), models.ExportOptions{}, models.FormatJSON, now)
	if err != nil {
		t.Fatalf("ExportMatrix: %v", err)
	}
	if artifact.Filename != "demand-matrix-skill-2025-03-04.json" || artifact.MIMEType != "application/json" {
		t.Errorf("artifact = %q, %q", artifact.Filename, artifact.MIMEType)
	}
	if mime, _ := MIMEType(models.FormatCSV); mime != "text/csv" {
		t.Errorf("csv MIME = %q", mime)
	}
	if _, err := MIMEType("xlsx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("xlsx: err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSerializeMatrix_Errors(t *testing.T) {
	if _, err := SerializeMatrix(nil, models.ExportOptions{}, models.FormatCSV); !errors.Is(err, ErrNilMatrix) {
		t.Errorf("nil: err = %v", err)
	}
	if _, err := SerializeMatrix(acmeMatrix(t), models.ExportOptions{}, "xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("xml: err = %v", err)
	}

	client := mustBuild(t, sampleAssignments(), mustHorizon(t, "2025-01", 3), models.GroupByClient)
	if _, err := SerializeMatrix(client, models.ExportOptions{IncludeRevenue: true}, models.FormatCSV); !errors.Is(err, ErrRevenueNotApplied) {
		t.Errorf("unannotated revenue: err = %v, want ErrRevenueNotApplied", err)
	}
	// Skill matrices ignore the revenue option.
	if _, err := SerializeMatrix(acmeMatrix(t), models.ExportOptions{IncludeRevenue: true}, models.FormatCSV); err != nil {
		t.Errorf("skill matrix with revenue option: %v", err)
	}
}

func TestSerializeCSV(t *testing.T) {
	content, err := SerializeMatrix(acmeMatrix(t), models.ExportOptions{IncludeTaskBreakdown: true}, models.FormatCSV)
	if err != nil {
		t.Fatalf("SerializeMatrix: %v", err)
	}
	rows := readCSV(t, content)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	wantHeader := []string{"Group Name", "Month", "Month Label", "Demand Hours", "Task Count", "Client Count", "Task Breakdown"}
	if strings.Join(rows[0], "|") != strings.Join(wantHeader, "|") {
		t.Errorf("header = %v", rows[0])
	}
	wantRow := []string{"Senior", "2025-01", "Jan 2025", "10.0", "1", "1", "acme-1 (Acme): 10.0h"}
	if strings.Join(rows[1], "|") != strings.Join(wantRow, "|") {
		t.Errorf("row = %v, want %v", rows[1], wantRow)
	}
}

func TestSerializeCSV_RevenueColumns(t *testing.T) {
	m := AnnotateRevenue(revenueFixture(t), map[string]float64{"c1": 150}, map[string]float64{"c1": 1000})
	content, err := SerializeMatrix(m, models.ExportOptions{IncludeRevenue: true}, models.FormatCSV)
	if err != nil {
		t.Fatalf("SerializeMatrix: %v", err)
	}
	rows := readCSV(t, content)
	if got := rows[0][len(rows[0])-1]; got != "Expected Less Suggested" {
		t.Errorf("last header = %q", got)
	}
	// Acme is the first client group; its row uses the client name.
	first := rows[1]
	if first[0] != "Acme" || first[6] != "150.0" || first[7] != "1500.0" || first[8] != "-2000.0" {
		t.Errorf("first row = %v", first)
	}
}

func TestSerializeCSV_JSONOnlySectionsIgnored(t *testing.T) {
	m := AnnotateRevenue(revenueFixture(t), map[string]float64{"c1": 150}, map[string]float64{"c1": 1000})
	plain, err := SerializeMatrix(m, models.ExportOptions{}, models.FormatCSV)
	if err != nil {
		t.Fatalf("SerializeMatrix: %v", err)
	}
	opts := models.ExportOptions{IncludeClientSummary: true, IncludeRecurrenceSummary: true, IncludeTrendAnalysis: true}
	withSections, err := SerializeMatrix(m, opts, models.FormatCSV)
	if err != nil {
		t.Fatalf("SerializeMatrix with sections: %v", err)
	}
	if withSections != plain {
		t.Errorf("csv changed with JSON-only sections:\n%s\nvs\n%s", withSections, plain)
	}

	doc, err := SerializeMatrix(m, models.ExportOptions{IncludeClientSummary: true}, models.FormatJSON)
	if err != nil {
		t.Fatalf("SerializeMatrix json: %v", err)
	}
	if !strings.Contains(doc, `"clientSummary"`) {
		t.Error("json export is missing the client summary")
	}
}

func TestSerializeJSON_RoundTrip(t *testing.T) {
	m := mustBuild(t, sampleAssignments(), mustHorizon(t, "2025-01", 6), models.GroupBySkill)
	content, err := SerializeMatrix(m, models.ExportOptions{IncludeTaskBreakdown: true}, models.FormatJSON)
	if err != nil {
		t.Fatalf("SerializeMatrix: %v", err)
	}

	var doc exportDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if doc.Metadata.TotalDemand != m.TotalDemand {
		t.Errorf("TotalDemand = %v, want %v", doc.Metadata.TotalDemand, m.TotalDemand)
	}
	if doc.Metadata.StartMonth != "2025-01" || doc.Metadata.EndMonth != "2025-06" {
		t.Errorf("months = %s..%s", doc.Metadata.StartMonth, doc.Metadata.EndMonth)
	}
	if len(doc.MatrixData) != len(m.DataPoints) {
		t.Fatalf("cells = %d, want %d", len(doc.MatrixData), len(m.DataPoints))
	}
	for i, dp := range doc.MatrixData {
		src := m.DataPoints[i]
		if dp.Group != src.SkillType || dp.Month != src.Month || dp.DemandHours != src.DemandHours {
			t.Errorf("cell %d = %+v, want %s/%s %v", i, dp, src.SkillType, src.Month, src.DemandHours)
		}
		if len(dp.TaskBreakdown) != src.TaskCount {
			t.Errorf("cell %d breakdown = %d, want %d", i, len(dp.TaskBreakdown), src.TaskCount)
		}
	}
	if doc.ClientSummary != nil || doc.RevenueTotals != nil {
		t.Error("client sections must be absent in skill mode")
	}
}

func TestSerializeJSON_OptionalSections(t *testing.T) {
	m := AnnotateRevenue(
		mustBuild(t, sampleAssignments(), mustHorizon(t, "2025-01", 3), models.GroupByClient),
		map[string]float64{"client-acme": 150, "client-globex": 120},
		map[string]float64{"client-acme": 60000},
	)
	opts := models.ExportOptions{
		IncludeClientSummary:     true,
		IncludeRevenue:           true,
		IncludeRecurrenceSummary: true,
		IncludeTrendAnalysis:     true,
	}
	content, err := SerializeMatrix(m, opts, models.FormatJSON)
	if err != nil {
		t.Fatalf("SerializeMatrix: %v", err)
	}
	var doc exportDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		t.Fatalf("parsing export: %v", err)
	}

	if len(doc.ClientSummary) != 2 || doc.ClientSummary[0].ClientName != "Acme" {
		t.Fatalf("client summary = %+v", doc.ClientSummary)
	}
	acme := doc.ClientSummary[0]
	if acme.TotalHours != 50 || acme.MonthsWithDemand != 3 || acme.HourlyRate == nil || *acme.HourlyRate != 150 {
		t.Errorf("acme summary = %+v", acme)
	}
	if doc.RevenueTotals == nil || doc.RevenueTotals.TotalExpectedRevenue != 60000 {
		t.Errorf("revenue totals = %+v", doc.RevenueTotals)
	}
	if doc.MatrixData[0].SuggestedRevenue == nil {
		t.Error("cells should carry suggested revenue")
	}
	if len(doc.RecurrencePatterns) == 0 || len(doc.Trends) == 0 {
		t.Error("expected recurrence and trend sections")
	}
}

func TestSummarizeRecurrence(t *testing.T) {
	m := mustBuild(t, sampleAssignments(), mustHorizon(t, "2025-01", 3), models.GroupBySkill)
	got := SummarizeRecurrence(m)

	want := []RecurrencePatternSummary{
		{Type: models.RecurrenceWeekly, TaskCount: 1, ContributionCount: 3, TotalHours: 32},
		{Type: models.RecurrenceMonthly, TaskCount: 2, ContributionCount: 6, TotalHours: 45},
		{Type: models.RecurrenceQuarterly, TaskCount: 1, ContributionCount: 1, TotalHours: 20},
	}
	if len(got) != len(want) {
		t.Fatalf("SummarizeRecurrence = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("summary[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAnalyzeTrends(t *testing.T) {
	m := mustBuild(t, sampleAssignments(), mustHorizon(t, "2025-01", 4), models.GroupBySkill)
	trends := AnalyzeTrends(m)

	byKey := map[string]TrendPoint{}
	for _, tp := range trends {
		byKey[tp.Group+"|"+tp.Month] = tp
	}
	// Senior: 20h in January, nothing in February or March, 20h in April.
	if tp := byKey["Senior|2025-02"]; tp.ChangePercent == nil || *tp.ChangePercent != -100 {
		t.Errorf("Senior Feb = %+v, want -100%%", tp)
	}
	if tp := byKey["Senior|2025-04"]; tp.ChangePercent != nil || tp.DemandHours != 20 {
		t.Errorf("Senior Apr = %+v, want nil change after an empty month", tp)
	}
	if tp := byKey["CPA|2025-03"]; tp.ChangePercent == nil || *tp.ChangePercent != 0 {
		t.Errorf("CPA Mar = %+v, want 0%%", tp)
	}
	if len(trends) != len(m.Skills)*3 {
		t.Errorf("len(trends) = %d, want %d", len(trends), len(m.Skills)*3)
	}
}
