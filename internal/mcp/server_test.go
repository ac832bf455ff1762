package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/internal/storage"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// --- Fake implementations ---

type memorySource struct {
	ds  *models.Dataset
	err error
}

func (m *memorySource) Load(context.Context) (*models.Dataset, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := *m.ds
	return &out, nil
}

type fakeEvents struct {
	mu    sync.Mutex
	types []string
	data  []map[string]any
}

func (f *fakeEvents) LogEvent(eventType string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, eventType)
	f.data = append(f.data, data)
	return nil
}

// --- Helpers ---

var testNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func testDefaults() core.RequestDefaults {
	return core.RequestDefaults{
		Grouping: models.GroupBySkill,
		Start:    "2025-01",
		Months:   3,
		Now:      func() time.Time { return testNow },
	}
}

func newTestServer(t *testing.T, events core.EventLogger) *Server {
	t.Helper()
	ds := storage.SampleDataset(testNow)
	ds.Version = "test-v1"
	src := &memorySource{ds: ds}
	return NewServer(core.NewDemandService(src), src, events, testDefaults(), "test")
}

func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	// Connect server (non-blocking).
	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}

	return result
}

// decode reads the tool output from structured content, falling back to
// the text content.
func decode(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}
	var data []byte
	if result.StructuredContent != nil {
		data, _ = json.Marshal(result.StructuredContent)
	} else {
		data = []byte(extractText(result))
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshalling output: %v (data was: %s)", err, data)
	}
}

// extractText extracts the text from the first TextContent in a CallToolResult.
func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func findCell(cells []cellOutput, group, month string) *cellOutput {
	for i := range cells {
		if cells[i].Group == group && cells[i].Month == month {
			return &cells[i]
		}
	}
	return nil
}

// --- Tests ---

func TestBuildMatrix_Defaults(t *testing.T) {
	srv := newTestServer(t, nil)

	var out buildMatrixOutput
	decode(t, callTool(t, srv, "build_matrix", map[string]any{}), &out)

	if out.GroupingMode != "skill" || len(out.Months) != 3 || out.Months[0].Key != "2025-01" {
		t.Fatalf("mode=%s months=%v", out.GroupingMode, out.Months)
	}
	if c := findCell(out.Cells, "Senior", "2025-01"); c == nil || c.DemandHours != 20 {
		t.Errorf("Senior 2025-01 = %+v, want 20 hours", c)
	}
	if c := findCell(out.Cells, "CPA", "2025-03"); c == nil || c.DemandHours != 30 {
		t.Errorf("CPA 2025-03 = %+v, want 30 hours", c)
	}
	for _, c := range out.Cells {
		if len(c.Tasks) != 0 {
			t.Fatal("tasks must be omitted unless include_breakdown is set")
		}
	}
	if out.RevenueTotals != nil {
		t.Error("revenue must be absent in skill grouping")
	}
	if out.Issues == nil {
		t.Error("issues should be an empty list, not null")
	}
}

func TestBuildMatrix_ClientRevenueAndBreakdown(t *testing.T) {
	srv := newTestServer(t, nil)

	var out buildMatrixOutput
	decode(t, callTool(t, srv, "build_matrix", map[string]any{
		"grouping":          "client",
		"with_revenue":      true,
		"include_breakdown": true,
	}), &out)

	if out.GroupingMode != "client" {
		t.Fatalf("mode = %s", out.GroupingMode)
	}
	if len(out.Groups) != 2 || out.Groups[0].Key != "client-acme" || out.Groups[0].Label != "Acme Corp" {
		t.Errorf("groups = %+v", out.Groups)
	}
	if out.RevenueTotals == nil || out.RevenueTotals.TotalExpectedRevenue != 85000 {
		t.Errorf("revenue totals = %+v", out.RevenueTotals)
	}
	c := findCell(out.Cells, "client-acme", "2025-01")
	if c == nil || len(c.Tasks) == 0 || c.SuggestedRevenue <= 0 {
		t.Errorf("acme 2025-01 = %+v", c)
	}
}

func TestBuildMatrix_Filters(t *testing.T) {
	srv := newTestServer(t, nil)

	var out buildMatrixOutput
	decode(t, callTool(t, srv, "build_matrix", map[string]any{
		"skills":      []string{"senior", "CPA"},
		"staff_mode":  "none",
		"preset":      "custom",
		"range_start": 2,
		"range_end":   2,
	}), &out)

	if len(out.Months) != 1 || out.Months[0].Key != "2025-03" {
		t.Fatalf("months = %v", out.Months)
	}
	if len(out.Groups) != 1 || out.Groups[0].Key != "CPA" || out.TotalDemand != 30 {
		t.Errorf("groups = %+v total = %v", out.Groups, out.TotalDemand)
	}
}

func TestBuildMatrix_InvalidRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"grouping", map[string]any{"grouping": "team"}, "grouping"},
		{"staff mode", map[string]any{"staff_mode": "maybe"}, "staff"},
		{"start", map[string]any{"start": "January"}, "horizon"},
		{"custom range", map[string]any{"preset": "custom", "range_start": 1}, "range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, srv, "build_matrix", tt.args)
			if !result.IsError {
				t.Fatal("expected an error result")
			}
			if text := extractText(result); !strings.Contains(strings.ToLower(text), tt.want) {
				t.Errorf("error %q does not mention %q", text, tt.want)
			}
		})
	}
}

func TestDrillDown(t *testing.T) {
	srv := newTestServer(t, nil)

	var cell drillDownOutput
	decode(t, callTool(t, srv, "drill_down", map[string]any{"group": "Senior", "month": "2025-01"}), &cell)
	if cell.Group != "Senior" || cell.DemandHours != 20 || cell.TaskCount != 1 || len(cell.Tasks) != 1 {
		t.Fatalf("cell = %+v", cell)
	}
	if cell.Tasks[0].TaskID != "acme-quarterly-review" {
		t.Errorf("task = %s", cell.Tasks[0].TaskID)
	}

	var row drillDownOutput
	decode(t, callTool(t, srv, "drill_down", map[string]any{"group": "Acme Corp", "grouping": "client"}), &row)
	if row.Group != "client-acme" || row.GroupLabel != "Acme Corp" || len(row.Tasks) == 0 {
		t.Errorf("row = %+v", row)
	}
	for _, task := range row.Tasks {
		if task.ClientID != "client-acme" {
			t.Errorf("row contains %s of %s", task.TaskID, task.ClientID)
		}
	}
}

func TestDrillDown_Errors(t *testing.T) {
	srv := newTestServer(t, nil)

	if result := callTool(t, srv, "drill_down", map[string]any{"group": ""}); !result.IsError {
		t.Error("expected an error for an empty group")
	}
	result := callTool(t, srv, "drill_down", map[string]any{"group": "Partner"})
	if !result.IsError || !strings.Contains(extractText(result), "no demand") {
		t.Errorf("expected a no-demand error, got %q", extractText(result))
	}
}

func TestExportMatrix(t *testing.T) {
	events := &fakeEvents{}
	srv := newTestServer(t, events)

	var out exportMatrixOutput
	decode(t, callTool(t, srv, "export_matrix", map[string]any{}), &out)
	if out.Filename != "demand-matrix-skill-2025-01-15.csv" || out.MIMEType != "text/csv" {
		t.Errorf("artifact = %s (%s)", out.Filename, out.MIMEType)
	}
	if !strings.HasPrefix(out.Content, "Group Name,Month,Month Label,Demand Hours") {
		t.Errorf("unexpected csv content: %q", out.Content)
	}
	if len(events.types) != 1 || events.types[0] != core.EventMatrixExported || events.data[0]["via"] != "mcp" {
		t.Errorf("events = %v %v", events.types, events.data)
	}

	var js exportMatrixOutput
	decode(t, callTool(t, srv, "export_matrix", map[string]any{
		"format":                 "json",
		"grouping":               "client",
		"with_revenue":           true,
		"include_revenue":        true,
		"include_client_summary": true,
	}), &js)
	if js.Filename != "demand-matrix-client-2025-01-15.json" || js.MIMEType != "application/json" {
		t.Errorf("artifact = %s (%s)", js.Filename, js.MIMEType)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(js.Content), &doc); err != nil {
		t.Fatalf("export is not json: %v", err)
	}
	if doc["revenueTotals"] == nil || doc["clientSummary"] == nil {
		t.Errorf("missing sections in %v", doc)
	}
}

func TestExportMatrix_Errors(t *testing.T) {
	srv := newTestServer(t, nil)

	result := callTool(t, srv, "export_matrix", map[string]any{"format": "xlsx"})
	if !result.IsError {
		t.Error("expected an error for an unsupported format")
	}

	result = callTool(t, srv, "export_matrix", map[string]any{"grouping": "client", "include_revenue": true})
	if !result.IsError || !strings.Contains(extractText(result), "with_revenue") {
		t.Errorf("expected a with_revenue hint, got %q", extractText(result))
	}
}

func TestValidateMatrix(t *testing.T) {
	srv := newTestServer(t, nil)

	var out validateMatrixOutput
	decode(t, callTool(t, srv, "validate_matrix", map[string]any{}), &out)
	if out.HasCritical {
		t.Errorf("sample data should have no critical issues: %+v", out.Issues)
	}
	if out.Count != len(out.Issues) {
		t.Errorf("count %d != %d issues", out.Count, len(out.Issues))
	}
}

func TestListFilterOptions(t *testing.T) {
	srv := newTestServer(t, nil)

	var out core.FilterOptions
	decode(t, callTool(t, srv, "list_filter_options", map[string]any{}), &out)
	if len(out.Clients) != 2 || out.Clients[0].Label != "Acme Corp" || out.Clients[0].TaskCount != 2 {
		t.Errorf("clients = %+v", out.Clients)
	}
	if len(out.Staff) != 2 || out.Unassigned != 2 {
		t.Errorf("staff = %+v unassigned = %d", out.Staff, out.Unassigned)
	}
}

func TestTools_WithoutServices(t *testing.T) {
	srv := NewServer(nil, nil, nil, testDefaults(), "")

	for _, tool := range []string{"build_matrix", "export_matrix", "validate_matrix", "list_filter_options"} {
		if result := callTool(t, srv, tool, map[string]any{}); !result.IsError {
			t.Errorf("%s: expected an error without services", tool)
		}
	}

	failing := &memorySource{err: errors.New("unreadable")}
	srv = NewServer(core.NewDemandService(failing), failing, nil, testDefaults(), "test")
	result := callTool(t, srv, "build_matrix", map[string]any{})
	if !result.IsError || !strings.Contains(extractText(result), "unreadable") {
		t.Errorf("expected the load error, got %q", extractText(result))
	}
}
