// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the demand matrix engine as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// Server wraps the demand service and exposes it as MCP tools.
type Server struct {
	server   *gomcp.Server
	demand   core.DemandService
	source   core.DataSource
	events   core.EventLogger
	defaults core.RequestDefaults
	now      func() time.Time
}

// NewServer creates an MCP server over the demand service. source feeds
// list_filter_options; events may be nil.
func NewServer(demand core.DemandService, source core.DataSource, events core.EventLogger, defaults core.RequestDefaults, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		demand:   demand,
		source:   source,
		events:   events,
		defaults: defaults,
		now:      time.Now,
	}
	if defaults.Now != nil {
		s.now = defaults.Now
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "staffplan", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

// matrixQuery is embedded in every tool that computes a matrix.
type matrixQuery struct {
	Grouping    string   `json:"grouping,omitempty" jsonschema:"row grouping: skill (default) or client"`
	Start       string   `json:"start,omitempty" jsonschema:"first month of the horizon as YYYY-MM; defaults to the configured or current month"`
	Months      int      `json:"months,omitempty" jsonschema:"horizon length in months (default 12)"`
	Skills      []string `json:"skills,omitempty" jsonschema:"keep only these skills (case-insensitive)"`
	Clients     []string `json:"clients,omitempty" jsonschema:"keep only these client ids"`
	Staff       []string `json:"staff,omitempty" jsonschema:"preferred staff ids used with staff_mode specific"`
	StaffMode   string   `json:"staff_mode,omitempty" jsonschema:"preferred staff filter: all, specific, or none (unassigned only)"`
	Preset      string   `json:"preset,omitempty" jsonschema:"visible month window: quarter, half-year, year, or custom"`
	RangeStart  *int     `json:"range_start,omitempty" jsonschema:"first visible month index (0-based) for a custom window"`
	RangeEnd    *int     `json:"range_end,omitempty" jsonschema:"last visible month index (inclusive) for a custom window"`
	WithRevenue bool     `json:"with_revenue,omitempty" jsonschema:"annotate client-grouped matrices with revenue"`
}

func (q matrixQuery) params() core.RequestParams {
	return core.RequestParams{
		Grouping:    q.Grouping,
		Start:       q.Start,
		Months:      q.Months,
		Skills:      q.Skills,
		Clients:     q.Clients,
		Staff:       q.Staff,
		StaffMode:   q.StaffMode,
		Preset:      q.Preset,
		RangeStart:  q.RangeStart,
		RangeEnd:    q.RangeEnd,
		WithRevenue: q.WithRevenue,
	}
}

type buildMatrixInput struct {
	matrixQuery
	IncludeBreakdown bool `json:"include_breakdown,omitempty" jsonschema:"include per-task contributions in every cell"`
}

type groupOutput struct {
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	TotalHours  float64 `json:"total_hours"`
	TaskCount   int     `json:"task_count"`
	ClientCount int     `json:"client_count"`
}

type cellOutput struct {
	Group            string                    `json:"group"`
	Month            string                    `json:"month"`
	DemandHours      float64                   `json:"demand_hours"`
	TaskCount        int                       `json:"task_count"`
	ClientCount      int                       `json:"client_count"`
	SuggestedRevenue float64                   `json:"suggested_revenue,omitempty"`
	Tasks            []models.TaskContribution `json:"tasks,omitempty"`
}

type buildMatrixOutput struct {
	GroupingMode  string                   `json:"grouping_mode"`
	Months        []models.MonthDescriptor `json:"months"`
	Groups        []groupOutput            `json:"groups"`
	Cells         []cellOutput             `json:"cells"`
	TotalDemand   float64                  `json:"total_demand"`
	TotalTasks    int                      `json:"total_tasks"`
	TotalClients  int                      `json:"total_clients"`
	RevenueTotals *models.RevenueTotals    `json:"revenue_totals,omitempty"`
	Issues        []string                 `json:"issues"`
}

type drillDownInput struct {
	matrixQuery
	Group string `json:"group" jsonschema:"row key or label: a skill name or a client id or name"`
	Month string `json:"month,omitempty" jsonschema:"month key YYYY-MM; omit to list the whole row"`
}

type drillDownOutput struct {
	Group       string                    `json:"group"`
	GroupLabel  string                    `json:"group_label"`
	Month       string                    `json:"month,omitempty"`
	DemandHours float64                   `json:"demand_hours"`
	TaskCount   int                       `json:"task_count"`
	Tasks       []models.TaskContribution `json:"tasks"`
}

type exportMatrixInput struct {
	matrixQuery
	Format                   string `json:"format,omitempty" jsonschema:"csv (default) or json"`
	IncludeTaskBreakdown     bool   `json:"include_task_breakdown,omitempty" jsonschema:"add per-cell task breakdowns"`
	IncludeClientSummary     bool   `json:"include_client_summary,omitempty" jsonschema:"add per-client totals (client grouping)"`
	IncludeRevenue           bool   `json:"include_revenue,omitempty" jsonschema:"add revenue columns (client grouping with with_revenue)"`
	IncludeRecurrenceSummary bool   `json:"include_recurrence_summary,omitempty" jsonschema:"add a recurrence pattern summary (json only)"`
	IncludeTrendAnalysis     bool   `json:"include_trend_analysis,omitempty" jsonschema:"add month-over-month trends (json only)"`
}

type exportMatrixOutput struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Content  string `json:"content"`
}

type validateMatrixInput struct {
	matrixQuery
}

type validateMatrixOutput struct {
	Issues      []models.ValidationIssue `json:"issues"`
	Count       int                      `json:"count"`
	HasCritical bool                     `json:"has_critical"`
}

type listFilterOptionsInput struct{}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "build_matrix",
		Description: "Build the monthly demand matrix (hours per skill or client per month) with optional filters and revenue.",
	}, s.handleBuildMatrix)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "drill_down",
		Description: "List the recurring tasks that contribute to one matrix cell, or to a whole row when month is omitted.",
	}, s.handleDrillDown)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "export_matrix",
		Description: "Serialize the demand matrix as CSV or JSON, with optional breakdown, client summary, revenue, recurrence, and trend sections.",
	}, s.handleExportMatrix)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "validate_matrix",
		Description: "Build the demand matrix and report data-quality and integrity issues.",
	}, s.handleValidateMatrix)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_filter_options",
		Description: "List the skills, clients, and preferred staff that can be used as filters, with task counts.",
	}, s.handleListFilterOptions)
}

// --- Tool handlers ---

func (s *Server) handleBuildMatrix(ctx context.Context, _ *gomcp.CallToolRequest, input buildMatrixInput) (*gomcp.CallToolResult, buildMatrixOutput, error) {
	result, err := s.compute(ctx, input.matrixQuery)
	if err != nil {
		return errorResult(fmt.Sprintf("building matrix: %s", err)), buildMatrixOutput{}, nil
	}
	return nil, matrixToOutput(result, input.IncludeBreakdown), nil
}

func (s *Server) handleDrillDown(ctx context.Context, _ *gomcp.CallToolRequest, input drillDownInput) (*gomcp.CallToolResult, drillDownOutput, error) {
	if input.Group == "" {
		return errorResult("group is required"), drillDownOutput{}, nil
	}
	result, err := s.compute(ctx, input.matrixQuery)
	if err != nil {
		return errorResult(fmt.Sprintf("building matrix: %s", err)), drillDownOutput{}, nil
	}
	matrix := result.Matrix

	key, ok := core.ResolveGroupKey(matrix, input.Group)
	if !ok {
		return errorResult(fmt.Sprintf("group %q has no demand in this view", input.Group)), drillDownOutput{}, nil
	}

	out := drillDownOutput{Group: key, GroupLabel: matrix.GroupLabel(key), Month: input.Month}
	if input.Month == "" {
		out.Tasks = core.ResolveGroupDrillDown(matrix, key)
		summary := matrix.SkillSummary[key]
		out.DemandHours = summary.TotalHours
		out.TaskCount = summary.TaskCount
		return nil, out, nil
	}

	detail, _ := core.DescribeCell(matrix, key, input.Month)
	out.Tasks = detail.Tasks
	out.DemandHours = detail.DemandHours
	out.TaskCount = detail.TaskCount
	return nil, out, nil
}

func (s *Server) handleExportMatrix(ctx context.Context, _ *gomcp.CallToolRequest, input exportMatrixInput) (*gomcp.CallToolResult, exportMatrixOutput, error) {
	format := models.ExportFormat(input.Format)
	if format == "" {
		format = models.FormatCSV
	}
	result, err := s.compute(ctx, input.matrixQuery)
	if err != nil {
		return errorResult(fmt.Sprintf("building matrix: %s", err)), exportMatrixOutput{}, nil
	}

	opts := models.ExportOptions{
		IncludeTaskBreakdown:     input.IncludeTaskBreakdown,
		IncludeClientSummary:     input.IncludeClientSummary,
		IncludeRevenue:           input.IncludeRevenue,
		IncludeRecurrenceSummary: input.IncludeRecurrenceSummary,
		IncludeTrendAnalysis:     input.IncludeTrendAnalysis,
	}
	artifact, err := core.ExportMatrix(result.Matrix, opts, format, s.now())
	if err != nil {
		msg := fmt.Sprintf("exporting matrix: %s", err)
		if errors.Is(err, core.ErrRevenueNotApplied) {
			msg += " (set with_revenue to true)"
		}
		return errorResult(msg), exportMatrixOutput{}, nil
	}
	if s.events != nil {
		_ = s.events.LogEvent(core.EventMatrixExported, map[string]any{
			"filename": artifact.Filename,
			"format":   string(format),
			"mode":     string(result.Matrix.GroupingMode),
			"bytes":    len(artifact.Content),
			"via":      "mcp",
		})
	}

	return nil, exportMatrixOutput{
		Filename: artifact.Filename,
		MIMEType: artifact.MIMEType,
		Content:  artifact.Content,
	}, nil
}

func (s *Server) handleValidateMatrix(ctx context.Context, _ *gomcp.CallToolRequest, input validateMatrixInput) (*gomcp.CallToolResult, validateMatrixOutput, error) {
	result, err := s.compute(ctx, input.matrixQuery)
	if err != nil {
		return errorResult(fmt.Sprintf("building matrix: %s", err)), validateMatrixOutput{Issues: []models.ValidationIssue{}}, nil
	}
	issues := result.Issues
	if issues == nil {
		issues = []models.ValidationIssue{}
	}
	return nil, validateMatrixOutput{
		Issues:      issues,
		Count:       len(issues),
		HasCritical: core.HasCritical(issues),
	}, nil
}

func (s *Server) handleListFilterOptions(ctx context.Context, _ *gomcp.CallToolRequest, _ listFilterOptionsInput) (*gomcp.CallToolResult, core.FilterOptions, error) {
	if s.source == nil {
		return errorResult("data source not available"), core.FilterOptions{}, nil
	}
	ds, err := s.source.Load(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("loading dataset: %s", err)), core.FilterOptions{}, nil
	}
	return nil, core.ListFilterOptions(ds), nil
}

// --- Helpers ---

func (s *Server) compute(ctx context.Context, q matrixQuery) (*core.ComputeResult, error) {
	if s.demand == nil {
		return nil, errors.New("demand service not initialized")
	}
	req, err := core.ParseRequest(q.params(), s.defaults)
	if err != nil {
		return nil, err
	}
	return s.demand.Compute(ctx, req)
}

func matrixToOutput(result *core.ComputeResult, withTasks bool) buildMatrixOutput {
	m := result.Matrix
	out := buildMatrixOutput{
		GroupingMode:  string(m.GroupingMode),
		Months:        m.Months,
		Groups:        make([]groupOutput, len(m.Skills)),
		Cells:         make([]cellOutput, len(m.DataPoints)),
		TotalDemand:   m.TotalDemand,
		TotalTasks:    m.TotalTasks,
		TotalClients:  m.TotalClients,
		RevenueTotals: m.RevenueTotals,
		Issues:        core.IssueMessages(result.Issues),
	}
	if out.Months == nil {
		out.Months = []models.MonthDescriptor{}
	}
	for i, g := range m.Skills {
		summary := m.SkillSummary[g]
		out.Groups[i] = groupOutput{
			Key:         g,
			Label:       m.GroupLabel(g),
			TotalHours:  summary.TotalHours,
			TaskCount:   summary.TaskCount,
			ClientCount: summary.ClientCount,
		}
	}
	for i, p := range m.DataPoints {
		cell := cellOutput{
			Group:            p.SkillType,
			Month:            p.Month,
			DemandHours:      p.DemandHours,
			TaskCount:        p.TaskCount,
			ClientCount:      p.ClientCount,
			SuggestedRevenue: p.SuggestedRevenue,
		}
		if withTasks {
			cell.Tasks = p.TaskBreakdown
		}
		out.Cells[i] = cell
	}
	return out
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
