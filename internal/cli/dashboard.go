package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

var dashboardOpts matrixFlags

// presetCycle is the order the p key steps through. The empty preset shows
// the whole horizon.
var presetCycle = []models.MonthPreset{"", models.PresetQuarter, models.PresetHalfYear, models.PresetYear}

type dashboardModel struct {
	svc core.DemandService
	req core.ComputeRequest

	width  int
	height int

	// Data.
	matrix *models.DemandMatrixData
	issues []models.ValidationIssue
	cached bool

	// State.
	row        int
	col        int
	preset     int
	showDetail bool
	loading    bool
	err        error
}

// matrixLoadedMsg carries a computed matrix back to the model.
type matrixLoadedMsg struct {
	matrix *models.DemandMatrixData
	issues []models.ValidationIssue
	cached bool
	err    error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	emptyCellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	overStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(svc core.DemandService, req core.ComputeRequest) dashboardModel {
	return dashboardModel{
		svc:     svc,
		req:     req,
		loading: true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadMatrix(m.svc, m.req)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if msg.String() == "esc" && m.showDetail {
				m.showDetail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.row > 0 {
				m.row--
			}
			return m, nil
		case "down", "j":
			if m.row < m.rowCount()-1 {
				m.row++
			}
			return m, nil
		case "left", "h":
			if m.col > 0 {
				m.col--
			}
			return m, nil
		case "right", "l":
			if m.col < m.colCount()-1 {
				m.col++
			}
			return m, nil
		case "enter":
			m.showDetail = !m.showDetail
			return m, nil
		case "g":
			if m.req.GroupingMode == models.GroupByClient {
				m.req.GroupingMode = models.GroupBySkill
			} else {
				m.req.GroupingMode = models.GroupByClient
			}
			m.row = 0
			return m.reload()
		case "p":
			m.nextPreset()
			m.col = 0
			return m.reload()
		case "[":
			m.req.HorizonStart = m.req.HorizonStart.AddDate(0, -1, 0)
			return m.reload()
		case "]":
			m.req.HorizonStart = m.req.HorizonStart.AddDate(0, 1, 0)
			return m.reload()
		case "r":
			if m.svc != nil {
				m.svc.Invalidate()
			}
			return m.reload()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case matrixLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.matrix = msg.matrix
		m.issues = msg.issues
		m.cached = msg.cached
		m.err = nil
		m.clampCursor()
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	return m, loadMatrix(m.svc, m.req)
}

// nextPreset advances to the next preset that fits the horizon.
func (m *dashboardModel) nextPreset() {
	for range presetCycle {
		m.preset = (m.preset + 1) % len(presetCycle)
		preset := presetCycle[m.preset]
		if preset == "" {
			m.req.Filters.MonthRange = nil
			return
		}
		window, err := core.PresetRange(preset, m.req.HorizonMonths, nil)
		if err == nil {
			m.req.Filters.MonthRange = window
			return
		}
	}
}

func (m dashboardModel) rowCount() int {
	if m.matrix == nil {
		return 0
	}
	return len(m.matrix.Skills)
}

func (m dashboardModel) colCount() int {
	if m.matrix == nil {
		return 0
	}
	return len(m.matrix.Months)
}

func (m *dashboardModel) clampCursor() {
	if m.row >= m.rowCount() {
		m.row = max(m.rowCount()-1, 0)
	}
	if m.col >= m.colCount() {
		m.col = max(m.colCount()-1, 0)
	}
}

// selected returns the group and month keys under the cursor.
func (m dashboardModel) selected() (group, month string, ok bool) {
	if m.rowCount() == 0 || m.colCount() == 0 {
		return "", "", false
	}
	return m.matrix.Skills[m.row], m.matrix.Months[m.col].Key, true
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(fmt.Sprintf(" Demand by %s ", m.req.GroupingMode))
	help := helpStyle.Render("arrows/hjkl: move | enter: tasks | g: grouping | p: window | [ ]: shift | r: refresh | q: quit")

	if m.loading && m.matrix == nil {
		return fmt.Sprintf("%s\n\n  Loading demand...\n\n%s", title, help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	body := panelStyle.Render(m.renderGrid())
	if m.showDetail {
		body = lipgloss.JoinVertical(lipgloss.Left, body, panelStyle.Render(m.renderDetail()))
	}
	return fmt.Sprintf("%s  %s\n\n%s\n%s\n\n%s", title, m.renderStatus(), body, m.renderIssues(), help)
}

func (m dashboardModel) renderStatus() string {
	preset := presetCycle[m.preset]
	window := "full horizon"
	if preset != "" {
		window = string(preset)
	}
	status := fmt.Sprintf("from %s, %s", core.MonthDescriptorFor(m.req.HorizonStart).Label, window)
	if m.cached {
		status += " (cached)"
	}
	if m.loading {
		status += " refreshing..."
	}
	return helpStyle.Render(status)
}

func (m dashboardModel) renderGrid() string {
	mx := m.matrix
	if mx == nil || len(mx.Skills) == 0 {
		return "No demand in this view."
	}

	labelWidth := 5
	for _, g := range mx.Skills {
		labelWidth = max(labelWidth, min(len(mx.GroupLabel(g)), 20))
	}
	const cellWidth = 8

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s", labelWidth, "GROUP")))
	for _, month := range mx.Months {
		b.WriteString(headerStyle.Render(fmt.Sprintf(" %*s", cellWidth, truncate(month.Label, cellWidth))))
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf(" %*s", cellWidth, "TOTAL")))
	b.WriteString("\n")

	for r, g := range mx.Skills {
		b.WriteString(fmt.Sprintf("%-*s", labelWidth, truncate(mx.GroupLabel(g), labelWidth)))
		for c, month := range mx.Months {
			hours := 0.0
			if p := mx.FindDataPoint(g, month.Key); p != nil {
				hours = p.DemandHours
			}
			cell := fmt.Sprintf(" %*s", cellWidth, formatHours(hours))
			switch {
			case r == m.row && c == m.col:
				cell = selectedStyle.Render(cell)
			case hours == 0:
				cell = emptyCellStyle.Render(cell)
			case m.flagged(g, month.Key):
				cell = warnStyle.Render(cell)
			}
			b.WriteString(cell)
		}
		b.WriteString(fmt.Sprintf(" %*s\n", cellWidth, formatHours(mx.SkillSummary[g].TotalHours)))
	}
	b.WriteString(fmt.Sprintf("\n%s hours, %d task-months, %d client(s)", formatHours(mx.TotalDemand), mx.TotalTasks, mx.TotalClients))
	return b.String()
}

// flagged reports whether a warning or critical issue names the cell.
func (m dashboardModel) flagged(group, month string) bool {
	for _, issue := range m.issues {
		if issue.Severity != models.SeverityInfo && issue.Group == group && issue.Month == month {
			return true
		}
	}
	return false
}

func (m dashboardModel) renderDetail() string {
	group, month, ok := m.selected()
	if !ok {
		return "Nothing selected."
	}
	detail, found := core.DescribeCell(m.matrix, group, month)
	if !found {
		return fmt.Sprintf("%s / %s: no demand", m.matrix.GroupLabel(group), month)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s / %s: %.1f hours", detail.GroupLabel, detail.MonthLabel, detail.DemandHours)))
	b.WriteString("\n")
	printContributions(&b, detail.Tasks, m.matrix.GroupingMode)
	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) renderIssues() string {
	counts := map[models.IssueSeverity]int{}
	for _, issue := range m.issues {
		counts[issue.Severity]++
	}
	if len(m.issues) == 0 {
		return infoStyle.Render("  No issues.")
	}
	return fmt.Sprintf("  %s  %s  %s",
		overStyle.Render(fmt.Sprintf("%d critical", counts[models.SeverityCritical])),
		warnStyle.Render(fmt.Sprintf("%d warning", counts[models.SeverityWarning])),
		infoStyle.Render(fmt.Sprintf("%d info", counts[models.SeverityInfo])))
}

func loadMatrix(svc core.DemandService, req core.ComputeRequest) tea.Cmd {
	return func() tea.Msg {
		if svc == nil {
			return matrixLoadedMsg{err: fmt.Errorf("demand service not initialized")}
		}
		result, err := svc.Compute(context.Background(), req)
		if err != nil {
			return matrixLoadedMsg{err: err}
		}
		return matrixLoadedMsg{matrix: result.Matrix, issues: result.Issues, cached: result.Cached}
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive demand matrix browser",
	Long: `Launch an interactive terminal view of the demand matrix.

Move between cells with the arrow keys, press enter to list the tasks behind
a cell, g to switch between skill and client grouping, p to cycle the visible
window, [ and ] to shift the horizon by a month, r to reload, q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if DemandSvc == nil {
			return fmt.Errorf("demand service not initialized")
		}
		req, err := core.ParseRequest(dashboardOpts.params(cmd), requestDefaults())
		if err != nil {
			return err
		}
		p := tea.NewProgram(newDashboardModel(DemandSvc, req), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	dashboardOpts.register(dashboardCmd)
	rootCmd.AddCommand(dashboardCmd)
}
