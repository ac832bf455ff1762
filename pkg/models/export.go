package models

// ExportFormat is the serialization format of an export.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions toggles the optional sections of an export. CSV carries
// only the breakdown and revenue columns; the client summary, recurrence and
// trend sections are written to JSON exports alone.
type ExportOptions struct {
	IncludeTaskBreakdown     bool `json:"includeTaskBreakdown" yaml:"include_task_breakdown"`
	IncludeClientSummary     bool `json:"includeClientSummary" yaml:"include_client_summary"`
	IncludeRevenue           bool `json:"includeRevenue" yaml:"include_revenue"`
	IncludeRecurrenceSummary bool `json:"includeRecurrenceSummary" yaml:"include_recurrence_summary"`
	IncludeTrendAnalysis     bool `json:"includeTrendAnalysis" yaml:"include_trend_analysis"`
}

// ExportArtifact is a serialized matrix ready for download.
type ExportArtifact struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType"`
	Content  string `json:"content"`
}
