package core

import (
	"encoding/json"
	"testing"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// Feature: staffplan, Property 8: JSON Export Round Trip
// Decoding a JSON export yields the matrix total and the hours of every
// cell, in the matrix order.
func TestProperty_JSONExportRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		assignments := assignmentsGenerator().Draw(rt, "assignments")
		mode := rapid.SampledFrom([]models.GroupingMode{models.GroupBySkill, models.GroupByClient}).Draw(rt, "mode")
		m := mustBuild(rt, assignments, mustHorizon(rt, "2025-01", rapid.IntRange(1, 12).Draw(rt, "months")), mode)
		opts := models.ExportOptions{IncludeTaskBreakdown: rapid.Bool().Draw(rt, "breakdown")}

		content, err := SerializeMatrix(m, opts, models.FormatJSON)
		if err != nil {
			rt.Fatalf("SerializeMatrix: %v", err)
		}
		var doc exportDocument
		if err := json.Unmarshal([]byte(content), &doc); err != nil {
			rt.Fatalf("parsing export: %v", err)
		}

		if !hoursEqual(doc.Metadata.TotalDemand, m.TotalDemand) {
			rt.Fatalf("TotalDemand = %v, want %v", doc.Metadata.TotalDemand, m.TotalDemand)
		}
		if len(doc.MatrixData) != len(m.DataPoints) {
			rt.Fatalf("cells = %d, want %d", len(doc.MatrixData), len(m.DataPoints))
		}
		for i, dp := range doc.MatrixData {
			src := m.DataPoints[i]
			if dp.Group != src.SkillType || dp.Month != src.Month || !hoursEqual(dp.DemandHours, src.DemandHours) {
				rt.Fatalf("cell %d = %s/%s %v, want %s/%s %v", i, dp.Group, dp.Month, dp.DemandHours, src.SkillType, src.Month, src.DemandHours)
			}
			if opts.IncludeTaskBreakdown && !hoursEqual(sumContributionHours(dp.TaskBreakdown), dp.DemandHours) {
				rt.Fatalf("cell %d breakdown sums to %v, cell is %v", i, sumContributionHours(dp.TaskBreakdown), dp.DemandHours)
			}
		}
	})
}
