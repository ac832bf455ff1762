package core

import (
	"github.com/shopspring/decimal"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// AnnotateRevenue returns a copy of a client-grouped matrix with suggested
// revenue per cell (demand hours times the client's hourly rate) and
// per-client expected-less-suggested figures. Skill-grouped matrices are
// returned unchanged. Clients without a rate are priced at zero.
func AnnotateRevenue(matrix *models.DemandMatrixData, clientRates, clientExpectedRevenue map[string]float64) *models.DemandMatrixData {
	if matrix == nil || matrix.GroupingMode != models.GroupByClient {
		return matrix
	}

	out := cloneMatrix(matrix)
	suggestedByClient := make(map[string]decimal.Decimal, len(out.Skills))

	for i := range out.DataPoints {
		p := &out.DataPoints[i]
		rate := decimal.NewFromFloat(clientRates[p.SkillType])
		suggested := decimal.NewFromFloat(p.DemandHours).Mul(rate).Round(2)
		p.HourlyRate = rate.Round(2).InexactFloat64()
		p.SuggestedRevenue = suggested.InexactFloat64()
		suggestedByClient[p.SkillType] = suggestedByClient[p.SkillType].Add(suggested)
	}

	out.ClientRevenue = make(map[string]models.ClientRevenue, len(out.Skills))
	totalSuggested := decimal.Zero
	totalExpected := decimal.Zero
	for _, clientID := range out.Skills {
		suggested := suggestedByClient[clientID]
		expected := decimal.NewFromFloat(clientExpectedRevenue[clientID]).Round(2)
		out.ClientRevenue[clientID] = models.ClientRevenue{
			HourlyRate:            decimal.NewFromFloat(clientRates[clientID]).Round(2).InexactFloat64(),
			TotalHours:            out.SkillSummary[clientID].TotalHours,
			SuggestedRevenue:      suggested.InexactFloat64(),
			ExpectedRevenue:       expected.InexactFloat64(),
			ExpectedLessSuggested: expected.Sub(suggested).InexactFloat64(),
		}
		totalSuggested = totalSuggested.Add(suggested)
		totalExpected = totalExpected.Add(expected)
	}

	out.RevenueTotals = &models.RevenueTotals{
		TotalSuggestedRevenue:      totalSuggested.InexactFloat64(),
		TotalExpectedRevenue:       totalExpected.InexactFloat64(),
		TotalExpectedLessSuggested: totalExpected.Sub(totalSuggested).InexactFloat64(),
	}
	return out
}

// cloneMatrix deep-copies a matrix so annotations never write through to
// the caller's value.
func cloneMatrix(m *models.DemandMatrixData) *models.DemandMatrixData {
	out := *m
	out.Horizon = append([]models.MonthDescriptor(nil), m.Horizon...)
	out.Months = append([]models.MonthDescriptor(nil), m.Months...)
	out.Skills = append([]string(nil), m.Skills...)
	out.DataPoints = make([]models.DemandDataPoint, len(m.DataPoints))
	for i, p := range m.DataPoints {
		p.TaskBreakdown = append([]models.TaskContribution(nil), p.TaskBreakdown...)
		out.DataPoints[i] = p
	}
	out.SkillSummary = make(map[string]models.SkillSummary, len(m.SkillSummary))
	for k, v := range m.SkillSummary {
		out.SkillSummary[k] = v
	}
	if m.GroupLabels != nil {
		out.GroupLabels = make(map[string]string, len(m.GroupLabels))
		for k, v := range m.GroupLabels {
			out.GroupLabels[k] = v
		}
	}
	out.ClientRevenue = nil
	out.RevenueTotals = nil
	return &out
}
