package core

import (
	"math"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// hoursEpsilon is the tolerance used when comparing stored and recomputed
// hour totals.
const hoursEpsilon = 1e-6

// roundHours rounds to the one-decimal precision hours are reported at.
func roundHours(v float64) float64 {
	return math.Round(v*10) / 10
}

// hoursEqual compares two hour values within hoursEpsilon.
func hoursEqual(a, b float64) bool {
	return math.Abs(a-b) < hoursEpsilon
}

// sumContributionHours sums the monthly hours of a breakdown.
func sumContributionHours(breakdown []models.TaskContribution) float64 {
	var total float64
	for _, c := range breakdown {
		total += c.MonthlyHours
	}
	return roundHours(total)
}

// countDistinctClients counts the distinct client ids in a breakdown.
func countDistinctClients(breakdown []models.TaskContribution) int {
	seen := make(map[string]struct{}, len(breakdown))
	for _, c := range breakdown {
		seen[c.ClientID] = struct{}{}
	}
	return len(seen)
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
