package core

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

var (
	propSkills  = []models.SkillType{models.SkillJunior, models.SkillSenior, models.SkillCPA}
	propClients = []string{"c1", "c2", "c3"}
	propStaff   = []string{"s1", "s2"}
	propTypes   = []models.RecurrenceType{
		models.RecurrenceWeekly,
		models.RecurrenceMonthly,
		models.RecurrenceQuarterly,
		models.RecurrenceAnnually,
	}
)

// assignmentsGenerator draws a workload with whole-hour estimates so that
// sums are exact at one-decimal precision.
func assignmentsGenerator() *rapid.Generator[[]models.RecurringTaskAssignment] {
	return rapid.Custom(func(t *rapid.T) []models.RecurringTaskAssignment {
		n := rapid.IntRange(0, 12).Draw(t, "count")
		out := make([]models.RecurringTaskAssignment, n)
		for i := range out {
			client := rapid.SampledFrom(propClients).Draw(t, "client")
			a := monthly(fmt.Sprintf("t%d", i), client, "Client "+client,
				rapid.SampledFrom(propSkills).Draw(t, "skill"),
				float64(rapid.IntRange(1, 40).Draw(t, "hours")))
			a.RecurrencePattern = models.RecurrencePattern{
				Type:     rapid.SampledFrom(propTypes).Draw(t, "type"),
				Interval: rapid.IntRange(1, 3).Draw(t, "interval"),
			}
			if rapid.Bool().Draw(t, "staffed") {
				a = withStaff(a, rapid.SampledFrom(propStaff).Draw(t, "staff"))
			}
			out[i] = a
		}
		return out
	})
}

func filtersGenerator(horizonLen int) *rapid.Generator[models.DemandFilters] {
	return rapid.Custom(func(t *rapid.T) models.DemandFilters {
		var f models.DemandFilters
		for _, s := range propSkills {
			if rapid.Bool().Draw(t, "skill-"+string(s)) {
				f.Skills = append(f.Skills, string(s))
			}
		}
		for _, c := range propClients {
			if rapid.Bool().Draw(t, "client-"+c) {
				f.Clients = append(f.Clients, c)
			}
		}
		f.PreferredStaffFilterMode = rapid.SampledFrom([]models.PreferredStaffFilterMode{
			"", models.StaffFilterAll, models.StaffFilterSpecific, models.StaffFilterNone,
		}).Draw(t, "staffMode")
		if f.PreferredStaffFilterMode == models.StaffFilterSpecific {
			f.PreferredStaff = rapid.SliceOfNDistinct(rapid.SampledFrom(propStaff), 1, 2, rapid.ID[string]).Draw(t, "staff")
		}
		if rapid.Bool().Draw(t, "windowed") {
			start := rapid.IntRange(0, horizonLen-1).Draw(t, "rangeStart")
			end := rapid.IntRange(start, horizonLen-1).Draw(t, "rangeEnd")
			f.MonthRange = &models.MonthRange{Start: start, End: end}
		}
		return f
	})
}

func sumCells(m *models.DemandMatrixData) float64 {
	var total float64
	for _, dp := range m.DataPoints {
		total += dp.DemandHours
	}
	return total
}

// Feature: staffplan, Property 1: Demand Conservation
// Every cell equals the sum of its breakdown and the matrix total equals
// the sum of its cells.
func TestProperty_DemandConservation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		assignments := assignmentsGenerator().Draw(rt, "assignments")
		months := rapid.IntRange(1, 12).Draw(rt, "months")
		mode := rapid.SampledFrom([]models.GroupingMode{models.GroupBySkill, models.GroupByClient}).Draw(rt, "mode")

		m := mustBuild(rt, assignments, mustHorizon(rt, "2025-01", months), mode)
		for _, dp := range m.DataPoints {
			if !hoursEqual(dp.DemandHours, sumContributionHours(dp.TaskBreakdown)) {
				rt.Fatalf("cell %s/%s = %v, breakdown sums to %v", dp.SkillType, dp.Month, dp.DemandHours, sumContributionHours(dp.TaskBreakdown))
			}
			if dp.DemandHours <= 0 {
				rt.Fatalf("cell %s/%s has no demand", dp.SkillType, dp.Month)
			}
		}
		if !hoursEqual(m.TotalDemand, roundHours(sumCells(m))) {
			rt.Fatalf("TotalDemand = %v, cells sum to %v", m.TotalDemand, sumCells(m))
		}
		if HasCritical(ValidateMatrix(m)) {
			rt.Fatalf("built matrix is inconsistent: %v", IssueMessages(ValidateMatrix(m)))
		}
	})
}

// Feature: staffplan, Property 2: Grouping Preserves Total Demand
// Pivoting from skills to clients redistributes hours without changing the
// total.
func TestProperty_GroupingPreservesTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		assignments := assignmentsGenerator().Draw(rt, "assignments")
		horizon := mustHorizon(rt, "2025-01", rapid.IntRange(1, 12).Draw(rt, "months"))

		bySkill := mustBuild(rt, assignments, horizon, models.GroupBySkill)
		byClient := mustBuild(rt, assignments, horizon, models.GroupByClient)
		if !hoursEqual(bySkill.TotalDemand, byClient.TotalDemand) {
			rt.Fatalf("skill total %v != client total %v", bySkill.TotalDemand, byClient.TotalDemand)
		}
		if bySkill.TotalClients != byClient.TotalClients {
			rt.Fatalf("skill clients %d != client clients %d", bySkill.TotalClients, byClient.TotalClients)
		}
	})
}

// Feature: staffplan, Property 3: Filters Only Remove Demand
// A filtered cell never holds more hours than the same raw cell.
func TestProperty_FilterMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		assignments := assignmentsGenerator().Draw(rt, "assignments")
		months := rapid.IntRange(1, 12).Draw(rt, "months")
		raw := mustBuild(rt, assignments, mustHorizon(rt, "2025-01", months), models.GroupBySkill)
		filtered := mustFilter(rt, raw, filtersGenerator(months).Draw(rt, "filters"))

		if filtered.TotalDemand > raw.TotalDemand+hoursEpsilon {
			rt.Fatalf("filtered total %v exceeds raw %v", filtered.TotalDemand, raw.TotalDemand)
		}
		for _, dp := range filtered.DataPoints {
			if rawHours := cellHoursOf(raw, dp.SkillType, dp.Month); dp.DemandHours > rawHours+hoursEpsilon {
				rt.Fatalf("cell %s/%s grew from %v to %v", dp.SkillType, dp.Month, rawHours, dp.DemandHours)
			}
		}
		if HasCritical(ValidateMatrix(filtered)) {
			rt.Fatalf("filtered matrix is inconsistent: %v", IssueMessages(ValidateMatrix(filtered)))
		}
	})
}

// Feature: staffplan, Property 4: Filter Idempotence
// Applying the same filters twice gives the same matrix as applying them once.
func TestProperty_FilterIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		assignments := assignmentsGenerator().Draw(rt, "assignments")
		months := rapid.IntRange(1, 12).Draw(rt, "months")
		mode := rapid.SampledFrom([]models.GroupingMode{models.GroupBySkill, models.GroupByClient}).Draw(rt, "mode")
		raw := mustBuild(rt, assignments, mustHorizon(rt, "2025-01", months), mode)
		f := filtersGenerator(months).Draw(rt, "filters")

		once := mustFilter(rt, raw, f)
		twice := mustFilter(rt, once, f)
		if !hoursEqual(once.TotalDemand, twice.TotalDemand) || len(once.DataPoints) != len(twice.DataPoints) || len(once.Months) != len(twice.Months) {
			rt.Fatalf("once: %v hours, %d cells, %d months; twice: %v hours, %d cells, %d months",
				once.TotalDemand, len(once.DataPoints), len(once.Months),
				twice.TotalDemand, len(twice.DataPoints), len(twice.Months))
		}
		for _, dp := range once.DataPoints {
			if !hoursEqual(dp.DemandHours, cellHoursOf(twice, dp.SkillType, dp.Month)) {
				rt.Fatalf("cell %s/%s changed on the second pass", dp.SkillType, dp.Month)
			}
		}
	})
}

// Feature: staffplan, Property 5: Staff Modes Partition Demand
// Unassigned demand plus demand preferred to any staff member equals all
// demand, and the two selections never share a contribution.
func TestProperty_StaffModesPartition(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		assignments := assignmentsGenerator().Draw(rt, "assignments")
		raw := mustBuild(rt, assignments, mustHorizon(rt, "2025-01", 6), models.GroupBySkill)

		all := mustFilter(rt, raw, models.DemandFilters{PreferredStaffFilterMode: models.StaffFilterAll})
		none := mustFilter(rt, raw, models.DemandFilters{PreferredStaffFilterMode: models.StaffFilterNone})
		specific := mustFilter(rt, raw, models.DemandFilters{
			PreferredStaffFilterMode: models.StaffFilterSpecific,
			PreferredStaff:           propStaff,
		})

		if !hoursEqual(all.TotalDemand, raw.TotalDemand) {
			rt.Fatalf("mode all changed the total: %v != %v", all.TotalDemand, raw.TotalDemand)
		}
		if !hoursEqual(none.TotalDemand+specific.TotalDemand, all.TotalDemand) {
			rt.Fatalf("none %v + specific %v != all %v", none.TotalDemand, specific.TotalDemand, all.TotalDemand)
		}

		unassigned := map[string]bool{}
		for _, dp := range none.DataPoints {
			for _, c := range dp.TaskBreakdown {
				if c.PreferredStaffID != nil {
					rt.Fatalf("mode none kept %s preferred to %s", c.TaskID, *c.PreferredStaffID)
				}
				unassigned[c.TaskID] = true
			}
		}
		for _, dp := range specific.DataPoints {
			for _, c := range dp.TaskBreakdown {
				if unassigned[c.TaskID] {
					rt.Fatalf("task %s appears in both none and specific", c.TaskID)
				}
			}
		}
	})
}
