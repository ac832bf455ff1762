package core

import (
	"sort"
	"strings"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// FilterOption is one selectable value of a filter with the number of
// active assignments it covers.
type FilterOption struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	TaskCount int    `json:"taskCount"`
}

// FilterOptions lists the selectable values for each filter dimension.
type FilterOptions struct {
	Skills  []FilterOption `json:"skills"`
	Clients []FilterOption `json:"clients"`
	Staff   []FilterOption `json:"staff"`
	// Unassigned counts active assignments with no preferred staff.
	Unassigned int `json:"unassigned"`
}

// ListFilterOptions derives filter option lists from a dataset. Known
// skills, clients, and staff are listed even when no assignment uses them.
func ListFilterOptions(ds *models.Dataset) FilterOptions {
	opts := FilterOptions{}
	if ds == nil {
		return opts
	}

	skillCounts := make(map[string]int)
	clientCounts := make(map[string]int)
	staffCounts := make(map[string]int)
	clientLabels := make(map[string]string)
	staffLabels := make(map[string]string)

	for _, s := range models.KnownSkills {
		register(skillCounts, string(s))
	}
	for _, s := range ds.Skills {
		register(skillCounts, string(s.Name))
	}
	for _, c := range ds.Clients {
		register(clientCounts, c.ID)
		clientLabels[c.ID] = c.Name
	}
	for _, s := range ds.Staff {
		register(staffCounts, s.ID)
		staffLabels[s.ID] = s.Name
	}

	for _, a := range ds.Assignments {
		if a.Inactive {
			continue
		}
		if a.SkillType != "" {
			skillCounts[string(a.SkillType)]++
		}
		if a.ClientID != "" {
			clientCounts[a.ClientID]++
			if clientLabels[a.ClientID] == "" {
				clientLabels[a.ClientID] = a.ClientName
			}
		}
		if a.PreferredStaffID == nil {
			opts.Unassigned++
			continue
		}
		id := *a.PreferredStaffID
		staffCounts[id]++
		if staffLabels[id] == "" && a.PreferredStaffName != nil {
			staffLabels[id] = *a.PreferredStaffName
		}
	}

	skillIDs := make([]string, 0, len(skillCounts))
	for id := range skillCounts {
		skillIDs = append(skillIDs, id)
	}
	sortGroups(skillIDs, models.GroupBySkill, nil)
	opts.Skills = make([]FilterOption, len(skillIDs))
	for i, id := range skillIDs {
		opts.Skills[i] = FilterOption{ID: id, Label: id, TaskCount: skillCounts[id]}
	}

	opts.Clients = toOptions(clientCounts, clientLabels)
	opts.Staff = toOptions(staffCounts, staffLabels)
	return opts
}

// toOptions sorts by label, then id.
func toOptions(counts map[string]int, labels map[string]string) []FilterOption {
	out := make([]FilterOption, 0, len(counts))
	for id, n := range counts {
		label := labels[id]
		if label == "" {
			label = id
		}
		out = append(out, FilterOption{ID: id, Label: label, TaskCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i].Label), strings.ToLower(out[j].Label)
		if li != lj {
			return li < lj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ResolveStaffNames returns a copy of assignments in which missing
// preferred staff names are filled in from the staff directory. Ids are
// never altered.
func ResolveStaffNames(assignments []models.RecurringTaskAssignment, staff []models.Staff) []models.RecurringTaskAssignment {
	names := make(map[string]string, len(staff))
	for _, s := range staff {
		names[s.ID] = s.Name
	}
	out := make([]models.RecurringTaskAssignment, len(assignments))
	for i, a := range assignments {
		if a.PreferredStaffID != nil && a.PreferredStaffName == nil {
			if name, ok := names[*a.PreferredStaffID]; ok {
				a.PreferredStaffName = models.StringPtr(name)
			}
		}
		out[i] = a
	}
	return out
}

func register(counts map[string]int, id string) {
	if _, ok := counts[id]; !ok && id != "" {
		counts[id] = 0
	}
}
