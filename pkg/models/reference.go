package models

// Client is reference data for one client of the firm.
type Client struct {
	ID              string  `json:"id" yaml:"id" toml:"id"`
	Name            string  `json:"name" yaml:"name" toml:"name"`
	HourlyRate      float64 `json:"hourlyRate" yaml:"hourly_rate" toml:"hourly_rate"`
	ExpectedRevenue float64 `json:"expectedRevenue" yaml:"expected_revenue" toml:"expected_revenue"`
}

// Staff is reference data for one staff member.
type Staff struct {
	ID   string `json:"id" yaml:"id" toml:"id"`
	Name string `json:"name" yaml:"name" toml:"name"`
}

// Skill is reference data for one skill, including its monthly capacity.
type Skill struct {
	Name          SkillType `json:"name" yaml:"name" toml:"name"`
	CapacityHours float64   `json:"capacityHours" yaml:"capacity_hours" toml:"capacity_hours"`
}

// Dataset bundles the source records the engine computes from. Version
// identifies the content so computed results can be memoized.
type Dataset struct {
	Version     string                    `json:"version" yaml:"version" toml:"version"`
	Assignments []RecurringTaskAssignment `json:"assignments" yaml:"assignments" toml:"assignments"`
	Clients     []Client                  `json:"clients" yaml:"clients" toml:"clients"`
	Staff       []Staff                   `json:"staff" yaml:"staff" toml:"staff"`
	Skills      []Skill                   `json:"skills" yaml:"skills" toml:"skills"`
}

// ClientRates returns client hourly rates keyed by client id.
func (d *Dataset) ClientRates() map[string]float64 {
	rates := make(map[string]float64, len(d.Clients))
	for _, c := range d.Clients {
		rates[c.ID] = c.HourlyRate
	}
	return rates
}

// ClientExpectedRevenue returns expected revenue keyed by client id.
func (d *Dataset) ClientExpectedRevenue() map[string]float64 {
	expected := make(map[string]float64, len(d.Clients))
	for _, c := range d.Clients {
		expected[c.ID] = c.ExpectedRevenue
	}
	return expected
}

// SkillCapacity returns monthly capacity hours keyed by skill name.
func (d *Dataset) SkillCapacity() map[string]float64 {
	capacity := make(map[string]float64, len(d.Skills))
	for _, s := range d.Skills {
		capacity[string(s.Name)] += s.CapacityHours
	}
	return capacity
}
