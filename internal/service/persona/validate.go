package persona

import (
	"fmt"

	"github.com/nikhilza/focuspanel/internal/model/persona"
)

// ValidationReport summarizes the diversity of a generated persona set.
type ValidationReport struct {
	Total                int      `json:"total"`
	AgeDiversity         int      `json:"ageDiversity"`
	OccupationDiversity  int      `json:"occupationDiversity"`
	PersonalityDiversity int      `json:"personalityDiversity"`
	LocationDiversity    int      `json:"locationDiversity"`
	Issues               []string `json:"issues,omitempty"`
	Valid                bool     `json:"valid"`
}

// Validate checks a persona set for diversity and uniqueness.
func Validate(personas []persona.Persona) ValidationReport {
	ages := make(map[int]bool)
	occs := make(map[string]bool)
	types := make(map[persona.PersonalityType]bool)
	locs := make(map[string]bool)
	names := make(map[string]bool)

	report := ValidationReport{Total: len(personas)}

	for _, p := range personas {
		ages[p.Age] = true
		occs[p.Occupation] = true
		types[p.Personality] = true
		locs[p.Location] = true
		if names[p.Name] {
			report.Issues = append(report.Issues, fmt.Sprintf("duplicate name: %s", p.Name))
		}
		names[p.Name] = true
	}

	report.AgeDiversity = len(ages)
	report.OccupationDiversity = len(occs)
	report.PersonalityDiversity = len(types)
	report.LocationDiversity = len(locs)

	if len(personas) >= 4 && report.PersonalityDiversity < 4 {
		report.Issues = append(report.Issues, "insufficient personality diversity")
	}

	for i := range personas {
		for j := i + 1; j < len(personas); j++ {
			if personas[i].Equal(personas[j]) {
				report.Issues = append(report.Issues, fmt.Sprintf("personas %d and %d are identical", i, j))
			}
		}
	}

	report.Valid = len(report.Issues) == 0
	return report
}
