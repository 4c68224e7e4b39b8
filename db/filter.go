package db

import (
	"fmt"
	"strings"
)

// IncidentFilters is the single filter predicate for incident queries.
// The same struct builds the SQL WHERE clause and refines already-fetched
// lists in memory, so the two paths cannot drift apart.
type IncidentFilters struct {
	Region   string `json:"region,omitempty"`
	Severity string `json:"severity,omitempty"`
	Type     string `json:"type,omitempty"`
}

// filterAll is the sentinel value meaning "do not apply this filter"
const filterAll = "all"

func applies(v string) bool {
	return v != "" && v != filterAll
}

// IsZero reports whether no filter would be applied
func (f IncidentFilters) IsZero() bool {
	return !applies(f.Region) && !applies(f.Severity) && !applies(f.Type)
}

// Match reports whether the incident satisfies every applied filter (AND)
func (f IncidentFilters) Match(in *Incident) bool {
	if applies(f.Region) && in.Region != f.Region {
		return false
	}
	if applies(f.Severity) && in.SeverityLevel != f.Severity {
		return false
	}
	if applies(f.Type) && in.IncidentType != f.Type {
		return false
	}
	return true
}

// WhereClause renders the applied filters as a SQL fragment with positional
// placeholders starting at $start. Returns "" when no filter applies.
func (f IncidentFilters) WhereClause(start int) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if applies(f.Region) {
		conds = append(conds, fmt.Sprintf("region = $%d", start+len(args)))
		args = append(args, f.Region)
	}
	if applies(f.Severity) {
		conds = append(conds, fmt.Sprintf("severity_level = $%d", start+len(args)))
		args = append(args, f.Severity)
	}
	if applies(f.Type) {
		conds = append(conds, fmt.Sprintf("incident_type = $%d", start+len(args)))
		args = append(args, f.Type)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Refine applies the filters in memory over an already-fetched list.
// Pure function: the input slice is never modified.
func (f IncidentFilters) Refine(incidents []Incident) []Incident {
	if f.IsZero() {
		out := make([]Incident, len(incidents))
		copy(out, incidents)
		return out
	}
	out := make([]Incident, 0, len(incidents))
	for i := range incidents {
		if f.Match(&incidents[i]) {
			out = append(out, incidents[i])
		}
	}
	return out
}
