package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleIncidents() []Incident {
	return []Incident{
		{ID: "1", Region: "Memphis, TN, USA", SeverityLevel: "critical", IncidentType: "theft"},
		{ID: "2", Region: "Memphis, TN, USA", SeverityLevel: "low", IncidentType: "suspicious"},
		{ID: "3", Region: "Dallas, TX, USA", SeverityLevel: "critical", IncidentType: "theft"},
		{ID: "4", Region: "Dallas, TX, USA", SeverityLevel: "medium", IncidentType: "tampering"},
	}
}

func TestFilters_Match(t *testing.T) {
	incidents := sampleIncidents()

	tests := []struct {
		name    string
		filters IncidentFilters
		wantIDs []string
	}{
		{"no filters matches everything", IncidentFilters{}, []string{"1", "2", "3", "4"}},
		{"all sentinel matches everything", IncidentFilters{Region: "all", Severity: "all", Type: "all"}, []string{"1", "2", "3", "4"}},
		{"region only", IncidentFilters{Region: "Memphis, TN, USA"}, []string{"1", "2"}},
		{"severity only", IncidentFilters{Severity: "critical"}, []string{"1", "3"}},
		{"type only", IncidentFilters{Type: "theft"}, []string{"1", "3"}},
		{"filters are conjunctive", IncidentFilters{Region: "Memphis, TN, USA", Severity: "critical"}, []string{"1"}},
		{"conjunction can be empty", IncidentFilters{Region: "Dallas, TX, USA", Type: "suspicious"}, []string{}},
		{"all sentinel mixed with real filter", IncidentFilters{Region: "all", Severity: "critical"}, []string{"1", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for i := range incidents {
				if tt.filters.Match(&incidents[i]) {
					got = append(got, incidents[i].ID)
				}
			}
			assert.ElementsMatch(t, tt.wantIDs, got)
		})
	}
}

func TestFilters_WhereClause(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		where, args := IncidentFilters{}.WhereClause(1)
		assert.Empty(t, where)
		assert.Nil(t, args)
	})

	t.Run("all sentinel produces no clause", func(t *testing.T) {
		where, args := IncidentFilters{Region: "all", Severity: "all", Type: "all"}.WhereClause(1)
		assert.Empty(t, where)
		assert.Nil(t, args)
	})

	t.Run("single filter", func(t *testing.T) {
		where, args := IncidentFilters{Severity: "critical"}.WhereClause(1)
		assert.Equal(t, "WHERE severity_level = $1", where)
		assert.Equal(t, []interface{}{"critical"}, args)
	})

	t.Run("all three filters", func(t *testing.T) {
		f := IncidentFilters{Region: "Memphis, TN, USA", Severity: "critical", Type: "theft"}
		where, args := f.WhereClause(1)
		assert.Equal(t, "WHERE region = $1 AND severity_level = $2 AND incident_type = $3", where)
		assert.Equal(t, []interface{}{"Memphis, TN, USA", "critical", "theft"}, args)
	})

	t.Run("placeholders start at offset", func(t *testing.T) {
		where, args := IncidentFilters{Region: "Memphis, TN, USA", Type: "theft"}.WhereClause(3)
		assert.Equal(t, "WHERE region = $3 AND incident_type = $4", where)
		assert.Len(t, args, 2)
	})
}

func TestFilters_Refine(t *testing.T) {
	incidents := sampleIncidents()

	t.Run("zero filters copies input", func(t *testing.T) {
		got := IncidentFilters{}.Refine(incidents)
		assert.Equal(t, incidents, got)
		// Must be a copy, not the same backing array
		got[0].ID = "mutated"
		assert.Equal(t, "1", incidents[0].ID)
	})

	t.Run("refine agrees with Match", func(t *testing.T) {
		f := IncidentFilters{Region: "Dallas, TX, USA", Severity: "critical"}
		got := f.Refine(incidents)
		assert.Len(t, got, 1)
		assert.Equal(t, "3", got[0].ID)
		for i := range got {
			assert.True(t, f.Match(&got[i]))
		}
	})

	t.Run("preserves order", func(t *testing.T) {
		got := IncidentFilters{Type: "theft"}.Refine(incidents)
		assert.Equal(t, []string{got[0].ID, got[1].ID}, []string{"1", "3"})
	})
}

func TestFilters_IsZero(t *testing.T) {
	assert.True(t, IncidentFilters{}.IsZero())
	assert.True(t, IncidentFilters{Region: "all"}.IsZero())
	assert.False(t, IncidentFilters{Region: "Memphis, TN, USA"}.IsZero())
}
