package model

// Reducer is a per-group accumulation function.
type Reducer string

const (
	ReducerCount   Reducer = "count"
	ReducerAverage Reducer = "average"
)

// Measure is one reduced output column.
type Measure struct {
	Name    string  `json:"name" yaml:"name"`
	Reducer Reducer `json:"reducer" yaml:"reducer"`
	// Field is the averaged field; ignored by count.
	Field Field `json:"field,omitempty" yaml:"field,omitempty"`
}

// SortKey selects the row ordering. An empty Measure sorts by group key.
type SortKey struct {
	Measure    string `json:"measure,omitempty" yaml:"measure,omitempty"`
	Descending bool   `json:"descending" yaml:"descending"`
}

// ByGroup reports whether rows are ordered by their group key.
func (s SortKey) ByGroup() bool { return s.Measure == "" }

// AggregationSpec declares one query shape.
type AggregationSpec struct {
	Name string `json:"name" yaml:"name"`
	// GroupBy is empty for a single global group.
	GroupBy  Field     `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	Measures []Measure `json:"measures" yaml:"measures"`
	// ExcludeBlank drops records where any listed field is null or "" before
	// grouping.
	ExcludeBlank []Field `json:"exclude_blank,omitempty" yaml:"exclude_blank,omitempty"`
	Sort         SortKey `json:"sort" yaml:"sort"`
	// Limit caps the row count after sorting; 0 means no cap.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Global reports whether the spec aggregates everything into one group.
func (s AggregationSpec) Global() bool { return s.GroupBy == "" }

// MeasureNames returns the output column names in declaration order.
func (s AggregationSpec) MeasureNames() []string {
	names := make([]string, len(s.Measures))
	for i, m := range s.Measures {
		names[i] = m.Name
	}
	return names
}

// Clone returns a deep copy so callers may modify shapes freely.
func (s AggregationSpec) Clone() AggregationSpec {
	out := s
	out.Measures = append([]Measure(nil), s.Measures...)
	out.ExcludeBlank = append([]Field(nil), s.ExcludeBlank...)
	return out
}
