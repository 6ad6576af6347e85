package pipeline

import (
	"context"
	"sort"

	"go-insights-engine/internal/model"
)

// DistinctValues returns the unique non-blank values of field, ordered by
// Value.Compare.
func DistinctValues(ctx context.Context, it model.RecordIterator, field model.Field) ([]model.Value, error) {
	if !field.Known() {
		return nil, &ConfigError{Field: field, Reason: "unknown field"}
	}

	seen := make(map[string]bool)
	var values []model.Value
	for it.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec := it.Record()
		v := rec.Get(field)
		if v.IsBlank() || seen[v.Key()] {
			continue
		}
		seen[v.Key()] = true
		values = append(values, v)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := it.Err(); err != nil {
		return nil, &StoreError{Op: "iterate", Err: err}
	}

	SortValues(values)
	return values, nil
}

// SortValues orders values ascending by Value.Compare.
func SortValues(values []model.Value) {
	sort.SliceStable(values, func(i, j int) bool {
		return values[i].Compare(values[j]) < 0
	})
}

// FilterOptions holds the choices offered for each filterable field.
type FilterOptions struct {
	EndYears  []model.Value `json:"end_years"`
	Topics    []model.Value `json:"topics"`
	Sectors   []model.Value `json:"sectors"`
	Regions   []model.Value `json:"regions"`
	Pestles   []model.Value `json:"pestles"`
	Sources   []model.Value `json:"sources"`
	Countries []model.Value `json:"countries"`
}

// slot returns the list that holds field's options.
func (o *FilterOptions) slot(field model.Field) *[]model.Value {
	switch field {
	case model.FieldEndYear:
		return &o.EndYears
	case model.FieldTopic:
		return &o.Topics
	case model.FieldSector:
		return &o.Sectors
	case model.FieldRegion:
		return &o.Regions
	case model.FieldPestle:
		return &o.Pestles
	case model.FieldSource:
		return &o.Sources
	case model.FieldCountry:
		return &o.Countries
	}
	return nil
}

// Set stores values for field. Non-filterable fields are ignored. Nil
// becomes an empty list so the JSON output never carries null.
func (o *FilterOptions) Set(field model.Field, values []model.Value) {
	s := o.slot(field)
	if s == nil {
		return
	}
	if values == nil {
		values = []model.Value{}
	}
	*s = values
}

// Get returns the values stored for field.
func (o *FilterOptions) Get(field model.Field) []model.Value {
	if s := o.slot(field); s != nil {
		return *s
	}
	return nil
}
