package pipeline

import (
	"context"
	"sort"

	"go-insights-engine/internal/model"
)

// accumulator folds the members of one group, one record at a time.
type accumulator interface {
	add(rec *model.Record)
	metric() model.Metric
}

type countAccumulator struct {
	name string
	n    int
}

func (a *countAccumulator) add(*model.Record) { a.n++ }

func (a *countAccumulator) metric() model.Metric {
	return model.Metric{Name: a.name, Value: float64(a.n), Defined: true}
}

// averageAccumulator only counts members that have the field defined, so a
// missing value never dilutes the denominator.
type averageAccumulator struct {
	name  string
	field model.Field
	sum   float64
	n     int
}

func (a *averageAccumulator) add(rec *model.Record) {
	if v, ok := rec.Get(a.field).Float(); ok {
		a.sum += v
		a.n++
	}
}

func (a *averageAccumulator) metric() model.Metric {
	if a.n == 0 {
		return model.Metric{Name: a.name}
	}
	return model.Metric{Name: a.name, Value: a.sum / float64(a.n), Defined: true}
}

func newAccumulator(m model.Measure) accumulator {
	if m.Reducer == model.ReducerAverage {
		return &averageAccumulator{name: m.Name, field: m.Field}
	}
	return &countAccumulator{name: m.Name}
}

// aggregationGroup holds the running state of one group key.
type aggregationGroup struct {
	key  model.Value
	accs []accumulator
}

func newAggregationGroup(key model.Value, measures []model.Measure) *aggregationGroup {
	g := &aggregationGroup{key: key, accs: make([]accumulator, len(measures))}
	for i, m := range measures {
		g.accs[i] = newAccumulator(m)
	}
	return g
}

func (g *aggregationGroup) row() model.Row {
	metrics := make([]model.Metric, len(g.accs))
	for i, a := range g.accs {
		metrics[i] = a.metric()
	}
	return model.Row{Key: g.key, Metrics: metrics}
}

// Run streams records through filter, drops records blank on any
// ExcludeBlank field, groups the rest and reduces each group in a single
// pass. Rows come back ordered by spec.Sort and capped at spec.Limit.
//
// ValidateSpec runs before the iterator is touched. Iterator failures
// are returned as *StoreError and cancellation as ctx.Err(); in both cases
// no rows are returned. Run does not close it.
func Run(ctx context.Context, it model.RecordIterator, filter model.Filter, spec model.AggregationSpec) ([]model.Row, error) {
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}

	groups := make(map[string]*aggregationGroup)
	var order []*aggregationGroup

	for it.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec := it.Record()
		if !filter.Match(&rec) || isExcluded(&rec, spec.ExcludeBlank) {
			continue
		}

		key := model.Null()
		if !spec.Global() {
			key = rec.Get(spec.GroupBy)
		}

		g, ok := groups[key.Key()]
		if !ok {
			g = newAggregationGroup(key, spec.Measures)
			groups[key.Key()] = g
			order = append(order, g)
		}
		for _, a := range g.accs {
			a.add(&rec)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := it.Err(); err != nil {
		return nil, &StoreError{Op: "iterate", Err: err}
	}

	rows := make([]model.Row, 0, len(order))
	for _, g := range order {
		rows = append(rows, g.row())
	}

	SortRows(rows, spec.Sort)

	if spec.Limit > 0 && len(rows) > spec.Limit {
		rows = rows[:spec.Limit]
	}
	return rows, nil
}

// RunRecords is Run over an in-memory slice.
func RunRecords(ctx context.Context, records []model.Record, filter model.Filter, spec model.AggregationSpec) ([]model.Row, error) {
	return Run(ctx, model.NewSliceIterator(records), filter, spec)
}

func isExcluded(rec *model.Record, fields []model.Field) bool {
	for _, f := range fields {
		if rec.Get(f).IsBlank() {
			return true
		}
	}
	return false
}

// SortRows orders rows in place by key. The sort is stable, so ties keep the
// order in which their groups were first seen. Undefined metrics sort last
// in either direction.
func SortRows(rows []model.Row, key model.SortKey) {
	sort.SliceStable(rows, func(i, j int) bool {
		if key.ByGroup() {
			c := rows[i].Key.Compare(rows[j].Key)
			if key.Descending {
				return c > 0
			}
			return c < 0
		}

		a, _ := rows[i].Metric(key.Measure)
		b, _ := rows[j].Metric(key.Measure)
		if a.Defined != b.Defined {
			return a.Defined
		}
		if !a.Defined {
			return false
		}
		if key.Descending {
			return a.Value > b.Value
		}
		return a.Value < b.Value
	})
}
