package pipeline

import (
	"sort"

	"go-insights-engine/internal/model"
)

// Names of the built-in query shapes.
const (
	ShapeStats               = "stats"
	ShapeIntensityByYear     = "intensity-by-year"
	ShapeTopicsDistribution  = "topics-distribution"
	ShapeLikelihoodByRegion  = "likelihood-by-region"
	ShapeRelevanceBySector   = "relevance-by-sector"
	ShapeCountryDistribution = "country-distribution"
)

// topN is the cap applied to the ranking shapes.
const topN = 10

var shapes = map[string]model.AggregationSpec{
	ShapeStats: {
		Name: ShapeStats,
		Measures: []model.Measure{
			{Name: "avgIntensity", Reducer: model.ReducerAverage, Field: model.FieldIntensity},
			{Name: "avgLikelihood", Reducer: model.ReducerAverage, Field: model.FieldLikelihood},
			{Name: "avgRelevance", Reducer: model.ReducerAverage, Field: model.FieldRelevance},
			{Name: "totalRecords", Reducer: model.ReducerCount},
		},
	},
	ShapeIntensityByYear: {
		Name:         ShapeIntensityByYear,
		GroupBy:      model.FieldEndYear,
		Measures:     []model.Measure{{Name: "avgIntensity", Reducer: model.ReducerAverage, Field: model.FieldIntensity}},
		ExcludeBlank: []model.Field{model.FieldEndYear, model.FieldIntensity},
	},
	ShapeTopicsDistribution: {
		Name:         ShapeTopicsDistribution,
		GroupBy:      model.FieldTopic,
		Measures:     []model.Measure{{Name: "count", Reducer: model.ReducerCount}},
		ExcludeBlank: []model.Field{model.FieldTopic},
		Sort:         model.SortKey{Measure: "count", Descending: true},
		Limit:        topN,
	},
	ShapeLikelihoodByRegion: {
		Name:         ShapeLikelihoodByRegion,
		GroupBy:      model.FieldRegion,
		Measures:     []model.Measure{{Name: "avgLikelihood", Reducer: model.ReducerAverage, Field: model.FieldLikelihood}},
		ExcludeBlank: []model.Field{model.FieldRegion, model.FieldLikelihood},
		Sort:         model.SortKey{Measure: "avgLikelihood", Descending: true},
		Limit:        topN,
	},
	ShapeRelevanceBySector: {
		Name:         ShapeRelevanceBySector,
		GroupBy:      model.FieldSector,
		Measures:     []model.Measure{{Name: "avgRelevance", Reducer: model.ReducerAverage, Field: model.FieldRelevance}},
		ExcludeBlank: []model.Field{model.FieldSector, model.FieldRelevance},
		Sort:         model.SortKey{Measure: "avgRelevance", Descending: true},
		Limit:        topN,
	},
	ShapeCountryDistribution: {
		Name:         ShapeCountryDistribution,
		GroupBy:      model.FieldCountry,
		Measures:     []model.Measure{{Name: "count", Reducer: model.ReducerCount}},
		ExcludeBlank: []model.Field{model.FieldCountry},
		Sort:         model.SortKey{Measure: "count", Descending: true},
		Limit:        topN,
	},
}

// LookupShape returns a copy of the named shape.
func LookupShape(name string) (model.AggregationSpec, error) {
	spec, ok := shapes[name]
	if !ok {
		return model.AggregationSpec{}, &ConfigError{Shape: name, Reason: "unknown query shape"}
	}
	return spec.Clone(), nil
}

// ShapeNames lists the built-in shapes alphabetically.
func ShapeNames() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownShapeLabel is the metric label for anything that is not a
// built-in shape, keeping the per-shape series bounded.
const UnknownShapeLabel = "unknown"

func shapeLabel(name string) string {
	if _, ok := shapes[name]; ok {
		return name
	}
	return UnknownShapeLabel
}
