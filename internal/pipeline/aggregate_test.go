package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-insights-engine/internal/model"
)

func mustShape(t *testing.T, name string) model.AggregationSpec {
	t.Helper()
	spec, err := LookupShape(name)
	require.NoError(t, err)
	return spec
}

func TestRun_IntensityByYear(t *testing.T) {
	records := []model.Record{
		yearIntensity(2021, 30),
		yearIntensity(2020, 10),
		yearIntensity(2020, 20),
		{Intensity: model.Num(99)},
		{EndYear: model.Num(2022)},
	}

	rows, err := RunRecords(context.Background(), records, model.Filter{}, mustShape(t, ShapeIntensityByYear))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, model.NumberValue(2020), rows[0].Key)
	assert.InDelta(t, 15, metricValue(t, rows[0], "avgIntensity"), 1e-9)
	assert.Equal(t, model.NumberValue(2021), rows[1].Key)
	assert.InDelta(t, 30, metricValue(t, rows[1], "avgIntensity"), 1e-9)
}

func TestRun_TopicsWithoutTopicIsEmpty(t *testing.T) {
	records := []model.Record{
		{Sector: model.Str("Energy")},
		{Topic: model.Str("")},
		{},
	}

	rows, err := RunRecords(context.Background(), records, model.Filter{}, mustShape(t, ShapeTopicsDistribution))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRun_StatsWithSectorFilter(t *testing.T) {
	records := []model.Record{
		sectorRecord("Energy", 10, 2, 4),
		sectorRecord("Retail", 100, 5, 5),
		sectorRecord("Energy", 20, 4, 2),
	}
	filter := NewFilterBuilder(nil).Build(Params{"sector": "Energy"})

	rows, err := RunRecords(context.Background(), records, filter, mustShape(t, ShapeStats))
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Key.IsNull())
	assert.InDelta(t, 15, metricValue(t, rows[0], "avgIntensity"), 1e-9)
	assert.InDelta(t, 3, metricValue(t, rows[0], "avgLikelihood"), 1e-9)
	assert.InDelta(t, 3, metricValue(t, rows[0], "avgRelevance"), 1e-9)
	assert.InDelta(t, 2, metricValue(t, rows[0], "totalRecords"), 1e-9)
}

func TestRun_StatsOverNothingHasNoRow(t *testing.T) {
	filter := NewFilterBuilder(nil).Build(Params{"sector": "Mining"})

	rows, err := RunRecords(context.Background(), []model.Record{sectorRecord("Energy", 1, 1, 1)}, filter, mustShape(t, ShapeStats))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRun_AverageIgnoresMissingValues(t *testing.T) {
	records := []model.Record{
		{Sector: model.Str("Energy"), Intensity: model.Num(10)},
		{Sector: model.Str("Energy")},
		{Sector: model.Str("Energy"), Intensity: model.Num(20)},
	}

	rows, err := RunRecords(context.Background(), records, model.Filter{}, mustShape(t, ShapeStats))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 15, metricValue(t, rows[0], "avgIntensity"), 1e-9)
	assert.InDelta(t, 3, metricValue(t, rows[0], "totalRecords"), 1e-9)

	likelihood, ok := rows[0].Metric("avgLikelihood")
	require.True(t, ok)
	assert.False(t, likelihood.Defined)
}

func TestRun_EmptyFilterEqualsUnfiltered(t *testing.T) {
	records := []model.Record{topic("oil"), topic("gas"), topic("oil")}
	spec := mustShape(t, ShapeTopicsDistribution)

	unfiltered, err := RunRecords(context.Background(), records, model.Filter{}, spec)
	require.NoError(t, err)
	empty, err := RunRecords(context.Background(), records, NewFilterBuilder(nil).Build(Params{"topic": "  "}), spec)
	require.NoError(t, err)

	assert.Equal(t, unfiltered, empty)
}

func TestRun_Deterministic(t *testing.T) {
	var records []model.Record
	for i := range 50 {
		records = append(records, model.Record{
			Region:     model.Str(fmt.Sprintf("region-%d", i%7)),
			Likelihood: model.Num(float64(i % 4)),
		})
	}
	spec := mustShape(t, ShapeLikelihoodByRegion)

	first, err := RunRecords(context.Background(), records, model.Filter{}, spec)
	require.NoError(t, err)
	for range 5 {
		again, err := RunRecords(context.Background(), records, model.Filter{}, spec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRun_TopNIsPrefixOfFullSort(t *testing.T) {
	var records []model.Record
	for i := range 15 {
		for range i%5 + 1 {
			records = append(records, topic(fmt.Sprintf("topic-%02d", i)))
		}
	}
	capped := mustShape(t, ShapeTopicsDistribution)
	uncapped := capped.Clone()
	uncapped.Limit = 0

	top, err := RunRecords(context.Background(), records, model.Filter{}, capped)
	require.NoError(t, err)
	all, err := RunRecords(context.Background(), records, model.Filter{}, uncapped)
	require.NoError(t, err)

	require.Len(t, all, 15)
	require.Len(t, top, topN)
	assert.Equal(t, all[:topN], top)
}

func TestRun_TiesKeepFirstAppearance(t *testing.T) {
	records := []model.Record{topic("b"), topic("a"), topic("c"), topic("a"), topic("b")}

	rows, err := RunRecords(context.Background(), records, model.Filter{}, mustShape(t, ShapeTopicsDistribution))
	require.NoError(t, err)

	assert.Equal(t, []model.Value{
		model.StringValue("b"),
		model.StringValue("a"),
		model.StringValue("c"),
	}, rowKeys(rows))
}

func TestRun_CountsSumToSurvivingRecords(t *testing.T) {
	records := []model.Record{
		{Country: model.Str("India")},
		{Country: model.Str("")},
		{Country: model.Str("Mexico")},
		{},
		{Country: model.Str("India")},
	}
	spec := mustShape(t, ShapeCountryDistribution)

	rows, err := RunRecords(context.Background(), records, model.Filter{}, spec)
	require.NoError(t, err)

	total := 0.0
	for _, r := range rows {
		total += metricValue(t, r, "count")
	}
	assert.InDelta(t, 3, total, 1e-9)
}

func TestRun_UndefinedAveragesSortLast(t *testing.T) {
	spec := model.AggregationSpec{
		Name:     "likelihood-any-region",
		GroupBy:  model.FieldRegion,
		Measures: []model.Measure{{Name: "avgLikelihood", Reducer: model.ReducerAverage, Field: model.FieldLikelihood}},
		Sort:     model.SortKey{Measure: "avgLikelihood", Descending: true},
	}
	records := []model.Record{
		{Region: model.Str("Asia")},
		{Region: model.Str("Europe"), Likelihood: model.Num(2)},
		{Region: model.Str("Africa"), Likelihood: model.Num(4)},
	}

	rows, err := RunRecords(context.Background(), records, model.Filter{}, spec)
	require.NoError(t, err)

	assert.Equal(t, []model.Value{
		model.StringValue("Africa"),
		model.StringValue("Europe"),
		model.StringValue("Asia"),
	}, rowKeys(rows))
	m, _ := rows[2].Metric("avgLikelihood")
	assert.False(t, m.Defined)
}

func TestRun_NullKeyFormsGroupWithoutExclusion(t *testing.T) {
	spec := model.AggregationSpec{
		Name:     "topics-raw",
		GroupBy:  model.FieldTopic,
		Measures: []model.Measure{{Name: "count", Reducer: model.ReducerCount}},
	}
	records := []model.Record{topic("oil"), {}, {}}

	rows, err := RunRecords(context.Background(), records, model.Filter{}, spec)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.True(t, rows[0].Key.IsNull())
	assert.InDelta(t, 2, metricValue(t, rows[0], "count"), 1e-9)
}

func TestRun_NegativeZeroSharesGroupWithZero(t *testing.T) {
	spec := model.AggregationSpec{
		Name:     "years-raw",
		GroupBy:  model.FieldEndYear,
		Measures: []model.Measure{{Name: "count", Reducer: model.ReducerCount}},
	}
	records := []model.Record{yearIntensity(0, 1), yearIntensity(math.Copysign(0, -1), 2)}

	rows, err := RunRecords(context.Background(), records, model.Filter{}, spec)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.InDelta(t, 2, metricValue(t, rows[0], "count"), 1e-9)
}

func TestRun_UnsatisfiableFilterMatchesNothing(t *testing.T) {
	records := []model.Record{yearIntensity(2020, 10)}
	filter := NewFilterBuilder(nil).Build(Params{"end_year": "soon"})

	rows, err := RunRecords(context.Background(), records, filter, mustShape(t, ShapeIntensityByYear))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, err := RunRecords(ctx, []model.Record{topic("oil")}, model.Filter{}, mustShape(t, ShapeTopicsDistribution))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, rows)
}

func TestRun_IteratorFailureIsStoreError(t *testing.T) {
	it := &failingIterator{records: []model.Record{topic("oil")}, err: errBackend}

	rows, err := Run(context.Background(), it, model.Filter{}, mustShape(t, ShapeTopicsDistribution))
	require.Error(t, err)
	assert.Nil(t, rows)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "iterate", se.Op)
	assert.ErrorIs(t, err, errBackend)
	assert.False(t, it.closed)
}

func TestRun_InvalidSpecFailsBeforeReading(t *testing.T) {
	it := &failingIterator{records: []model.Record{topic("oil")}}
	spec := model.AggregationSpec{
		Name:     "broken",
		GroupBy:  model.Field("colour"),
		Measures: []model.Measure{{Name: "avg", Reducer: model.ReducerAverage, Field: model.FieldSector}},
	}

	_, err := Run(context.Background(), it, model.Filter{}, spec)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "broken", ce.Shape)
	assert.Zero(t, it.calls)
}

func TestSortRows_ByGroupDescending(t *testing.T) {
	rows := []model.Row{
		{Key: model.NumberValue(2020)},
		{Key: model.NumberValue(2022)},
		{Key: model.NumberValue(2021)},
	}
	SortRows(rows, model.SortKey{Descending: true})
	assert.Equal(t, []model.Value{
		model.NumberValue(2022),
		model.NumberValue(2021),
		model.NumberValue(2020),
	}, rowKeys(rows))
}

func TestStoreError_Unwrap(t *testing.T) {
	err := fmt.Errorf("query: %w", &StoreError{Op: "scan", Err: errBackend})
	assert.True(t, errors.Is(err, errBackend))
	assert.Contains(t, err.Error(), "record store scan")
}
