package pipeline

import (
	"context"
	"errors"
	"sync/atomic"

	"go-insights-engine/internal/model"
)

var errBackend = errors.New("connection reset")

// failingIterator yields its records and then fails.
type failingIterator struct {
	records []model.Record
	pos     int
	err     error
	calls   int
	closed  bool
}

func (it *failingIterator) Next() bool {
	it.calls++
	if it.pos >= len(it.records) {
		return false
	}
	it.pos++
	return true
}

func (it *failingIterator) Record() model.Record { return it.records[it.pos-1] }

func (it *failingIterator) Err() error { return it.err }

func (it *failingIterator) Close() error {
	it.closed = true
	return nil
}

// memoryStore is a RecordStore over a slice.
type memoryStore struct {
	records []model.Record
	scanErr error
	iterErr error
	scans   atomic.Int32
}

func (s *memoryStore) Scan(context.Context) (model.RecordIterator, error) {
	s.scans.Add(1)
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return &failingIterator{records: s.records, err: s.iterErr}, nil
}

func (s *memoryStore) Find(_ context.Context, filter model.Filter) ([]model.Record, error) {
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	var out []model.Record
	for i := range s.records {
		if filter.Match(&s.records[i]) {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func metricValue(t interface{ Helper() }, row model.Row, name string) float64 {
	t.Helper()
	m, _ := row.Metric(name)
	return m.Value
}

func rowKeys(rows []model.Row) []model.Value {
	keys := make([]model.Value, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}

func yearIntensity(year, intensity float64) model.Record {
	return model.Record{EndYear: model.Num(year), Intensity: model.Num(intensity)}
}

func topic(name string) model.Record {
	return model.Record{Topic: model.Str(name)}
}

func sectorRecord(sector string, intensity, likelihood, relevance float64) model.Record {
	return model.Record{
		Sector:     model.Str(sector),
		Intensity:  model.Num(intensity),
		Likelihood: model.Num(likelihood),
		Relevance:  model.Num(relevance),
	}
}
