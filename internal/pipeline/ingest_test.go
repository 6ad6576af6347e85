package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"go-insights-engine/internal/logger"
	"go-insights-engine/internal/metrics"
	"go-insights-engine/internal/model"
)

const sampleJSON = `[
	{"end_year": "2027", "intensity": 6, "sector": " Energy ", "topic": "gas", "country": "United States of America"},
	{"end_year": "", "intensity": "", "sector": "", "topic": "oil"},
	{"end_year": 2020.5, "intensity": 3},
	{"intensity": "lots"},
	{"likelihood": -1},
	{"relevance": 2, "city": "Paris"}
]`

func TestDecodeJSON(t *testing.T) {
	res, err := DecodeJSON(context.Background(), strings.NewReader(sampleJSON))
	require.NoError(t, err)

	require.Len(t, res.Records, 3)
	assert.Equal(t, 3, res.RejectedCount())

	first := res.Records[0]
	assert.Equal(t, model.NumberValue(2027), first.Get(model.FieldEndYear))
	assert.Equal(t, model.StringValue("Energy"), first.Get(model.FieldSector))

	second := res.Records[1]
	assert.True(t, second.Get(model.FieldEndYear).IsNull())
	assert.Equal(t, model.StringValue(""), second.Get(model.FieldSector))

	var indexes []int
	for _, e := range multierr.Errors(res.Rejected) {
		var re *RecordError
		require.ErrorAs(t, e, &re)
		indexes = append(indexes, re.Index)
	}
	assert.Equal(t, []int{2, 3, 4}, indexes)
}

func TestDecodeJSON_NotAnArray(t *testing.T) {
	_, err := DecodeJSON(context.Background(), strings.NewReader(`{"end_year": 2020}`))
	assert.Error(t, err)
}

func TestDecodeCSV(t *testing.T) {
	input := "\ufeff\"end_year\",intensity,sector,colour\n" +
		"2030,5,Energy,red\n" +
		",,,\n" +
		"soon,1,Retail,blue\n"

	res, err := DecodeCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, model.NumberValue(2030), res.Records[0].Get(model.FieldEndYear))
	assert.Equal(t, model.NumberValue(5), res.Records[0].Get(model.FieldIntensity))
	assert.True(t, res.Records[1].Get(model.FieldSector).IsNull())
	assert.Equal(t, 1, res.RejectedCount())
}

func TestLoadRecords_FileAndURL(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleJSON), 0o644))
	csvPath := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("topic\noil\ngas\n"), 0o644))

	res, err := LoadRecords(context.Background(), jsonPath)
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)

	res, err = LoadRecords(context.Background(), csvPath)
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	res, err = LoadRecords(context.Background(), srv.URL+"/data.json?token=x")
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)

	_, err = LoadRecords(context.Background(), srv.URL+"/missing.json")
	assert.Error(t, err)

	_, err = LoadRecords(context.Background(), filepath.Join(dir, "nope.json"))
	assert.Error(t, err)
}

type recordingWriter struct {
	got []model.Record
	err error
}

func (w *recordingWriter) ReplaceRecords(_ context.Context, records []model.Record) error {
	w.got = records
	return w.err
}

func TestImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	w := &recordingWriter{}

	res, err := Import(context.Background(), w, path, logger.NewNop(), m)
	require.NoError(t, err)

	assert.Len(t, w.got, 3)
	assert.Equal(t, 3, res.RejectedCount())
	assert.InDelta(t, 3, testutil.ToFloat64(m.RecordsImported), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.RecordsRejected), 0)
}

func TestImport_WriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	_, err := Import(context.Background(), &recordingWriter{err: errBackend}, path, nil, nil)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "replace", se.Op)
	assert.True(t, errors.Is(err, errBackend))
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name     string
		rec      model.Record
		wantErrs int
	}{
		{"empty record", model.Record{}, 0},
		{"whole years", model.Record{EndYear: model.Num(2030), StartYear: model.Num(2016)}, 0},
		{"fractional year", model.Record{StartYear: model.Num(2016.5)}, 1},
		{"negative scores", model.Record{Intensity: model.Num(-1), Relevance: model.Num(-2)}, 2},
		{"zero is allowed", model.Record{Likelihood: model.Num(0)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := multierr.Errors(ValidateRecord(tt.rec))
			assert.Len(t, errs, tt.wantErrs)
		})
	}
}

func TestNormalizeRecord(t *testing.T) {
	rec := NormalizeRecord(model.Record{Topic: model.Str("  oil\t"), Region: model.Str("   ")})

	assert.Equal(t, model.StringValue("oil"), rec.Get(model.FieldTopic))
	assert.Equal(t, model.StringValue(""), rec.Get(model.FieldRegion))
	assert.True(t, rec.Get(model.FieldCity).IsNull())
}
