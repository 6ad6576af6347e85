package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"

	"go-insights-engine/internal/logger"
	"go-insights-engine/internal/metrics"
	"go-insights-engine/internal/model"
)

// ------------------- Ingestion -------------------

// RecordError describes one input element that was rejected during import.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// LoadResult is the outcome of an import. Rejected holds every per-record
// failure combined with multierr; it is nil when every record was accepted.
type LoadResult struct {
	Records  []model.Record
	Rejected error
}

// RejectedCount returns how many input records were dropped.
func (r LoadResult) RejectedCount() int {
	return len(multierr.Errors(r.Rejected))
}

// LoadRecords reads records from a local file or an http(s) URL. JSON input
// must be an array of objects; files ending in .csv are read as CSV with a
// header row. Bad records are normalized, validated and reported in
// LoadResult.Rejected without failing the load. The returned error is
// reserved for unreadable input.
func LoadRecords(ctx context.Context, pathOrURL string) (LoadResult, error) {
	body, err := open(ctx, pathOrURL)
	if err != nil {
		return LoadResult{}, err
	}
	defer body.Close()

	if strings.EqualFold(filepath.Ext(stripQuery(pathOrURL)), ".csv") {
		return DecodeCSV(ctx, body)
	}
	return DecodeJSON(ctx, body)
}

func open(ctx context.Context, pathOrURL string) (io.ReadCloser, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pathOrURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", pathOrURL, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", pathOrURL, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: unexpected status %s", pathOrURL, resp.Status)
		}
		return resp.Body, nil
	}

	file, err := os.Open(pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", pathOrURL, err)
	}
	return file, nil
}

func stripQuery(pathOrURL string) string {
	if i := strings.IndexAny(pathOrURL, "?#"); i >= 0 {
		return pathOrURL[:i]
	}
	return pathOrURL
}

// ------------------- JSON Ingestion -------------------

// DecodeJSON reads a JSON array of record objects. Each element is decoded
// on its own so one malformed element does not poison the rest.
func DecodeJSON(ctx context.Context, r io.Reader) (LoadResult, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return LoadResult{}, fmt.Errorf("decode JSON records: %w", err)
	}

	acc := newLoadAccumulator(len(raw))
	for i, item := range raw {
		if err := ctx.Err(); err != nil {
			return LoadResult{}, err
		}
		var rec model.Record
		if err := json.Unmarshal(item, &rec); err != nil {
			acc.reject(i, err)
			continue
		}
		acc.accept(i, rec)
	}
	return acc.result(), nil
}

// ------------------- CSV Ingestion -------------------

// DecodeCSV reads CSV with a header row naming record fields. Unknown
// columns are ignored.
func DecodeCSV(ctx context.Context, r io.Reader) (LoadResult, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if err != nil {
		return LoadResult{}, fmt.Errorf("read CSV header: %w", err)
	}
	columns := make([]model.Field, len(headers))
	for i, h := range headers {
		// Clean header names: trim whitespace and remove quotes and BOM
		clean := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(h, "\ufeff"), `"`, ""))
		columns[i] = model.Field(clean)
	}

	acc := newLoadAccumulator(0)
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return LoadResult{}, err
		}
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			acc.reject(i, err)
			continue
		}
		if err != nil {
			return LoadResult{}, fmt.Errorf("read CSV records: %w", err)
		}
		rec, err := recordFromCSV(columns, row)
		if err != nil {
			acc.reject(i, err)
			continue
		}
		acc.accept(i, rec)
	}
	return acc.result(), nil
}

func recordFromCSV(columns []model.Field, row []string) (model.Record, error) {
	var rec model.Record
	numbers := rec.Numbers()
	texts := rec.Texts()
	for i, cell := range row {
		if i >= len(columns) {
			break
		}
		field := columns[i]
		if n, ok := numbers[field]; ok {
			parsed, err := model.ParseNumber(cell)
			if err != nil {
				return model.Record{}, fmt.Errorf("field %s: %w", field, err)
			}
			*n = parsed
			continue
		}
		if t, ok := texts[field]; ok && cell != "" {
			*t = model.Str(cell)
		}
	}
	return rec, nil
}

// loadAccumulator runs each decoded record through normalization and
// validation and collects the rejects.
type loadAccumulator struct {
	records  []model.Record
	rejected error
}

func newLoadAccumulator(capacity int) *loadAccumulator {
	return &loadAccumulator{records: make([]model.Record, 0, capacity)}
}

func (a *loadAccumulator) accept(index int, rec model.Record) {
	rec = NormalizeRecord(rec)
	if err := ValidateRecord(rec); err != nil {
		a.reject(index, err)
		return
	}
	a.records = append(a.records, rec)
}

func (a *loadAccumulator) reject(index int, err error) {
	a.rejected = multierr.Append(a.rejected, &RecordError{Index: index, Err: err})
}

func (a *loadAccumulator) result() LoadResult {
	return LoadResult{Records: a.records, Rejected: a.rejected}
}

// RecordWriter replaces the stored collection.
type RecordWriter interface {
	ReplaceRecords(ctx context.Context, records []model.Record) error
}

// Import loads source and replaces the contents of w with the accepted
// records. Rejected records are logged and counted but do not fail the
// import.
func Import(ctx context.Context, w RecordWriter, source string, log logger.Logger, m *metrics.Metrics) (LoadResult, error) {
	if log == nil {
		log = logger.NewNop()
	}
	start := time.Now()

	res, err := LoadRecords(ctx, source)
	if err != nil {
		return LoadResult{}, err
	}
	for _, rerr := range multierr.Errors(res.Rejected) {
		log.Debug("Record rejected", logger.String("source", source), logger.Error(rerr))
	}
	if n := res.RejectedCount(); n > 0 {
		log.Warn("Some records were rejected",
			logger.String("source", source),
			logger.Int("rejected", n),
		)
	}

	if err := w.ReplaceRecords(ctx, res.Records); err != nil {
		return res, wrapStoreError("replace", err)
	}
	m.ObserveImport(len(res.Records), res.RejectedCount())

	log.Info("Import completed",
		logger.String("source", source),
		logger.Int("imported", len(res.Records)),
		logger.Int("rejected", res.RejectedCount()),
		logger.Duration("duration", time.Since(start)),
	)
	return res, nil
}
