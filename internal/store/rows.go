package store

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"go-insights-engine/internal/model"
)

const selectRecordsSQL = `SELECT id, end_year, intensity, sector, topic, insight, url, region,
	start_year, impact, added, published, country, relevance, pestle, source, title,
	likelihood, city FROM records`

const insertRecordSQL = `INSERT INTO records (end_year, intensity, sector, topic, insight, url,
	region, start_year, impact, added, published, country, relevance, pestle, source, title,
	likelihood, city) VALUES (:end_year, :intensity, :sector, :topic, :insight, :url,
	:region, :start_year, :impact, :added, :published, :country, :relevance, :pestle, :source,
	:title, :likelihood, :city)`

// recordRow mirrors the records table. Numeric columns are read as text so a
// value SQLite could not store as a number is reported instead of silently
// read as zero.
type recordRow struct {
	ID         int64          `db:"id"`
	EndYear    sql.NullString `db:"end_year"`
	Intensity  sql.NullString `db:"intensity"`
	Sector     sql.NullString `db:"sector"`
	Topic      sql.NullString `db:"topic"`
	Insight    sql.NullString `db:"insight"`
	URL        sql.NullString `db:"url"`
	Region     sql.NullString `db:"region"`
	StartYear  sql.NullString `db:"start_year"`
	Impact     sql.NullString `db:"impact"`
	Added      sql.NullString `db:"added"`
	Published  sql.NullString `db:"published"`
	Country    sql.NullString `db:"country"`
	Relevance  sql.NullString `db:"relevance"`
	Pestle     sql.NullString `db:"pestle"`
	Source     sql.NullString `db:"source"`
	Title      sql.NullString `db:"title"`
	Likelihood sql.NullString `db:"likelihood"`
	City       sql.NullString `db:"city"`
}

// MalformedRecordError reports a stored value that does not fit its column.
type MalformedRecordError struct {
	ID    int64
	Field model.Field
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %d: field %s value %q: %v", e.ID, e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func (r *recordRow) toRecord() (model.Record, error) {
	var rec model.Record

	numbers := rec.Numbers()
	for field, col := range map[model.Field]sql.NullString{
		model.FieldEndYear:    r.EndYear,
		model.FieldStartYear:  r.StartYear,
		model.FieldIntensity:  r.Intensity,
		model.FieldLikelihood: r.Likelihood,
		model.FieldRelevance:  r.Relevance,
	} {
		if !col.Valid {
			continue
		}
		n, err := model.ParseNumber(col.String)
		if err != nil {
			return model.Record{}, &MalformedRecordError{ID: r.ID, Field: field, Value: col.String, Err: err}
		}
		*numbers[field] = n
	}

	texts := rec.Texts()
	for field, col := range map[model.Field]sql.NullString{
		model.FieldSector:    r.Sector,
		model.FieldTopic:     r.Topic,
		model.FieldRegion:    r.Region,
		model.FieldPestle:    r.Pestle,
		model.FieldSource:    r.Source,
		model.FieldCountry:   r.Country,
		model.FieldCity:      r.City,
		model.FieldInsight:   r.Insight,
		model.FieldURL:       r.URL,
		model.FieldImpact:    r.Impact,
		model.FieldAdded:     r.Added,
		model.FieldPublished: r.Published,
		model.FieldTitle:     r.Title,
	} {
		if col.Valid {
			*texts[field] = model.Str(col.String)
		}
	}

	return rec, nil
}

// toRow maps a record onto the named insert parameters.
func toRow(rec *model.Record) map[string]any {
	row := make(map[string]any, len(model.AllFields()))
	for field, n := range rec.Numbers() {
		row[string(field)] = sql.NullFloat64{Float64: n.Float, Valid: n.Valid}
	}
	for field, t := range rec.Texts() {
		row[string(field)] = sql.NullString{String: t.String, Valid: t.Valid}
	}
	return row
}

// parseColumn converts one text-scanned column back to a Value.
func parseColumn(field model.Field, raw string) (model.Value, error) {
	if !field.Kind().IsNumeric() {
		return model.StringValue(raw), nil
	}
	n, err := model.ParseNumber(raw)
	if err != nil {
		return model.Value{}, &MalformedRecordError{Field: field, Value: raw, Err: err}
	}
	return n.Value(), nil
}

// rowIterator adapts sqlx rows to model.RecordIterator. A malformed row ends
// the iteration and is reported by Err.
type rowIterator struct {
	rows *sqlx.Rows
	cur  model.Record
	err  error
}

func (it *rowIterator) Next() bool {
	if it.err != nil || !it.rows.Next() {
		return false
	}

	var row recordRow
	if err := it.rows.StructScan(&row); err != nil {
		it.err = fmt.Errorf("scan record: %w", err)
		return false
	}
	rec, err := row.toRecord()
	if err != nil {
		it.err = err
		return false
	}
	it.cur = rec
	return true
}

func (it *rowIterator) Record() model.Record { return it.cur }

func (it *rowIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.rows.Err()
}

func (it *rowIterator) Close() error { return it.rows.Close() }
