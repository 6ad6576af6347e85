package model

// Record is one observation. Every field is optional; an absent field is
// distinct from an empty string.
type Record struct {
	EndYear    Number `json:"end_year"`
	Intensity  Number `json:"intensity"`
	Sector     Text   `json:"sector"`
	Topic      Text   `json:"topic"`
	Insight    Text   `json:"insight"`
	URL        Text   `json:"url"`
	Region     Text   `json:"region"`
	StartYear  Number `json:"start_year"`
	Impact     Text   `json:"impact"`
	Added      Text   `json:"added"`
	Published  Text   `json:"published"`
	Country    Text   `json:"country"`
	Relevance  Number `json:"relevance"`
	Pestle     Text   `json:"pestle"`
	Source     Text   `json:"source"`
	Title      Text   `json:"title"`
	Likelihood Number `json:"likelihood"`
	City       Text   `json:"city"`
}

// Get returns the value of field f, or null for unknown fields.
func (r *Record) Get(f Field) Value {
	switch f {
	case FieldEndYear:
		return r.EndYear.Value()
	case FieldStartYear:
		return r.StartYear.Value()
	case FieldIntensity:
		return r.Intensity.Value()
	case FieldLikelihood:
		return r.Likelihood.Value()
	case FieldRelevance:
		return r.Relevance.Value()
	case FieldSector:
		return r.Sector.Value()
	case FieldTopic:
		return r.Topic.Value()
	case FieldRegion:
		return r.Region.Value()
	case FieldPestle:
		return r.Pestle.Value()
	case FieldSource:
		return r.Source.Value()
	case FieldCountry:
		return r.Country.Value()
	case FieldCity:
		return r.City.Value()
	case FieldInsight:
		return r.Insight.Value()
	case FieldURL:
		return r.URL.Value()
	case FieldImpact:
		return r.Impact.Value()
	case FieldAdded:
		return r.Added.Value()
	case FieldPublished:
		return r.Published.Value()
	case FieldTitle:
		return r.Title.Value()
	}
	return Null()
}

// Numbers returns pointers to the numeric fields keyed by field, for code
// that needs to read or rewrite them generically.
func (r *Record) Numbers() map[Field]*Number {
	return map[Field]*Number{
		FieldEndYear:    &r.EndYear,
		FieldStartYear:  &r.StartYear,
		FieldIntensity:  &r.Intensity,
		FieldLikelihood: &r.Likelihood,
		FieldRelevance:  &r.Relevance,
	}
}

// Texts returns pointers to the text fields keyed by field.
func (r *Record) Texts() map[Field]*Text {
	return map[Field]*Text{
		FieldSector:    &r.Sector,
		FieldTopic:     &r.Topic,
		FieldRegion:    &r.Region,
		FieldPestle:    &r.Pestle,
		FieldSource:    &r.Source,
		FieldCountry:   &r.Country,
		FieldCity:      &r.City,
		FieldInsight:   &r.Insight,
		FieldURL:       &r.URL,
		FieldImpact:    &r.Impact,
		FieldAdded:     &r.Added,
		FieldPublished: &r.Published,
		FieldTitle:     &r.Title,
	}
}

// RecordIterator is a pull-based cursor over records, modeled on sql.Rows:
// call Next until it returns false, then check Err.
type RecordIterator interface {
	Next() bool
	Record() Record
	Err() error
	Close() error
}

// SliceIterator iterates an in-memory slice.
type SliceIterator struct {
	records []Record
	pos     int
}

// NewSliceIterator returns an iterator over records.
func NewSliceIterator(records []Record) *SliceIterator {
	return &SliceIterator{records: records, pos: -1}
}

func (it *SliceIterator) Next() bool {
	if it.pos+1 >= len(it.records) {
		it.pos = len(it.records)
		return false
	}
	it.pos++
	return true
}

func (it *SliceIterator) Record() Record { return it.records[it.pos] }

func (it *SliceIterator) Err() error { return nil }

func (it *SliceIterator) Close() error { return nil }
