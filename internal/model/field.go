package model

// Field names a record attribute. The string value doubles as the JSON key,
// the query parameter name and the store column name.
type Field string

const (
	FieldEndYear    Field = "end_year"
	FieldStartYear  Field = "start_year"
	FieldIntensity  Field = "intensity"
	FieldLikelihood Field = "likelihood"
	FieldRelevance  Field = "relevance"
	FieldSector     Field = "sector"
	FieldTopic      Field = "topic"
	FieldRegion     Field = "region"
	FieldPestle     Field = "pestle"
	FieldSource     Field = "source"
	FieldCountry    Field = "country"
	FieldCity       Field = "city"
	FieldInsight    Field = "insight"
	FieldURL        Field = "url"
	FieldImpact     Field = "impact"
	FieldAdded      Field = "added"
	FieldPublished  Field = "published"
	FieldTitle      Field = "title"
)

// Kind is the semantic type of a field.
type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
	// KindTemporal is a year: grouped like a category, compared like a number.
	KindTemporal
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTemporal:
		return "temporal"
	default:
		return "categorical"
	}
}

// IsNumeric reports whether values of this kind are stored as numbers.
func (k Kind) IsNumeric() bool {
	return k == KindNumeric || k == KindTemporal
}

var fieldKinds = map[Field]Kind{
	FieldEndYear:    KindTemporal,
	FieldStartYear:  KindTemporal,
	FieldIntensity:  KindNumeric,
	FieldLikelihood: KindNumeric,
	FieldRelevance:  KindNumeric,
	FieldSector:     KindCategorical,
	FieldTopic:      KindCategorical,
	FieldRegion:     KindCategorical,
	FieldPestle:     KindCategorical,
	FieldSource:     KindCategorical,
	FieldCountry:    KindCategorical,
	FieldCity:       KindCategorical,
	FieldInsight:    KindCategorical,
	FieldURL:        KindCategorical,
	FieldImpact:     KindCategorical,
	FieldAdded:      KindCategorical,
	FieldPublished:  KindCategorical,
	FieldTitle:      KindCategorical,
}

// allFields keeps the column order used by the store and the exporters.
var allFields = []Field{
	FieldEndYear, FieldIntensity, FieldSector, FieldTopic, FieldInsight,
	FieldURL, FieldRegion, FieldStartYear, FieldImpact, FieldAdded,
	FieldPublished, FieldCountry, FieldRelevance, FieldPestle, FieldSource,
	FieldTitle, FieldLikelihood, FieldCity,
}

// filterableFields are the query parameters the filter builder recognizes,
// in canonical order.
var filterableFields = []Field{
	FieldEndYear, FieldTopic, FieldSector, FieldRegion,
	FieldPestle, FieldSource, FieldCountry,
}

// AllFields returns every known field in column order.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// FilterableFields returns the fields that accept exact-match constraints.
func FilterableFields() []Field {
	out := make([]Field, len(filterableFields))
	copy(out, filterableFields)
	return out
}

// ParseField resolves a field by name.
func ParseField(name string) (Field, bool) {
	f := Field(name)
	_, ok := fieldKinds[f]
	return f, ok
}

// Known reports whether f is one of the declared fields.
func (f Field) Known() bool {
	_, ok := fieldKinds[f]
	return ok
}

// Kind returns the semantic kind of f. Unknown fields are categorical.
func (f Field) Kind() Kind {
	return fieldKinds[f]
}

// Filterable reports whether f accepts an exact-match constraint.
func (f Field) Filterable() bool {
	for _, ff := range filterableFields {
		if ff == f {
			return true
		}
	}
	return false
}

func (f Field) String() string { return string(f) }
