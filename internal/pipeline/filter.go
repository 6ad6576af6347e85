package pipeline

import (
	"net/url"
	"strings"

	"go-insights-engine/internal/logger"
	"go-insights-engine/internal/model"
	"go-insights-engine/pkg/utils"
)

// Params are raw filter parameters keyed by field name. A missing key and an
// empty value both mean "no constraint".
type Params map[string]string

// ParamsFromQuery takes the first value of every query parameter.
func ParamsFromQuery(q url.Values) Params {
	p := make(Params, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			p[k] = vs[0]
		}
	}
	return p
}

// FilterBuilder turns raw parameters into a Filter.
type FilterBuilder struct {
	log logger.Logger
}

// NewFilterBuilder returns a builder that logs coercion failures to log.
func NewFilterBuilder(log logger.Logger) *FilterBuilder {
	if log == nil {
		log = logger.NewNop()
	}
	return &FilterBuilder{log: log}
}

// Build constrains every filterable field whose parameter is present and
// non-blank. Unknown parameters are ignored. A year that is not a number
// yields an unsatisfiable constraint rather than an error.
func (b *FilterBuilder) Build(params Params) model.Filter {
	var f model.Filter
	for _, field := range model.FilterableFields() {
		raw, ok := params[string(field)]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		f = f.With(b.constraint(field, raw))
	}
	return f
}

func (b *FilterBuilder) constraint(field model.Field, raw string) model.Constraint {
	if !field.Kind().IsNumeric() {
		return model.Constraint{Field: field, Value: model.StringValue(raw)}
	}

	n, err := utils.ParseFloat(raw)
	if err != nil {
		cerr := &CoercionError{Field: field, Value: raw, Err: err}
		b.log.Warn("Filter value cannot be coerced, constraint matches nothing",
			logger.String("field", string(field)),
			logger.String("value", raw),
			logger.Error(err),
		)
		return model.Constraint{Field: field, Unsatisfiable: true, Err: cerr}
	}
	return model.Constraint{Field: field, Value: model.NumberValue(n)}
}
