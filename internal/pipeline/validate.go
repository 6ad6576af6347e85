package pipeline

import (
	"fmt"

	"go.uber.org/multierr"

	"go-insights-engine/internal/model"
	"go-insights-engine/pkg/utils"
)

// yearFields must hold whole years when present.
var yearFields = []model.Field{model.FieldEndYear, model.FieldStartYear}

// scoreFields must hold finite, non-negative scores when present.
var scoreFields = []model.Field{model.FieldIntensity, model.FieldLikelihood, model.FieldRelevance}

// ValidateRecord checks the numeric fields of an imported record. Absent
// fields are always valid.
func ValidateRecord(rec model.Record) error {
	var errs error

	for _, field := range yearFields {
		v, ok := rec.Get(field).Float()
		if ok && !utils.IsIntegral(v) {
			errs = multierr.Append(errs, fmt.Errorf("field %s must be a whole year, got %v", field, v))
		}
	}

	for _, field := range scoreFields {
		v, ok := rec.Get(field).Float()
		if !ok {
			continue
		}
		if !utils.IsFinite(v) {
			errs = multierr.Append(errs, fmt.Errorf("field %s must be finite, got %v", field, v))
			continue
		}
		if v < 0 {
			errs = multierr.Append(errs, fmt.Errorf("field %s below minimum: got %v, want ≥ 0", field, v))
		}
	}

	return errs
}
