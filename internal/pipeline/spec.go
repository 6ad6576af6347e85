package pipeline

import (
	"fmt"

	"go.uber.org/multierr"

	"go-insights-engine/internal/model"
)

// ValidateSpec checks an AggregationSpec before it runs. All problems are
// reported together as *ConfigError values combined with multierr.
func ValidateSpec(spec model.AggregationSpec) error {
	var errs error
	fail := func(field model.Field, format string, args ...any) {
		errs = multierr.Append(errs, &ConfigError{
			Shape:  spec.Name,
			Field:  field,
			Reason: fmt.Sprintf(format, args...),
		})
	}

	if spec.GroupBy != "" && !spec.GroupBy.Known() {
		fail(spec.GroupBy, "unknown group-by field")
	}

	if len(spec.Measures) == 0 {
		fail("", "at least one measure is required")
	}
	seen := make(map[string]bool, len(spec.Measures))
	for _, m := range spec.Measures {
		if m.Name == "" {
			fail(m.Field, "measure name is required")
		} else if seen[m.Name] {
			fail(m.Field, "duplicate measure name %q", m.Name)
		}
		seen[m.Name] = true

		switch m.Reducer {
		case model.ReducerCount:
		case model.ReducerAverage:
			switch {
			case m.Field == "":
				fail("", "measure %q: average needs a field", m.Name)
			case !m.Field.Known():
				fail(m.Field, "measure %q: unknown field", m.Name)
			case !m.Field.Kind().IsNumeric():
				fail(m.Field, "measure %q: cannot average %s field", m.Name, m.Field.Kind())
			}
		default:
			fail(m.Field, "measure %q: unknown reducer %q", m.Name, m.Reducer)
		}
	}

	for _, f := range spec.ExcludeBlank {
		if !f.Known() {
			fail(f, "unknown exclusion field")
		}
	}

	if !spec.Sort.ByGroup() && !seen[spec.Sort.Measure] {
		fail("", "sort measure %q is not declared", spec.Sort.Measure)
	}

	if spec.Limit < 0 {
		fail("", "limit must not be negative, got %d", spec.Limit)
	}

	return errs
}
