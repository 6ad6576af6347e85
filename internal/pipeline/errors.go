package pipeline

import (
	"fmt"

	"go-insights-engine/internal/model"
)

// ConfigError reports a malformed AggregationSpec. It is raised before any
// record is read.
type ConfigError struct {
	Shape  string
	Field  model.Field
	Reason string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Field != "" && e.Shape != "":
		return fmt.Sprintf("invalid aggregation %q: field %q: %s", e.Shape, e.Field, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("invalid aggregation: field %q: %s", e.Field, e.Reason)
	case e.Shape != "":
		return fmt.Sprintf("invalid aggregation %q: %s", e.Shape, e.Reason)
	default:
		return "invalid aggregation: " + e.Reason
	}
}

// CoercionError reports a filter value that cannot be converted to the
// field's stored type. The affected constraint matches nothing.
type CoercionError struct {
	Field model.Field
	Value string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q for %s filter to %s: %v", e.Value, e.Field, e.Field.Kind(), e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// StoreError wraps a failure of the record store. It is never replaced by an
// empty result.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
