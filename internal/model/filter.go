package model

// Constraint is one exact-match condition. An Unsatisfiable constraint never
// matches; Err records why it could not be built.
type Constraint struct {
	Field         Field
	Value         Value
	Unsatisfiable bool
	Err           error
}

// Matches reports whether r satisfies the constraint.
func (c Constraint) Matches(r *Record) bool {
	if c.Unsatisfiable {
		return false
	}
	v := r.Get(c.Field)
	if v.IsNull() {
		return false
	}
	return v.Equal(c.Value)
}

// Filter is a conjunction of constraints, at most one per field. The zero
// Filter matches every record.
type Filter struct {
	constraints []Constraint
}

// NewFilter builds a filter from constraints. A later constraint on the same
// field replaces an earlier one.
func NewFilter(constraints ...Constraint) Filter {
	var f Filter
	for _, c := range constraints {
		f = f.With(c)
	}
	return f
}

// With returns a copy of f with c added.
func (f Filter) With(c Constraint) Filter {
	out := make([]Constraint, 0, len(f.constraints)+1)
	for _, existing := range f.constraints {
		if existing.Field != c.Field {
			out = append(out, existing)
		}
	}
	out = append(out, c)
	return Filter{constraints: out}
}

// Constraints returns the constraints in insertion order.
func (f Filter) Constraints() []Constraint {
	out := make([]Constraint, len(f.constraints))
	copy(out, f.constraints)
	return out
}

// Get returns the constraint on field, if any.
func (f Filter) Get(field Field) (Constraint, bool) {
	for _, c := range f.constraints {
		if c.Field == field {
			return c, true
		}
	}
	return Constraint{}, false
}

// Len returns the number of constraints.
func (f Filter) Len() int { return len(f.constraints) }

// IsEmpty reports whether f imposes no constraint.
func (f Filter) IsEmpty() bool { return len(f.constraints) == 0 }

// Unsatisfiable reports whether some constraint can never match.
func (f Filter) Unsatisfiable() bool {
	for _, c := range f.constraints {
		if c.Unsatisfiable {
			return true
		}
	}
	return false
}

// Match reports whether r satisfies every constraint.
func (f Filter) Match(r *Record) bool {
	for _, c := range f.constraints {
		if !c.Matches(r) {
			return false
		}
	}
	return true
}
