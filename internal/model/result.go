package model

import (
	"bytes"
	"encoding/json"
)

// Metric is one reduced value. Defined is false for an average over no data.
type Metric struct {
	Name    string
	Value   float64
	Defined bool
}

// Row is one group's key plus its reduced values, in measure order.
type Row struct {
	Key     Value
	Metrics []Metric
}

// Metric looks up a reduced value by name.
func (r Row) Metric(name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// MarshalJSON renders {"_id": key, "<measure>": value, ...} with measures in
// declaration order. Undefined metrics render as null.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"_id":`)
	key, err := r.Key.MarshalJSON()
	if err != nil {
		return nil, err
	}
	buf.Write(key)
	for _, m := range r.Metrics {
		name, err := json.Marshal(m.Name)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		if !m.Defined {
			buf.WriteString("null")
			continue
		}
		v, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Result is the output of one query.
type Result struct {
	Shape    string   `json:"shape"`
	Measures []string `json:"measures"`
	Rows     []Row    `json:"rows"`
}
