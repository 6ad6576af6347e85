package pipeline

import (
	"strings"

	"go-insights-engine/internal/model"
)

// NormalizeRecord trims surrounding whitespace from every text field. A field
// that trims to "" stays defined; blank checks treat it as empty.
func NormalizeRecord(rec model.Record) model.Record {
	for _, t := range rec.Texts() {
		if t.Valid {
			t.String = strings.TrimSpace(t.String)
		}
	}
	return rec
}
