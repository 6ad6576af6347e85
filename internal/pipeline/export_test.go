package pipeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-insights-engine/internal/model"
)

func exportResult() *model.Result {
	return &model.Result{
		Shape:    ShapeRelevanceBySector,
		Measures: []string{"avgRelevance"},
		Rows: []model.Row{
			{Key: model.StringValue("Energy"), Metrics: []model.Metric{{Name: "avgRelevance", Value: 2.5, Defined: true}}},
			{Key: model.StringValue("Retail"), Metrics: []model.Metric{{Name: "avgRelevance"}}},
		},
	}
}

func TestExport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatJSON, exportResult()))

	assert.JSONEq(t, `[
		{"_id": "Energy", "avgRelevance": 2.5},
		{"_id": "Retail", "avgRelevance": null}
	]`, buf.String())
}

func TestExport_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, &model.Result{Shape: ShapeStats}))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestExport_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, "CSV", exportResult()))

	assert.Equal(t, "_id,avgRelevance\nEnergy,2.5\nRetail,\n", buf.String())
}

func TestExport_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, "", exportResult()))

	out := buf.String()
	assert.Contains(t, out, ShapeRelevanceBySector)
	assert.Contains(t, out, "Energy")
	assert.Contains(t, out, "2.5")
}

func TestExport_UnknownFormat(t *testing.T) {
	assert.Error(t, Export(&bytes.Buffer{}, "xml", exportResult()))
}
