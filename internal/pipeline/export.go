package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"go-insights-engine/internal/model"
)

// Export formats.
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatTable = "table"
)

// Export writes result to w in the given format.
func Export(w io.Writer, format string, result *model.Result) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatCSV:
		return WriteCSV(w, result)
	case FormatTable, "":
		return WriteTable(w, result)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteJSON writes the rows as an indented JSON array.
func WriteJSON(w io.Writer, result *model.Result) error {
	rows := result.Rows
	if rows == nil {
		rows = []model.Row{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteCSV writes a header of "_id" plus the measure names, then one line per
// row. Undefined metrics are left empty.
func WriteCSV(w io.Writer, result *model.Result) error {
	writer := csv.NewWriter(w)

	header := append([]string{"_id"}, result.Measures...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range result.Rows {
		if err := writer.Write(append([]string{row.Key.String()}, metricCells(result.Measures, row)...)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTable renders the rows as a text table for terminals.
func WriteTable(w io.Writer, result *model.Result) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(result.Shape)

	header := table.Row{"_id"}
	for _, m := range result.Measures {
		header = append(header, m)
	}
	t.AppendHeader(header)

	for _, row := range result.Rows {
		line := table.Row{row.Key.String()}
		for _, cell := range metricCells(result.Measures, row) {
			line = append(line, cell)
		}
		t.AppendRow(line)
	}
	t.AppendFooter(table.Row{"rows", len(result.Rows)})

	t.Render()
	return nil
}

func metricCells(measures []string, row model.Row) []string {
	cells := make([]string, len(measures))
	for i, name := range measures {
		m, ok := row.Metric(name)
		if !ok || !m.Defined {
			continue
		}
		cells[i] = strconv.FormatFloat(m.Value, 'f', -1, 64)
	}
	return cells
}
