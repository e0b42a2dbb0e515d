package output

import (
	"fmt"
	"math"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

// Table renders rows under the given column names in the effective mode.
func (r *Renderer) Table(cols []string, rows [][]any) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		return r.JSON(jsonRecords(cols, rows))
	}

	if len(rows) == 0 && mode != ModeCSV {
		r.Println("(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = FormatValue(v)
		}
		t.AppendRow(tr)
	}

	switch mode {
	case ModeCSV:
		t.RenderCSV()
		return nil
	case ModeMarkdown:
		t.RenderMarkdown()
		r.Println()
	default:
		t.Render()
	}
	r.Printf("(%d rows)\n", len(rows))
	return nil
}

// FormatValue formats a value for display. Floats are shown with two
// decimals; non-finite floats keep their IEEE names.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case decimal.Decimal:
		return val.StringFixed(2)
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return decimal.NewFromFloat(f).StringFixed(2)
}

// jsonRecords converts rows to objects keyed by column. Values that JSON
// cannot carry are rendered as strings.
func jsonRecords(cols []string, rows [][]any) []map[string]any {
	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]any, len(cols))
		for i, c := range cols {
			if i >= len(row) {
				break
			}
			rec[c] = jsonValue(row[i])
		}
		records = append(records, rec)
	}
	return records
}

func jsonValue(v any) any {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return formatFloat(val)
		}
		return val
	case float32:
		return jsonValue(float64(val))
	case decimal.Decimal:
		return val.InexactFloat64()
	case []byte:
		return string(val)
	default:
		return val
	}
}
