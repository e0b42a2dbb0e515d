package summary

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// Preview renders the first n rows as a plain text table for log records.
func Preview(rows []core.VendorSummary, n int) string {
	if n > len(rows) {
		n = len(rows)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleDefault)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(core.SummaryColumns))
	for i, col := range core.SummaryColumns {
		header[i] = col.Name
	}
	tw.AppendHeader(header)

	for _, r := range rows[:n] {
		values := r.Values()
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatCell(v)
		}
		tw.AppendRow(row)
	}

	return tw.Render()
}

// previewQueryRows renders summary query rows as the store returned them,
// with NULL cells shown as NULL.
func previewQueryRows(rows [][]any) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleDefault)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(queryColumnNames))
	for i, name := range queryColumnNames {
		header[i] = name
	}
	tw.AppendHeader(header)

	for _, raw := range rows {
		row := make(table.Row, len(raw))
		for i, v := range raw {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			case float64, int64, string:
				row[i] = formatCell(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		tw.AppendRow(row)
	}

	return tw.Render()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	default:
		return ""
	}
}
