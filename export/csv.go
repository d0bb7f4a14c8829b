// Package export serializes a dataset together with its definition
// into downloadable CSV or JSON text. Both exports are synchronous,
// single-pass, and read only the in-memory values they are given.
package export

import (
	"strings"

	"example.com/fieldset/registry"
	"example.com/fieldset/schema"
)

// CSV renders the dataset as comma-separated text. The header row
// carries field labels in display order and each data row carries the
// stored values in the same order. Cells containing a comma or a
// double quote are wrapped in double quotes with inner quotes
// doubled; missing and nil values render as empty cells.
func CSV(def schema.Definition, ds registry.Dataset) string {
	fields := schema.SortFields(def.Fields)

	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCell(field.Label))
	}

	for _, row := range ds.Rows {
		b.WriteByte('\n')
		for i, field := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escapeCell(schema.Stringify(row.Data[field.Name])))
		}
	}

	return b.String()
}

func escapeCell(cell string) string {
	if !strings.ContainsAny(cell, `,"`) {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}
