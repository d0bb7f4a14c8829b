package export

import (
	"encoding/json"

	"example.com/fieldset/registry"
	"example.com/fieldset/schema"
)

// FieldDescriptor is the slimmed field shape carried in a JSON
// export.
type FieldDescriptor struct {
	Name  string           `json:"name"`
	Label string           `json:"label"`
	Type  schema.FieldType `json:"type"`
}

// RowDocument is one exported row. Data always contains a key for
// every field in the definition; fields the row never stored are
// filled with the empty string.
type RowDocument struct {
	Data    map[string]interface{} `json:"data"`
	Errors  map[string][]string    `json:"errors"`
	IsValid bool                   `json:"is_valid"`
}

// Document is the complete JSON export envelope.
type Document struct {
	Definition string            `json:"definition"`
	Dataset    string            `json:"dataset"`
	Fields     []FieldDescriptor `json:"fields"`
	Rows       []RowDocument     `json:"rows"`
}

// JSON renders the dataset and its definition as a single JSON
// document with row data normalized to the definition's current
// field order.
func JSON(def schema.Definition, ds registry.Dataset) ([]byte, error) {
	fields := schema.SortFields(def.Fields)

	doc := Document{
		Definition: def.Name,
		Dataset:    ds.Name,
		Fields:     make([]FieldDescriptor, 0, len(fields)),
		Rows:       make([]RowDocument, 0, len(ds.Rows)),
	}
	for _, field := range fields {
		doc.Fields = append(doc.Fields, FieldDescriptor{
			Name:  field.Name,
			Label: field.Label,
			Type:  field.Type,
		})
	}

	for _, row := range ds.Rows {
		out := RowDocument{
			Data:    make(map[string]interface{}, len(fields)),
			Errors:  row.Errors,
			IsValid: row.IsValid,
		}
		if out.Errors == nil {
			out.Errors = map[string][]string{}
		}
		for _, field := range fields {
			value, ok := row.Data[field.Name]
			if !ok {
				value = ""
			}
			out.Data[field.Name] = value
		}
		doc.Rows = append(doc.Rows, out)
	}

	return json.Marshal(doc)
}
