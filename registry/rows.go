package registry

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/fieldset/schema"
)

// AddRow appends a new row to the dataset. Data is seeded from each
// field's default value (or the empty string) and the row starts
// unvalidated, so IsValid is false until its first cell edit.
func (s *Store) AddRow(datasetID string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[datasetID]
	if !ok {
		return Row{}, fmt.Errorf("dataset with ID %s not found", datasetID)
	}
	def, ok := s.definitions[ds.DefinitionID]
	if !ok {
		return Row{}, fmt.Errorf("definition with ID %s not found", ds.DefinitionID)
	}

	row := Row{
		ID:      uuid.New().String(),
		Data:    map[string]interface{}{},
		Errors:  map[string][]string{},
		IsValid: false,
	}
	for _, field := range def.Fields {
		row.Data[field.Name] = field.DefaultValue
	}

	ds.Rows = append(ds.Rows, row)
	ds.UpdatedAt = time.Now().UTC()
	s.datasets[datasetID] = ds
	s.persistDatasets()
	return row, nil
}

// EditCell coerces the raw input for the named field, writes it into
// the row, revalidates the whole row, and persists the rebuilt error
// map and validity flag. The errors map is always replaced in full,
// never patched.
func (s *Store) EditCell(datasetID, rowID, fieldName, raw string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[datasetID]
	if !ok {
		return Row{}, fmt.Errorf("dataset with ID %s not found", datasetID)
	}
	def, ok := s.definitions[ds.DefinitionID]
	if !ok {
		return Row{}, fmt.Errorf("definition with ID %s not found", ds.DefinitionID)
	}

	var field schema.Field
	found := false
	for _, f := range def.Fields {
		if f.Name == fieldName {
			field = f
			found = true
			break
		}
	}
	if !found {
		return Row{}, fmt.Errorf("field with name %s not found in definition %s", fieldName, def.ID)
	}

	idx := -1
	for i, row := range ds.Rows {
		if row.ID == rowID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Row{}, fmt.Errorf("row with ID %s not found", rowID)
	}

	row := ds.Rows[idx]
	if row.Data == nil {
		row.Data = map[string]interface{}{}
	}
	row.Data[field.Name] = schema.CoerceValue(field, raw)

	failures := s.validator.ValidateRow(def.Fields, row.Data)
	row.Errors = map[string][]string{}
	for _, failure := range failures {
		row.Errors[failure.FieldName] = failure.Errors
	}
	row.IsValid = len(failures) == 0

	ds.Rows[idx] = row
	ds.UpdatedAt = time.Now().UTC()
	s.datasets[datasetID] = ds
	s.persistDatasets()
	return row, nil
}

// DeleteRows removes every row whose ID appears in rowIDs. IDs that
// do not match any row are ignored, so a multi-select delete never
// fails halfway.
func (s *Store) DeleteRows(datasetID string, rowIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[datasetID]
	if !ok {
		return fmt.Errorf("dataset with ID %s not found", datasetID)
	}

	doomed := make(map[string]struct{}, len(rowIDs))
	for _, id := range rowIDs {
		doomed[id] = struct{}{}
	}

	kept := ds.Rows[:0:0]
	for _, row := range ds.Rows {
		if _, gone := doomed[row.ID]; !gone {
			kept = append(kept, row)
		}
	}

	ds.Rows = kept
	ds.UpdatedAt = time.Now().UTC()
	s.datasets[datasetID] = ds
	s.persistDatasets()
	return nil
}
