// Package grid implements the editing-session contract behind the
// interactive data grid: at most one cell is in the editing state at
// a time, committing or cancelling are the only exits, and row
// selection is tracked independently of cell editing.
package grid

import (
	"fmt"

	"example.com/fieldset/registry"
)

type cellRef struct {
	rowID     string
	fieldName string
}

// Editor is one grid editing session over a dataset. It is not safe
// for concurrent use; a grid has a single event loop.
type Editor struct {
	store     *registry.Store
	datasetID string
	editing   *cellRef
	selected  map[string]bool
}

// NewEditor opens an editing session for the dataset.
func NewEditor(store *registry.Store, datasetID string) (*Editor, error) {
	if _, ok := store.GetDataset(datasetID); !ok {
		return nil, fmt.Errorf("dataset with ID %s not found", datasetID)
	}
	return &Editor{
		store:     store,
		datasetID: datasetID,
		selected:  make(map[string]bool),
	}, nil
}

// BeginEdit puts one cell into the editing state. It fails if another
// cell is already being edited or the row or field does not exist, so
// a session never holds an edit that cannot commit.
func (e *Editor) BeginEdit(rowID, fieldName string) error {
	if e.editing != nil {
		return fmt.Errorf("cell %s/%s is already being edited", e.editing.rowID, e.editing.fieldName)
	}
	ds, ok := e.store.GetDataset(e.datasetID)
	if !ok {
		return fmt.Errorf("dataset with ID %s not found", e.datasetID)
	}
	def, ok := e.store.GetDefinition(ds.DefinitionID)
	if !ok {
		return fmt.Errorf("definition with ID %s not found", ds.DefinitionID)
	}
	knownField := false
	for _, f := range def.Fields {
		if f.Name == fieldName {
			knownField = true
			break
		}
	}
	if !knownField {
		return fmt.Errorf("field with name %s not found in definition %s", fieldName, def.ID)
	}
	for _, row := range ds.Rows {
		if row.ID == rowID {
			e.editing = &cellRef{rowID: rowID, fieldName: fieldName}
			return nil
		}
	}
	return fmt.Errorf("row with ID %s not found", rowID)
}

// Editing reports the cell currently in the editing state, if any.
func (e *Editor) Editing() (rowID, fieldName string, ok bool) {
	if e.editing == nil {
		return "", "", false
	}
	return e.editing.rowID, e.editing.fieldName, true
}

// Commit writes the raw input through the store's edit-cell path,
// which coerces the value and revalidates the whole row, then drops
// back to display mode.
func (e *Editor) Commit(raw string) (registry.Row, error) {
	if e.editing == nil {
		return registry.Row{}, fmt.Errorf("no cell is being edited")
	}
	cell := *e.editing
	row, err := e.store.EditCell(e.datasetID, cell.rowID, cell.fieldName, raw)
	if err != nil {
		return registry.Row{}, err
	}
	e.editing = nil
	return row, nil
}

// Cancel exits the editing state without writing anything.
func (e *Editor) Cancel() {
	e.editing = nil
}

// ToggleSelect flips one row's selection. Selection is independent of
// the editing state.
func (e *Editor) ToggleSelect(rowID string) {
	if e.selected[rowID] {
		delete(e.selected, rowID)
		return
	}
	e.selected[rowID] = true
}

// SelectAll selects every row currently in the dataset.
func (e *Editor) SelectAll() {
	ds, ok := e.store.GetDataset(e.datasetID)
	if !ok {
		return
	}
	e.selected = make(map[string]bool, len(ds.Rows))
	for _, row := range ds.Rows {
		e.selected[row.ID] = true
	}
}

// ClearSelection deselects every row.
func (e *Editor) ClearSelection() {
	e.selected = make(map[string]bool)
}

// Selected returns the selected row IDs in the dataset's row order.
func (e *Editor) Selected() []string {
	ds, ok := e.store.GetDataset(e.datasetID)
	if !ok {
		return nil
	}
	ids := []string{}
	for _, row := range ds.Rows {
		if e.selected[row.ID] {
			ids = append(ids, row.ID)
		}
	}
	return ids
}

// DeleteSelected batch-deletes every selected row, clears the
// selection, and abandons any in-flight edit on a deleted row.
func (e *Editor) DeleteSelected() error {
	ids := e.Selected()
	if len(ids) == 0 {
		return nil
	}
	if err := e.store.DeleteRows(e.datasetID, ids); err != nil {
		return err
	}
	if e.editing != nil && e.selected[e.editing.rowID] {
		e.editing = nil
	}
	e.selected = make(map[string]bool)
	return nil
}
