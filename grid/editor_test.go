package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/fieldset/kvstore"
	"example.com/fieldset/registry"
	"example.com/fieldset/schema"
)

func setupEditor(t *testing.T, rowCount int) (*registry.Store, *Editor, []string) {
	t.Helper()
	store := registry.NewStore(kvstore.NewMemory(), nil)

	def, err := store.CreateDefinition(schema.Definition{
		Name: "Products",
		Fields: []schema.Field{
			{Name: "sku", Label: "SKU", Type: schema.FieldTypeText, Required: true, Order: 0},
			{Name: "qty", Label: "Qty", Type: schema.FieldTypeNumber, Order: 1},
		},
	})
	require.NoError(t, err)
	ds, err := store.CreateDataset(registry.Dataset{Name: "batch", DefinitionID: def.ID})
	require.NoError(t, err)

	var rowIDs []string
	for i := 0; i < rowCount; i++ {
		row, err := store.AddRow(ds.ID)
		require.NoError(t, err)
		rowIDs = append(rowIDs, row.ID)
	}

	editor, err := NewEditor(store, ds.ID)
	require.NoError(t, err)
	return store, editor, rowIDs
}

func TestNewEditorUnknownDataset(t *testing.T) {
	store := registry.NewStore(kvstore.NewMemory(), nil)
	_, err := NewEditor(store, "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestBeginEditUnknownTargets(t *testing.T) {
	_, editor, rows := setupEditor(t, 1)

	t.Run("UnknownRow", func(t *testing.T) {
		err := editor.BeginEdit("missing", "sku")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("UnknownField", func(t *testing.T) {
		err := editor.BeginEdit(rows[0], "no_such_field")
		assert.ErrorContains(t, err, "not found")
		// The failed attempt leaves no editing state behind.
		_, _, editing := editor.Editing()
		assert.False(t, editing)
		assert.NoError(t, editor.BeginEdit(rows[0], "sku"))
	})
}

func TestSingleCellEditing(t *testing.T) {
	_, editor, rows := setupEditor(t, 2)

	require.NoError(t, editor.BeginEdit(rows[0], "sku"))

	// A second edit cannot start until the first exits.
	err := editor.BeginEdit(rows[1], "qty")
	assert.ErrorContains(t, err, "already being edited")

	rowID, fieldName, ok := editor.Editing()
	require.True(t, ok)
	assert.Equal(t, rows[0], rowID)
	assert.Equal(t, "sku", fieldName)

	editor.Cancel()
	_, _, ok = editor.Editing()
	assert.False(t, ok)

	// After cancelling, a new edit may begin.
	assert.NoError(t, editor.BeginEdit(rows[1], "qty"))
}

func TestCommitRunsValidation(t *testing.T) {
	store, editor, rows := setupEditor(t, 1)

	require.NoError(t, editor.BeginEdit(rows[0], "qty"))
	row, err := editor.Commit("not-a-number")
	require.NoError(t, err)

	assert.False(t, row.IsValid)
	assert.Contains(t, row.Errors, "qty")
	_, _, editing := editor.Editing()
	assert.False(t, editing)

	// The committed state is what the store holds.
	ds, ok := store.GetDataset(datasetID(t, store))
	require.True(t, ok)
	assert.Equal(t, row.Errors, ds.Rows[0].Errors)
}

func TestCommitWithoutEdit(t *testing.T) {
	_, editor, _ := setupEditor(t, 1)
	_, err := editor.Commit("x")
	assert.ErrorContains(t, err, "no cell is being edited")
}

func TestCancelDiscardsInput(t *testing.T) {
	store, editor, rows := setupEditor(t, 1)

	require.NoError(t, editor.BeginEdit(rows[0], "sku"))
	editor.Cancel()

	ds, ok := store.GetDataset(datasetID(t, store))
	require.True(t, ok)
	assert.Equal(t, "", ds.Rows[0].Data["sku"])
}

func TestSelection(t *testing.T) {
	_, editor, rows := setupEditor(t, 3)

	editor.ToggleSelect(rows[1])
	assert.Equal(t, []string{rows[1]}, editor.Selected())

	editor.ToggleSelect(rows[1])
	assert.Empty(t, editor.Selected())

	editor.SelectAll()
	assert.Equal(t, rows, editor.Selected())

	editor.ClearSelection()
	assert.Empty(t, editor.Selected())
}

func TestSelectionIndependentOfEditing(t *testing.T) {
	_, editor, rows := setupEditor(t, 2)

	require.NoError(t, editor.BeginEdit(rows[0], "sku"))
	editor.ToggleSelect(rows[1])

	assert.Equal(t, []string{rows[1]}, editor.Selected())
	_, _, editing := editor.Editing()
	assert.True(t, editing)
}

func TestDeleteSelected(t *testing.T) {
	store, editor, rows := setupEditor(t, 3)

	editor.ToggleSelect(rows[0])
	editor.ToggleSelect(rows[2])
	require.NoError(t, editor.DeleteSelected())

	ds, ok := store.GetDataset(datasetID(t, store))
	require.True(t, ok)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, rows[1], ds.Rows[0].ID)
	assert.Empty(t, editor.Selected())
}

func TestDeleteSelectedAbandonsEditOnDeletedRow(t *testing.T) {
	_, editor, rows := setupEditor(t, 2)

	require.NoError(t, editor.BeginEdit(rows[0], "sku"))
	editor.ToggleSelect(rows[0])
	require.NoError(t, editor.DeleteSelected())

	_, _, editing := editor.Editing()
	assert.False(t, editing)
}

// datasetID returns the ID of the single dataset in the store.
func datasetID(t *testing.T, store *registry.Store) string {
	t.Helper()
	list := store.ListDatasets()
	require.Len(t, list, 1)
	return list[0].ID
}
