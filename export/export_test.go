package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/fieldset/registry"
	"example.com/fieldset/schema"
)

func sampleDefinition() schema.Definition {
	return schema.Definition{
		Name: "Products",
		Fields: []schema.Field{
			{ID: "f1", Name: "sku", Label: "SKU", Type: schema.FieldTypeText, Order: 0},
			{ID: "f2", Name: "qty", Label: "Qty", Type: schema.FieldTypeNumber, Order: 1},
		},
	}
}

func TestCSV(t *testing.T) {
	def := sampleDefinition()

	t.Run("QuotingAndNulls", func(t *testing.T) {
		ds := registry.Dataset{
			Name: "batch",
			Rows: []registry.Row{
				{ID: "r1", Data: map[string]interface{}{"sku": "A,1", "qty": float64(5)}},
				{ID: "r2", Data: map[string]interface{}{"sku": "B", "qty": nil}},
			},
		}
		assert.Equal(t, "SKU,Qty\n\"A,1\",5\nB,", CSV(def, ds))
	})

	t.Run("DoubleQuoteEscaping", func(t *testing.T) {
		ds := registry.Dataset{
			Rows: []registry.Row{
				{ID: "r1", Data: map[string]interface{}{"sku": `say "hi"`, "qty": float64(1)}},
			},
		}
		assert.Equal(t, "SKU,Qty\n\"say \"\"hi\"\"\",1", CSV(def, ds))
	})

	t.Run("MissingValuesRenderEmpty", func(t *testing.T) {
		ds := registry.Dataset{
			Rows: []registry.Row{
				{ID: "r1", Data: map[string]interface{}{}},
			},
		}
		assert.Equal(t, "SKU,Qty\n,", CSV(def, ds))
	})

	t.Run("ColumnsFollowOrderNotDeclaration", func(t *testing.T) {
		reversed := def
		reversed.Fields = []schema.Field{
			{ID: "f1", Name: "sku", Label: "SKU", Type: schema.FieldTypeText, Order: 1},
			{ID: "f2", Name: "qty", Label: "Qty", Type: schema.FieldTypeNumber, Order: 0},
		}
		ds := registry.Dataset{
			Rows: []registry.Row{
				{ID: "r1", Data: map[string]interface{}{"sku": "A", "qty": float64(2)}},
			},
		}
		assert.Equal(t, "Qty,SKU\n2,A", CSV(reversed, ds))
	})

	t.Run("EmptyDatasetIsHeaderOnly", func(t *testing.T) {
		assert.Equal(t, "SKU,Qty", CSV(def, registry.Dataset{}))
	})
}

func TestJSON(t *testing.T) {
	def := sampleDefinition()
	ds := registry.Dataset{
		Name: "batch",
		Rows: []registry.Row{
			{
				ID:      "r1",
				Data:    map[string]interface{}{"sku": "A"},
				Errors:  map[string][]string{"qty": {"Qty must be a number"}},
				IsValid: false,
			},
			{
				ID:      "r2",
				Data:    map[string]interface{}{"sku": "B", "qty": float64(3)},
				IsValid: true,
			},
		},
	}

	raw, err := JSON(def, ds)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "Products", doc.Definition)
	assert.Equal(t, "batch", doc.Dataset)
	require.Len(t, doc.Fields, 2)
	assert.Equal(t, FieldDescriptor{Name: "sku", Label: "SKU", Type: schema.FieldTypeText}, doc.Fields[0])

	require.Len(t, doc.Rows, 2)
	// Fields absent from stored data are filled with empty string.
	assert.Equal(t, "", doc.Rows[0].Data["qty"])
	assert.Equal(t, "A", doc.Rows[0].Data["sku"])
	assert.Equal(t, []string{"Qty must be a number"}, doc.Rows[0].Errors["qty"])
	assert.False(t, doc.Rows[0].IsValid)

	// A row with a nil errors map exports an empty object, not null.
	assert.NotNil(t, doc.Rows[1].Errors)
	assert.Empty(t, doc.Rows[1].Errors)
	assert.True(t, doc.Rows[1].IsValid)
	assert.Equal(t, float64(3), doc.Rows[1].Data["qty"])
}
