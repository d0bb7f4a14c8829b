package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderedNames(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

func TestSortFieldsStableTies(t *testing.T) {
	fields := []Field{
		{ID: "a", Name: "a", Order: 1},
		{ID: "b", Name: "b", Order: 0},
		{ID: "c", Name: "c", Order: 1},
	}
	sorted := SortFields(fields)
	// a and c share an order value; a keeps its original position
	// ahead of c.
	assert.Equal(t, []string{"b", "a", "c"}, orderedNames(sorted))
}

func TestNormalizeOrder(t *testing.T) {
	fields := []Field{
		{ID: "a", Name: "a", Order: 10},
		{ID: "b", Name: "b", Order: 3},
		{ID: "c", Name: "c", Order: 7},
	}
	normalized := NormalizeOrder(fields)
	assert.Equal(t, []string{"b", "c", "a"}, orderedNames(normalized))
	for i, f := range normalized {
		assert.Equal(t, i, f.Order)
	}
}

func TestMoveField(t *testing.T) {
	fields := []Field{
		{ID: "a", Name: "a", Order: 0},
		{ID: "b", Name: "b", Order: 1},
		{ID: "c", Name: "c", Order: 2},
	}

	t.Run("MoveUp", func(t *testing.T) {
		moved, err := MoveField(fields, "b", MoveUp)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c"}, orderedNames(moved))
		for i, f := range moved {
			assert.Equal(t, i, f.Order)
		}
	})

	t.Run("MoveDown", func(t *testing.T) {
		moved, err := MoveField(fields, "b", MoveDown)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "b"}, orderedNames(moved))
	})

	t.Run("FirstUpIsNoop", func(t *testing.T) {
		moved, err := MoveField(fields, "a", MoveUp)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, orderedNames(moved))
	})

	t.Run("LastDownIsNoop", func(t *testing.T) {
		moved, err := MoveField(fields, "c", MoveDown)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, orderedNames(moved))
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := MoveField(fields, "zzz", MoveUp)
		assert.Error(t, err)
	})

	t.Run("InvalidDirection", func(t *testing.T) {
		_, err := MoveField(fields, "a", MoveDirection("sideways"))
		assert.Error(t, err)
	})
}
