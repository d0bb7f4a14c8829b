package schema

import (
	"fmt"
	"sort"
)

// MoveDirection selects which way a field moves in the display order.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// SortFields orders fields by their Order value. The sort is stable,
// so fields sharing an Order value keep their original relative
// position.
func SortFields(fields []Field) []Field {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// NormalizeOrder sorts fields into display order and rewrites every
// Order value to a contiguous 0..n-1 sequence.
func NormalizeOrder(fields []Field) []Field {
	sorted := SortFields(fields)
	for i := range sorted {
		sorted[i].Order = i
	}
	return sorted
}

// MoveField swaps the identified field with its neighbor in the given
// direction and returns the renormalized list. Moving the first field
// up or the last field down is a no-op, not an error.
func MoveField(fields []Field, fieldID string, dir MoveDirection) ([]Field, error) {
	if dir != MoveUp && dir != MoveDown {
		return nil, fmt.Errorf("invalid move direction %q", dir)
	}

	sorted := NormalizeOrder(fields)
	idx := -1
	for i, f := range sorted {
		if f.ID == fieldID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("field with ID %s not found", fieldID)
	}

	target := idx - 1
	if dir == MoveDown {
		target = idx + 1
	}
	if target >= 0 && target < len(sorted) {
		sorted[idx], sorted[target] = sorted[target], sorted[idx]
	}
	for i := range sorted {
		sorted[i].Order = i
	}

	return sorted, nil
}
