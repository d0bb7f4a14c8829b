package schema

import (
	"strconv"
	"strings"
)

// CoerceValue converts raw grid input into the stored representation
// for the field's type. Unparsable numeric input is kept as the raw
// string so the user sees what they typed; validation reports the
// problem separately.
func CoerceValue(field Field, raw string) interface{} {
	switch field.Type {
	case FieldTypeNumber, FieldTypeCurrency:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil
		}
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return n
		}
		return raw
	case FieldTypeBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1", "yes":
			return true
		default:
			return false
		}
	case FieldTypeDate:
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		return raw
	default:
		return raw
	}
}
