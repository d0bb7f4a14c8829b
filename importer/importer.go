// Package importer converts external schema descriptions into field
// definitions. It is the one-way import boundary: an import replaces
// a definition's field list wholesale, it never merges.
package importer

import (
	"fmt"
	"strconv"

	"example.com/fieldset/schema"
)

// ExternalOption is one enumerated choice in an external field's
// validation rules.
type ExternalOption struct {
	Option string `json:"option"`
}

// ExternalRules carries the validation constraints an external schema
// attaches to a field. Pointer members distinguish "absent" from
// zero.
type ExternalRules struct {
	Options   []ExternalOption `json:"options,omitempty"`
	MinLength *int             `json:"min_length,omitempty"`
	MaxLength *int             `json:"max_length,omitempty"`
	Min       *float64         `json:"min,omitempty"`
	Max       *float64         `json:"max,omitempty"`
	Email     bool             `json:"email,omitempty"`
	URI       bool             `json:"uri,omitempty"`
}

// ExternalField is one field record from an external custom-API
// schema.
type ExternalField struct {
	ID              string        `json:"id"`
	Slug            string        `json:"slug"`
	Name            string        `json:"name"`
	FieldType       string        `json:"field_type"`
	Required        bool          `json:"required"`
	Description     string        `json:"description,omitempty"`
	ValidationRules ExternalRules `json:"validation_rules"`
}

// MapField converts one external field record into a Field.
// Unrecognized external types fall back to text rather than being
// rejected.
func MapField(ext ExternalField) schema.Field {
	field := schema.Field{
		ID:          ext.ID,
		Name:        ext.Slug,
		Label:       ext.Name,
		Type:        mapType(ext),
		Required:    ext.Required,
		Description: ext.Description,
	}
	if field.Label == "" {
		field.Label = ext.Slug
	}

	if field.Type == schema.FieldTypeSelect {
		for _, opt := range ext.ValidationRules.Options {
			field.SelectOptions = append(field.SelectOptions, schema.SelectOption{
				Value: opt.Option,
				Label: opt.Option,
			})
		}
	}

	field.ValidationRules = mapRules(field.Label, ext.ValidationRules)
	return field
}

// MapFields converts a full external schema, assigning display order
// by position.
func MapFields(ext []ExternalField) []schema.Field {
	fields := make([]schema.Field, 0, len(ext))
	for i, e := range ext {
		field := MapField(e)
		field.Order = i
		fields = append(fields, field)
	}
	return fields
}

func mapType(ext ExternalField) schema.FieldType {
	switch ext.FieldType {
	case "string":
		if len(ext.ValidationRules.Options) > 0 {
			return schema.FieldTypeSelect
		}
		if ext.ValidationRules.Email {
			return schema.FieldTypeEmail
		}
		if ext.ValidationRules.URI {
			return schema.FieldTypeURL
		}
		return schema.FieldTypeText
	case "integer", "float":
		return schema.FieldTypeNumber
	case "boolean":
		return schema.FieldTypeBoolean
	case "date":
		return schema.FieldTypeDate
	default:
		return schema.FieldTypeText
	}
}

func mapRules(label string, rules ExternalRules) []schema.ValidationRule {
	var out []schema.ValidationRule
	if rules.MinLength != nil {
		out = append(out, schema.ValidationRule{
			Type:    schema.RuleMinLength,
			Value:   float64(*rules.MinLength),
			Message: fmt.Sprintf("%s must be at least %d characters", label, *rules.MinLength),
		})
	}
	if rules.MaxLength != nil {
		out = append(out, schema.ValidationRule{
			Type:    schema.RuleMaxLength,
			Value:   float64(*rules.MaxLength),
			Message: fmt.Sprintf("%s must be no more than %d characters", label, *rules.MaxLength),
		})
	}
	if rules.Min != nil {
		out = append(out, schema.ValidationRule{
			Type:    schema.RuleMin,
			Value:   *rules.Min,
			Message: fmt.Sprintf("%s must be at least %s", label, trimFloat(*rules.Min)),
		})
	}
	if rules.Max != nil {
		out = append(out, schema.ValidationRule{
			Type:    schema.RuleMax,
			Value:   *rules.Max,
			Message: fmt.Sprintf("%s must be no more than %s", label, trimFloat(*rules.Max)),
		})
	}
	if rules.Email {
		out = append(out, schema.ValidationRule{
			Type:    schema.RuleEmail,
			Message: label + " must be a valid email address",
		})
	}
	if rules.URI {
		out = append(out, schema.ValidationRule{
			Type:    schema.RuleURL,
			Message: label + " must be a valid URL",
		})
	}
	return out
}

// trimFloat renders a rule operand the same way the validator's
// default messages do, so imported messages never drift into
// scientific notation.
func trimFloat(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
