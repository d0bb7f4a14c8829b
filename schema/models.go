package schema

import "time"

// FieldType identifies how a field's values are interpreted for
// coercion, validation, and rendering.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeEmail    FieldType = "email"
	FieldTypeDate     FieldType = "date"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeSelect   FieldType = "select"
	FieldTypePhone    FieldType = "phone"
	FieldTypeURL      FieldType = "url"
	FieldTypeCurrency FieldType = "currency"
)

// ValidFieldTypes lists every accepted FieldType value.
var ValidFieldTypes = map[FieldType]bool{
	FieldTypeText:     true,
	FieldTypeNumber:   true,
	FieldTypeEmail:    true,
	FieldTypeDate:     true,
	FieldTypeBoolean:  true,
	FieldTypeSelect:   true,
	FieldTypePhone:    true,
	FieldTypeURL:      true,
	FieldTypeCurrency: true,
}

// RuleType identifies a validation constraint kind.
type RuleType string

const (
	RuleRequired  RuleType = "required"
	RuleMinLength RuleType = "minLength"
	RuleMaxLength RuleType = "maxLength"
	RuleMin       RuleType = "min"
	RuleMax       RuleType = "max"
	RuleRegex     RuleType = "regex"
	RuleEmail     RuleType = "email"
	RuleURL       RuleType = "url"
)

// ValidationRule is one constraint attached to a field. Value is the
// optional operand (a number for length/range rules, a pattern for
// regex); Message overrides the synthesized default error text.
type ValidationRule struct {
	Type    RuleType    `json:"type"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SelectOption is one allowed choice for a select field.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is one typed, validated slot within a Definition.
type Field struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Label           string           `json:"label"`
	Type            FieldType        `json:"type"`
	Required        bool             `json:"required"`
	ValidationRules []ValidationRule `json:"validation_rules,omitempty"`
	SelectOptions   []SelectOption   `json:"select_options,omitempty"`
	DefaultValue    string           `json:"default_value,omitempty"`
	Description     string           `json:"description,omitempty"`
	Order           int              `json:"order"`
}

// EntityType tags which call site a Definition serves.
type EntityType string

const (
	EntityProducts  EntityType = "products"
	EntityOrders    EntityType = "orders"
	EntityCustomers EntityType = "customers"
	EntityCustom    EntityType = "custom"
)

// Definition is a named, ordered collection of Fields describing one
// entity shape. When EntityType is "custom" the definition mirrors a
// remote custom-API resource identified by ExternalRef.
type Definition struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	EntityType      EntityType `json:"entity_type"`
	ExternalRef     string     `json:"external_ref,omitempty"`
	ExternalRefName string     `json:"external_ref_name,omitempty"`
	Fields          []Field    `json:"fields"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ValidationError reports every failed check for one field of a row.
type ValidationError struct {
	FieldID   string   `json:"field_id"`
	FieldName string   `json:"field_name"`
	Errors    []string `json:"errors"`
}
