package registry

import (
	"time"

	"example.com/fieldset/schema"
)

// Row is one record of data plus its cached validation result. Data
// keys are field names; values are typed by the owning field only for
// display and validation. Errors and IsValid are rebuilt together on
// every edit, so IsValid always equals "no field has a non-empty
// error list".
type Row struct {
	ID      string                 `json:"id"`
	Data    map[string]interface{} `json:"data"`
	Errors  map[string][]string    `json:"errors"`
	IsValid bool                   `json:"is_valid"`
}

// Dataset is a named collection of rows conforming to one
// Definition. DefinitionID is immutable after creation.
type Dataset struct {
	ID           string    `json:"id"`
	DefinitionID string    `json:"definition_id"`
	Name         string    `json:"name"`
	Rows         []Row     `json:"rows"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefinitionUpdate carries a partial definition update. Nil fields
// are left unchanged.
type DefinitionUpdate struct {
	Name            *string
	Description     *string
	EntityType      *schema.EntityType
	ExternalRef     *string
	ExternalRefName *string
	Fields          *[]schema.Field
}

// DatasetUpdate carries a partial dataset update. Nil fields are left
// unchanged; the definition reference cannot be changed.
type DatasetUpdate struct {
	Name *string
	Rows *[]Row
}
