package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/fieldset/kvstore"
	"example.com/fieldset/schema"
)

// Persistence slot names. Each holds one JSON array.
const (
	SlotDefinitions = "definitions"
	SlotDatasets    = "datasets"
)

// Store manages definitions and datasets in memory, writing every
// mutation through to the key/value store. Reads immediately observe
// writes; a failed slot write leaves memory ahead of disk and is
// logged, not surfaced.
type Store struct {
	mu          sync.RWMutex
	definitions map[string]schema.Definition
	datasets    map[string]Dataset
	kv          kvstore.Store
	validator   *schema.Validator
	log         *zap.Logger
}

// NewStore creates a Store over the given key/value backend and loads
// both slots. Missing or corrupt slots load as empty collections.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		definitions: make(map[string]schema.Definition),
		datasets:    make(map[string]Dataset),
		kv:          kv,
		validator:   schema.NewValidator(log),
		log:         log,
	}
	s.load()
	return s
}

// load reads both slots into memory. Any read or decode failure is
// treated as "collection unavailable" and logged.
func (s *Store) load() {
	var definitions []schema.Definition
	if raw, err := s.kv.Get(SlotDefinitions); err != nil {
		s.log.Warn("failed to read definitions slot, starting empty", zap.Error(err))
	} else if len(raw) > 0 {
		if err := json.Unmarshal(raw, &definitions); err != nil {
			s.log.Warn("corrupt definitions slot, starting empty", zap.Error(err))
			definitions = nil
		}
	}
	for _, def := range definitions {
		s.definitions[def.ID] = def
	}

	var datasets []Dataset
	if raw, err := s.kv.Get(SlotDatasets); err != nil {
		s.log.Warn("failed to read datasets slot, starting empty", zap.Error(err))
	} else if len(raw) > 0 {
		if err := json.Unmarshal(raw, &datasets); err != nil {
			s.log.Warn("corrupt datasets slot, starting empty", zap.Error(err))
			datasets = nil
		}
	}
	for _, ds := range datasets {
		s.datasets[ds.ID] = ds
	}
}

// persistDefinitions serializes the whole definitions collection and
// overwrites its slot. Callers must hold the write lock.
func (s *Store) persistDefinitions() {
	list := s.definitionList()
	raw, err := json.Marshal(list)
	if err != nil {
		s.log.Error("failed to serialize definitions", zap.Error(err))
		return
	}
	if err := s.kv.Put(SlotDefinitions, raw); err != nil {
		s.log.Warn("failed to persist definitions slot", zap.Error(err))
	}
}

// persistDatasets serializes the whole datasets collection and
// overwrites its slot. Callers must hold the write lock.
func (s *Store) persistDatasets() {
	list := s.datasetList()
	raw, err := json.Marshal(list)
	if err != nil {
		s.log.Error("failed to serialize datasets", zap.Error(err))
		return
	}
	if err := s.kv.Put(SlotDatasets, raw); err != nil {
		s.log.Warn("failed to persist datasets slot", zap.Error(err))
	}
}

func (s *Store) definitionList() []schema.Definition {
	list := make([]schema.Definition, 0, len(s.definitions))
	for _, def := range s.definitions {
		list = append(list, def)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (s *Store) datasetList() []Dataset {
	list := make([]Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		list = append(list, ds)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// --- Definition Methods ---

// CreateDefinition adds a new definition. The store assigns the ID
// and timestamps, fills in missing field IDs, and renormalizes field
// order. Field names are not checked for uniqueness here; that is the
// editing layer's concern.
func (s *Store) CreateDefinition(def schema.Definition) (schema.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if def.Name == "" {
		return schema.Definition{}, fmt.Errorf("definition name cannot be empty")
	}
	if def.EntityType == "" {
		def.EntityType = schema.EntityCustom
	}

	now := time.Now().UTC()
	def.ID = uuid.New().String()
	def.CreatedAt = now
	def.UpdatedAt = now
	def.Fields = prepareFields(def.Fields)

	s.definitions[def.ID] = def
	s.persistDefinitions()
	return def, nil
}

// GetDefinition retrieves a definition by its ID.
func (s *Store) GetDefinition(id string) (schema.Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.definitions[id]
	return def, ok
}

// ListDefinitions retrieves all definitions in creation order.
func (s *Store) ListDefinitions() []schema.Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.definitionList()
}

// UpdateDefinition merges the update into the stored definition and
// bumps UpdatedAt. Replacing the fields renormalizes their order.
func (s *Store) UpdateDefinition(id string, update DefinitionUpdate) (schema.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.definitions[id]
	if !ok {
		return schema.Definition{}, fmt.Errorf("definition with ID %s not found", id)
	}

	if update.Name != nil {
		if *update.Name == "" {
			return schema.Definition{}, fmt.Errorf("definition name cannot be empty")
		}
		def.Name = *update.Name
	}
	if update.Description != nil {
		def.Description = *update.Description
	}
	if update.EntityType != nil {
		def.EntityType = *update.EntityType
	}
	if update.ExternalRef != nil {
		def.ExternalRef = *update.ExternalRef
	}
	if update.ExternalRefName != nil {
		def.ExternalRefName = *update.ExternalRefName
	}
	if update.Fields != nil {
		def.Fields = prepareFields(*update.Fields)
	}
	def.UpdatedAt = time.Now().UTC()

	s.definitions[id] = def
	s.persistDefinitions()
	return def, nil
}

// DeleteDefinition removes a definition and cascades to every dataset
// referencing it. Both steps run unconditionally in sequence; each
// slot write is best-effort.
func (s *Store) DeleteDefinition(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.definitions[id]; !ok {
		return fmt.Errorf("definition with ID %s not found", id)
	}

	delete(s.definitions, id)
	s.persistDefinitions()

	for dsID, ds := range s.datasets {
		if ds.DefinitionID == id {
			delete(s.datasets, dsID)
		}
	}
	s.persistDatasets()
	return nil
}

// MoveField moves one field up or down in the definition's display
// order and renormalizes all order values to 0..n-1.
func (s *Store) MoveField(defID, fieldID string, dir schema.MoveDirection) (schema.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.definitions[defID]
	if !ok {
		return schema.Definition{}, fmt.Errorf("definition with ID %s not found", defID)
	}

	fields, err := schema.MoveField(def.Fields, fieldID, dir)
	if err != nil {
		return schema.Definition{}, err
	}
	def.Fields = fields
	def.UpdatedAt = time.Now().UTC()

	s.definitions[defID] = def
	s.persistDefinitions()
	return def, nil
}

// ReplaceFields swaps the definition's entire field list, as the
// import path does. Existing fields are discarded, not merged.
func (s *Store) ReplaceFields(defID string, fields []schema.Field) (schema.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.definitions[defID]
	if !ok {
		return schema.Definition{}, fmt.Errorf("definition with ID %s not found", defID)
	}

	def.Fields = prepareFields(fields)
	def.UpdatedAt = time.Now().UTC()

	s.definitions[defID] = def
	s.persistDefinitions()
	return def, nil
}

// --- Dataset Methods ---

// CreateDataset adds a new dataset referencing an existing
// definition. Row IDs are filled in where missing.
func (s *Store) CreateDataset(ds Dataset) (Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds.Name == "" {
		return Dataset{}, fmt.Errorf("dataset name cannot be empty")
	}
	if _, ok := s.definitions[ds.DefinitionID]; !ok {
		return Dataset{}, fmt.Errorf("definition with ID %s not found", ds.DefinitionID)
	}

	now := time.Now().UTC()
	ds.ID = uuid.New().String()
	ds.CreatedAt = now
	ds.UpdatedAt = now
	if ds.Rows == nil {
		ds.Rows = []Row{}
	}
	for i := range ds.Rows {
		if ds.Rows[i].ID == "" {
			ds.Rows[i].ID = uuid.New().String()
		}
		if ds.Rows[i].Data == nil {
			ds.Rows[i].Data = map[string]interface{}{}
		}
		if ds.Rows[i].Errors == nil {
			ds.Rows[i].Errors = map[string][]string{}
		}
	}

	s.datasets[ds.ID] = ds
	s.persistDatasets()
	return ds, nil
}

// GetDataset retrieves a dataset by its ID.
func (s *Store) GetDataset(id string) (Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	return ds, ok
}

// ListDatasets retrieves all datasets in creation order.
func (s *Store) ListDatasets() []Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.datasetList()
}

// ListDatasetsByDefinition retrieves all datasets referencing the
// given definition.
func (s *Store) ListDatasetsByDefinition(defID string) []Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := []Dataset{}
	for _, ds := range s.datasetList() {
		if ds.DefinitionID == defID {
			list = append(list, ds)
		}
	}
	return list
}

// UpdateDataset merges the update into the stored dataset and bumps
// UpdatedAt. The definition reference is immutable.
func (s *Store) UpdateDataset(id string, update DatasetUpdate) (Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		return Dataset{}, fmt.Errorf("dataset with ID %s not found", id)
	}

	if update.Name != nil {
		if *update.Name == "" {
			return Dataset{}, fmt.Errorf("dataset name cannot be empty")
		}
		ds.Name = *update.Name
	}
	if update.Rows != nil {
		ds.Rows = *update.Rows
	}
	ds.UpdatedAt = time.Now().UTC()

	s.datasets[id] = ds
	s.persistDatasets()
	return ds, nil
}

// DeleteDataset removes a dataset.
func (s *Store) DeleteDataset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return fmt.Errorf("dataset with ID %s not found", id)
	}
	delete(s.datasets, id)
	s.persistDatasets()
	return nil
}

// prepareFields assigns IDs to fields that lack one and renormalizes
// display order to 0..n-1.
func prepareFields(fields []schema.Field) []schema.Field {
	prepared := make([]schema.Field, len(fields))
	copy(prepared, fields)
	for i := range prepared {
		if prepared[i].ID == "" {
			prepared[i].ID = uuid.New().String()
		}
	}
	return schema.NormalizeOrder(prepared)
}
