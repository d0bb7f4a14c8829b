// Package api exposes the registry over HTTP. The core packages stay
// fully usable without it; this is the hosting shell.
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"example.com/fieldset/export"
	"example.com/fieldset/importer"
	"example.com/fieldset/registry"
	"example.com/fieldset/schema"
)

// API provides handlers for the definition and dataset endpoints.
type API struct {
	store *registry.Store
	log   *zap.Logger
}

// NewAPI creates a new API handler over the given store.
func NewAPI(store *registry.Store, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{store: store, log: log}
}

// RegisterRoutes registers all routes with the given Gin router.
func (a *API) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	definitionRoutes := v1.Group("/definitions")
	{
		definitionRoutes.POST("", a.createDefinitionHandler)
		definitionRoutes.GET("", a.listDefinitionsHandler)
		definitionRoutes.GET("/:definition_id", a.getDefinitionHandler)
		definitionRoutes.PUT("/:definition_id", a.updateDefinitionHandler)
		definitionRoutes.DELETE("/:definition_id", a.deleteDefinitionHandler)
		definitionRoutes.POST("/:definition_id/fields/:field_id/move", a.moveFieldHandler)
		definitionRoutes.POST("/:definition_id/import", a.importFieldsHandler)
	}

	datasetRoutes := v1.Group("/datasets")
	{
		datasetRoutes.POST("", a.createDatasetHandler)
		datasetRoutes.GET("", a.listDatasetsHandler)
		datasetRoutes.GET("/:dataset_id", a.getDatasetHandler)
		datasetRoutes.PUT("/:dataset_id", a.updateDatasetHandler)
		datasetRoutes.DELETE("/:dataset_id", a.deleteDatasetHandler)
		datasetRoutes.POST("/:dataset_id/rows", a.addRowHandler)
		datasetRoutes.DELETE("/:dataset_id/rows", a.deleteRowsHandler)
		datasetRoutes.PUT("/:dataset_id/rows/:row_id/cells/:field_name", a.editCellHandler)
		datasetRoutes.GET("/:dataset_id/export/csv", a.exportCSVHandler)
		datasetRoutes.GET("/:dataset_id/export/json", a.exportJSONHandler)
	}
}

// --- Definition Handlers ---

func (a *API) createDefinitionHandler(c *gin.Context) {
	var req struct {
		Name            string            `json:"name" binding:"required"`
		Description     string            `json:"description"`
		EntityType      schema.EntityType `json:"entity_type"`
		ExternalRef     string            `json:"external_ref"`
		ExternalRefName string            `json:"external_ref_name"`
		Fields          []schema.Field    `json:"fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if req.EntityType != "" && !validEntityType(req.EntityType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid input: unknown entity type %q", req.EntityType)})
		return
	}
	for _, field := range req.Fields {
		if !schema.ValidFieldTypes[field.Type] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid input: unknown field type %q", field.Type)})
			return
		}
	}

	def, err := a.store.CreateDefinition(schema.Definition{
		Name:            req.Name,
		Description:     req.Description,
		EntityType:      req.EntityType,
		ExternalRef:     req.ExternalRef,
		ExternalRefName: req.ExternalRefName,
		Fields:          req.Fields,
	})
	if err != nil {
		handleStoreError(c, err, "Definition")
		return
	}
	c.JSON(http.StatusCreated, def)
}

func (a *API) listDefinitionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.ListDefinitions())
}

func (a *API) getDefinitionHandler(c *gin.Context) {
	def, ok := a.store.GetDefinition(c.Param("definition_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Definition not found"})
		return
	}
	c.JSON(http.StatusOK, def)
}

func (a *API) updateDefinitionHandler(c *gin.Context) {
	var req struct {
		Name            *string            `json:"name"`
		Description     *string            `json:"description"`
		EntityType      *schema.EntityType `json:"entity_type"`
		ExternalRef     *string            `json:"external_ref"`
		ExternalRefName *string            `json:"external_ref_name"`
		Fields          *[]schema.Field    `json:"fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if req.EntityType != nil && !validEntityType(*req.EntityType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid input: unknown entity type %q", *req.EntityType)})
		return
	}

	def, err := a.store.UpdateDefinition(c.Param("definition_id"), registry.DefinitionUpdate{
		Name:            req.Name,
		Description:     req.Description,
		EntityType:      req.EntityType,
		ExternalRef:     req.ExternalRef,
		ExternalRefName: req.ExternalRefName,
		Fields:          req.Fields,
	})
	if err != nil {
		handleStoreError(c, err, "Definition")
		return
	}
	c.JSON(http.StatusOK, def)
}

func (a *API) deleteDefinitionHandler(c *gin.Context) {
	if err := a.store.DeleteDefinition(c.Param("definition_id")); err != nil {
		handleStoreError(c, err, "Definition")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (a *API) moveFieldHandler(c *gin.Context) {
	var req struct {
		Direction schema.MoveDirection `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	def, err := a.store.MoveField(c.Param("definition_id"), c.Param("field_id"), req.Direction)
	if err != nil {
		if strings.Contains(err.Error(), "invalid move direction") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		handleStoreError(c, err, "Field")
		return
	}
	c.JSON(http.StatusOK, def)
}

func (a *API) importFieldsHandler(c *gin.Context) {
	var ext []importer.ExternalField
	if err := c.ShouldBindJSON(&ext); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	def, err := a.store.ReplaceFields(c.Param("definition_id"), importer.MapFields(ext))
	if err != nil {
		handleStoreError(c, err, "Definition")
		return
	}
	a.log.Info("imported external schema",
		zap.String("definition_id", def.ID),
		zap.Int("fields", len(def.Fields)))
	c.JSON(http.StatusOK, def)
}

// --- Dataset Handlers ---

func (a *API) createDatasetHandler(c *gin.Context) {
	var req struct {
		Name         string         `json:"name" binding:"required"`
		DefinitionID string         `json:"definition_id" binding:"required"`
		Rows         []registry.Row `json:"rows"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	ds, err := a.store.CreateDataset(registry.Dataset{
		Name:         req.Name,
		DefinitionID: req.DefinitionID,
		Rows:         req.Rows,
	})
	if err != nil {
		handleStoreError(c, err, "Dataset")
		return
	}
	c.JSON(http.StatusCreated, ds)
}

func (a *API) listDatasetsHandler(c *gin.Context) {
	if defID := c.Query("definition_id"); defID != "" {
		c.JSON(http.StatusOK, a.store.ListDatasetsByDefinition(defID))
		return
	}
	c.JSON(http.StatusOK, a.store.ListDatasets())
}

func (a *API) getDatasetHandler(c *gin.Context) {
	ds, ok := a.store.GetDataset(c.Param("dataset_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dataset not found"})
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (a *API) updateDatasetHandler(c *gin.Context) {
	var req struct {
		Name *string         `json:"name"`
		Rows *[]registry.Row `json:"rows"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	ds, err := a.store.UpdateDataset(c.Param("dataset_id"), registry.DatasetUpdate{
		Name: req.Name,
		Rows: req.Rows,
	})
	if err != nil {
		handleStoreError(c, err, "Dataset")
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (a *API) deleteDatasetHandler(c *gin.Context) {
	if err := a.store.DeleteDataset(c.Param("dataset_id")); err != nil {
		handleStoreError(c, err, "Dataset")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// --- Row Handlers ---

func (a *API) addRowHandler(c *gin.Context) {
	row, err := a.store.AddRow(c.Param("dataset_id"))
	if err != nil {
		handleStoreError(c, err, "Dataset")
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (a *API) deleteRowsHandler(c *gin.Context) {
	var req struct {
		RowIDs []string `json:"row_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if err := a.store.DeleteRows(c.Param("dataset_id"), req.RowIDs); err != nil {
		handleStoreError(c, err, "Dataset")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (a *API) editCellHandler(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	row, err := a.store.EditCell(
		c.Param("dataset_id"),
		c.Param("row_id"),
		c.Param("field_name"),
		req.Value,
	)
	if err != nil {
		handleStoreError(c, err, "Row")
		return
	}
	c.JSON(http.StatusOK, row)
}

// --- Export Handlers ---

func (a *API) exportCSVHandler(c *gin.Context) {
	ds, ok := a.store.GetDataset(c.Param("dataset_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dataset not found"})
		return
	}
	def, ok := a.store.GetDefinition(ds.DefinitionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Definition not found"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ds.Name+".csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(export.CSV(def, ds)))
}

func (a *API) exportJSONHandler(c *gin.Context) {
	ds, ok := a.store.GetDataset(c.Param("dataset_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dataset not found"})
		return
	}
	def, ok := a.store.GetDefinition(ds.DefinitionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Definition not found"})
		return
	}

	doc, err := export.JSON(def, ds)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export dataset: " + err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ds.Name+".json"))
	c.Data(http.StatusOK, "application/json", doc)
}

func validEntityType(t schema.EntityType) bool {
	switch t {
	case schema.EntityProducts, schema.EntityOrders, schema.EntityCustomers, schema.EntityCustom:
		return true
	}
	return false
}

// handleStoreError translates store errors into HTTP responses.
func handleStoreError(c *gin.Context, err error, resourceName string) {
	if strings.Contains(err.Error(), "not found") {
		c.JSON(http.StatusNotFound, gin.H{"error": resourceName + " not found: " + err.Error()})
	} else if strings.Contains(err.Error(), "cannot be empty") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process " + strings.ToLower(resourceName) + ": " + err.Error()})
	}
}
