// api/handlers/maintenance_handler.go
package handlers

import (
	"net/http"

	"example.com/backstage/services/assets/api/middleware"
	"example.com/backstage/services/assets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MaintenanceHandler handles maintenance record requests
type MaintenanceHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewMaintenanceHandler creates a new MaintenanceHandler instance
func NewMaintenanceHandler(svc service.Service, log *logrus.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		service: svc,
		log:     log,
	}
}

type maintenanceNoteRequest struct {
	Note string `json:"note"`
}

// CreateRecord handles creation of a single maintenance record
func (h *MaintenanceHandler) CreateRecord(c *gin.Context) {
	var req service.MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.WithError(err).Warn("Invalid maintenance payload")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	record, err := h.service.CreateMaintenance(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// CreateDepartmentRecords handles department-wide maintenance creation,
// fanning out one record per item when requested
func (h *MaintenanceHandler) CreateDepartmentRecords(c *gin.Context) {
	var req service.DepartmentMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.WithError(err).Warn("Invalid department maintenance payload")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	records, err := h.service.CreateDepartmentMaintenance(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"created": len(records),
		"records": records,
	})
}

// GetRecord handles maintenance record retrieval by id
func (h *MaintenanceHandler) GetRecord(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	record, err := h.service.GetMaintenanceRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListRecords handles listing maintenance records, optionally filtered
// by department
func (h *MaintenanceHandler) ListRecords(c *gin.Context) {
	records, err := h.service.ListMaintenanceRecords(c.Request.Context(), c.Query("department"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// SendToICT marks a maintenance record as handed over to ICT
func (h *MaintenanceHandler) SendToICT(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req maintenanceNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	record, err := h.service.SendMaintenanceToICT(c.Request.Context(), id, req.Note, middleware.Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// MarkReturned marks a maintenance record as returned from ICT
func (h *MaintenanceHandler) MarkReturned(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req maintenanceNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	record, err := h.service.MarkMaintenanceReturned(c.Request.Context(), id, req.Note, middleware.Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteRecord handles hard deletion of a maintenance record
func (h *MaintenanceHandler) DeleteRecord(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.service.DeleteMaintenanceRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
	})
}
