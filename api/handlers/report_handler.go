// api/handlers/report_handler.go
package handlers

import (
	"net/http"

	"example.com/backstage/services/assets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReportHandler handles reporting requests
type ReportHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewReportHandler creates a new ReportHandler instance
func NewReportHandler(svc service.Service, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		log:     log,
	}
}

// InventoryStatus returns item counts grouped by status, optionally
// scoped to one department
func (h *ReportHandler) InventoryStatus(c *gin.Context) {
	counts, err := h.service.InventoryStatusReport(c.Request.Context(), c.Query("department"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"department": c.Query("department"),
		"counts":     counts,
	})
}

// OpenTransfers returns all transfers not yet in a terminal state
func (h *ReportHandler) OpenTransfers(c *gin.Context) {
	transfers, err := h.service.OpenTransfers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, transfers)
}

// MaintenanceHistory returns the full maintenance history for one item
func (h *ReportHandler) MaintenanceHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	records, err := h.service.ItemMaintenanceHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, records)
}
