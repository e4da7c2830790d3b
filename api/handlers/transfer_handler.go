// api/handlers/transfer_handler.go
package handlers

import (
	"net/http"

	"example.com/backstage/services/assets/api/middleware"
	"example.com/backstage/services/assets/internal/models"
	"example.com/backstage/services/assets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TransferHandler handles transfer state machine requests
type TransferHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewTransferHandler creates a new TransferHandler instance
func NewTransferHandler(svc service.Service, log *logrus.Logger) *TransferHandler {
	return &TransferHandler{
		service: svc,
		log:     log,
	}
}

// CreateTransfer handles transfer creation, including the internal
// replacement fast path
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req service.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.WithError(err).Warn("Invalid transfer payload")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	transfer, err := h.service.CreateTransfer(c.Request.Context(), req, middleware.Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, transfer)
}

// GetTransfer handles transfer retrieval by id
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	transfer, err := h.service.GetTransfer(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, transfer)
}

// ListTransfers handles listing transfers, optionally filtered by status
func (h *TransferHandler) ListTransfers(c *gin.Context) {
	transfers, err := h.service.ListTransfers(c.Request.Context(), models.TransferStatus(c.Query("status")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, transfers)
}

// ReceiveByRecords handles the receive-records transition
func (h *TransferHandler) ReceiveByRecords(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	transfer, err := h.service.ReceiveByRecords(c.Request.Context(), id, req, middleware.Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, transfer)
}

// ReceiveByICT handles the receive-ict transition
func (h *TransferHandler) ReceiveByICT(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	transfer, err := h.service.ReceiveByICT(c.Request.Context(), id, req, middleware.Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, transfer)
}

// Ship handles the ship transition
func (h *TransferHandler) Ship(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.ShipRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	transfer, err := h.service.ShipTransfer(c.Request.Context(), id, req, middleware.Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, transfer)
}

// Acknowledge handles the final delivery acknowledgement
func (h *TransferHandler) Acknowledge(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	transfer, err := h.service.AcknowledgeDelivery(c.Request.Context(), id, middleware.Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, transfer)
}

// CompleteReplacement handles the internal repair-and-swap finalization
func (h *TransferHandler) CompleteReplacement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.ReplacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	transfer, err := h.service.CompleteReplacement(c.Request.Context(), id, req, middleware.Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, transfer)
}
