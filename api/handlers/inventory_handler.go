// api/handlers/inventory_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"example.com/backstage/services/assets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InventoryHandler handles inventory-related requests
type InventoryHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewInventoryHandler creates a new InventoryHandler instance
func NewInventoryHandler(svc service.Service, log *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: svc,
		log:     log,
	}
}

// CreateItem handles inventory item creation
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.WithError(err).Warn("Invalid inventory payload")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetItem handles inventory item retrieval by id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ListItems handles listing all items, optionally filtered by department
func (h *InventoryHandler) ListItems(c *gin.Context) {
	items, err := h.service.ListItems(c.Request.Context(), c.Query("department"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// LookupByTag handles fuzzy lookup by asset tag or serial number
func (h *InventoryHandler) LookupByTag(c *gin.Context) {
	tag := c.Query("tag")
	if tag == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "tag query parameter is required",
		})
		return
	}

	item, err := h.service.LookupItemByTag(c.Request.Context(), tag)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// RecentItems handles the most-recently-received listing
func (h *InventoryHandler) RecentItems(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		limit = parsed
	}

	items, err := h.service.RecentItems(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// UpdateItem handles a full-record inventory update
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem handles a hard delete by id
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	affected, err := h.service.DeleteItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": affected,
	})
}
