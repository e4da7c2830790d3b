// api/handlers/department_handler.go
package handlers

import (
	"net/http"

	"example.com/backstage/services/assets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DepartmentHandler handles department requests
type DepartmentHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewDepartmentHandler creates a new DepartmentHandler instance
func NewDepartmentHandler(svc service.Service, log *logrus.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		service: svc,
		log:     log,
	}
}

type createDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateDepartment handles department creation
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req createDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	dept, err := h.service.CreateDepartment(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dept)
}

// ListDepartments handles listing all departments
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	depts, err := h.service.ListDepartments(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, depts)
}
