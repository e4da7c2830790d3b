package routes

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestRegisteredRoutePaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRoutes(r, nil, nil, logrus.New())

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /health",
		"POST /api/v1/inventory",
		"GET /api/v1/inventory",
		"GET /api/v1/inventory/recent",
		"GET /api/v1/inventory/by-tag",
		"GET /api/v1/inventory/:id",
		"PUT /api/v1/inventory/:id",
		"DELETE /api/v1/inventory/:id",
		"POST /api/v1/transfers",
		"GET /api/v1/transfers",
		"GET /api/v1/transfers/:id",
		"POST /api/v1/transfers/:id/receive-records",
		"POST /api/v1/transfers/:id/receive-ict",
		"POST /api/v1/transfers/:id/ship",
		"POST /api/v1/transfers/:id/acknowledge",
		"POST /api/v1/transfers/:id/complete-replacement",
		"POST /api/v1/maintenance",
		"POST /api/v1/maintenance/department",
		"GET /api/v1/maintenance",
		"GET /api/v1/maintenance/:id",
		"POST /api/v1/maintenance/:id/send-to-ict",
		"POST /api/v1/maintenance/:id/mark-returned",
		"DELETE /api/v1/maintenance/:id",
		"POST /api/v1/departments",
		"GET /api/v1/departments",
		"GET /api/v1/reports/inventory-status",
		"GET /api/v1/reports/open-transfers",
		"GET /api/v1/reports/items/:id/maintenance",
	}
	for _, path := range expected {
		require.True(t, registered[path], "missing route %s", path)
	}
}
