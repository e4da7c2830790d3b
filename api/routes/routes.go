package routes

import (
	"example.com/backstage/services/assets/api/handlers"
	"example.com/backstage/services/assets/api/middleware"
	"example.com/backstage/services/assets/internal/models"
	"example.com/backstage/services/assets/internal/repository"
	"example.com/backstage/services/assets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes sets up all the routes for the server
func SetupRoutes(r *gin.Engine, svc service.Service, repo repository.Repository, log *logrus.Logger) {
	// Health check
	r.GET("/health", handlers.HealthCheck)

	viewer := middleware.APIKeyAuth(repo, log, models.ViewerAuthLevel)
	writer := middleware.APIKeyAuth(repo, log, models.WriterAuthLevel)
	sudo := middleware.APIKeyAuth(repo, log, models.SudoAuthLevel)

	// API routes
	api := r.Group("/api/v1")

	// Inventory routes
	inventoryHandler := handlers.NewInventoryHandler(svc, log)
	inventory := api.Group("/inventory")
	{
		inventory.POST("", writer, inventoryHandler.CreateItem)
		inventory.GET("", viewer, inventoryHandler.ListItems)
		inventory.GET("/recent", viewer, inventoryHandler.RecentItems)
		inventory.GET("/by-tag", viewer, inventoryHandler.LookupByTag)
		inventory.GET("/:id", viewer, inventoryHandler.GetItem)
		inventory.PUT("/:id", writer, inventoryHandler.UpdateItem)
		inventory.DELETE("/:id", sudo, inventoryHandler.DeleteItem)
	}

	// Transfer routes
	transferHandler := handlers.NewTransferHandler(svc, log)
	transfers := api.Group("/transfers")
	{
		transfers.POST("", writer, transferHandler.CreateTransfer)
		transfers.GET("", viewer, transferHandler.ListTransfers)
		transfers.GET("/:id", viewer, transferHandler.GetTransfer)
		transfers.POST("/:id/receive-records", writer, transferHandler.ReceiveByRecords)
		transfers.POST("/:id/receive-ict", writer, transferHandler.ReceiveByICT)
		transfers.POST("/:id/ship", writer, transferHandler.Ship)
		transfers.POST("/:id/acknowledge", writer, transferHandler.Acknowledge)
		transfers.POST("/:id/complete-replacement", writer, transferHandler.CompleteReplacement)
	}

	// Maintenance routes
	maintenanceHandler := handlers.NewMaintenanceHandler(svc, log)
	maintenance := api.Group("/maintenance")
	{
		maintenance.POST("", writer, maintenanceHandler.CreateRecord)
		maintenance.POST("/department", writer, maintenanceHandler.CreateDepartmentRecords)
		maintenance.GET("", viewer, maintenanceHandler.ListRecords)
		maintenance.GET("/:id", viewer, maintenanceHandler.GetRecord)
		maintenance.POST("/:id/send-to-ict", writer, maintenanceHandler.SendToICT)
		maintenance.POST("/:id/mark-returned", writer, maintenanceHandler.MarkReturned)
		maintenance.DELETE("/:id", sudo, maintenanceHandler.DeleteRecord)
	}

	// Department routes
	departmentHandler := handlers.NewDepartmentHandler(svc, log)
	departments := api.Group("/departments")
	{
		departments.POST("", sudo, departmentHandler.CreateDepartment)
		departments.GET("", viewer, departmentHandler.ListDepartments)
	}

	// Report routes
	reportHandler := handlers.NewReportHandler(svc, log)
	reports := api.Group("/reports")
	{
		reports.GET("/inventory-status", viewer, reportHandler.InventoryStatus)
		reports.GET("/open-transfers", viewer, reportHandler.OpenTransfers)
		reports.GET("/items/:id/maintenance", viewer, reportHandler.MaintenanceHistory)
	}
}
