package repository

import (
	"context"
	"time"

	"example.com/backstage/services/assets/internal/database"
	"example.com/backstage/services/assets/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides data access methods
type Repository interface {
	// Transaction support
	WithTransaction(ctx context.Context, fn func(ctx context.Context, txRepo Repository) error) error

	// InventoryItem operations
	CreateItem(ctx context.Context, item *models.InventoryItem) error
	UpdateItem(ctx context.Context, item *models.InventoryItem) error
	UpdateItemFields(ctx context.Context, id uint, updates map[string]interface{}) error
	FindItemByID(ctx context.Context, id uint) (*models.InventoryItem, error)
	FindItemByTag(ctx context.Context, tag string) (*models.InventoryItem, error)
	ListItems(ctx context.Context, department string) ([]*models.InventoryItem, error)
	ListRecentItems(ctx context.Context, limit int) ([]*models.InventoryItem, error)
	DeleteItem(ctx context.Context, id uint) (int64, error)
	CountItemsByStatus(ctx context.Context, department string) (map[string]int64, error)

	// Transfer operations
	CreateTransfer(ctx context.Context, transfer *models.Transfer) error
	FindTransferByID(ctx context.Context, id uint) (*models.Transfer, error)
	ListTransfers(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error)
	UpdateTransferFromStatus(ctx context.Context, id uint, expected []models.TransferStatus, updates map[string]interface{}) (int64, error)

	// MaintenanceRecord operations
	CreateMaintenanceRecord(ctx context.Context, record *models.MaintenanceRecord) error
	CreateMaintenanceRecords(ctx context.Context, records []*models.MaintenanceRecord) error
	FindMaintenanceRecordByID(ctx context.Context, id uint) (*models.MaintenanceRecord, error)
	ListMaintenanceRecords(ctx context.Context, department string) ([]*models.MaintenanceRecord, error)
	ListMaintenanceRecordsForItem(ctx context.Context, inventoryID uint) ([]*models.MaintenanceRecord, error)
	UpdateMaintenanceRecord(ctx context.Context, record *models.MaintenanceRecord) error
	DeleteMaintenanceRecord(ctx context.Context, id uint) (int64, error)

	// Department operations
	UpsertDepartment(ctx context.Context, name string) error
	CreateDepartment(ctx context.Context, dept *models.Department) error
	ListDepartments(ctx context.Context) ([]*models.Department, error)

	// AssetCounter operations
	AllocateAssetNumber(ctx context.Context, department string) (uint, error)

	// APIKey operations
	CreateAPIKey(ctx context.Context, apiKey *models.APIKey) error
	GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error)
	UpdateAPIKey(ctx context.Context, apiKey *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	DeleteAPIKey(ctx context.Context, id uint) error
}

// repo is an implementation of the Repository interface
type repo struct {
	db database.DB
}

// Helper type for transaction support
type dbWrapper struct {
	db *gorm.DB
}

func (w *dbWrapper) DB() (*gorm.DB, error) {
	return w.db, nil
}

func (w *dbWrapper) Close() error {
	return nil
}

// NewRepository creates a new repository instance
func NewRepository(db database.DB) Repository {
	return &repo{
		db: db,
	}
}

// WithTransaction executes the given function within a database transaction
func (r *repo) WithTransaction(ctx context.Context, fn func(ctx context.Context, txRepo Repository) error) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Transaction(func(tx *gorm.DB) error {
		txRepo := &repo{
			db: &dbWrapper{db: tx},
		}
		return fn(ctx, txRepo)
	})
}

// Department operations implementation

// UpsertDepartment creates the department row if it does not exist yet.
// Names are stored upper-cased; callers normalize before this point.
func (r *repo) UpsertDepartment(ctx context.Context, name string) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	dept := models.Department{Name: name}
	return gormDB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&dept).Error
}

func (r *repo) CreateDepartment(ctx context.Context, dept *models.Department) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Create(dept).Error
}

func (r *repo) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var depts []*models.Department
	if err := gormDB.Order("name ASC").Find(&depts).Error; err != nil {
		return nil, err
	}

	return depts, nil
}

// AssetCounter operations implementation

// AllocateAssetNumber atomically increments the department counter and
// returns the new value, seeding the row at 1 on first use. A single
// upsert-returning statement keeps concurrent allocations from racing.
func (r *repo) AllocateAssetNumber(ctx context.Context, department string) (uint, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return 0, err
	}

	var counter uint
	err = gormDB.Raw(
		`INSERT INTO asset_counters (department, counter, updated_at)
		 VALUES (?, 1, ?)
		 ON CONFLICT (department)
		 DO UPDATE SET counter = asset_counters.counter + 1, updated_at = EXCLUDED.updated_at
		 RETURNING counter`,
		department, time.Now(),
	).Scan(&counter).Error
	if err != nil {
		return 0, err
	}

	return counter, nil
}

// APIKey operations implementation

func (r *repo) CreateAPIKey(ctx context.Context, apiKey *models.APIKey) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Create(apiKey).Error
}

func (r *repo) GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var apiKey models.APIKey
	if err := gormDB.Where("key = ?", key).First(&apiKey).Error; err != nil {
		return nil, err
	}

	return &apiKey, nil
}

func (r *repo) UpdateAPIKey(ctx context.Context, apiKey *models.APIKey) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Save(apiKey).Error
}

func (r *repo) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var apiKeys []*models.APIKey
	if err := gormDB.Find(&apiKeys).Error; err != nil {
		return nil, err
	}

	return apiKeys, nil
}

func (r *repo) DeleteAPIKey(ctx context.Context, id uint) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Delete(&models.APIKey{}, id).Error
}
