package repository

import (
	"context"

	"example.com/backstage/services/assets/internal/models"
)

// MaintenanceRecord operations implementation

func (r *repo) CreateMaintenanceRecord(ctx context.Context, record *models.MaintenanceRecord) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Create(record).Error
}

// CreateMaintenanceRecords inserts a fan-out group in one statement.
func (r *repo) CreateMaintenanceRecords(ctx context.Context, records []*models.MaintenanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Create(records).Error
}

func (r *repo) FindMaintenanceRecordByID(ctx context.Context, id uint) (*models.MaintenanceRecord, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var record models.MaintenanceRecord
	if err := gormDB.First(&record, id).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *repo) ListMaintenanceRecords(ctx context.Context, department string) ([]*models.MaintenanceRecord, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var records []*models.MaintenanceRecord
	query := gormDB.Order("date DESC")

	if department != "" {
		query = query.Where("department = ?", department)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *repo) ListMaintenanceRecordsForItem(ctx context.Context, inventoryID uint) ([]*models.MaintenanceRecord, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var records []*models.MaintenanceRecord
	err = gormDB.Where("inventory_id = ?", inventoryID).Order("date DESC").Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *repo) UpdateMaintenanceRecord(ctx context.Context, record *models.MaintenanceRecord) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Save(record).Error
}

func (r *repo) DeleteMaintenanceRecord(ctx context.Context, id uint) (int64, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return 0, err
	}

	res := gormDB.Unscoped().Delete(&models.MaintenanceRecord{}, id)
	return res.RowsAffected, res.Error
}
