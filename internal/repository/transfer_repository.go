package repository

import (
	"context"

	"example.com/backstage/services/assets/internal/models"
)

// Transfer operations implementation

func (r *repo) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Create(transfer).Error
}

func (r *repo) FindTransferByID(ctx context.Context, id uint) (*models.Transfer, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var transfer models.Transfer
	if err := gormDB.Preload("InventoryItem").First(&transfer, id).Error; err != nil {
		return nil, err
	}

	return &transfer, nil
}

func (r *repo) ListTransfers(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var transfers []*models.Transfer
	query := gormDB.Preload("InventoryItem").Order("created_at DESC")

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}

	return transfers, nil
}

// UpdateTransferFromStatus applies a transition as a conditional update:
// the row only changes when its current status is one of the expected
// predecessor states. Returns the number of rows affected, so a racing
// transition that already moved the transfer shows up as zero.
func (r *repo) UpdateTransferFromStatus(ctx context.Context, id uint, expected []models.TransferStatus, updates map[string]interface{}) (int64, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return 0, err
	}

	res := gormDB.Model(&models.Transfer{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)

	return res.RowsAffected, res.Error
}
