package repository

import (
	"context"
	"errors"

	"example.com/backstage/services/assets/internal/models"
	"example.com/backstage/services/assets/internal/utils"

	"gorm.io/gorm"
)

// InventoryItem operations implementation

func (r *repo) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Create(item).Error
}

func (r *repo) UpdateItem(ctx context.Context, item *models.InventoryItem) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Save(item).Error
}

// UpdateItemFields applies a partial update. Used by the transfer state
// machine so custody and replacement links change without touching the
// rest of the row.
func (r *repo) UpdateItemFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	res := gormDB.Model(&models.InventoryItem{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *repo) FindItemByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var item models.InventoryItem
	if err := gormDB.First(&item, id).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

// FindItemByTag resolves a fuzzy tag query against asset_no and serial_no.
// Rules run in order and the first hit wins, so an exact match is never
// shadowed by a substring match on another row:
//  1. exact match ignoring hyphens and spaces
//  2. exact case-insensitive match
//  3. case-insensitive prefix match
//  4. substring match on the stripped form
func (r *repo) FindItemByTag(ctx context.Context, tag string) (*models.InventoryItem, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	normalized := utils.NormalizeTag(tag)

	assetStripped := "UPPER(REPLACE(REPLACE(asset_no, '-', ''), ' ', ''))"
	serialStripped := "UPPER(REPLACE(REPLACE(serial_no, '-', ''), ' ', ''))"

	conditions := []struct {
		query string
		args  []interface{}
	}{
		{assetStripped + " = ? OR " + serialStripped + " = ?", []interface{}{normalized, normalized}},
		{"UPPER(asset_no) = UPPER(?) OR UPPER(serial_no) = UPPER(?)", []interface{}{tag, tag}},
		{"UPPER(asset_no) LIKE UPPER(?) OR UPPER(serial_no) LIKE UPPER(?)", []interface{}{tag + "%", tag + "%"}},
		{assetStripped + " LIKE ? OR " + serialStripped + " LIKE ?", []interface{}{"%" + normalized + "%", "%" + normalized + "%"}},
	}

	for _, cond := range conditions {
		var item models.InventoryItem
		err := gormDB.Where(cond.query, cond.args...).Order("id ASC").First(&item).Error
		if err == nil {
			return &item, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, gorm.ErrRecordNotFound
}

func (r *repo) ListItems(ctx context.Context, department string) ([]*models.InventoryItem, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var items []*models.InventoryItem
	query := gormDB.Order("id ASC")

	if department != "" {
		query = query.Where("department = ?", department)
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repo) ListRecentItems(ctx context.Context, limit int) ([]*models.InventoryItem, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var items []*models.InventoryItem
	err = gormDB.Order("received_at DESC").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repo) DeleteItem(ctx context.Context, id uint) (int64, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return 0, err
	}

	res := gormDB.Unscoped().Delete(&models.InventoryItem{}, id)
	return res.RowsAffected, res.Error
}

// CountItemsByStatus groups the inventory by status, optionally scoped to
// one department. Feeds the status report.
func (r *repo) CountItemsByStatus(ctx context.Context, department string) (map[string]int64, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	type row struct {
		Status string
		Count  int64
	}

	var rows []row
	query := gormDB.Model(&models.InventoryItem{}).
		Select("status, COUNT(*) as count").
		Group("status")

	if department != "" {
		query = query.Where("department = ?", department)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}

	return counts, nil
}
