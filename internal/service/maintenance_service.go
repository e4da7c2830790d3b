package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"example.com/backstage/services/assets/internal/messaging"
	"example.com/backstage/services/assets/internal/models"
	"example.com/backstage/services/assets/internal/repository"
	"example.com/backstage/services/assets/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaintenanceRequest is the payload for a device-level maintenance record
type MaintenanceRequest struct {
	Date           *time.Time `json:"date"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	Equipment      string     `json:"equipment"`
	TagNumber      string     `json:"tagnumber"`
	Department     string     `json:"department"`
	EquipmentModel string     `json:"equipment_model"`
	User           string     `json:"user"`
	InventoryID    *uint      `json:"inventory_id"`
	RepairNotes    string     `json:"repair_notes"`
	RepairStatus   string     `json:"repair_status"`
	Progress       string     `json:"progress"`
	DeptStatus     string     `json:"dept_status"`
}

// DepartmentMaintenanceRequest is the payload for a department-level
// maintenance creation, optionally fanned out per device
type DepartmentMaintenanceRequest struct {
	Date                  *time.Time `json:"date"`
	StartDate             *time.Time `json:"start_date"`
	Department            string     `json:"department"`
	User                  string     `json:"user"`
	RepairNotes           string     `json:"repair_notes"`
	Progress              string     `json:"progress"`
	DeptStatus            string     `json:"dept_status"`
	MachinesNotMaintained string     `json:"machines_not_maintained"`
	CreateForAll          bool       `json:"create_for_all"`
	InventoryIDs          []uint     `json:"inventory_ids"`
}

func validateBoundedField(name, value string, required bool) error {
	if required && value == "" {
		return validationError("%s is required", name)
	}
	if len(value) > maxFieldLen {
		return validationError("%s must be at most %d characters", name, maxFieldLen)
	}
	return nil
}

// CreateMaintenance records a single device-level maintenance event. A
// supplied inventory_id must reference an existing item.
func (s *service) CreateMaintenance(ctx context.Context, req MaintenanceRequest) (*models.MaintenanceRecord, error) {
	required := []struct{ name, value string }{
		{"equipment", req.Equipment},
		{"tagnumber", req.TagNumber},
		{"department", req.Department},
		{"equipment_model", req.EquipmentModel},
		{"user", req.User},
	}
	for _, f := range required {
		if err := validateBoundedField(f.name, f.value, true); err != nil {
			return nil, err
		}
	}
	if req.Date == nil {
		return nil, validationError("date is required")
	}
	if len(req.RepairNotes) > maxNotesLen {
		return nil, validationError("repair_notes must be at most %d characters", maxNotesLen)
	}

	if req.InventoryID != nil {
		if _, err := s.repo.FindItemByID(ctx, *req.InventoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationError("inventory item %d does not exist", *req.InventoryID)
			}
			return nil, err
		}
	}

	startDate := req.Date
	if req.StartDate != nil {
		startDate = req.StartDate
	}

	record := &models.MaintenanceRecord{
		Date:           *req.Date,
		StartDate:      *startDate,
		EndDate:        req.EndDate,
		Equipment:      req.Equipment,
		TagNumber:      req.TagNumber,
		Department:     utils.NormalizeDepartment(req.Department),
		EquipmentModel: req.EquipmentModel,
		User:           req.User,
		InventoryID:    req.InventoryID,
		RepairNotes:    req.RepairNotes,
		RepairStatus:   req.RepairStatus,
		Progress:       req.Progress,
		DeptStatus:     req.DeptStatus,
	}

	if err := s.repo.CreateMaintenanceRecord(ctx, record); err != nil {
		return nil, err
	}

	s.publishEvent(messaging.EventMaintenanceCreated, req.User, record.ID, map[string]any{
		"department": record.Department,
		"tagnumber":  record.TagNumber,
	})

	return record, nil
}

// CreateDepartmentMaintenance records a department sweep. With
// create_for_all set, one record per item currently in the department is
// created; with an explicit inventory_ids list, one per matching item;
// otherwise a single record with no device reference. Fanned-out groups
// share a batch id and are inserted in one transaction.
func (s *service) CreateDepartmentMaintenance(ctx context.Context, req DepartmentMaintenanceRequest) ([]*models.MaintenanceRecord, error) {
	department := utils.NormalizeDepartment(req.Department)
	if department == "" {
		return nil, validationError("department is required")
	}
	if err := validateBoundedField("user", req.User, false); err != nil {
		return nil, err
	}

	date := req.Date
	if date == nil {
		now := time.Now()
		date = &now
	}
	startDate := date
	if req.StartDate != nil {
		startDate = req.StartDate
	}

	base := models.MaintenanceRecord{
		Date:                  *date,
		StartDate:             *startDate,
		Department:            department,
		User:                  req.User,
		RepairNotes:           req.RepairNotes,
		Progress:              req.Progress,
		DeptStatus:            req.DeptStatus,
		MachinesNotMaintained: req.MachinesNotMaintained,
	}

	var items []*models.InventoryItem
	switch {
	case req.CreateForAll:
		var err error
		items, err = s.repo.ListItems(ctx, department)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, validationError("department %s has no inventory items", department)
		}

	case len(req.InventoryIDs) > 0:
		for _, id := range req.InventoryIDs {
			item, err := s.repo.FindItemByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			return nil, validationError("none of the requested inventory ids exist")
		}

	default:
		// Single department-level sweep, no device reference.
		record := base
		if err := s.repo.CreateMaintenanceRecord(ctx, &record); err != nil {
			return nil, err
		}
		s.publishEvent(messaging.EventMaintenanceCreated, req.User, record.ID, map[string]any{
			"department": department,
			"sweep":      true,
		})
		return []*models.MaintenanceRecord{&record}, nil
	}

	batchID := uuid.New().String()
	records := make([]*models.MaintenanceRecord, 0, len(items))
	for _, item := range items {
		record := base
		record.BatchID = batchID
		record.InventoryID = &item.ID
		record.Equipment = item.AssetType
		record.EquipmentModel = item.ModelName
		record.TagNumber = item.AssetNo
		if record.TagNumber == "" {
			record.TagNumber = fmt.Sprintf("TAG-%05d", item.ID)
		}
		records = append(records, &record)
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.Repository) error {
		return txRepo.CreateMaintenanceRecords(ctx, records)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(messaging.EventMaintenanceCreated, req.User, 0, map[string]any{
		"department": department,
		"batch_id":   batchID,
		"count":      len(records),
	})

	return records, nil
}

func (s *service) GetMaintenanceRecord(ctx context.Context, id uint) (*models.MaintenanceRecord, error) {
	record, err := s.repo.FindMaintenanceRecordByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("maintenance record", id)
		}
		return nil, err
	}

	return record, nil
}

func (s *service) ListMaintenanceRecords(ctx context.Context, department string) ([]*models.MaintenanceRecord, error) {
	return s.repo.ListMaintenanceRecords(ctx, utils.NormalizeDepartment(department))
}

// SendMaintenanceToICT flips the sent-to-ICT pair and appends a note.
// Calling it again appends another entry; prior notes are never
// overwritten.
func (s *service) SendMaintenanceToICT(ctx context.Context, id uint, note, actor string) (*models.MaintenanceRecord, error) {
	return s.updateMaintenanceFlags(ctx, id, note, actor, "Sent to ICT", func(record *models.MaintenanceRecord, now time.Time) {
		record.SentToICT = true
		record.SentToICTAt = &now
	})
}

// MarkMaintenanceReturned flips the returned pair and appends a note.
func (s *service) MarkMaintenanceReturned(ctx context.Context, id uint, note, actor string) (*models.MaintenanceRecord, error) {
	return s.updateMaintenanceFlags(ctx, id, note, actor, "Returned", func(record *models.MaintenanceRecord, now time.Time) {
		record.Returned = true
		record.ReturnedAt = &now
	})
}

func (s *service) updateMaintenanceFlags(ctx context.Context, id uint, note, actor, action string, apply func(*models.MaintenanceRecord, time.Time)) (*models.MaintenanceRecord, error) {
	record, err := s.GetMaintenanceRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := fmt.Sprintf("[%s] %s by %s", now.Format(time.RFC3339), action, actor)
	if note != "" {
		entry = entry + ": " + note
	}

	apply(record, now)
	record.RepairNotes = appendNote(record.RepairNotes, entry)

	if err := s.repo.UpdateMaintenanceRecord(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *service) DeleteMaintenanceRecord(ctx context.Context, id uint) (int64, error) {
	return s.repo.DeleteMaintenanceRecord(ctx, id)
}
