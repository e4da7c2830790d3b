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

	"gorm.io/gorm"
)

// allowedPredecessors guards each transition: a transfer only moves to the
// key status when its current status is in the value set. Acknowledging a
// transfer that has not shipped is rejected rather than silently jumping
// to Delivered.
var allowedPredecessors = map[models.TransferStatus][]models.TransferStatus{
	models.TransferStatusReceivedByRecords: {models.TransferStatusSent},
	models.TransferStatusReceivedByICT:     {models.TransferStatusSent},
	models.TransferStatusShipped: {
		models.TransferStatusSent,
		models.TransferStatusReceivedByRecords,
		models.TransferStatusReceivedByICT,
	},
	models.TransferStatusDelivered: {models.TransferStatusShipped},
	models.TransferStatusReplaced: {
		models.TransferStatusSent,
		models.TransferStatusReceivedByRecords,
		models.TransferStatusReceivedByICT,
		models.TransferStatusShipped,
	},
}

// CreateTransferRequest is the payload for transfer creation
type CreateTransferRequest struct {
	InventoryID    uint                `json:"inventory_id"`
	FromDepartment string              `json:"from_department"`
	ToDepartment   string              `json:"to_department"`
	Destination    string              `json:"destination"`
	TransferType   models.TransferType `json:"transfer_type"`
	Notes          string              `json:"notes"`

	// Internal workflow extras; either triggers the replacement fast path
	IssueComments          string              `json:"issue_comments"`
	ReplacementInventoryID *uint               `json:"replacement_inventory_id"`
	ReplacementDetails     *ReplacementDetails `json:"replacement_details"`
}

// ReceiveRequest is the payload for the receive-records and receive-ict transitions
type ReceiveRequest struct {
	Notes string `json:"notes"`
}

// ShipRequest is the payload for the ship transition
type ShipRequest struct {
	TrackingInfo string `json:"tracking_info"`
	Destination  string `json:"destination"`
}

// ReplacementDetails describes a replacement item to be created on the fly
type ReplacementDetails struct {
	AssetType    string            `json:"asset_type"`
	SerialNo     string            `json:"serial_no"`
	Manufacturer string            `json:"manufacturer"`
	Model        string            `json:"model"`
	Version      string            `json:"version"`
	OSInfo       string            `json:"os_info"`
	Status       models.ItemStatus `json:"status"`
}

// ReplacementRequest is the payload for the complete-replacement transition
type ReplacementRequest struct {
	ReplacementInventoryID *uint               `json:"replacement_inventory_id"`
	ReplacementDetails     *ReplacementDetails `json:"replacement_details"`
	Notes                  string              `json:"notes"`
}

// CreateTransfer validates and creates a transfer in the Sent state. An
// internal transfer carrying replacement information completes the
// replacement synchronously as part of creation.
func (s *service) CreateTransfer(ctx context.Context, req CreateTransferRequest, actor string) (*models.Transfer, error) {
	if req.InventoryID == 0 {
		return nil, validationError("inventory_id is required")
	}
	if !req.TransferType.Valid() {
		return nil, validationError("unrecognized transfer_type %q", req.TransferType)
	}

	item, err := s.repo.FindItemByID(ctx, req.InventoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("inventory item %d does not exist", req.InventoryID)
		}
		return nil, err
	}

	fromDept := utils.NormalizeDepartment(req.FromDepartment)
	if fromDept == "" {
		fromDept = item.Department
	}
	toDept := utils.NormalizeDepartment(req.ToDepartment)

	if fromDept == "" {
		return nil, validationError("from_department is required")
	}
	if req.TransferType != models.TransferTypeInternal && toDept == "" && req.Destination == "" {
		return nil, validationError("to_department or destination is required")
	}

	now := time.Now()
	transfer := &models.Transfer{
		InventoryID:            req.InventoryID,
		FromDepartment:         fromDept,
		ToDepartment:           toDept,
		Destination:            req.Destination,
		TransferType:           req.TransferType,
		Status:                 models.TransferStatusSent,
		Notes:                  req.Notes,
		SentBy:                 actor,
		SentAt:                 &now,
		IssueComments:          req.IssueComments,
		ReplacementInventoryID: req.ReplacementInventoryID,
	}

	// Internal fast path: replacement info supplied at creation time runs
	// the whole replacement algorithm in the creation transaction.
	fastPath := req.TransferType == models.TransferTypeInternal &&
		(req.ReplacementInventoryID != nil || req.ReplacementDetails != nil)

	var replacement *models.InventoryItem
	err = s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.Repository) error {
		if err := txRepo.UpsertDepartment(ctx, fromDept); err != nil {
			return fmt.Errorf("upserting from_department: %w", err)
		}
		if toDept != "" {
			if err := txRepo.UpsertDepartment(ctx, toDept); err != nil {
				return fmt.Errorf("upserting to_department: %w", err)
			}
		}

		if err := txRepo.CreateTransfer(ctx, transfer); err != nil {
			return fmt.Errorf("creating transfer: %w", err)
		}

		if fastPath {
			var err error
			replacement, err = s.applyReplacement(ctx, txRepo, transfer, ReplacementRequest{
				ReplacementInventoryID: req.ReplacementInventoryID,
				ReplacementDetails:     req.ReplacementDetails,
			}, actor, now)
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.evictItem(ctx, item.ID)
	if replacement != nil {
		s.evictItem(ctx, replacement.ID)
	}

	s.publishEvent(messaging.EventTransferCreated, actor, transfer.ID, map[string]any{
		"inventory_id":  transfer.InventoryID,
		"transfer_type": string(transfer.TransferType),
		"status":        string(transfer.Status),
	})

	return s.GetTransfer(ctx, transfer.ID)
}

func (s *service) GetTransfer(ctx context.Context, id uint) (*models.Transfer, error) {
	transfer, err := s.repo.FindTransferByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("transfer", id)
		}
		return nil, err
	}

	return transfer, nil
}

func (s *service) ListTransfers(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error) {
	return s.repo.ListTransfers(ctx, status)
}

// transition applies a guarded status change to a transfer. The updates
// map must include the new "status"; the conditional update fails with a
// validation error when the current status is not an allowed predecessor,
// including when a concurrent transition won the race.
func (s *service) transition(ctx context.Context, txRepo repository.Repository, transfer *models.Transfer, next models.TransferStatus, updates map[string]interface{}) error {
	allowed, ok := allowedPredecessors[next]
	if !ok {
		return validationError("unknown transition target %q", next)
	}

	updates["status"] = next
	affected, err := txRepo.UpdateTransferFromStatus(ctx, transfer.ID, allowed, updates)
	if err != nil {
		return fmt.Errorf("updating transfer status: %w", err)
	}
	if affected == 0 {
		return validationError("transfer %d cannot move from %q to %q", transfer.ID, transfer.Status, next)
	}

	return nil
}

// ReceiveByRecords confirms receipt at the records desk. The item itself
// is untouched.
func (s *service) ReceiveByRecords(ctx context.Context, id uint, req ReceiveRequest, actor string) (*models.Transfer, error) {
	return s.applyTransition(ctx, id, actor, models.TransferStatusReceivedByRecords,
		func(ctx context.Context, txRepo repository.Repository, transfer *models.Transfer, now time.Time) error {
			return s.transition(ctx, txRepo, transfer, models.TransferStatusReceivedByRecords, map[string]interface{}{
				"records_received_by": actor,
				"records_received_at": now,
				"records_notes":       appendNote(transfer.RecordsNotes, req.Notes),
			})
		})
}

// ReceiveByICT confirms receipt by ICT and pulls the item out of its
// department: custody moves to UNASSIGNED and the intake timestamp resets.
func (s *service) ReceiveByICT(ctx context.Context, id uint, req ReceiveRequest, actor string) (*models.Transfer, error) {
	return s.applyTransition(ctx, id, actor, models.TransferStatusReceivedByICT,
		func(ctx context.Context, txRepo repository.Repository, transfer *models.Transfer, now time.Time) error {
			err := s.transition(ctx, txRepo, transfer, models.TransferStatusReceivedByICT, map[string]interface{}{
				"records_received_by": actor,
				"records_received_at": now,
				"records_notes":       appendNote(transfer.RecordsNotes, req.Notes),
			})
			if err != nil {
				return err
			}

			return txRepo.UpdateItemFields(ctx, transfer.InventoryID, map[string]interface{}{
				"department":  models.UnassignedDepartment,
				"received_at": now,
			})
		})
}

// ShipTransfer marks the item dispatched toward its destination.
func (s *service) ShipTransfer(ctx context.Context, id uint, req ShipRequest, actor string) (*models.Transfer, error) {
	return s.applyTransition(ctx, id, actor, models.TransferStatusShipped,
		func(ctx context.Context, txRepo repository.Repository, transfer *models.Transfer, now time.Time) error {
			updates := map[string]interface{}{
				"shipped_by":    actor,
				"shipped_at":    now,
				"tracking_info": req.TrackingInfo,
			}
			if req.Destination != "" {
				updates["destination"] = req.Destination
			}
			return s.transition(ctx, txRepo, transfer, models.TransferStatusShipped, updates)
		})
}

// AcknowledgeDelivery records final receipt at the destination.
func (s *service) AcknowledgeDelivery(ctx context.Context, id uint, actor string) (*models.Transfer, error) {
	return s.applyTransition(ctx, id, actor, models.TransferStatusDelivered,
		func(ctx context.Context, txRepo repository.Repository, transfer *models.Transfer, now time.Time) error {
			return s.transition(ctx, txRepo, transfer, models.TransferStatusDelivered, map[string]interface{}{
				"destination_received_by": actor,
				"destination_received_at": now,
			})
		})
}

// CompleteReplacement finalizes an internal repair-and-swap. The faulty
// item, the replacement item, and the transfer change in one transaction.
func (s *service) CompleteReplacement(ctx context.Context, id uint, req ReplacementRequest, actor string) (*models.Transfer, error) {
	transfer, err := s.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer.TransferType != models.TransferTypeInternal {
		return nil, validationError("transfer %d is not an internal transfer", id)
	}
	if transfer.Status.Terminal() {
		return nil, validationError("transfer %d is already %s", id, transfer.Status)
	}

	now := time.Now()
	var replacement *models.InventoryItem
	err = s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.Repository) error {
		if req.Notes != "" {
			transfer.RecordsNotes = appendNote(transfer.RecordsNotes, req.Notes)
		}
		replacement, err = s.applyReplacement(ctx, txRepo, transfer, req, actor, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.evictItem(ctx, transfer.InventoryID)
	s.evictItem(ctx, replacement.ID)

	s.publishEvent(messaging.EventItemReplaced, actor, transfer.InventoryID, map[string]any{
		"transfer_id":    transfer.ID,
		"replacement_id": replacement.ID,
	})

	return s.GetTransfer(ctx, id)
}

// applyReplacement runs the replacement algorithm inside the caller's
// transaction:
//  1. resolve the faulty item and its originating department
//  2. resolve or create the replacement item in that department
//  3. move the faulty item to ICT custody
//  4. cross-link both directions of the replacement chain
//  5. close the transfer as Replaced with an audit note
//
// Any failure rolls the whole unit back; there is no partially linked
// state to clean up afterwards.
func (s *service) applyReplacement(ctx context.Context, txRepo repository.Repository, transfer *models.Transfer, req ReplacementRequest, actor string, now time.Time) (*models.InventoryItem, error) {
	faulty, err := txRepo.FindItemByID(ctx, transfer.InventoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("inventory item %d does not exist", transfer.InventoryID)
		}
		return nil, err
	}
	if faulty.ReplacedBy != nil {
		return nil, validationError("item %d has already been replaced by item %d", faulty.ID, *faulty.ReplacedBy)
	}

	originDept := transfer.FromDepartment
	if originDept == "" {
		originDept = models.UnassignedDepartment
	}

	var replacement *models.InventoryItem
	switch {
	case req.ReplacementInventoryID != nil:
		replacementID := *req.ReplacementInventoryID
		if replacementID == faulty.ID {
			return nil, validationError("replacement item cannot be the faulty item itself")
		}

		replacement, err = txRepo.FindItemByID(ctx, replacementID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationError("replacement item %d does not exist", replacementID)
			}
			return nil, err
		}
		if replacement.ReplacementOf != nil && *replacement.ReplacementOf != faulty.ID {
			return nil, validationError("item %d already replaces item %d", replacement.ID, *replacement.ReplacementOf)
		}

		err = txRepo.UpdateItemFields(ctx, replacement.ID, map[string]interface{}{
			"department":     originDept,
			"status":         models.ItemStatusActive,
			"replacement_of": faulty.ID,
			"received_at":    now,
		})
		if err != nil {
			return nil, fmt.Errorf("updating replacement item: %w", err)
		}
		replacement.Department = originDept
		replacement.Status = models.ItemStatusActive
		replacement.ReplacementOf = &faulty.ID

	case req.ReplacementDetails != nil:
		details := req.ReplacementDetails
		if err := validateItemFields(details.AssetType, details.Status, map[string]string{
			"serial_no":    details.SerialNo,
			"manufacturer": details.Manufacturer,
			"model":        details.Model,
			"version":      details.Version,
			"os_info":      details.OSInfo,
		}); err != nil {
			return nil, err
		}

		if err := txRepo.UpsertDepartment(ctx, originDept); err != nil {
			return nil, fmt.Errorf("upserting department: %w", err)
		}

		counter, err := txRepo.AllocateAssetNumber(ctx, originDept)
		if err != nil {
			return nil, fmt.Errorf("allocating asset number: %w", err)
		}

		status := details.Status
		if status == "" {
			status = models.ItemStatusActive
		}

		replacement = &models.InventoryItem{
			AssetNo:       utils.FormatAssetNo(originDept, counter),
			AssetType:     details.AssetType,
			SerialNo:      details.SerialNo,
			Manufacturer:  details.Manufacturer,
			ModelName:     details.Model,
			Version:       details.Version,
			OSInfo:        details.OSInfo,
			Status:        status,
			Department:    originDept,
			ReplacementOf: &faulty.ID,
			ReceivedAt:    now,
		}
		if err := txRepo.CreateItem(ctx, replacement); err != nil {
			return nil, fmt.Errorf("creating replacement item: %w", err)
		}

	default:
		return nil, validationError("replacement_inventory_id or replacement_details is required")
	}

	// Faulty item moves to ICT custody, linked forward to its successor.
	err = txRepo.UpdateItemFields(ctx, faulty.ID, map[string]interface{}{
		"status":      models.ItemStatusInICT,
		"department":  models.UnassignedDepartment,
		"replaced_by": replacement.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("updating faulty item: %w", err)
	}

	auditNote := fmt.Sprintf("Replacement completed by %s at %s: item %d replaced by item %d",
		actor, now.Format(time.RFC3339), faulty.ID, replacement.ID)

	err = s.transition(ctx, txRepo, transfer, models.TransferStatusReplaced, map[string]interface{}{
		"destination_received_by":  actor,
		"destination_received_at":  now,
		"records_notes":            appendNote(transfer.RecordsNotes, auditNote),
		"replacement_inventory_id": replacement.ID,
	})
	if err != nil {
		return nil, err
	}

	return replacement, nil
}

// applyTransition wraps the shared load/transact/publish flow of the
// simple transitions.
func (s *service) applyTransition(
	ctx context.Context,
	id uint,
	actor string,
	next models.TransferStatus,
	fn func(ctx context.Context, txRepo repository.Repository, transfer *models.Transfer, now time.Time) error,
) (*models.Transfer, error) {
	transfer, err := s.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.Repository) error {
		return fn(ctx, txRepo, transfer, now)
	})
	if err != nil {
		return nil, err
	}

	s.evictItem(ctx, transfer.InventoryID)
	s.publishEvent(messaging.EventTransferTransition, actor, id, map[string]any{
		"inventory_id": transfer.InventoryID,
		"status":       string(next),
	})

	return s.GetTransfer(ctx, id)
}

// appendNote joins entries with a newline, never overwriting prior notes.
func appendNote(existing, note string) string {
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
