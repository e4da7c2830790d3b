package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"example.com/backstage/services/assets/internal/cache"
	"example.com/backstage/services/assets/internal/messaging"
	"example.com/backstage/services/assets/internal/models"
	"example.com/backstage/services/assets/internal/repository"
	"example.com/backstage/services/assets/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service defines the business logic operations
type Service interface {
	// Inventory operations
	CreateItem(ctx context.Context, req CreateItemRequest) (*models.InventoryItem, error)
	GetItem(ctx context.Context, id uint) (*models.InventoryItem, error)
	ListItems(ctx context.Context, department string) ([]*models.InventoryItem, error)
	LookupItemByTag(ctx context.Context, tag string) (*models.InventoryItem, error)
	RecentItems(ctx context.Context, limit int) ([]*models.InventoryItem, error)
	UpdateItem(ctx context.Context, id uint, req UpdateItemRequest) (*models.InventoryItem, error)
	DeleteItem(ctx context.Context, id uint) (int64, error)

	// Department operations
	CreateDepartment(ctx context.Context, name string) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]*models.Department, error)

	// Transfer operations
	CreateTransfer(ctx context.Context, req CreateTransferRequest, actor string) (*models.Transfer, error)
	GetTransfer(ctx context.Context, id uint) (*models.Transfer, error)
	ListTransfers(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error)
	ReceiveByRecords(ctx context.Context, id uint, req ReceiveRequest, actor string) (*models.Transfer, error)
	ReceiveByICT(ctx context.Context, id uint, req ReceiveRequest, actor string) (*models.Transfer, error)
	ShipTransfer(ctx context.Context, id uint, req ShipRequest, actor string) (*models.Transfer, error)
	AcknowledgeDelivery(ctx context.Context, id uint, actor string) (*models.Transfer, error)
	CompleteReplacement(ctx context.Context, id uint, req ReplacementRequest, actor string) (*models.Transfer, error)

	// Maintenance operations
	CreateMaintenance(ctx context.Context, req MaintenanceRequest) (*models.MaintenanceRecord, error)
	CreateDepartmentMaintenance(ctx context.Context, req DepartmentMaintenanceRequest) ([]*models.MaintenanceRecord, error)
	GetMaintenanceRecord(ctx context.Context, id uint) (*models.MaintenanceRecord, error)
	ListMaintenanceRecords(ctx context.Context, department string) ([]*models.MaintenanceRecord, error)
	SendMaintenanceToICT(ctx context.Context, id uint, note, actor string) (*models.MaintenanceRecord, error)
	MarkMaintenanceReturned(ctx context.Context, id uint, note, actor string) (*models.MaintenanceRecord, error)
	DeleteMaintenanceRecord(ctx context.Context, id uint) (int64, error)

	// Report operations
	InventoryStatusReport(ctx context.Context, department string) (map[string]int64, error)
	OpenTransfers(ctx context.Context) ([]*models.Transfer, error)
	ItemMaintenanceHistory(ctx context.Context, itemID uint) ([]*models.MaintenanceRecord, error)

	// Shutdown gracefully stops background workers
	Shutdown() error
}

// service is an implementation of the Service interface
type service struct {
	repo          repository.Repository
	cache         cache.RedisClient
	log           *logrus.Logger
	events        *EventPublisher
	recentDefault int
	recentMax     int
}

// ServiceConfig holds the configuration for the service
type ServiceConfig struct {
	Repository         repository.Repository
	Cache              cache.RedisClient
	MessagingClient    messaging.ServiceBusClient
	Logger             *logrus.Logger
	RecentDefaultLimit int
	RecentMaxLimit     int
	PublishWorkers     int
}

// NewService creates a new service instance
func NewService(config ServiceConfig) (Service, error) {
	// Validate required config
	if config.Repository == nil {
		return nil, errors.New("repository is required")
	}
	if config.Cache == nil {
		return nil, errors.New("cache is required")
	}
	if config.MessagingClient == nil {
		return nil, errors.New("messaging client is required")
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.RecentDefaultLimit <= 0 {
		config.RecentDefaultLimit = 10
	}
	if config.RecentMaxLimit <= 0 {
		config.RecentMaxLimit = 100
	}
	if config.PublishWorkers <= 0 {
		config.PublishWorkers = 4
	}

	events := NewEventPublisher(config.MessagingClient, config.Logger, config.PublishWorkers)

	return &service{
		repo:          config.Repository,
		cache:         config.Cache,
		log:           config.Logger,
		events:        events,
		recentDefault: config.RecentDefaultLimit,
		recentMax:     config.RecentMaxLimit,
	}, nil
}

// Shutdown gracefully stops the service
func (s *service) Shutdown() error {
	s.log.Info("Shutting down service...")
	s.events.Stop()
	return nil
}

// Field length bounds shared by inventory and maintenance validation.
const (
	maxAssetTypeLen = 50
	maxFieldLen     = 100
	maxNotesLen     = 2000
)

// CreateItemRequest is the payload for inventory creation
type CreateItemRequest struct {
	AssetNo       string            `json:"asset_no"`
	AssetType     string            `json:"asset_type"`
	SerialNo      string            `json:"serial_no"`
	Manufacturer  string            `json:"manufacturer"`
	Model         string            `json:"model"`
	Version       string            `json:"version"`
	OSInfo        string            `json:"os_info"`
	Status        models.ItemStatus `json:"status"`
	Department    string            `json:"department"`
	ReplacementOf *uint             `json:"replacement_of"`
}

// UpdateItemRequest is the payload for a full-record inventory update
type UpdateItemRequest struct {
	AssetNo      string            `json:"asset_no"`
	AssetType    string            `json:"asset_type"`
	SerialNo     string            `json:"serial_no"`
	Manufacturer string            `json:"manufacturer"`
	Model        string            `json:"model"`
	Version      string            `json:"version"`
	OSInfo       string            `json:"os_info"`
	Status       models.ItemStatus `json:"status"`
	Department   string            `json:"department"`
}

func validateItemFields(assetType string, status models.ItemStatus, optional map[string]string) error {
	if assetType == "" {
		return validationError("asset_type is required")
	}
	if len(assetType) > maxAssetTypeLen {
		return validationError("asset_type must be at most %d characters", maxAssetTypeLen)
	}
	if !status.Valid() {
		return validationError("unrecognized status %q", status)
	}
	for field, value := range optional {
		if len(value) > maxFieldLen {
			return validationError("%s must be at most %d characters", field, maxFieldLen)
		}
	}
	return nil
}

// CreateItem validates and inserts an inventory item. A blank asset_no is
// generated from the department counter. When replacement_of references an
// existing item the new item inherits that item's department and the old
// item is marked Replaced with its replaced_by link set; insert, counter
// allocation, and back-link all commit or roll back together.
func (s *service) CreateItem(ctx context.Context, req CreateItemRequest) (*models.InventoryItem, error) {
	if err := validateItemFields(req.AssetType, req.Status, map[string]string{
		"serial_no":    req.SerialNo,
		"manufacturer": req.Manufacturer,
		"model":        req.Model,
		"version":      req.Version,
		"os_info":      req.OSInfo,
	}); err != nil {
		return nil, err
	}

	department := utils.NormalizeDepartment(req.Department)

	var parent *models.InventoryItem
	if req.ReplacementOf != nil {
		var err error
		parent, err = s.repo.FindItemByID(ctx, *req.ReplacementOf)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationError("replacement_of item %d does not exist", *req.ReplacementOf)
			}
			return nil, err
		}
		if department == "" {
			department = parent.Department
		}
	}
	if department == "" {
		department = models.UnassignedDepartment
	}

	status := req.Status
	if status == "" {
		status = models.ItemStatusActive
	}

	item := &models.InventoryItem{
		AssetNo:       req.AssetNo,
		AssetType:     req.AssetType,
		SerialNo:      req.SerialNo,
		Manufacturer:  req.Manufacturer,
		ModelName:     req.Model,
		Version:       req.Version,
		OSInfo:        req.OSInfo,
		Status:        status,
		Department:    department,
		ReplacementOf: req.ReplacementOf,
		ReceivedAt:    time.Now(),
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.Repository) error {
		if err := txRepo.UpsertDepartment(ctx, department); err != nil {
			return fmt.Errorf("upserting department: %w", err)
		}

		if item.AssetNo == "" {
			counter, err := txRepo.AllocateAssetNumber(ctx, department)
			if err != nil {
				return fmt.Errorf("allocating asset number: %w", err)
			}
			item.AssetNo = utils.FormatAssetNo(department, counter)
		}

		if err := txRepo.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("creating item: %w", err)
		}

		if parent != nil {
			err := txRepo.UpdateItemFields(ctx, parent.ID, map[string]interface{}{
				"replaced_by": item.ID,
				"status":      models.ItemStatusReplaced,
			})
			if err != nil {
				return fmt.Errorf("linking replaced item: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cacheItem(ctx, item)
	s.publishEvent(messaging.EventItemCreated, "", item.ID, map[string]any{
		"asset_no":   item.AssetNo,
		"department": item.Department,
	})

	return item, nil
}

func (s *service) GetItem(ctx context.Context, id uint) (*models.InventoryItem, error) {
	// Try the cache first
	if data, err := s.cache.Get(ctx, cache.ItemKey(id)); err == nil {
		var item models.InventoryItem
		if err := json.Unmarshal([]byte(data), &item); err == nil {
			return &item, nil
		}
	}

	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("inventory item", id)
		}
		return nil, err
	}

	s.cacheItem(ctx, item)
	return item, nil
}

func (s *service) ListItems(ctx context.Context, department string) ([]*models.InventoryItem, error) {
	return s.repo.ListItems(ctx, utils.NormalizeDepartment(department))
}

func (s *service) LookupItemByTag(ctx context.Context, tag string) (*models.InventoryItem, error) {
	if tag == "" {
		return nil, validationError("tag query is required")
	}

	normalized := utils.NormalizeTag(tag)
	if data, err := s.cache.Get(ctx, cache.TagKey(normalized)); err == nil {
		var item models.InventoryItem
		if err := json.Unmarshal([]byte(data), &item); err == nil {
			return &item, nil
		}
	}

	item, err := s.repo.FindItemByTag(ctx, tag)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no item matches tag %q", ErrNotFound, tag)
		}
		return nil, err
	}

	if data, err := json.Marshal(item); err == nil {
		if err := s.cache.Set(ctx, cache.TagKey(normalized), string(data), 10*time.Minute); err != nil {
			s.log.WithError(err).Debug("Failed to cache tag lookup")
		}
	}

	return item, nil
}

// RecentItems returns the most recently received items, newest first.
// A non-positive limit falls back to the default; the maximum is clamped.
func (s *service) RecentItems(ctx context.Context, limit int) ([]*models.InventoryItem, error) {
	if limit <= 0 {
		limit = s.recentDefault
	}
	if limit > s.recentMax {
		limit = s.recentMax
	}

	return s.repo.ListRecentItems(ctx, limit)
}

func (s *service) UpdateItem(ctx context.Context, id uint, req UpdateItemRequest) (*models.InventoryItem, error) {
	if err := validateItemFields(req.AssetType, req.Status, map[string]string{
		"serial_no":    req.SerialNo,
		"manufacturer": req.Manufacturer,
		"model":        req.Model,
		"version":      req.Version,
		"os_info":      req.OSInfo,
	}); err != nil {
		return nil, err
	}

	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("inventory item", id)
		}
		return nil, err
	}

	department := utils.NormalizeDepartment(req.Department)
	if department == "" {
		department = models.UnassignedDepartment
	}

	item.AssetNo = req.AssetNo
	item.AssetType = req.AssetType
	item.SerialNo = req.SerialNo
	item.Manufacturer = req.Manufacturer
	item.ModelName = req.Model
	item.Version = req.Version
	item.OSInfo = req.OSInfo
	item.Department = department
	if req.Status != "" {
		item.Status = req.Status
	}

	err = s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.Repository) error {
		if err := txRepo.UpsertDepartment(ctx, department); err != nil {
			return fmt.Errorf("upserting department: %w", err)
		}
		return txRepo.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.cacheItem(ctx, item)
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, id uint) (int64, error) {
	affected, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Delete(ctx, cache.ItemKey(id)); err != nil {
		s.log.WithError(err).Debug("Failed to evict deleted item from cache")
	}

	return affected, nil
}

// Department operations implementation

func (s *service) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	normalized := utils.NormalizeDepartment(name)
	if normalized == "" {
		return nil, validationError("department name is required")
	}

	dept := &models.Department{Name: normalized}
	if err := s.repo.CreateDepartment(ctx, dept); err != nil {
		return nil, err
	}

	return dept, nil
}

func (s *service) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	return s.repo.ListDepartments(ctx)
}

// Report operations implementation

func (s *service) InventoryStatusReport(ctx context.Context, department string) (map[string]int64, error) {
	return s.repo.CountItemsByStatus(ctx, utils.NormalizeDepartment(department))
}

func (s *service) OpenTransfers(ctx context.Context) ([]*models.Transfer, error) {
	transfers, err := s.repo.ListTransfers(ctx, "")
	if err != nil {
		return nil, err
	}

	open := transfers[:0]
	for _, t := range transfers {
		if !t.Status.Terminal() {
			open = append(open, t)
		}
	}

	return open, nil
}

func (s *service) ItemMaintenanceHistory(ctx context.Context, itemID uint) ([]*models.MaintenanceRecord, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListMaintenanceRecordsForItem(ctx, itemID)
}

// cacheItem stores an item in the cache. Failures are log-only.
func (s *service) cacheItem(ctx context.Context, item *models.InventoryItem) {
	data, err := json.Marshal(item)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.ItemKey(item.ID), string(data), 24*time.Hour); err != nil {
		s.log.WithError(err).Debug("Failed to cache inventory item")
	}
}

// evictItem drops an item's cache entry after a mutation.
func (s *service) evictItem(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, cache.ItemKey(id)); err != nil {
		s.log.WithError(err).Debug("Failed to evict item from cache")
	}
}

// publishEvent enqueues a lifecycle event for asynchronous publishing.
// Delivery is best-effort; a full queue or broker failure never fails the
// originating request.
func (s *service) publishEvent(kind, actor string, entityID uint, payload map[string]any) {
	if err := s.events.Enqueue(kind, actor, entityID, payload); err != nil {
		s.log.WithError(err).WithField("kind", kind).Warn("Failed to enqueue lifecycle event")
	}
}
