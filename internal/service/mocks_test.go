package service

import (
	"context"
	"errors"
	"time"

	"example.com/backstage/services/assets/config"
	"example.com/backstage/services/assets/internal/messaging"
	"example.com/backstage/services/assets/internal/models"
	"example.com/backstage/services/assets/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// Mock repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, txRepo repository.Repository) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx, m)
}

func (m *MockRepository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) UpdateItem(ctx context.Context, item *models.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) UpdateItemFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockRepository) FindItemByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockRepository) FindItemByTag(ctx context.Context, tag string) (*models.InventoryItem, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockRepository) ListItems(ctx context.Context, department string) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

func (m *MockRepository) ListRecentItems(ctx context.Context, limit int) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

func (m *MockRepository) DeleteItem(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CountItemsByStatus(ctx context.Context, department string) (map[string]int64, error) {
	args := m.Called(ctx, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockRepository) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockRepository) FindTransferByID(ctx context.Context, id uint) (*models.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockRepository) ListTransfers(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transfer), args.Error(1)
}

func (m *MockRepository) UpdateTransferFromStatus(ctx context.Context, id uint, expected []models.TransferStatus, updates map[string]interface{}) (int64, error) {
	args := m.Called(ctx, id, expected, updates)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CreateMaintenanceRecord(ctx context.Context, record *models.MaintenanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRepository) CreateMaintenanceRecords(ctx context.Context, records []*models.MaintenanceRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockRepository) FindMaintenanceRecordByID(ctx context.Context, id uint) (*models.MaintenanceRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRecord), args.Error(1)
}

func (m *MockRepository) ListMaintenanceRecords(ctx context.Context, department string) ([]*models.MaintenanceRecord, error) {
	args := m.Called(ctx, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MaintenanceRecord), args.Error(1)
}

func (m *MockRepository) ListMaintenanceRecordsForItem(ctx context.Context, inventoryID uint) ([]*models.MaintenanceRecord, error) {
	args := m.Called(ctx, inventoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MaintenanceRecord), args.Error(1)
}

func (m *MockRepository) UpdateMaintenanceRecord(ctx context.Context, record *models.MaintenanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRepository) DeleteMaintenanceRecord(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) UpsertDepartment(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockRepository) CreateDepartment(ctx context.Context, dept *models.Department) error {
	args := m.Called(ctx, dept)
	return args.Error(0)
}

func (m *MockRepository) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Department), args.Error(1)
}

func (m *MockRepository) AllocateAssetNumber(ctx context.Context, department string) (uint, error) {
	args := m.Called(ctx, department)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockRepository) CreateAPIKey(ctx context.Context, apiKey *models.APIKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func (m *MockRepository) GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

func (m *MockRepository) UpdateAPIKey(ctx context.Context, apiKey *models.APIKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func (m *MockRepository) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.APIKey), args.Error(1)
}

func (m *MockRepository) DeleteAPIKey(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubCache is an in-memory cache used by tests
type stubCache struct {
	entries map[string]string
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]string)}
}

func (c *stubCache) Get(ctx context.Context, key string) (string, error) {
	if value, ok := c.entries[key]; ok {
		return value, nil
	}
	return "", errors.New("cache miss")
}

func (c *stubCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *stubCache) Close() error {
	return nil
}

// newTestService builds a service around the given mocks. The messaging
// client is the in-memory stand-in used when no broker is configured.
func newTestService(repo *MockRepository, cache *stubCache) *service {
	log := logrus.New()
	msgClient, _ := messaging.NewServiceBusClient(config.ServiceBusConfig{}, "test")
	return &service{
		repo:          repo,
		cache:         cache,
		log:           log,
		events:        NewEventPublisher(msgClient, log, 1),
		recentDefault: 10,
		recentMax:     100,
	}
}
