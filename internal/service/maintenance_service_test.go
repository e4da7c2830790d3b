package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"example.com/backstage/services/assets/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateMaintenanceRequiresDate(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	_, err := svc.CreateMaintenance(context.Background(), MaintenanceRequest{
		Equipment:      "Laptop",
		TagNumber:      "HR-00001",
		Department:     "HR",
		EquipmentModel: "ThinkPad T14",
		User:           "frank",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateMaintenanceRejectsUnknownItem(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	missing := uint(321)
	repo.On("FindItemByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)

	date := time.Now()
	_, err := svc.CreateMaintenance(context.Background(), MaintenanceRequest{
		Date:           &date,
		Equipment:      "Laptop",
		TagNumber:      "HR-00001",
		Department:     "HR",
		EquipmentModel: "ThinkPad T14",
		User:           "frank",
		InventoryID:    &missing,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateMaintenancePersistsRecord(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	repo.On("CreateMaintenanceRecord", mock.Anything, mock.AnythingOfType("*models.MaintenanceRecord")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.MaintenanceRecord).ID = 15
		}).Return(nil)

	date := time.Now()
	record, err := svc.CreateMaintenance(context.Background(), MaintenanceRequest{
		Date:           &date,
		Equipment:      "Laptop",
		TagNumber:      "HR-00001",
		Department:     "hr",
		EquipmentModel: "ThinkPad T14",
		User:           "frank",
		RepairNotes:    "fan noise",
	})
	require.NoError(t, err)
	require.Equal(t, uint(15), record.ID)
	require.Equal(t, "HR", record.Department)
	require.Equal(t, date, record.StartDate)

	repo.AssertExpectations(t)
}

func TestDepartmentMaintenanceFansOutPerItem(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	items := []*models.InventoryItem{
		{Model: models.Model{ID: 1}, AssetNo: "HR-00001", AssetType: "Laptop", ModelName: "ThinkPad T14"},
		{Model: models.Model{ID: 2}, AssetNo: "HR-00002", AssetType: "Printer", ModelName: "LaserJet Pro"},
		{Model: models.Model{ID: 3}, AssetType: "Monitor", ModelName: "UltraSharp 24"},
	}
	repo.On("ListItems", mock.Anything, "HR").Return(items, nil)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)

	var persisted []*models.MaintenanceRecord
	repo.On("CreateMaintenanceRecords", mock.Anything, mock.AnythingOfType("[]*models.MaintenanceRecord")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).([]*models.MaintenanceRecord)
		}).Return(nil)

	records, err := svc.CreateDepartmentMaintenance(context.Background(), DepartmentMaintenanceRequest{
		Department:   "hr",
		User:         "grace",
		CreateForAll: true,
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, records, persisted)

	// All rows in the fan-out share one batch id.
	batchID := records[0].BatchID
	require.NotEmpty(t, batchID)
	for _, record := range records {
		require.Equal(t, batchID, record.BatchID)
		require.Equal(t, "HR", record.Department)
	}

	// Tag numbers come from the asset tag, with a synthetic fallback for
	// untagged items.
	require.Equal(t, "HR-00001", records[0].TagNumber)
	require.Equal(t, "HR-00002", records[1].TagNumber)
	require.Equal(t, "TAG-00003", records[2].TagNumber)
	require.Equal(t, "Laptop", records[0].Equipment)
	require.Equal(t, uint(1), *records[0].InventoryID)

	repo.AssertExpectations(t)
}

func TestDepartmentMaintenanceRejectsEmptyDepartment(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	repo.On("ListItems", mock.Anything, "EMPTY").Return([]*models.InventoryItem{}, nil)

	_, err := svc.CreateDepartmentMaintenance(context.Background(), DepartmentMaintenanceRequest{
		Department:   "empty",
		CreateForAll: true,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDepartmentMaintenanceSkipsMissingIDs(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	item := &models.InventoryItem{Model: models.Model{ID: 2}, AssetNo: "HR-00002", AssetType: "Printer"}
	repo.On("FindItemByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
	repo.On("FindItemByID", mock.Anything, uint(2)).Return(item, nil)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("CreateMaintenanceRecords", mock.Anything, mock.AnythingOfType("[]*models.MaintenanceRecord")).Return(nil)

	records, err := svc.CreateDepartmentMaintenance(context.Background(), DepartmentMaintenanceRequest{
		Department:   "hr",
		InventoryIDs: []uint{1, 2},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, uint(2), *records[0].InventoryID)
}

func TestDepartmentMaintenanceSingleSweep(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	repo.On("CreateMaintenanceRecord", mock.Anything, mock.AnythingOfType("*models.MaintenanceRecord")).Return(nil)

	records, err := svc.CreateDepartmentMaintenance(context.Background(), DepartmentMaintenanceRequest{
		Department: "hr",
		User:       "grace",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Nil(t, records[0].InventoryID)
	require.Empty(t, records[0].BatchID)

	repo.AssertExpectations(t)
}

func TestSendMaintenanceToICTAppendsNotes(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	record := &models.MaintenanceRecord{
		Model:       models.Model{ID: 20},
		RepairNotes: "initial diagnosis",
	}
	repo.On("FindMaintenanceRecordByID", mock.Anything, uint(20)).Return(record, nil)
	repo.On("UpdateMaintenanceRecord", mock.Anything, record).Return(nil)

	updated, err := svc.SendMaintenanceToICT(context.Background(), 20, "needs new fan", "henry")
	require.NoError(t, err)
	require.True(t, updated.SentToICT)
	require.NotNil(t, updated.SentToICTAt)
	require.Contains(t, updated.RepairNotes, "initial diagnosis")
	require.Contains(t, updated.RepairNotes, "Sent to ICT by henry: needs new fan")

	// A repeat call appends another entry rather than overwriting.
	_, err = svc.SendMaintenanceToICT(context.Background(), 20, "still waiting on parts", "henry")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(record.RepairNotes, "Sent to ICT by henry"))
	require.Contains(t, record.RepairNotes, "initial diagnosis")
}

func TestMarkMaintenanceReturned(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	record := &models.MaintenanceRecord{Model: models.Model{ID: 21}}
	repo.On("FindMaintenanceRecordByID", mock.Anything, uint(21)).Return(record, nil)
	repo.On("UpdateMaintenanceRecord", mock.Anything, record).Return(nil)

	updated, err := svc.MarkMaintenanceReturned(context.Background(), 21, "", "irene")
	require.NoError(t, err)
	require.True(t, updated.Returned)
	require.NotNil(t, updated.ReturnedAt)
	require.Contains(t, updated.RepairNotes, "Returned by irene")
}
