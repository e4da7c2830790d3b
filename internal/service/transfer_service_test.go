package service

import (
	"context"
	"testing"

	"example.com/backstage/services/assets/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func hasStatus(expected []models.TransferStatus, status models.TransferStatus) bool {
	for _, s := range expected {
		if s == status {
			return true
		}
	}
	return false
}

func TestCreateTransferRequiresInventoryID(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	_, err := svc.CreateTransfer(context.Background(), CreateTransferRequest{
		TransferType: models.TransferTypeBranch,
	}, "alice")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateTransferRejectsUnknownItem(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	repo.On("FindItemByID", mock.Anything, uint(77)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.CreateTransfer(context.Background(), CreateTransferRequest{
		InventoryID:  77,
		TransferType: models.TransferTypeBranch,
	}, "alice")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateTransferBranchRequiresDestination(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	item := &models.InventoryItem{
		Model:      models.Model{ID: 1},
		Department: "FINANCE",
	}
	repo.On("FindItemByID", mock.Anything, uint(1)).Return(item, nil)

	_, err := svc.CreateTransfer(context.Background(), CreateTransferRequest{
		InventoryID:  1,
		TransferType: models.TransferTypeBranch,
	}, "alice")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateTransferStartsAsSent(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	item := &models.InventoryItem{
		Model:      models.Model{ID: 1},
		Department: "FINANCE",
	}
	repo.On("FindItemByID", mock.Anything, uint(1)).Return(item, nil)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpsertDepartment", mock.Anything, "FINANCE").Return(nil)
	repo.On("UpsertDepartment", mock.Anything, "HR").Return(nil)

	repo.On("CreateTransfer", mock.Anything, mock.AnythingOfType("*models.Transfer")).
		Run(func(args mock.Arguments) {
			created := args.Get(1).(*models.Transfer)
			created.ID = 10
			repo.On("FindTransferByID", mock.Anything, uint(10)).Return(created, nil)
		}).Return(nil)

	transfer, err := svc.CreateTransfer(context.Background(), CreateTransferRequest{
		InventoryID:  1,
		ToDepartment: "hr",
		TransferType: models.TransferTypeBranch,
		Notes:        "annual reshuffle",
	}, "alice")
	require.NoError(t, err)
	require.Equal(t, models.TransferStatusSent, transfer.Status)
	require.Equal(t, "FINANCE", transfer.FromDepartment)
	require.Equal(t, "HR", transfer.ToDepartment)
	require.Equal(t, "alice", transfer.SentBy)
	require.NotNil(t, transfer.SentAt)

	repo.AssertExpectations(t)
}

func TestAcknowledgeBeforeShipRejected(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	transfer := &models.Transfer{
		Model:       models.Model{ID: 4},
		InventoryID: 1,
		Status:      models.TransferStatusSent,
	}
	repo.On("FindTransferByID", mock.Anything, uint(4)).Return(transfer, nil)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)

	// The guarded update matches no row while the transfer is still Sent.
	repo.On("UpdateTransferFromStatus", mock.Anything, uint(4),
		mock.MatchedBy(func(expected []models.TransferStatus) bool {
			return len(expected) == 1 && expected[0] == models.TransferStatusShipped
		}),
		mock.Anything).Return(int64(0), nil)

	_, err := svc.AcknowledgeDelivery(context.Background(), 4, "bob")
	require.ErrorIs(t, err, ErrValidation)

	repo.AssertExpectations(t)
}

func TestShipTransferFromReceived(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	transfer := &models.Transfer{
		Model:       models.Model{ID: 5},
		InventoryID: 2,
		Status:      models.TransferStatusReceivedByICT,
	}
	repo.On("FindTransferByID", mock.Anything, uint(5)).Return(transfer, nil)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateTransferFromStatus", mock.Anything, uint(5),
		mock.MatchedBy(func(expected []models.TransferStatus) bool {
			return hasStatus(expected, models.TransferStatusSent) &&
				hasStatus(expected, models.TransferStatusReceivedByRecords) &&
				hasStatus(expected, models.TransferStatusReceivedByICT)
		}),
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			return updates["status"] == models.TransferStatusShipped &&
				updates["shipped_by"] == "carol" &&
				updates["tracking_info"] == "COURIER-881"
		})).Return(int64(1), nil)

	_, err := svc.ShipTransfer(context.Background(), 5, ShipRequest{TrackingInfo: "COURIER-881"}, "carol")
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestReceiveByICTMovesItemToHolding(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	transfer := &models.Transfer{
		Model:       models.Model{ID: 6},
		InventoryID: 3,
		Status:      models.TransferStatusSent,
	}
	repo.On("FindTransferByID", mock.Anything, uint(6)).Return(transfer, nil)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateTransferFromStatus", mock.Anything, uint(6), mock.Anything,
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			return updates["status"] == models.TransferStatusReceivedByICT
		})).Return(int64(1), nil)
	repo.On("UpdateItemFields", mock.Anything, uint(3),
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			return updates["department"] == models.UnassignedDepartment
		})).Return(nil)

	_, err := svc.ReceiveByICT(context.Background(), 6, ReceiveRequest{Notes: "screen cracked"}, "dave")
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestCompleteReplacementLinksBothItems(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	transfer := &models.Transfer{
		Model:          models.Model{ID: 7},
		InventoryID:    1,
		FromDepartment: "HR",
		TransferType:   models.TransferTypeInternal,
		Status:         models.TransferStatusReceivedByICT,
	}
	faulty := &models.InventoryItem{
		Model:      models.Model{ID: 1},
		Department: "HR",
		Status:     models.ItemStatusRepair,
	}
	replacement := &models.InventoryItem{
		Model:      models.Model{ID: 2},
		Department: "UNASSIGNED",
		Status:     models.ItemStatusInICT,
	}

	repo.On("FindTransferByID", mock.Anything, uint(7)).Return(transfer, nil)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindItemByID", mock.Anything, uint(1)).Return(faulty, nil)
	repo.On("FindItemByID", mock.Anything, uint(2)).Return(replacement, nil)

	// Replacement takes over custody in the originating department.
	repo.On("UpdateItemFields", mock.Anything, uint(2),
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			return updates["department"] == "HR" &&
				updates["status"] == models.ItemStatusActive &&
				updates["replacement_of"] == uint(1)
		})).Return(nil)

	// Faulty item moves to ICT holding with the forward link set.
	repo.On("UpdateItemFields", mock.Anything, uint(1),
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			return updates["status"] == models.ItemStatusInICT &&
				updates["department"] == models.UnassignedDepartment &&
				updates["replaced_by"] == uint(2)
		})).Return(nil)

	repo.On("UpdateTransferFromStatus", mock.Anything, uint(7), mock.Anything,
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			return updates["status"] == models.TransferStatusReplaced &&
				updates["replacement_inventory_id"] == uint(2)
		})).Return(int64(1), nil)

	replacementID := uint(2)
	_, err := svc.CompleteReplacement(context.Background(), 7, ReplacementRequest{
		ReplacementInventoryID: &replacementID,
	}, "erin")
	require.NoError(t, err)
	require.Equal(t, uint(1), *replacement.ReplacementOf)

	repo.AssertExpectations(t)
}

func TestCompleteReplacementRejectsTerminalTransfer(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	transfer := &models.Transfer{
		Model:        models.Model{ID: 8},
		InventoryID:  1,
		TransferType: models.TransferTypeInternal,
		Status:       models.TransferStatusDelivered,
	}
	repo.On("FindTransferByID", mock.Anything, uint(8)).Return(transfer, nil)

	replacementID := uint(2)
	_, err := svc.CompleteReplacement(context.Background(), 8, ReplacementRequest{
		ReplacementInventoryID: &replacementID,
	}, "erin")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCompleteReplacementRejectsAlreadyReplacedItem(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	successor := uint(9)
	transfer := &models.Transfer{
		Model:        models.Model{ID: 10},
		InventoryID:  1,
		TransferType: models.TransferTypeInternal,
		Status:       models.TransferStatusSent,
	}
	faulty := &models.InventoryItem{
		Model:      models.Model{ID: 1},
		ReplacedBy: &successor,
	}
	repo.On("FindTransferByID", mock.Anything, uint(10)).Return(transfer, nil)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindItemByID", mock.Anything, uint(1)).Return(faulty, nil)

	replacementID := uint(2)
	_, err := svc.CompleteReplacement(context.Background(), 10, ReplacementRequest{
		ReplacementInventoryID: &replacementID,
	}, "erin")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCompleteReplacementRejectsSelfReplacement(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	transfer := &models.Transfer{
		Model:        models.Model{ID: 11},
		InventoryID:  1,
		TransferType: models.TransferTypeInternal,
		Status:       models.TransferStatusSent,
	}
	faulty := &models.InventoryItem{Model: models.Model{ID: 1}}
	repo.On("FindTransferByID", mock.Anything, uint(11)).Return(transfer, nil)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindItemByID", mock.Anything, uint(1)).Return(faulty, nil)

	sameID := uint(1)
	_, err := svc.CompleteReplacement(context.Background(), 11, ReplacementRequest{
		ReplacementInventoryID: &sameID,
	}, "erin")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCompleteReplacementRejectsBranchTransfer(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	transfer := &models.Transfer{
		Model:        models.Model{ID: 12},
		InventoryID:  1,
		TransferType: models.TransferTypeBranch,
		Status:       models.TransferStatusShipped,
	}
	repo.On("FindTransferByID", mock.Anything, uint(12)).Return(transfer, nil)

	replacementID := uint(2)
	_, err := svc.CompleteReplacement(context.Background(), 12, ReplacementRequest{
		ReplacementInventoryID: &replacementID,
	}, "erin")
	require.ErrorIs(t, err, ErrValidation)

	// A shipping-path transfer must never be closed as Replaced.
	repo.AssertNotCalled(t, "UpdateTransferFromStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateInternalTransferRunsReplacementSynchronously(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	faulty := &models.InventoryItem{
		Model:      models.Model{ID: 1},
		AssetNo:    "HR-00001",
		Department: "HR",
		Status:     models.ItemStatusRepair,
	}
	repo.On("FindItemByID", mock.Anything, uint(1)).Return(faulty, nil)
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpsertDepartment", mock.Anything, "HR").Return(nil)
	repo.On("AllocateAssetNumber", mock.Anything, "HR").Return(uint(2), nil)

	var created *models.Transfer
	repo.On("CreateTransfer", mock.Anything, mock.AnythingOfType("*models.Transfer")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Transfer)
			created.ID = 30
			repo.On("FindTransferByID", mock.Anything, uint(30)).Return(created, nil)
		}).Return(nil)

	var replacement *models.InventoryItem
	repo.On("CreateItem", mock.Anything, mock.AnythingOfType("*models.InventoryItem")).
		Run(func(args mock.Arguments) {
			replacement = args.Get(1).(*models.InventoryItem)
			replacement.ID = 2
		}).Return(nil)

	repo.On("UpdateItemFields", mock.Anything, uint(1),
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			return updates["status"] == models.ItemStatusInICT &&
				updates["department"] == models.UnassignedDepartment &&
				updates["replaced_by"] == uint(2)
		})).Return(nil)

	repo.On("UpdateTransferFromStatus", mock.Anything, uint(30), mock.Anything,
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			return updates["status"] == models.TransferStatusReplaced &&
				updates["replacement_inventory_id"] == uint(2)
		})).
		Run(func(args mock.Arguments) {
			created.Status = models.TransferStatusReplaced
			id := uint(2)
			created.ReplacementInventoryID = &id
		}).Return(int64(1), nil)

	transfer, err := svc.CreateTransfer(context.Background(), CreateTransferRequest{
		InventoryID:   1,
		TransferType:  models.TransferTypeInternal,
		IssueComments: "dead mainboard",
		ReplacementDetails: &ReplacementDetails{
			AssetType: "Laptop",
			SerialNo:  "SN-NEW-01",
		},
	}, "frank")
	require.NoError(t, err)
	require.Equal(t, models.TransferStatusReplaced, transfer.Status)
	require.Equal(t, uint(2), *transfer.ReplacementInventoryID)

	// Both directions of the replacement chain are linked.
	require.NotNil(t, replacement)
	require.Equal(t, uint(1), *replacement.ReplacementOf)
	require.Equal(t, "HR", replacement.Department)
	require.Equal(t, "HR-00002", replacement.AssetNo)

	repo.AssertExpectations(t)
}

func TestOpenTransfersFiltersTerminalStates(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newStubCache())

	transfers := []*models.Transfer{
		{Model: models.Model{ID: 1}, Status: models.TransferStatusSent},
		{Model: models.Model{ID: 2}, Status: models.TransferStatusDelivered},
		{Model: models.Model{ID: 3}, Status: models.TransferStatusShipped},
		{Model: models.Model{ID: 4}, Status: models.TransferStatusReplaced},
	}
	repo.On("ListTransfers", mock.Anything, models.TransferStatus("")).Return(transfers, nil)

	open, err := svc.OpenTransfers(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 2)
	require.Equal(t, uint(1), open[0].ID)
	require.Equal(t, uint(3), open[1].ID)
}
