package models

import (
	"time"

	"gorm.io/gorm"
)

// Model is the base model with common fields for all database entities
type Model struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// UnassignedDepartment is the sentinel custody value for items not
// currently allocated to any department.
const UnassignedDepartment = "UNASSIGNED"

// ItemStatus is an enum for inventory item lifecycle status
type ItemStatus string

const (
	// ItemStatusActive represents an item in service
	ItemStatusActive ItemStatus = "Active"
	// ItemStatusInactive represents an item held but not in service
	ItemStatusInactive ItemStatus = "Inactive"
	// ItemStatusRepair represents an item under repair
	ItemStatusRepair ItemStatus = "Repair"
	// ItemStatusDisposed represents an item written off
	ItemStatusDisposed ItemStatus = "Disposed"
	// ItemStatusInICT represents an item held by the ICT department
	ItemStatusInICT ItemStatus = "In ICT"
	// ItemStatusReplaced represents an item superseded by a replacement
	ItemStatusReplaced ItemStatus = "Replaced"
)

// Valid reports whether the status is one of the recognized values.
// Empty is allowed; creation defaults it to Active.
func (s ItemStatus) Valid() bool {
	switch s {
	case "", ItemStatusActive, ItemStatusInactive, ItemStatusRepair,
		ItemStatusDisposed, ItemStatusInICT, ItemStatusReplaced:
		return true
	}
	return false
}

// InventoryItem model represents a tracked device
type InventoryItem struct {
	Model
	AssetNo       string     `json:"asset_no" gorm:"Column:asset_no;index"`
	AssetType     string     `json:"asset_type" gorm:"Column:asset_type"`
	SerialNo      string     `json:"serial_no" gorm:"Column:serial_no;index"`
	Manufacturer  string     `json:"manufacturer" gorm:"Column:manufacturer"`
	ModelName     string     `json:"model" gorm:"Column:model_name"`
	Version       string     `json:"version" gorm:"Column:version"`
	OSInfo        string     `json:"os_info" gorm:"Column:os_info"`
	Status        ItemStatus `json:"status" gorm:"Column:status"`
	Department    string     `json:"department" gorm:"Column:department;index"`
	ReplacementOf *uint      `json:"replacement_of" gorm:"Column:replacement_of"`
	ReplacedBy    *uint      `json:"replaced_by" gorm:"Column:replaced_by"`
	ReceivedAt    time.Time  `json:"received_at" gorm:"Column:received_at;index"`
}

// TransferType is an enum for transfer workflows
type TransferType string

const (
	// TransferTypeBranch represents a transfer toward another branch or department
	TransferTypeBranch TransferType = "branch"
	// TransferTypeInternal represents a same-department repair-and-replace flow
	TransferTypeInternal TransferType = "internal"
)

// Valid reports whether the transfer type is recognized. Empty is allowed.
func (t TransferType) Valid() bool {
	switch t {
	case "", TransferTypeBranch, TransferTypeInternal:
		return true
	}
	return false
}

// TransferStatus is an enum for the transfer state machine
type TransferStatus string

const (
	// TransferStatusSent is the initial state of every transfer
	TransferStatusSent TransferStatus = "Sent"
	// TransferStatusReceivedByRecords marks receipt confirmed at the records desk
	TransferStatusReceivedByRecords TransferStatus = "ReceivedByRecords"
	// TransferStatusReceivedByICT marks receipt confirmed by ICT
	TransferStatusReceivedByICT TransferStatus = "ReceivedByICT"
	// TransferStatusShipped marks the item dispatched toward its destination
	TransferStatusShipped TransferStatus = "Shipped"
	// TransferStatusDelivered is the terminal state of the shipping path
	TransferStatusDelivered TransferStatus = "Delivered"
	// TransferStatusReplaced is the terminal state of the internal replacement path
	TransferStatusReplaced TransferStatus = "Replaced"
)

// Terminal reports whether no further transition is allowed from the status.
func (s TransferStatus) Terminal() bool {
	return s == TransferStatusDelivered || s == TransferStatusReplaced
}

// Transfer model represents an inventory item's movement between custodial parties
type Transfer struct {
	Model
	InventoryItem *InventoryItem `json:"inventory_item,omitempty" gorm:"foreignKey:InventoryID"`
	InventoryID   uint           `json:"inventory_id" gorm:"Column:inventory_id;index"`

	FromDepartment string         `json:"from_department" gorm:"Column:from_department"`
	ToDepartment   string         `json:"to_department" gorm:"Column:to_department"`
	Destination    string         `json:"destination" gorm:"Column:destination"`
	TransferType   TransferType   `json:"transfer_type" gorm:"Column:transfer_type"`
	Status         TransferStatus `json:"status" gorm:"Column:status;index"`
	Notes          string         `json:"notes" gorm:"Column:notes;type:text"`

	SentBy string     `json:"sent_by" gorm:"Column:sent_by"`
	SentAt *time.Time `json:"sent_at" gorm:"Column:sent_at"`

	RecordsReceivedBy string     `json:"records_received_by" gorm:"Column:records_received_by"`
	RecordsReceivedAt *time.Time `json:"records_received_at" gorm:"Column:records_received_at"`
	RecordsNotes      string     `json:"records_notes" gorm:"Column:records_notes;type:text"`

	ShippedBy    string     `json:"shipped_by" gorm:"Column:shipped_by"`
	ShippedAt    *time.Time `json:"shipped_at" gorm:"Column:shipped_at"`
	TrackingInfo string     `json:"tracking_info" gorm:"Column:tracking_info"`

	DestinationReceivedBy string     `json:"destination_received_by" gorm:"Column:destination_received_by"`
	DestinationReceivedAt *time.Time `json:"destination_received_at" gorm:"Column:destination_received_at"`

	// Branch workflow fields
	RepairedStatus string     `json:"repaired_status" gorm:"Column:repaired_status"`
	RepairedBy     string     `json:"repaired_by" gorm:"Column:repaired_by"`
	RepairComments string     `json:"repair_comments" gorm:"Column:repair_comments;type:text"`
	DateReceived   *time.Time `json:"date_received" gorm:"Column:date_received"`
	DateSent       *time.Time `json:"date_sent" gorm:"Column:date_sent"`

	// Internal workflow fields
	ReceivedBy             string `json:"received_by" gorm:"Column:received_by"`
	IssueComments          string `json:"issue_comments" gorm:"Column:issue_comments;type:text"`
	ReplacementInventoryID *uint  `json:"replacement_inventory_id" gorm:"Column:replacement_inventory_id"`
}

// MaintenanceRecord model represents a maintenance event on a device, or a
// department sweep when InventoryID is nil
type MaintenanceRecord struct {
	Model
	Date      time.Time  `json:"date" gorm:"Column:date"`
	StartDate time.Time  `json:"start_date" gorm:"Column:start_date"`
	EndDate   *time.Time `json:"end_date" gorm:"Column:end_date"`

	Equipment      string `json:"equipment" gorm:"Column:equipment"`
	TagNumber      string `json:"tagnumber" gorm:"Column:tagnumber"`
	Department     string `json:"department" gorm:"Column:department;index"`
	EquipmentModel string `json:"equipment_model" gorm:"Column:equipment_model"`
	User           string `json:"user" gorm:"Column:user"`

	InventoryItem *InventoryItem `json:"-" gorm:"foreignKey:InventoryID"`
	InventoryID   *uint          `json:"inventory_id" gorm:"Column:inventory_id;index"`

	RepairNotes string     `json:"repair_notes" gorm:"Column:repair_notes;type:text"`
	SentToICT   bool       `json:"sent_to_ict" gorm:"Column:sent_to_ict"`
	SentToICTAt *time.Time `json:"sent_to_ict_at" gorm:"Column:sent_to_ict_at"`
	Returned    bool       `json:"returned" gorm:"Column:returned"`
	ReturnedAt  *time.Time `json:"returned_at" gorm:"Column:returned_at"`

	RepairStatus          string `json:"repair_status" gorm:"Column:repair_status"`
	Progress              string `json:"progress" gorm:"Column:progress"`
	DeptStatus            string `json:"dept_status" gorm:"Column:dept_status"`
	MachinesNotMaintained string `json:"machines_not_maintained" gorm:"Column:machines_not_maintained"`

	// BatchID groups the records created by a single department fan-out
	BatchID string `json:"batch_id" gorm:"Column:batch_id;index"`
}

// Department model represents a custodial department
type Department struct {
	Model
	Name string `json:"name" gorm:"uniqueIndex;Column:name"`
}

// AssetCounter holds the per-department sequence backing asset numbers.
// One row per department, created lazily on the first allocation.
type AssetCounter struct {
	Department string    `json:"department" gorm:"primaryKey;Column:department"`
	Counter    uint      `json:"counter" gorm:"Column:counter"`
	UpdatedAt  time.Time `json:"updated_at"`
}
