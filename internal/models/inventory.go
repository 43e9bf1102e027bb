package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventoryItem struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BranchID uint `gorm:"index;not null" json:"branch_id"`

	Name      string          `gorm:"size:100;not null" json:"name"`
	Quantity  int             `gorm:"not null;default:0;check:chk_inventory_items_quantity,quantity >= 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_price"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TreatmentEntry is append-only; corrections are new rows.
type TreatmentEntry struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AppointmentID uint   `gorm:"index;not null" json:"appointment_id"`
	ToothNumber   int    `gorm:"not null" json:"tooth_number"`
	Procedure     string `gorm:"size:100;not null" json:"procedure"`

	CreatedAt time.Time `json:"created_at"`
}

// ItemUsage snapshots the unit price at the time of use.
type ItemUsage struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AppointmentID   uint            `gorm:"index;not null" json:"appointment_id"`
	InventoryItemID uint            `gorm:"index;not null" json:"inventory_item_id"`
	InventoryItem   *InventoryItem  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"inventory_item,omitempty"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`

	CreatedAt time.Time `json:"created_at"`
}
