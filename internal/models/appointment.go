package models

import (
	"time"

	"gorm.io/gorm"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Calendar day at UTC midnight.
	Date time.Time `gorm:"type:date;not null;index" json:"date"`

	SlotID uint     `gorm:"not null" json:"slot_id"`
	Slot   TimeSlot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"slot"`

	BranchID uint   `gorm:"not null;index" json:"branch_id"`
	Branch   Branch `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"branch"`

	DoctorID *uint  `json:"doctor_id"`
	Doctor   *Doctor `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"doctor,omitempty"`

	ServiceID uint    `gorm:"not null" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service"`

	PatientID uint    `gorm:"not null;index" json:"patient_id"`
	Patient   Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"patient"`

	Status string `gorm:"size:20;not null;default:'pending';check:chk_appointments_status,status IN ('pending','accepted','rejected','canceled','completed')" json:"status"`
	Type   string `gorm:"size:50" json:"type"`

	// Reschedule proposal; all nil when none is outstanding.
	RescheduleDate        *time.Time `gorm:"type:date" json:"reschedule_date,omitempty"`
	RescheduleSlotID      *uint      `json:"reschedule_slot_id,omitempty"`
	RescheduleBranchID    *uint      `json:"reschedule_branch_id,omitempty"`
	RescheduleRequestedAt *time.Time `json:"reschedule_requested_at,omitempty"`

	AcceptedAt  *time.Time `json:"accepted_at"`
	RejectedAt  *time.Time `json:"rejected_at"`
	CanceledAt  *time.Time `json:"canceled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Treatments []TreatmentEntry `gorm:"constraint:OnDelete:CASCADE;" json:"treatments,omitempty"`
	ItemUsages []ItemUsage      `gorm:"constraint:OnDelete:CASCADE;" json:"item_usages,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
