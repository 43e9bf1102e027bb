package models

import "time"

type Patient struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Doctor with a nil BranchID works at any branch.
type Doctor struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name      string  `gorm:"size:100;not null" json:"name"`
	Specialty string  `gorm:"size:100" json:"specialty"`
	BranchID  *uint   `gorm:"index" json:"branch_id"`
	Branch    *Branch `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"branch,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
