package models

import "time"

// TimeSlot is a fixed daily opening of a branch, e.g. 09:00-09:30.
type TimeSlot struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BranchID uint `gorm:"index;not null" json:"branch_id"`

	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s TimeSlot) Label() string {
	return s.StartTime + "-" + s.EndTime
}
