package appointment

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

const DateLayout = "2006-01-02"

type AvailabilityInput struct {
	BranchID uint
	Date     time.Time
}

// IsDateOnly reports whether t is a bare calendar date (UTC midnight).
func IsDateOnly(t time.Time) bool {
	if t.IsZero() || t.Location() != time.UTC {
		return false
	}
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

// ParseDate parses YYYY-MM-DD into a date-only value.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	return d, nil
}

func ValidateDate(t time.Time) error {
	if !IsDateOnly(t) {
		return &ValidationError{Field: "date", Reason: "must be a calendar date without time"}
	}
	return nil
}

// FreeSlots keeps the slots not referenced by a live appointment. The
// appointment with id excluding (if non-nil) is ignored, so a reschedule
// can see its own booking as free.
func FreeSlots(
	slots []models.TimeSlot,
	booked []models.Appointment,
	excluding *uint,
) []models.TimeSlot {

	taken := make(map[uint]struct{}, len(booked))
	for _, ap := range booked {
		if excluding != nil && ap.ID == *excluding {
			continue
		}
		if !Status(ap.Status).Occupies() {
			continue
		}
		taken[ap.SlotID] = struct{}{}
	}

	free := make([]models.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if _, busy := taken[s.ID]; !busy {
			free = append(free, s)
		}
	}

	sort.SliceStable(free, func(i, j int) bool {
		return free[i].StartTime < free[j].StartTime
	})
	return free
}
