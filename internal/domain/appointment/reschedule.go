package appointment

import (
	"time"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

// Proposal is a requested move of an accepted appointment. It lives
// beside the status rather than inside it: an appointment either has no
// proposal or exactly one.
type Proposal struct {
	BranchID uint
	SlotID   uint
	Date     time.Time
}

// ProposalOf returns the outstanding proposal, if any.
func ProposalOf(ap *models.Appointment) (Proposal, bool) {
	if ap.RescheduleDate == nil || ap.RescheduleSlotID == nil || ap.RescheduleBranchID == nil {
		return Proposal{}, false
	}
	return Proposal{
		BranchID: *ap.RescheduleBranchID,
		SlotID:   *ap.RescheduleSlotID,
		Date:     *ap.RescheduleDate,
	}, true
}

func setProposal(ap *models.Appointment, p Proposal, now time.Time) {
	branchID, slotID, date := p.BranchID, p.SlotID, p.Date
	ap.RescheduleBranchID = &branchID
	ap.RescheduleSlotID = &slotID
	ap.RescheduleDate = &date
	ap.RescheduleRequestedAt = &now
}

func clearProposal(ap *models.Appointment) {
	ap.RescheduleBranchID = nil
	ap.RescheduleSlotID = nil
	ap.RescheduleDate = nil
	ap.RescheduleRequestedAt = nil
}

// SameBooking reports whether p points at the appointment's current booking.
func (p Proposal) SameBooking(ap *models.Appointment) bool {
	return p.BranchID == ap.BranchID && p.SlotID == ap.SlotID && p.Date.Equal(ap.Date)
}
