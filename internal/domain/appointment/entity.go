package appointment

import (
	"time"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

// ===============================
// Domain Actions
// ===============================
//
// Each action validates the event against the current status and mutates
// ap in memory only. Callers persist the result with a write conditioned
// on the status the action started from.

func Accept(ap *models.Appointment, doctorID *uint, now time.Time) error {
	if err := apply(ap, EventAccept); err != nil {
		return err
	}
	if doctorID != nil {
		id := *doctorID
		ap.DoctorID = &id
	}
	ap.AcceptedAt = &now
	return nil
}

func Reject(ap *models.Appointment, now time.Time) error {
	if err := apply(ap, EventReject); err != nil {
		return err
	}
	ap.RejectedAt = &now
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := apply(ap, EventCancel); err != nil {
		return err
	}
	clearProposal(ap)
	ap.CanceledAt = &now
	return nil
}

// RequestReschedule attaches p to an accepted appointment. Only one
// proposal may be outstanding at a time.
func RequestReschedule(ap *models.Appointment, p Proposal, now time.Time) error {
	if err := CanApply(Status(ap.Status), EventRequestReschedule); err != nil {
		return err
	}
	if _, pending := ProposalOf(ap); pending {
		return &InvalidTransitionError{From: Status(ap.Status), Event: EventRequestReschedule}
	}
	if p.SameBooking(ap) {
		return &ValidationError{Field: "slot_id", Reason: "proposal matches the current booking"}
	}
	setProposal(ap, p, now)
	return nil
}

// ApproveReschedule moves the appointment onto its proposal.
func ApproveReschedule(ap *models.Appointment) (Proposal, error) {
	p, err := outstandingProposal(ap, EventApproveReschedule)
	if err != nil {
		return Proposal{}, err
	}
	ap.BranchID = p.BranchID
	ap.SlotID = p.SlotID
	ap.Date = p.Date
	clearProposal(ap)
	return p, nil
}

func RejectReschedule(ap *models.Appointment) (Proposal, error) {
	p, err := outstandingProposal(ap, EventRejectReschedule)
	if err != nil {
		return Proposal{}, err
	}
	clearProposal(ap)
	return p, nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := apply(ap, EventComplete); err != nil {
		return err
	}
	clearProposal(ap)
	ap.CompletedAt = &now
	return nil
}

func apply(ap *models.Appointment, ev Event) error {
	next, err := Next(Status(ap.Status), ev)
	if err != nil {
		return err
	}
	ap.Status = string(next)
	return nil
}

func outstandingProposal(ap *models.Appointment, ev Event) (Proposal, error) {
	if err := CanApply(Status(ap.Status), ev); err != nil {
		return Proposal{}, err
	}
	p, ok := ProposalOf(ap)
	if !ok {
		return Proposal{}, &InvalidTransitionError{From: Status(ap.Status), Event: ev}
	}
	return p, nil
}
