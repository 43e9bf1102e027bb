package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
	"github.com/BruksfildServices01/dental-clinic/internal/notify"
)

type RescheduleInput struct {
	BranchID uint
	SlotID   uint
	Date     time.Time
}

// ======================================================
// Request
// ======================================================

type RequestReschedule struct {
	base
	allocator *SlotAllocator
}

func NewRequestReschedule(d Deps) *RequestReschedule {
	b := newBase(d)
	return &RequestReschedule{
		base:      b,
		allocator: NewSlotAllocator(b.Repo, b.Catalog),
	}
}

// Execute attaches a proposal to an accepted appointment. The target must
// be free now; it is checked again when the proposal is approved.
func (uc *RequestReschedule) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
	in RescheduleInput,
) (out *models.Appointment, err error) {

	defer func() { uc.observe(domain.EventRequestReschedule, appointmentID, err) }()

	ap, err := uc.Repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.CanApply(domain.Status(ap.Status), domain.EventRequestReschedule); err != nil {
		return nil, err
	}
	if err := domain.ValidateDate(in.Date); err != nil {
		return nil, err
	}

	target, err := uc.Catalog.GetBranch(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if err := uc.notPast(in.Date, target.Timezone); err != nil {
		return nil, err
	}

	self := ap.ID
	free, err := uc.allocator.IsFree(ctx, in.BranchID, in.Date, in.SlotID, &self)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, &domain.SlotUnavailableError{BranchID: in.BranchID, SlotID: in.SlotID, Date: in.Date}
	}

	p := domain.Proposal{BranchID: in.BranchID, SlotID: in.SlotID, Date: in.Date}
	if err := domain.RequestReschedule(ap, p, uc.now(ap.Branch.Timezone)); err != nil {
		return nil, err
	}

	out, err = uc.commit(ctx, ap, domain.StatusAccepted, domain.EventRequestReschedule)
	if err != nil {
		return nil, err
	}

	uc.audit(actor, out, "appointment_reschedule_requested", proposalMeta(p))
	return out, nil
}

// ======================================================
// Approve
// ======================================================

type ApproveReschedule struct {
	base
}

func NewApproveReschedule(d Deps) *ApproveReschedule {
	return &ApproveReschedule{base: newBase(d)}
}

// Execute moves the appointment onto its proposal. The target slot is
// re-checked inside the store's commit; losing that race leaves the
// appointment where it was and reports SlotNoLongerAvailable.
func (uc *ApproveReschedule) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
) (out *models.Appointment, err error) {

	defer func() { uc.observe(domain.EventApproveReschedule, appointmentID, err) }()

	ap, err := uc.Repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	previous := domain.Proposal{BranchID: ap.BranchID, SlotID: ap.SlotID, Date: ap.Date}

	// validate on a copy; the store applies the move itself
	probe := *ap
	p, err := domain.ApproveReschedule(&probe)
	if err != nil {
		return nil, err
	}

	out, err = uc.Repo.ApplyReschedule(ctx, ap.ID, p)
	if err != nil {
		return nil, err
	}

	uc.audit(actor, out, "appointment_reschedule_approved", map[string]any{
		"from": proposalMeta(previous),
		"to":   proposalMeta(p),
	})
	return out, nil
}

// ======================================================
// Reject
// ======================================================

type RejectReschedule struct {
	base
}

func NewRejectReschedule(d Deps) *RejectReschedule {
	return &RejectReschedule{base: newBase(d)}
}

func (uc *RejectReschedule) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
) (out *models.Appointment, err error) {

	defer func() { uc.observe(domain.EventRejectReschedule, appointmentID, err) }()

	ap, err := uc.Repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	p, err := domain.RejectReschedule(ap)
	if err != nil {
		return nil, err
	}

	out, err = uc.commit(ctx, ap, domain.StatusAccepted, domain.EventRejectReschedule)
	if err != nil {
		return nil, err
	}

	uc.audit(actor, out, "appointment_reschedule_rejected", proposalMeta(p))
	uc.notify(notify.KindRescheduleRejected, out)
	return out, nil
}

func proposalMeta(p domain.Proposal) map[string]any {
	return map[string]any{
		"branch_id": p.BranchID,
		"slot_id":   p.SlotID,
		"date":      p.Date.Format(domain.DateLayout),
	}
}
