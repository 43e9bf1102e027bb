package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
	"github.com/BruksfildServices01/dental-clinic/internal/notify"
)

// ======================================================
// Accept
// ======================================================

type AcceptAppointment struct {
	base
}

func NewAcceptAppointment(d Deps) *AcceptAppointment {
	return &AcceptAppointment{base: newBase(d)}
}

// Execute accepts a pending appointment, assigning doctorID when given.
// The doctor must work at the appointment's branch or at no branch.
func (uc *AcceptAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
	doctorID *uint,
) (out *models.Appointment, err error) {

	defer func() { uc.observe(domain.EventAccept, appointmentID, err) }()

	ap, err := uc.Repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.CanApply(domain.Status(ap.Status), domain.EventAccept); err != nil {
		return nil, err
	}

	if doctorID != nil {
		if _, err := uc.Repo.GetDoctorForBranch(ctx, *doctorID, ap.BranchID); err != nil {
			return nil, err
		}
	}

	from := domain.Status(ap.Status)
	if err := domain.Accept(ap, doctorID, uc.now(ap.Branch.Timezone)); err != nil {
		return nil, err
	}

	out, err = uc.commit(ctx, ap, from, domain.EventAccept)
	if err != nil {
		return nil, err
	}

	uc.audit(actor, out, "appointment_accepted", map[string]any{"doctor_id": out.DoctorID})
	return out, nil
}

// ======================================================
// Reject
// ======================================================

type RejectAppointment struct {
	base
}

func NewRejectAppointment(d Deps) *RejectAppointment {
	return &RejectAppointment{base: newBase(d)}
}

func (uc *RejectAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
) (out *models.Appointment, err error) {

	defer func() { uc.observe(domain.EventReject, appointmentID, err) }()

	ap, err := uc.Repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	from := domain.Status(ap.Status)
	if err := domain.Reject(ap, uc.now(ap.Branch.Timezone)); err != nil {
		return nil, err
	}

	out, err = uc.commit(ctx, ap, from, domain.EventReject)
	if err != nil {
		return nil, err
	}

	uc.audit(actor, out, "appointment_rejected", nil)
	uc.notify(notify.KindRejected, out)
	return out, nil
}

// ======================================================
// Cancel
// ======================================================

type CancelAppointment struct {
	base
}

func NewCancelAppointment(d Deps) *CancelAppointment {
	return &CancelAppointment{base: newBase(d)}
}

// Execute cancels a pending or accepted appointment, discarding any
// outstanding reschedule proposal. The slot is released.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
) (out *models.Appointment, err error) {

	defer func() { uc.observe(domain.EventCancel, appointmentID, err) }()

	ap, err := uc.Repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	from := domain.Status(ap.Status)
	if err := domain.Cancel(ap, uc.now(ap.Branch.Timezone)); err != nil {
		return nil, err
	}

	out, err = uc.commit(ctx, ap, from, domain.EventCancel)
	if err != nil {
		return nil, err
	}

	uc.audit(actor, out, "appointment_canceled", map[string]any{"previous_status": from})
	uc.notify(notify.KindCanceled, out)
	return out, nil
}

// commit persists ap with a status compare-and-set. The returned row is
// read back inside the same write, so an error always means nothing changed.
func (b base) commit(
	ctx context.Context,
	ap *models.Appointment,
	from domain.Status,
	ev domain.Event,
) (*models.Appointment, error) {

	return b.Repo.SaveTransition(ctx, ap, from, ev)
}
