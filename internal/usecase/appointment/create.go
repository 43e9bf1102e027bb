package appointment

import (
	"context"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

type CreateInput struct {
	BranchID  uint
	SlotID    uint
	Date      time.Time
	ServiceID uint
	PatientID uint
	DoctorID  *uint
	Type      string
}

type CreateAppointment struct {
	base
	allocator *SlotAllocator
}

func NewCreateAppointment(d Deps) *CreateAppointment {
	b := newBase(d)
	return &CreateAppointment{
		base:      b,
		allocator: NewSlotAllocator(b.Repo, b.Catalog),
	}
}

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	actor Actor,
	in CreateInput,
) (ap *models.Appointment, err error) {

	defer func() {
		var id uint
		if ap != nil {
			id = ap.ID
		}
		uc.observe(domain.EventCreate, id, err)
	}()

	if err := domain.ValidateDate(in.Date); err != nil {
		return nil, err
	}

	branch, err := uc.Catalog.GetBranch(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}

	if err := uc.notPast(in.Date, branch.Timezone); err != nil {
		return nil, err
	}

	service, err := uc.Repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.Active {
		return nil, &domain.ValidationError{Field: "service_id", Reason: "service is not offered"}
	}
	if _, err := uc.Repo.GetPatient(ctx, in.PatientID); err != nil {
		return nil, err
	}
	if in.DoctorID != nil {
		if _, err := uc.Repo.GetDoctorForBranch(ctx, *in.DoctorID, in.BranchID); err != nil {
			return nil, err
		}
	}

	// pre-check only; the store decides under concurrency
	free, err := uc.allocator.IsFree(ctx, in.BranchID, in.Date, in.SlotID, nil)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, &domain.SlotUnavailableError{BranchID: in.BranchID, SlotID: in.SlotID, Date: in.Date}
	}

	row := &models.Appointment{
		Date:      in.Date,
		SlotID:    in.SlotID,
		BranchID:  in.BranchID,
		DoctorID:  in.DoctorID,
		ServiceID: in.ServiceID,
		PatientID: in.PatientID,
		Status:    string(domain.InitialStatus()),
		Type:      strings.TrimSpace(in.Type),
	}

	created, err := uc.Repo.CreateAppointment(ctx, row)
	if err != nil {
		return nil, err
	}

	uc.audit(actor, created, "appointment_created", map[string]any{
		"slot_id": created.SlotID,
		"date":    created.Date.Format(domain.DateLayout),
	})

	return created, nil
}
