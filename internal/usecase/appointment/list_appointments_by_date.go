package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/dto"
)

type ListAppointmentsByDate struct {
	repo    domain.Repository
	catalog domain.Catalog
}

func NewListAppointmentsByDate(
	repo domain.Repository,
	catalog domain.Catalog,
) *ListAppointmentsByDate {
	if catalog == nil {
		catalog = repo
	}
	return &ListAppointmentsByDate{
		repo:    repo,
		catalog: catalog,
	}
}

// Execute lists one branch day ordered by slot start, optionally
// restricted to a single status.
func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	branchID uint,
	date time.Time,
	status *domain.Status,
) ([]dto.AppointmentListDTO, error) {

	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown status"}
	}

	if _, err := uc.catalog.GetBranch(ctx, branchID); err != nil {
		return nil, err
	}

	appointments, err := uc.repo.ListAppointmentsForDay(ctx, branchID, date, status)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		row := dto.AppointmentListDTO{
			ID:          ap.ID,
			Date:        ap.Date.Format(domain.DateLayout),
			SlotID:      ap.SlotID,
			StartTime:   ap.Slot.StartTime,
			EndTime:     ap.Slot.EndTime,
			Status:      ap.Status,
			Type:        ap.Type,
			PatientName: ap.Patient.Name,
			ServiceName: ap.Service.Name,
		}
		if ap.Doctor != nil {
			row.DoctorName = ap.Doctor.Name
		}
		_, row.ReschedulePending = domain.ProposalOf(&ap)
		out = append(out, row)
	}

	return out, nil
}
