package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(ctx context.Context, id uint) (*models.Appointment, error) {
	return uc.repo.GetAppointment(ctx, id)
}

// Ledger is the clinical and stock record of one appointment.
type Ledger struct {
	AppointmentID uint                    `json:"appointment_id"`
	Status        string                  `json:"status"`
	Treatments    []models.TreatmentEntry `json:"treatments"`
	Items         []models.ItemUsage      `json:"items"`
}

type GetLedger struct {
	repo domain.Repository
}

func NewGetLedger(repo domain.Repository) *GetLedger {
	return &GetLedger{repo: repo}
}

func (uc *GetLedger) Execute(ctx context.Context, appointmentID uint) (*Ledger, error) {
	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	treatments, err := uc.repo.ListTreatmentEntries(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	usages, err := uc.repo.ListItemUsages(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if treatments == nil {
		treatments = []models.TreatmentEntry{}
	}
	if usages == nil {
		usages = []models.ItemUsage{}
	}

	return &Ledger{
		AppointmentID: ap.ID,
		Status:        ap.Status,
		Treatments:    treatments,
		Items:         usages,
	}, nil
}
