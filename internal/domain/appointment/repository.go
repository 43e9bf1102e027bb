package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

// Catalog is the read-only reference data the allocator depends on.
type Catalog interface {
	GetBranch(ctx context.Context, id uint) (*models.Branch, error)
	ListTimeSlots(ctx context.Context, branchID uint) ([]models.TimeSlot, error)
}

// Repository returns the typed errors of this package: NotFoundError for
// unknown ids, StoreUnavailableError for I/O failures.
type Repository interface {
	Catalog

	// -------- Catalog --------
	GetTimeSlot(
		ctx context.Context,
		branchID uint,
		slotID uint,
	) (*models.TimeSlot, error)

	GetService(ctx context.Context, id uint) (*models.Service, error)

	GetPatient(ctx context.Context, id uint) (*models.Patient, error)

	// GetDoctorForBranch finds a doctor assigned to branchID or to no branch.
	GetDoctorForBranch(
		ctx context.Context,
		doctorID uint,
		branchID uint,
	) (*models.Doctor, error)

	// -------- Appointment (read) --------
	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	// ListLiveAppointments returns the appointments of (branch, date)
	// that still occupy their slot.
	ListLiveAppointments(
		ctx context.Context,
		branchID uint,
		date time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForDay(
		ctx context.Context,
		branchID uint,
		date time.Time,
		status *Status,
	) ([]models.Appointment, error)

	// -------- Appointment (write) --------

	// CreateAppointment inserts ap and returns the stored row with its
	// references, read in the same unit as the insert. It fails with
	// SlotUnavailableError when another live appointment holds
	// (branch, slot, date).
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) (*models.Appointment, error)

	// SaveTransition persists status, doctor, proposal and timestamp
	// columns only if the stored status still equals from (and, for the
	// reschedule events, the stored proposal is absent or present as ev
	// requires). Otherwise it reports InvalidTransitionError{stored status, ev}.
	// On success it returns the updated row with its references, read in
	// the same unit as the write; an error means nothing was written.
	SaveTransition(
		ctx context.Context,
		ap *models.Appointment,
		from Status,
		ev Event,
	) (*models.Appointment, error)

	// ApplyReschedule moves an accepted appointment onto p, checking the
	// target slot inside the commit. A conflict is SlotNoLongerAvailableError.
	ApplyReschedule(
		ctx context.Context,
		appointmentID uint,
		p Proposal,
	) (*models.Appointment, error)

	// -------- Ledger --------

	// CompleteWithLedger runs the whole completion as one unit: status
	// check, conditional inventory decrements, treatment and usage inserts,
	// status flip. Nothing is written when any step fails.
	CompleteWithLedger(
		ctx context.Context,
		plan CompletionPlan,
	) (*CompletionResult, error)

	ListTreatmentEntries(
		ctx context.Context,
		appointmentID uint,
	) ([]models.TreatmentEntry, error)

	ListItemUsages(
		ctx context.Context,
		appointmentID uint,
	) ([]models.ItemUsage, error)
}
