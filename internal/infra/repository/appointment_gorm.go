package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/httperr"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

const pgUniqueViolation = "23505"

var releasedStatuses = []string{
	string(domain.StatusCanceled),
	string(domain.StatusRejected),
}

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Error mapping
// --------------------------------------------------

// classify keeps domain errors as they are and turns everything else into
// NotFound (missing row) or StoreUnavailable.
func classify(op, entity string, id uint, err error) error {
	if err == nil {
		return nil
	}
	if httperr.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return &domain.StoreUnavailableError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func withRefs(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Slot").
		Preload("Branch").
		Preload("Doctor").
		Preload("Service").
		Preload("Patient")
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBranch(
	ctx context.Context,
	id uint,
) (*models.Branch, error) {

	var branch models.Branch
	if err := r.db.WithContext(ctx).First(&branch, id).Error; err != nil {
		return nil, classify("get branch", "branch", id, err)
	}
	return &branch, nil
}

func (r *AppointmentGormRepository) ListTimeSlots(
	ctx context.Context,
	branchID uint,
) ([]models.TimeSlot, error) {

	var slots []models.TimeSlot
	if err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, classify("list time slots", "branch", branchID, err)
	}
	return slots, nil
}

func (r *AppointmentGormRepository) GetTimeSlot(
	ctx context.Context,
	branchID uint,
	slotID uint,
) (*models.TimeSlot, error) {

	var slot models.TimeSlot
	if err := r.db.WithContext(ctx).
		Where("id = ? AND branch_id = ?", slotID, branchID).
		First(&slot).Error; err != nil {
		return nil, classify("get time slot", "time_slot", slotID, err)
	}
	return &slot, nil
}

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).First(&service, id).Error; err != nil {
		return nil, classify("get service", "service", id, err)
	}
	return &service, nil
}

func (r *AppointmentGormRepository) GetPatient(
	ctx context.Context,
	id uint,
) (*models.Patient, error) {

	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, id).Error; err != nil {
		return nil, classify("get patient", "patient", id, err)
	}
	return &patient, nil
}

func (r *AppointmentGormRepository) GetDoctorForBranch(
	ctx context.Context,
	doctorID uint,
	branchID uint,
) (*models.Doctor, error) {

	var doctor models.Doctor
	if err := r.db.WithContext(ctx).
		Where("id = ? AND (branch_id IS NULL OR branch_id = ?)", doctorID, branchID).
		First(&doctor).Error; err != nil {
		return nil, classify("get doctor", "doctor", doctorID, err)
	}
	return &doctor, nil
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := withRefs(r.db.WithContext(ctx)).First(&ap, id).Error; err != nil {
		return nil, classify("get appointment", "appointment", id, err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListLiveAppointments(
	ctx context.Context,
	branchID uint,
	date time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "slot_id", "status").
		Where(
			"branch_id = ? AND date = ? AND status NOT IN ?",
			branchID, date, releasedStatuses,
		).
		Find(&apps).Error; err != nil {
		return nil, classify("list live appointments", "branch", branchID, err)
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForDay(
	ctx context.Context,
	branchID uint,
	date time.Time,
	status *domain.Status,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Slot").
		Preload("Doctor").
		Preload("Service").
		Preload("Patient").
		Where("branch_id = ? AND date = ?", branchID, date)

	if status != nil {
		q = q.Where("status = ?", string(*status))
	}

	var apps []models.Appointment
	if err := q.Order("id ASC").Find(&apps).Error; err != nil {
		return nil, classify("list appointments", "branch", branchID, err)
	}

	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].Slot.StartTime < apps[j].Slot.StartTime
	})
	return apps, nil
}

// --------------------------------------------------
// Appointment (write)
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) (*models.Appointment, error) {

	var out models.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(ap).Error; err != nil {
			if isUniqueViolation(err) {
				return &domain.SlotUnavailableError{BranchID: ap.BranchID, SlotID: ap.SlotID, Date: ap.Date}
			}
			return err
		}
		return withRefs(tx).First(&out, ap.ID).Error
	})
	if err != nil {
		return nil, classify("create appointment", "appointment", ap.ID, err)
	}

	return &out, nil
}

func (r *AppointmentGormRepository) SaveTransition(
	ctx context.Context,
	ap *models.Appointment,
	from domain.Status,
	ev domain.Event,
) (*models.Appointment, error) {

	var out models.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Model(&models.Appointment{}).
			Where("id = ? AND status = ?", ap.ID, string(from))

		switch ev {
		case domain.EventRequestReschedule:
			q = q.Where("reschedule_slot_id IS NULL")
		case domain.EventApproveReschedule, domain.EventRejectReschedule:
			q = q.Where("reschedule_slot_id IS NOT NULL")
		}

		res := q.Updates(transitionColumns(ap))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected != 1 {
			// lost the race: report what the row holds now
			var current models.Appointment
			if err := tx.Select("status").First(&current, ap.ID).Error; err != nil {
				return err
			}
			return &domain.InvalidTransitionError{From: domain.Status(current.Status), Event: ev}
		}

		return withRefs(tx).First(&out, ap.ID).Error
	})
	if err != nil {
		return nil, classify("save transition", "appointment", ap.ID, err)
	}

	return &out, nil
}

func (r *AppointmentGormRepository) ApplyReschedule(
	ctx context.Context,
	appointmentID uint,
	p domain.Proposal,
) (*models.Appointment, error) {

	var out models.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var ap models.Appointment
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ap, appointmentID).Error; err != nil {
			return err
		}

		current, ok := domain.ProposalOf(&ap)
		if ap.Status != string(domain.StatusAccepted) || !ok || !sameProposal(current, p) {
			return &domain.InvalidTransitionError{
				From:  domain.Status(ap.Status),
				Event: domain.EventApproveReschedule,
			}
		}

		var taken int64
		if err := tx.
			Model(&models.Appointment{}).
			Where(
				"branch_id = ? AND slot_id = ? AND date = ? AND status NOT IN ? AND id <> ?",
				p.BranchID, p.SlotID, p.Date, releasedStatuses, ap.ID,
			).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return &domain.SlotNoLongerAvailableError{BranchID: p.BranchID, SlotID: p.SlotID, Date: p.Date}
		}

		if _, err := domain.ApproveReschedule(&ap); err != nil {
			return err
		}

		cols := transitionColumns(&ap)
		cols["branch_id"] = ap.BranchID
		cols["slot_id"] = ap.SlotID
		cols["date"] = ap.Date

		if err := tx.
			Model(&models.Appointment{}).
			Where("id = ?", ap.ID).
			Updates(cols).Error; err != nil {
			if isUniqueViolation(err) {
				return &domain.SlotNoLongerAvailableError{BranchID: p.BranchID, SlotID: p.SlotID, Date: p.Date}
			}
			return err
		}

		return withRefs(tx).First(&out, ap.ID).Error
	})
	if err != nil {
		return nil, classify("apply reschedule", "appointment", appointmentID, err)
	}

	return &out, nil
}

// --------------------------------------------------
// Ledger
// --------------------------------------------------

func (r *AppointmentGormRepository) CompleteWithLedger(
	ctx context.Context,
	plan domain.CompletionPlan,
) (*domain.CompletionResult, error) {

	result := &domain.CompletionResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// 1. lock the appointment and re-check its status
		var ap models.Appointment
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ap, plan.AppointmentID).Error; err != nil {
			return err
		}
		if err := domain.Complete(&ap, plan.CompletedAt); err != nil {
			return err
		}

		// 2. consume inventory, one conditional decrement per item
		usages := make([]models.ItemUsage, 0, len(plan.Usages))
		for _, u := range plan.Usages {
			var item models.InventoryItem
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ? AND branch_id = ?", u.ItemID, plan.BranchID).
				First(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &domain.NotFoundError{Entity: "inventory_item", ID: u.ItemID}
				}
				return err
			}

			res := tx.
				Model(&models.InventoryItem{}).
				Where("id = ? AND quantity >= ?", u.ItemID, u.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", u.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &domain.InsufficientInventoryError{
					ItemID:    u.ItemID,
					Requested: u.Quantity,
					Available: item.Quantity,
				}
			}

			usages = append(usages, models.ItemUsage{
				AppointmentID:   ap.ID,
				InventoryItemID: item.ID,
				Quantity:        u.Quantity,
				UnitPrice:       item.UnitPrice,
				CreatedAt:       plan.CompletedAt,
			})
		}

		// 3. append clinical and usage records
		entries := make([]models.TreatmentEntry, 0, len(plan.Treatments))
		for _, t := range plan.Treatments {
			entries = append(entries, models.TreatmentEntry{
				AppointmentID: ap.ID,
				ToothNumber:   t.ToothNumber,
				Procedure:     t.Procedure,
				CreatedAt:     plan.CompletedAt,
			})
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}
		if len(usages) > 0 {
			if err := tx.Omit(clause.Associations).Create(&usages).Error; err != nil {
				return err
			}
		}

		// 4. flip the status
		if err := tx.
			Model(&models.Appointment{}).
			Where("id = ? AND status = ?", ap.ID, string(domain.StatusAccepted)).
			Updates(transitionColumns(&ap)).Error; err != nil {
			return err
		}

		var completed models.Appointment
		if err := withRefs(tx).First(&completed, ap.ID).Error; err != nil {
			return err
		}

		result.Appointment = &completed
		result.Treatments = entries
		result.Usages = usages
		return nil
	})
	if err != nil {
		return nil, classify("complete appointment", "appointment", plan.AppointmentID, err)
	}

	return result, nil
}

func (r *AppointmentGormRepository) ListTreatmentEntries(
	ctx context.Context,
	appointmentID uint,
) ([]models.TreatmentEntry, error) {

	var entries []models.TreatmentEntry
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, classify("list treatments", "appointment", appointmentID, err)
	}
	return entries, nil
}

func (r *AppointmentGormRepository) ListItemUsages(
	ctx context.Context,
	appointmentID uint,
) ([]models.ItemUsage, error) {

	var usages []models.ItemUsage
	if err := r.db.WithContext(ctx).
		Preload("InventoryItem", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("appointment_id = ?", appointmentID).
		Order("id ASC").
		Find(&usages).Error; err != nil {
		return nil, classify("list item usages", "appointment", appointmentID, err)
	}
	return usages, nil
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

// transitionColumns lists what a state transition may change. Nil
// pointers are written as NULL.
func transitionColumns(ap *models.Appointment) map[string]any {
	return map[string]any{
		"status":                  ap.Status,
		"doctor_id":               ap.DoctorID,
		"reschedule_date":         ap.RescheduleDate,
		"reschedule_slot_id":      ap.RescheduleSlotID,
		"reschedule_branch_id":    ap.RescheduleBranchID,
		"reschedule_requested_at": ap.RescheduleRequestedAt,
		"accepted_at":             ap.AcceptedAt,
		"rejected_at":             ap.RejectedAt,
		"canceled_at":             ap.CanceledAt,
		"completed_at":            ap.CompletedAt,
	}
}

func sameProposal(a, b domain.Proposal) bool {
	return a.BranchID == b.BranchID && a.SlotID == b.SlotID && a.Date.Equal(b.Date)
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
