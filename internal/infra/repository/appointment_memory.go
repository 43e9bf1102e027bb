package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

var errMemoryOffline = errors.New("memory store offline")

// AppointmentMemoryRepository keeps every table in maps behind one mutex.
// Each exported method is atomic, which gives it the same guarantees the
// partial unique index and the ledger transaction give the gorm store.
type AppointmentMemoryRepository struct {
	mu sync.Mutex

	branches     map[uint]models.Branch
	slots        map[uint]models.TimeSlot
	services     map[uint]models.Service
	patients     map[uint]models.Patient
	doctors      map[uint]models.Doctor
	items        map[uint]models.InventoryItem
	appointments map[uint]models.Appointment
	treatments   []models.TreatmentEntry
	usages       []models.ItemUsage

	nextID  uint
	offline bool
}

func NewAppointmentMemoryRepository() *AppointmentMemoryRepository {
	return &AppointmentMemoryRepository{
		branches:     map[uint]models.Branch{},
		slots:        map[uint]models.TimeSlot{},
		services:     map[uint]models.Service{},
		patients:     map[uint]models.Patient{},
		doctors:      map[uint]models.Doctor{},
		items:        map[uint]models.InventoryItem{},
		appointments: map[uint]models.Appointment{},
	}
}

// --------------------------------------------------
// Seeding
// --------------------------------------------------

func (r *AppointmentMemoryRepository) id(given uint) uint {
	if given != 0 {
		if given > r.nextID {
			r.nextID = given
		}
		return given
	}
	r.nextID++
	return r.nextID
}

func (r *AppointmentMemoryRepository) AddBranch(b models.Branch) models.Branch {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.id(b.ID)
	r.branches[b.ID] = b
	return b
}

func (r *AppointmentMemoryRepository) AddTimeSlot(s models.TimeSlot) models.TimeSlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.id(s.ID)
	r.slots[s.ID] = s
	return s
}

func (r *AppointmentMemoryRepository) AddService(s models.Service) models.Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.id(s.ID)
	r.services[s.ID] = s
	return s
}

func (r *AppointmentMemoryRepository) AddPatient(p models.Patient) models.Patient {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.id(p.ID)
	r.patients[p.ID] = p
	return p
}

func (r *AppointmentMemoryRepository) AddDoctor(d models.Doctor) models.Doctor {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = r.id(d.ID)
	r.doctors[d.ID] = d
	return d
}

func (r *AppointmentMemoryRepository) AddInventoryItem(it models.InventoryItem) models.InventoryItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	it.ID = r.id(it.ID)
	r.items[it.ID] = it
	return it
}

// InventoryQuantity reports the stock of an item, -1 when unknown.
func (r *AppointmentMemoryRepository) InventoryQuantity(itemID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok {
		return -1
	}
	return it.Quantity
}

// SetOffline makes every call fail with StoreUnavailableError.
func (r *AppointmentMemoryRepository) SetOffline(offline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offline = offline
}

func (r *AppointmentMemoryRepository) guard(op string) error {
	if r.offline {
		return &domain.StoreUnavailableError{Op: op, Err: errMemoryOffline}
	}
	return nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentMemoryRepository) GetBranch(_ context.Context, id uint) (*models.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("get branch"); err != nil {
		return nil, err
	}

	b, ok := r.branches[id]
	if !ok || b.DeletedAt.Valid {
		return nil, &domain.NotFoundError{Entity: "branch", ID: id}
	}
	return &b, nil
}

func (r *AppointmentMemoryRepository) ListTimeSlots(_ context.Context, branchID uint) ([]models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("list time slots"); err != nil {
		return nil, err
	}

	var out []models.TimeSlot
	for _, s := range r.slots {
		if s.BranchID == branchID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime == out[j].StartTime {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *AppointmentMemoryRepository) GetTimeSlot(_ context.Context, branchID, slotID uint) (*models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("get time slot"); err != nil {
		return nil, err
	}

	s, ok := r.slots[slotID]
	if !ok || s.BranchID != branchID {
		return nil, &domain.NotFoundError{Entity: "time_slot", ID: slotID}
	}
	return &s, nil
}

func (r *AppointmentMemoryRepository) GetService(_ context.Context, id uint) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("get service"); err != nil {
		return nil, err
	}

	s, ok := r.services[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "service", ID: id}
	}
	return &s, nil
}

func (r *AppointmentMemoryRepository) GetPatient(_ context.Context, id uint) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("get patient"); err != nil {
		return nil, err
	}

	p, ok := r.patients[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "patient", ID: id}
	}
	return &p, nil
}

func (r *AppointmentMemoryRepository) GetDoctorForBranch(_ context.Context, doctorID, branchID uint) (*models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("get doctor"); err != nil {
		return nil, err
	}

	d, ok := r.doctors[doctorID]
	if !ok || (d.BranchID != nil && *d.BranchID != branchID) {
		return nil, &domain.NotFoundError{Entity: "doctor", ID: doctorID}
	}
	return &d, nil
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

func (r *AppointmentMemoryRepository) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("get appointment"); err != nil {
		return nil, err
	}

	ap, ok := r.appointments[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "appointment", ID: id}
	}
	return r.resolve(ap), nil
}

func (r *AppointmentMemoryRepository) ListLiveAppointments(_ context.Context, branchID uint, date time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("list live appointments"); err != nil {
		return nil, err
	}

	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.BranchID == branchID && ap.Date.Equal(date) && domain.Status(ap.Status).Occupies() {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AppointmentMemoryRepository) ListAppointmentsForDay(
	_ context.Context,
	branchID uint,
	date time.Time,
	status *domain.Status,
) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("list appointments"); err != nil {
		return nil, err
	}

	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.BranchID != branchID || !ap.Date.Equal(date) {
			continue
		}
		if status != nil && ap.Status != string(*status) {
			continue
		}
		out = append(out, *r.resolve(ap))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Slot.StartTime == out[j].Slot.StartTime {
			return out[i].ID < out[j].ID
		}
		return out[i].Slot.StartTime < out[j].Slot.StartTime
	})
	return out, nil
}

// --------------------------------------------------
// Appointment (write)
// --------------------------------------------------

func (r *AppointmentMemoryRepository) CreateAppointment(_ context.Context, ap *models.Appointment) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("create appointment"); err != nil {
		return nil, err
	}

	if r.slotTaken(ap.BranchID, ap.SlotID, ap.Date, 0) {
		return nil, &domain.SlotUnavailableError{BranchID: ap.BranchID, SlotID: ap.SlotID, Date: ap.Date}
	}

	now := time.Now().UTC()
	ap.ID = r.id(0)
	ap.CreatedAt = now
	ap.UpdatedAt = now
	r.appointments[ap.ID] = strip(*ap)
	return r.resolve(r.appointments[ap.ID]), nil
}

func (r *AppointmentMemoryRepository) SaveTransition(
	_ context.Context,
	ap *models.Appointment,
	from domain.Status,
	ev domain.Event,
) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("save transition"); err != nil {
		return nil, err
	}

	stored, ok := r.appointments[ap.ID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "appointment", ID: ap.ID}
	}
	_, pending := domain.ProposalOf(&stored)
	stale := stored.Status != string(from)
	switch ev {
	case domain.EventRequestReschedule:
		stale = stale || pending
	case domain.EventApproveReschedule, domain.EventRejectReschedule:
		stale = stale || !pending
	}
	if stale {
		return nil, &domain.InvalidTransitionError{From: domain.Status(stored.Status), Event: ev}
	}

	stored.Status = ap.Status
	stored.DoctorID = ap.DoctorID
	stored.RescheduleDate = ap.RescheduleDate
	stored.RescheduleSlotID = ap.RescheduleSlotID
	stored.RescheduleBranchID = ap.RescheduleBranchID
	stored.RescheduleRequestedAt = ap.RescheduleRequestedAt
	stored.AcceptedAt = ap.AcceptedAt
	stored.RejectedAt = ap.RejectedAt
	stored.CanceledAt = ap.CanceledAt
	stored.CompletedAt = ap.CompletedAt
	stored.UpdatedAt = time.Now().UTC()

	r.appointments[ap.ID] = stored
	return r.resolve(stored), nil
}

func (r *AppointmentMemoryRepository) ApplyReschedule(
	_ context.Context,
	appointmentID uint,
	p domain.Proposal,
) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("apply reschedule"); err != nil {
		return nil, err
	}

	ap, ok := r.appointments[appointmentID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "appointment", ID: appointmentID}
	}

	current, pending := domain.ProposalOf(&ap)
	if ap.Status != string(domain.StatusAccepted) || !pending || !sameProposal(current, p) {
		return nil, &domain.InvalidTransitionError{
			From:  domain.Status(ap.Status),
			Event: domain.EventApproveReschedule,
		}
	}

	if r.slotTaken(p.BranchID, p.SlotID, p.Date, ap.ID) {
		return nil, &domain.SlotNoLongerAvailableError{BranchID: p.BranchID, SlotID: p.SlotID, Date: p.Date}
	}

	if _, err := domain.ApproveReschedule(&ap); err != nil {
		return nil, err
	}
	ap.UpdatedAt = time.Now().UTC()
	r.appointments[ap.ID] = ap

	return r.resolve(ap), nil
}

// --------------------------------------------------
// Ledger
// --------------------------------------------------

func (r *AppointmentMemoryRepository) CompleteWithLedger(
	_ context.Context,
	plan domain.CompletionPlan,
) (*domain.CompletionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("complete appointment"); err != nil {
		return nil, err
	}

	ap, ok := r.appointments[plan.AppointmentID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "appointment", ID: plan.AppointmentID}
	}
	if err := domain.Complete(&ap, plan.CompletedAt); err != nil {
		return nil, err
	}

	// validate every line before touching anything
	for _, u := range plan.Usages {
		it, ok := r.items[u.ItemID]
		if !ok || it.BranchID != plan.BranchID || it.DeletedAt.Valid {
			return nil, &domain.NotFoundError{Entity: "inventory_item", ID: u.ItemID}
		}
		if it.Quantity < u.Quantity {
			return nil, &domain.InsufficientInventoryError{
				ItemID:    u.ItemID,
				Requested: u.Quantity,
				Available: it.Quantity,
			}
		}
	}

	result := &domain.CompletionResult{}

	for _, u := range plan.Usages {
		it := r.items[u.ItemID]
		it.Quantity -= u.Quantity
		r.items[u.ItemID] = it

		usage := models.ItemUsage{
			ID:              r.id(0),
			AppointmentID:   ap.ID,
			InventoryItemID: it.ID,
			Quantity:        u.Quantity,
			UnitPrice:       it.UnitPrice,
			CreatedAt:       plan.CompletedAt,
		}
		r.usages = append(r.usages, usage)
		result.Usages = append(result.Usages, usage)
	}

	for _, t := range plan.Treatments {
		entry := models.TreatmentEntry{
			ID:            r.id(0),
			AppointmentID: ap.ID,
			ToothNumber:   t.ToothNumber,
			Procedure:     t.Procedure,
			CreatedAt:     plan.CompletedAt,
		}
		r.treatments = append(r.treatments, entry)
		result.Treatments = append(result.Treatments, entry)
	}

	ap.UpdatedAt = time.Now().UTC()
	r.appointments[ap.ID] = ap
	result.Appointment = r.resolve(ap)

	return result, nil
}

func (r *AppointmentMemoryRepository) ListTreatmentEntries(_ context.Context, appointmentID uint) ([]models.TreatmentEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("list treatments"); err != nil {
		return nil, err
	}

	var out []models.TreatmentEntry
	for _, e := range r.treatments {
		if e.AppointmentID == appointmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *AppointmentMemoryRepository) ListItemUsages(_ context.Context, appointmentID uint) ([]models.ItemUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.guard("list item usages"); err != nil {
		return nil, err
	}

	var out []models.ItemUsage
	for _, u := range r.usages {
		if u.AppointmentID != appointmentID {
			continue
		}
		if it, ok := r.items[u.InventoryItemID]; ok {
			u.InventoryItem = &it
		}
		out = append(out, u)
	}
	return out, nil
}

// --------------------------------------------------
// Helpers (callers hold mu)
// --------------------------------------------------

func (r *AppointmentMemoryRepository) slotTaken(branchID, slotID uint, date time.Time, except uint) bool {
	for _, other := range r.appointments {
		if other.ID == except {
			continue
		}
		if other.BranchID == branchID &&
			other.SlotID == slotID &&
			other.Date.Equal(date) &&
			domain.Status(other.Status).Occupies() {
			return true
		}
	}
	return false
}

// resolve returns a copy with its references filled in.
func (r *AppointmentMemoryRepository) resolve(ap models.Appointment) *models.Appointment {
	out := ap
	out.Slot = r.slots[ap.SlotID]
	out.Branch = r.branches[ap.BranchID]
	out.Service = r.services[ap.ServiceID]
	out.Patient = r.patients[ap.PatientID]
	if ap.DoctorID != nil {
		if d, ok := r.doctors[*ap.DoctorID]; ok {
			out.Doctor = &d
		}
	}
	return &out
}

// strip drops references so stored rows only carry their own columns.
func strip(ap models.Appointment) models.Appointment {
	ap.Slot = models.TimeSlot{}
	ap.Branch = models.Branch{}
	ap.Service = models.Service{}
	ap.Patient = models.Patient{}
	ap.Doctor = nil
	ap.Treatments = nil
	ap.ItemUsages = nil
	return ap
}

var _ domain.Repository = (*AppointmentMemoryRepository)(nil)
