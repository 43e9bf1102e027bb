package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/dental-clinic/internal/infra/repository"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
	"github.com/BruksfildServices01/dental-clinic/internal/notify"
)

var (
	ctxBG = context.Background()
	clock = func() time.Time { return time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC) }
	may1  = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	may2  = time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	staff = Actor{UserID: 1, Role: models.RoleStaff}
)

const (
	branchID       uint = 1
	otherBranchID  uint = 2
	slot9          uint = 3
	slot930        uint = 4
	otherSlot      uint = 5
	serviceID      uint = 10
	retiredService uint = 11
	patientID      uint = 20
	doctorHere     uint = 30
	doctorThere    uint = 31
	doctorAny      uint = 32
	gauze          uint = 40
	anesthetic     uint = 41
	otherStock     uint = 42
)

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []notify.Kind
}

func (n *recordingNotifier) Notify(kind notify.Kind, _ *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
}

func (n *recordingNotifier) sent() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Kind(nil), n.kinds...)
}

type clinic struct {
	repo     *repository.AppointmentMemoryRepository
	notifier *recordingNotifier

	create         *CreateAppointment
	accept         *AcceptAppointment
	reject         *RejectAppointment
	cancel         *CancelAppointment
	request        *RequestReschedule
	approve        *ApproveReschedule
	rejectProposal *RejectReschedule
	complete       *CompleteAppointment
	list           *ListAppointmentsByDate
	ledger         *GetLedger
	allocator      *SlotAllocator
}

func newClinic(t *testing.T) *clinic {
	t.Helper()

	repo := repository.NewAppointmentMemoryRepository()
	repo.AddBranch(models.Branch{ID: branchID, Name: "Centro", Timezone: "UTC"})
	repo.AddBranch(models.Branch{ID: otherBranchID, Name: "Norte", Timezone: "America/Sao_Paulo"})
	repo.AddTimeSlot(models.TimeSlot{ID: slot9, BranchID: branchID, StartTime: "09:00", EndTime: "09:30"})
	repo.AddTimeSlot(models.TimeSlot{ID: slot930, BranchID: branchID, StartTime: "09:30", EndTime: "10:00"})
	repo.AddTimeSlot(models.TimeSlot{ID: otherSlot, BranchID: otherBranchID, StartTime: "14:00", EndTime: "14:30"})
	repo.AddService(models.Service{ID: serviceID, Name: "Cleaning", DurationMin: 30, Active: true})
	repo.AddService(models.Service{ID: retiredService, Name: "Whitening", DurationMin: 60})
	repo.AddPatient(models.Patient{ID: patientID, Name: "Ana Souza", Email: "ana@example.com"})

	here, there := branchID, otherBranchID
	repo.AddDoctor(models.Doctor{ID: doctorHere, Name: "Dr. Lima", BranchID: &here})
	repo.AddDoctor(models.Doctor{ID: doctorThere, Name: "Dr. Costa", BranchID: &there})
	repo.AddDoctor(models.Doctor{ID: doctorAny, Name: "Dr. Reis"})

	repo.AddInventoryItem(models.InventoryItem{ID: gauze, BranchID: branchID, Name: "Gauze", Quantity: 10, UnitPrice: decimal.RequireFromString("2.50")})
	repo.AddInventoryItem(models.InventoryItem{ID: anesthetic, BranchID: branchID, Name: "Anesthetic", Quantity: 3, UnitPrice: decimal.RequireFromString("12.00")})
	repo.AddInventoryItem(models.InventoryItem{ID: otherStock, BranchID: otherBranchID, Name: "Gauze", Quantity: 50, UnitPrice: decimal.RequireFromString("2.50")})

	n := &recordingNotifier{}
	d := Deps{Repo: repo, Notifier: n, Clock: clock}

	return &clinic{
		repo:           repo,
		notifier:       n,
		create:         NewCreateAppointment(d),
		accept:         NewAcceptAppointment(d),
		reject:         NewRejectAppointment(d),
		cancel:         NewCancelAppointment(d),
		request:        NewRequestReschedule(d),
		approve:        NewApproveReschedule(d),
		rejectProposal: NewRejectReschedule(d),
		complete:       NewCompleteAppointment(d),
		list:           NewListAppointmentsByDate(repo, nil),
		ledger:         NewGetLedger(repo),
		allocator:      NewSlotAllocator(repo, nil),
	}
}

func booking(slotID uint, date time.Time) CreateInput {
	return CreateInput{
		BranchID:  branchID,
		SlotID:    slotID,
		Date:      date,
		ServiceID: serviceID,
		PatientID: patientID,
		Type:      "consultation",
	}
}

func (c *clinic) mustCreate(t *testing.T, slotID uint, date time.Time) *models.Appointment {
	t.Helper()
	ap, err := c.create.Execute(ctxBG, staff, booking(slotID, date))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return ap
}

func (c *clinic) mustAccept(t *testing.T, slotID uint, date time.Time) *models.Appointment {
	t.Helper()
	ap := c.mustCreate(t, slotID, date)
	ap, err := c.accept.Execute(ctxBG, staff, ap.ID, nil)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	return ap
}

func slotIDs(slots []models.TimeSlot) []uint {
	out := make([]uint, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.ID)
	}
	return out
}
