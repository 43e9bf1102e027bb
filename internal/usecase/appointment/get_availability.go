package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

// SlotAllocator answers availability questions. It is a pure query: past
// dates are allowed here and refused by the callers that book.
type SlotAllocator struct {
	repo    domain.Repository
	catalog domain.Catalog
}

func NewSlotAllocator(repo domain.Repository, catalog domain.Catalog) *SlotAllocator {
	if catalog == nil {
		catalog = repo
	}
	return &SlotAllocator{repo: repo, catalog: catalog}
}

func (a *SlotAllocator) FindFreeSlots(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]models.TimeSlot, error) {

	if err := domain.ValidateDate(in.Date); err != nil {
		return nil, err
	}

	if _, err := a.catalog.GetBranch(ctx, in.BranchID); err != nil {
		return nil, err
	}

	slots, err := a.catalog.ListTimeSlots(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}

	booked, err := a.repo.ListLiveAppointments(ctx, in.BranchID, in.Date)
	if err != nil {
		return nil, err
	}

	return domain.FreeSlots(slots, booked, nil), nil
}

// IsFree reports whether slotID is unoccupied on (branch, date), ignoring
// the appointment excluding when set. An unknown slot is NotFound.
func (a *SlotAllocator) IsFree(
	ctx context.Context,
	branchID uint,
	date time.Time,
	slotID uint,
	excluding *uint,
) (bool, error) {

	if err := domain.ValidateDate(date); err != nil {
		return false, err
	}

	if _, err := a.catalog.GetBranch(ctx, branchID); err != nil {
		return false, err
	}

	if _, err := a.repo.GetTimeSlot(ctx, branchID, slotID); err != nil {
		return false, err
	}

	booked, err := a.repo.ListLiveAppointments(ctx, branchID, date)
	if err != nil {
		return false, err
	}

	for _, ap := range booked {
		if excluding != nil && ap.ID == *excluding {
			continue
		}
		if ap.SlotID == slotID && domain.Status(ap.Status).Occupies() {
			return false, nil
		}
	}
	return true, nil
}
