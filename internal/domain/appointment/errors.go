package appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/BruksfildServices01/dental-clinic/internal/httperr"
)

const (
	CodeNotFound              = "not_found"
	CodeInvalidRequest        = "invalid_request"
	CodeInvalidTransition     = "invalid_transition"
	CodeSlotUnavailable       = "slot_unavailable"
	CodeSlotNoLongerAvailable = "slot_no_longer_available"
	CodeInsufficientInventory = "insufficient_inventory"
	CodeStoreUnavailable      = "store_unavailable"
)

var (
	ErrNotFound              = httperr.ErrBusiness(CodeNotFound)
	ErrInvalidRequest        = httperr.ErrBusiness(CodeInvalidRequest)
	ErrInvalidTransition     = httperr.ErrBusiness(CodeInvalidTransition)
	ErrSlotUnavailable       = httperr.ErrBusiness(CodeSlotUnavailable)
	ErrSlotNoLongerAvailable = httperr.ErrBusiness(CodeSlotNoLongerAvailable)
	ErrInsufficientInventory = httperr.ErrBusiness(CodeInsufficientInventory)
	ErrStoreUnavailable      = httperr.ErrBusiness(CodeStoreUnavailable)
)

// --------------------------------------------------
// NotFound
// --------------------------------------------------

type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func (e *NotFoundError) Details() map[string]any {
	return map[string]any{"entity": e.Entity, "id": e.ID}
}

// --------------------------------------------------
// Validation
// --------------------------------------------------

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

func (e *ValidationError) Details() map[string]any {
	return map[string]any{"field": e.Field, "reason": e.Reason}
}

// --------------------------------------------------
// InvalidTransition
// --------------------------------------------------

type InvalidTransitionError struct {
	From  Status
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an appointment in status %s", e.Event, e.From)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

func (e *InvalidTransitionError) Details() map[string]any {
	return map[string]any{"status": string(e.From), "event": string(e.Event)}
}

// --------------------------------------------------
// Slot conflicts
// --------------------------------------------------

type SlotUnavailableError struct {
	BranchID uint
	SlotID   uint
	Date     time.Time
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %d at branch %d on %s is taken", e.SlotID, e.BranchID, e.Date.Format(DateLayout))
}

func (e *SlotUnavailableError) Unwrap() error { return ErrSlotUnavailable }

func (e *SlotUnavailableError) Details() map[string]any {
	return slotDetails(e.BranchID, e.SlotID, e.Date)
}

// SlotNoLongerAvailableError is the commit-time counterpart of
// SlotUnavailableError, raised when approving a reschedule.
type SlotNoLongerAvailableError struct {
	BranchID uint
	SlotID   uint
	Date     time.Time
}

func (e *SlotNoLongerAvailableError) Error() string {
	return fmt.Sprintf("slot %d at branch %d on %s was taken before approval", e.SlotID, e.BranchID, e.Date.Format(DateLayout))
}

func (e *SlotNoLongerAvailableError) Unwrap() error { return ErrSlotNoLongerAvailable }

func (e *SlotNoLongerAvailableError) Details() map[string]any {
	return slotDetails(e.BranchID, e.SlotID, e.Date)
}

func slotDetails(branchID, slotID uint, date time.Time) map[string]any {
	return map[string]any{
		"branch_id": branchID,
		"slot_id":   slotID,
		"date":      date.Format(DateLayout),
	}
}

// --------------------------------------------------
// Inventory
// --------------------------------------------------

type InsufficientInventoryError struct {
	ItemID    uint
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("inventory item %d has %d on hand, %d requested", e.ItemID, e.Available, e.Requested)
}

func (e *InsufficientInventoryError) Unwrap() error { return ErrInsufficientInventory }

func (e *InsufficientInventoryError) Details() map[string]any {
	return map[string]any{
		"item_id":   e.ItemID,
		"requested": e.Requested,
		"available": e.Available,
	}
}

// --------------------------------------------------
// Store
// --------------------------------------------------

type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the driver error.
func (e *StoreUnavailableError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }

// IsRetryable is true only for transient store failures; every other
// error describes a request that will fail the same way again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
