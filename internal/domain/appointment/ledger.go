package appointment

import (
	"sort"
	"strings"
	"time"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

type TreatmentInput struct {
	ToothNumber int
	Procedure   string
}

type UsageInput struct {
	ItemID   uint
	Quantity int
}

// CompletionPlan is the validated input of the ledger transaction.
// Usages hold one entry per item, ordered by item id.
type CompletionPlan struct {
	AppointmentID uint
	BranchID      uint
	Treatments    []TreatmentInput
	Usages        []UsageInput
	CompletedAt   time.Time
}

type CompletionResult struct {
	Appointment *models.Appointment
	Treatments  []models.TreatmentEntry
	Usages      []models.ItemUsage
}

// ValidTooth accepts permanent teeth in Universal numbering (1-32) and
// deciduous teeth in FDI notation (51-55, 61-65, 71-75, 81-85).
func ValidTooth(n int) bool {
	if n >= 1 && n <= 32 {
		return true
	}
	quadrant, unit := n/10, n%10
	return quadrant >= 5 && quadrant <= 8 && unit >= 1 && unit <= 5
}

// BuildCompletionPlan validates the completion payload against ap without
// touching any state. Repeated items are merged.
func BuildCompletionPlan(
	ap *models.Appointment,
	treatments []TreatmentInput,
	usages []UsageInput,
	now time.Time,
) (CompletionPlan, error) {

	if err := CanApply(Status(ap.Status), EventComplete); err != nil {
		return CompletionPlan{}, err
	}

	cleaned := make([]TreatmentInput, 0, len(treatments))
	for _, t := range treatments {
		if !ValidTooth(t.ToothNumber) {
			return CompletionPlan{}, &ValidationError{Field: "tooth_number", Reason: "unknown tooth"}
		}
		label := strings.TrimSpace(t.Procedure)
		if label == "" {
			return CompletionPlan{}, &ValidationError{Field: "procedure", Reason: "required"}
		}
		cleaned = append(cleaned, TreatmentInput{ToothNumber: t.ToothNumber, Procedure: label})
	}

	byItem := make(map[uint]int, len(usages))
	for _, u := range usages {
		if u.ItemID == 0 {
			return CompletionPlan{}, &ValidationError{Field: "item_id", Reason: "required"}
		}
		if u.Quantity <= 0 {
			return CompletionPlan{}, &ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		byItem[u.ItemID] += u.Quantity
	}

	merged := make([]UsageInput, 0, len(byItem))
	for id, qty := range byItem {
		merged = append(merged, UsageInput{ItemID: id, Quantity: qty})
	}
	// fixed lock order across concurrent completions
	sort.Slice(merged, func(i, j int) bool { return merged[i].ItemID < merged[j].ItemID })

	return CompletionPlan{
		AppointmentID: ap.ID,
		BranchID:      ap.BranchID,
		Treatments:    cleaned,
		Usages:        merged,
		CompletedAt:   now,
	}, nil
}
