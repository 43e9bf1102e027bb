package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
)

type CompleteInput struct {
	Treatments []domain.TreatmentInput
	Items      []domain.UsageInput
}

type CompleteAppointment struct {
	base
}

func NewCompleteAppointment(d Deps) *CompleteAppointment {
	return &CompleteAppointment{base: newBase(d)}
}

// Execute completes an accepted appointment through the ledger: inventory
// is consumed, treatment and usage records are written and the status
// flips, all or nothing.
func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
	in CompleteInput,
) (res *domain.CompletionResult, err error) {

	defer func() { uc.observe(domain.EventComplete, appointmentID, err) }()

	ap, err := uc.Repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	plan, err := domain.BuildCompletionPlan(ap, in.Treatments, in.Items, uc.now(ap.Branch.Timezone))
	if err != nil {
		return nil, err
	}

	started := time.Now()
	res, err = uc.Repo.CompleteWithLedger(ctx, plan)
	if err != nil {
		return nil, err
	}
	uc.Metrics.ObserveCompletion(time.Since(started))

	items := make([]map[string]any, 0, len(res.Usages))
	for _, u := range res.Usages {
		items = append(items, map[string]any{
			"item_id":    u.InventoryItemID,
			"quantity":   u.Quantity,
			"unit_price": u.UnitPrice.StringFixed(2),
		})
	}
	uc.audit(actor, res.Appointment, "appointment_completed", map[string]any{
		"treatments": len(res.Treatments),
		"items":      items,
	})

	return res, nil
}
