package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

func TestValidTooth(t *testing.T) {
	for _, n := range []int{1, 16, 32, 51, 55, 65, 71, 85} {
		assert.True(t, ValidTooth(n), n)
	}
	for _, n := range []int{0, 33, 41, 50, 56, 86, 91, -3} {
		assert.False(t, ValidTooth(n), n)
	}
}

func TestBuildCompletionPlanMergesItems(t *testing.T) {
	ap := accepted()

	plan, err := BuildCompletionPlan(
		ap,
		[]TreatmentInput{{ToothNumber: 14, Procedure: "  filling "}},
		[]UsageInput{{ItemID: 8, Quantity: 2}, {ItemID: 3, Quantity: 1}, {ItemID: 8, Quantity: 1}},
		now,
	)
	require.NoError(t, err)

	assert.Equal(t, ap.ID, plan.AppointmentID)
	assert.Equal(t, ap.BranchID, plan.BranchID)
	assert.Equal(t, "filling", plan.Treatments[0].Procedure)
	assert.Equal(t, []UsageInput{{ItemID: 3, Quantity: 1}, {ItemID: 8, Quantity: 3}}, plan.Usages)
}

func TestBuildCompletionPlanRejections(t *testing.T) {
	tests := []struct {
		name       string
		ap         *models.Appointment
		treatments []TreatmentInput
		usages     []UsageInput
		want       error
	}{
		{
			name: "pending appointment",
			ap:   &models.Appointment{Status: string(StatusPending)},
			want: ErrInvalidTransition,
		},
		{
			name: "canceled appointment",
			ap:   &models.Appointment{Status: string(StatusCanceled)},
			want: ErrInvalidTransition,
		},
		{
			name:       "bad tooth",
			ap:         accepted(),
			treatments: []TreatmentInput{{ToothNumber: 40, Procedure: "extraction"}},
			want:       ErrInvalidRequest,
		},
		{
			name:       "blank procedure",
			ap:         accepted(),
			treatments: []TreatmentInput{{ToothNumber: 3, Procedure: "  "}},
			want:       ErrInvalidRequest,
		},
		{
			name:   "zero quantity",
			ap:     accepted(),
			usages: []UsageInput{{ItemID: 1, Quantity: 0}},
			want:   ErrInvalidRequest,
		},
		{
			name:   "missing item",
			ap:     accepted(),
			usages: []UsageInput{{Quantity: 2}},
			want:   ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCompletionPlan(tt.ap, tt.treatments, tt.usages, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
