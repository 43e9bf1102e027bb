package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

func TestSeedDemo(t *testing.T) {
	appts := NewAppointmentMemoryRepository()
	users := NewUserMemoryRepository()

	require.NoError(t, SeedDemo(appts, users))

	ctx := context.Background()
	for _, email := range []string{"admin@dental.local", "staff@dental.local", "doctor@dental.local"} {
		u, err := users.FindUserByEmail(ctx, email)
		require.NoError(t, err, email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(DemoPassword)))
	}

	staff, err := users.FindUserByEmail(ctx, "staff@dental.local")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, staff.Role)
	require.NotNil(t, staff.BranchID)

	slots, err := appts.ListTimeSlots(ctx, *staff.BranchID)
	require.NoError(t, err)
	assert.Len(t, slots, len(demoSlots))
	assert.Equal(t, "09:00", slots[0].StartTime)
}
