package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

func newMockRepo(t *testing.T) (*AppointmentGormRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewAppointmentGormRepository(db), mock
}

var may1 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// appointmentRow is one stored appointment with every reference set, so
// withRefs issues all of its preload queries.
func appointmentRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "branch_id", "slot_id", "service_id", "patient_id", "doctor_id", "date", "status",
	}).AddRow(7, 1, 3, 10, 20, 30, may1, status)
}

// expectRefs registers the preloads of withRefs. Callers switch the mock to
// unordered matching since gorm decides the preload order.
func expectRefs(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "time_slots"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "start_time", "end_time"}).AddRow(3, 1, "09:00", "09:30"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "branches"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "timezone"}).AddRow(1, "Centro", "UTC"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "doctors"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(30, "Dr. Lima"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "services"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(10, "Cleaning"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "patients"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(20, "Ana Souza", "ana@example.com"))
}

func TestGormCreateAppointmentReturnsStoredRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(appointmentRow("pending"))
	expectRefs(mock)
	mock.ExpectCommit()

	created, err := repo.CreateAppointment(context.Background(), &models.Appointment{
		BranchID: 1, SlotID: 3, Date: may1, ServiceID: 10, PatientID: 20,
		Status: string(domain.StatusPending),
	})

	require.NoError(t, err)
	assert.Equal(t, uint(7), created.ID)
	assert.Equal(t, "09:00", created.Slot.StartTime)
	assert.Equal(t, "ana@example.com", created.Patient.Email)
	require.NotNil(t, created.Doctor)
	assert.Equal(t, "Dr. Lima", created.Doctor.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCreateAppointmentUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "appointments"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_appointments_live_slot"})
	mock.ExpectRollback()

	_, err := repo.CreateAppointment(context.Background(), &models.Appointment{
		BranchID: 1, SlotID: 3, Date: may1, ServiceID: 1, PatientID: 1,
		Status: string(domain.StatusPending),
	})

	var slotErr *domain.SlotUnavailableError
	require.ErrorAs(t, err, &slotErr)
	assert.Equal(t, uint(3), slotErr.SlotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCreateAppointmentDriverFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "appointments"`)).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := repo.CreateAppointment(context.Background(), &models.Appointment{
		BranchID: 1, SlotID: 3, Date: may1, Status: string(domain.StatusPending),
	})

	assert.True(t, domain.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCreateAppointmentReadBackFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnError(errors.New("timeout"))
	mock.ExpectRollback()

	_, err := repo.CreateAppointment(context.Background(), &models.Appointment{
		BranchID: 1, SlotID: 3, Date: may1, ServiceID: 10, PatientID: 20,
		Status: string(domain.StatusPending),
	})

	// the insert never committed, so retrying is safe
	assert.True(t, domain.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGetBranchNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "branches"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetBranch(context.Background(), 9)

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "branch", nf.Entity)
	assert.Equal(t, uint(9), nf.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSaveTransitionLostRace(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "status" FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("canceled"))
	mock.ExpectRollback()

	ap := &models.Appointment{ID: 7, Status: string(domain.StatusAccepted)}
	_, err := repo.SaveTransition(context.Background(), ap, domain.StatusPending, domain.EventAccept)

	var inv *domain.InvalidTransitionError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, domain.StatusCanceled, inv.From)
	assert.Equal(t, domain.EventAccept, inv.Event)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSaveTransitionApplied(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(appointmentRow("accepted"))
	expectRefs(mock)
	mock.ExpectCommit()

	ap := &models.Appointment{ID: 7, Status: string(domain.StatusAccepted)}
	out, err := repo.SaveTransition(context.Background(), ap, domain.StatusPending, domain.EventAccept)

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusAccepted), out.Status)
	assert.Equal(t, "Centro", out.Branch.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSaveTransitionReadBackFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnError(errors.New("timeout"))
	mock.ExpectRollback()

	ap := &models.Appointment{ID: 7, Status: string(domain.StatusRejected)}
	_, err := repo.SaveTransition(context.Background(), ap, domain.StatusPending, domain.EventReject)

	assert.True(t, domain.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCompleteWithLedgerInsufficientInventoryRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "slot_id", "date", "status"}).
			AddRow(7, 1, 3, may1, "accepted"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventory_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "name", "quantity", "unit_price"}).
			AddRow(40, 1, "Gauze", 4, "2.50"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "inventory_items" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.CompleteWithLedger(context.Background(), domain.CompletionPlan{
		AppointmentID: 7,
		BranchID:      1,
		Treatments:    []domain.TreatmentInput{{ToothNumber: 14, Procedure: "filling"}},
		Usages:        []domain.UsageInput{{ItemID: 40, Quantity: 6}},
		CompletedAt:   time.Now(),
	})

	var short *domain.InsufficientInventoryError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, uint(40), short.ItemID)
	assert.Equal(t, 6, short.Requested)
	assert.Equal(t, 4, short.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCompleteWithLedgerRefusesNonAccepted(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "status"}).
			AddRow(7, 1, "pending"))
	mock.ExpectRollback()

	_, err := repo.CompleteWithLedger(context.Background(), domain.CompletionPlan{
		AppointmentID: 7,
		BranchID:      1,
		Usages:        []domain.UsageInput{{ItemID: 40, Quantity: 1}},
		CompletedAt:   time.Now(),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormApplyRescheduleSlotTaken(t *testing.T) {
	repo, mock := newMockRepo(t)
	may2 := may1.AddDate(0, 0, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "branch_id", "slot_id", "date", "status",
			"reschedule_branch_id", "reschedule_slot_id", "reschedule_date",
		}).AddRow(7, 1, 3, may1, "accepted", 1, 4, may2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.ApplyReschedule(context.Background(), 7, domain.Proposal{BranchID: 1, SlotID: 4, Date: may2})

	assert.ErrorIs(t, err, domain.ErrSlotNoLongerAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCompleteWithLedgerCommits(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.MatchExpectationsInOrder(false)
	done := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(appointmentRow("accepted"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventory_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "name", "quantity", "unit_price"}).
			AddRow(40, 1, "Gauze", 10, "2.50"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "inventory_items" SET`)).
		WithArgs(2, sqlmock.AnyArg(), 40, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "treatment_entries"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "item_usages"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(appointmentRow("completed"))
	expectRefs(mock)
	mock.ExpectCommit()

	res, err := repo.CompleteWithLedger(context.Background(), domain.CompletionPlan{
		AppointmentID: 7,
		BranchID:      1,
		Treatments:    []domain.TreatmentInput{{ToothNumber: 14, Procedure: "filling"}},
		Usages:        []domain.UsageInput{{ItemID: 40, Quantity: 2}},
		CompletedAt:   done,
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), res.Appointment.Status)
	require.Len(t, res.Treatments, 1)
	assert.Equal(t, 14, res.Treatments[0].ToothNumber)
	require.Len(t, res.Usages, 1)
	assert.Equal(t, 2, res.Usages[0].Quantity)
	assert.True(t, res.Usages[0].UnitPrice.Equal(decimal.RequireFromString("2.50")))
	assert.Equal(t, done, res.Usages[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormApplyRescheduleCommits(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.MatchExpectationsInOrder(false)
	may2 := may1.AddDate(0, 0, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "branch_id", "slot_id", "date", "status",
			"reschedule_branch_id", "reschedule_slot_id", "reschedule_date",
		}).AddRow(7, 1, 3, may1, "accepted", 1, 4, may2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "branch_id", "slot_id", "service_id", "patient_id", "doctor_id", "date", "status",
		}).AddRow(7, 1, 3, 10, 20, 30, may2, "accepted"))
	expectRefs(mock)
	mock.ExpectCommit()

	out, err := repo.ApplyReschedule(context.Background(), 7, domain.Proposal{BranchID: 1, SlotID: 4, Date: may2})

	require.NoError(t, err)
	assert.True(t, out.Date.Equal(may2))
	assert.Nil(t, out.RescheduleSlotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormApplyRescheduleUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	may2 := may1.AddDate(0, 0, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "branch_id", "slot_id", "date", "status",
			"reschedule_branch_id", "reschedule_slot_id", "reschedule_date",
		}).AddRow(7, 1, 3, may1, "accepted", 1, 4, may2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments" SET`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_appointments_live_slot"})
	mock.ExpectRollback()

	_, err := repo.ApplyReschedule(context.Background(), 7, domain.Proposal{BranchID: 1, SlotID: 4, Date: may2})

	var gone *domain.SlotNoLongerAvailableError
	require.ErrorAs(t, err, &gone)
	assert.Equal(t, uint(4), gone.SlotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
