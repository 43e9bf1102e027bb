package appointment

import (
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/dental-clinic/internal/audit"
	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/httperr"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
	"github.com/BruksfildServices01/dental-clinic/internal/notify"
	"github.com/BruksfildServices01/dental-clinic/internal/observability/metrics"
	"github.com/BruksfildServices01/dental-clinic/internal/timezone"
)

// Actor is whoever triggered the operation, as far as auditing cares.
type Actor struct {
	UserID uint
	Role   string
}

// Deps are the collaborators shared by every appointment use case.
// Only Repo is required.
type Deps struct {
	Repo     domain.Repository
	Catalog  domain.Catalog
	Audit    audit.Sink
	Notifier notify.Notifier
	Metrics  *metrics.ClinicMetrics
	Log      *zap.Logger
	Clock    func() time.Time
}

type base struct {
	Deps
}

func newBase(d Deps) base {
	if d.Catalog == nil {
		d.Catalog = d.Repo
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return base{Deps: d}
}

func (b base) now(tz string) time.Time {
	return b.Clock().In(timezone.Location(tz))
}

// today is the branch-local calendar day.
func (b base) today(tz string) time.Time {
	return timezone.CalendarDay(b.Clock(), tz)
}

// observe records the outcome of ev and logs failures by class.
func (b base) observe(ev domain.Event, id uint, err error) {
	if err == nil {
		b.Metrics.ObserveTransition(string(ev), metrics.OutcomeOK)
		b.Log.Info("appointment transition",
			zap.String("event", string(ev)),
			zap.Uint("appointment_id", id),
		)
		return
	}

	code := httperr.CodeOf(err)
	if code == "" {
		code = "internal"
	}
	b.Metrics.ObserveTransition(string(ev), code)

	fields := []zap.Field{
		zap.String("event", string(ev)),
		zap.Uint("appointment_id", id),
		zap.String("code", code),
		zap.Error(err),
	}
	if domain.IsRetryable(err) || code == "internal" {
		b.Log.Error("appointment transition failed", fields...)
		return
	}
	b.Log.Debug("appointment transition refused", fields...)
}

func (b base) audit(actor Actor, ap *models.Appointment, action string, meta any) {
	if b.Audit == nil {
		return
	}
	userID := actor.UserID
	id := ap.ID
	b.Audit.Dispatch(audit.Event{
		BranchID: ap.BranchID,
		UserID:   &userID,
		Action:   action,
		Entity:   "appointment",
		EntityID: &id,
		Metadata: meta,
	})
}

func (b base) notify(kind notify.Kind, ap *models.Appointment) {
	if b.Notifier == nil {
		return
	}
	b.Notifier.Notify(kind, ap)
}

// notPast refuses dates before the branch-local today.
func (b base) notPast(date time.Time, tz string) error {
	if date.Before(b.today(tz)) {
		return &domain.ValidationError{Field: "date", Reason: "must not be in the past"}
	}
	return nil
}
