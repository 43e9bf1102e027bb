package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
	"github.com/BruksfildServices01/dental-clinic/internal/observability/metrics"
)

const sendTimeout = 10 * time.Second

// Notifier tells a patient about an outcome they did not ask for.
// Delivery is best effort and never blocks the caller.
type Notifier interface {
	Notify(kind Kind, ap *models.Appointment)
}

type job struct {
	kind Kind
	ap   models.Appointment
}

type Dispatcher struct {
	sender  EmailSender
	log     *zap.Logger
	metrics *metrics.ClinicMetrics

	mu     sync.RWMutex
	closed bool
	queue  chan job
	done   chan struct{}
}

func NewDispatcher(
	sender EmailSender,
	log *zap.Logger,
	m *metrics.ClinicMetrics,
	size int,
) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if size <= 0 {
		size = 100
	}

	d := &Dispatcher{
		sender:  sender,
		log:     log,
		metrics: m,
		queue:   make(chan job, size),
		done:    make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) Notify(kind Kind, ap *models.Appointment) {
	if ap == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.metrics.ObserveNotification(string(kind), metrics.NotificationDropped)
		return
	}

	select {
	case d.queue <- job{kind: kind, ap: *ap}:
	default:
		// full queue: drop, the transition already committed
		d.log.Warn("notification queue full, dropping",
			zap.String("kind", string(kind)),
			zap.Uint("appointment_id", ap.ID),
		)
		d.metrics.ObserveNotification(string(kind), metrics.NotificationDropped)
	}
}

// Close stops intake and waits for queued notifications until ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	kind := string(j.kind)
	log := d.log.With(zap.String("kind", kind), zap.Uint("appointment_id", j.ap.ID))

	if j.ap.Patient.Email == "" {
		log.Debug("patient has no email, skipping notification")
		d.metrics.ObserveNotification(kind, metrics.NotificationSkipped)
		return
	}

	msg, err := Render(j.kind, &j.ap)
	if err != nil {
		log.Error("render notification", zap.Error(err))
		d.metrics.ObserveNotification(kind, metrics.NotificationFailed)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		log.Error("send notification", zap.Error(err))
		d.metrics.ObserveNotification(kind, metrics.NotificationFailed)
		return
	}

	d.metrics.ObserveNotification(kind, metrics.NotificationSent)
}

var _ Notifier = (*Dispatcher)(nil)
