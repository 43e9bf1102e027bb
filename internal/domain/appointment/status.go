package appointment

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCanceled  Status = "canceled"
	StatusCompleted Status = "completed"
)

var allStatuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusRejected,
	StatusCanceled,
	StatusCompleted,
}

func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCanceled || s == StatusCompleted
}

// Occupies reports whether an appointment in this status holds its slot.
func (s Status) Occupies() bool {
	return s != StatusCanceled && s != StatusRejected
}

// ===============================
// Events
// ===============================

type Event string

const (
	EventCreate            Event = "create"
	EventAccept            Event = "accept"
	EventReject            Event = "reject"
	EventCancel            Event = "cancel"
	EventRequestReschedule Event = "request_reschedule"
	EventApproveReschedule Event = "approve_reschedule"
	EventRejectReschedule  Event = "reject_reschedule"
	EventComplete          Event = "complete"
)

// Reschedule events keep the status and act on the proposal overlay.
var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventAccept: StatusAccepted,
		EventReject: StatusRejected,
		EventCancel: StatusCanceled,
	},
	StatusAccepted: {
		EventCancel:            StatusCanceled,
		EventRequestReschedule: StatusAccepted,
		EventApproveReschedule: StatusAccepted,
		EventRejectReschedule:  StatusAccepted,
		EventComplete:          StatusCompleted,
	},
}

// ===============================
// Validations
// ===============================

// Next returns the status reached by applying ev in from, or an
// InvalidTransitionError. Terminal states accept no event.
func Next(from Status, ev Event) (Status, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, &InvalidTransitionError{From: from, Event: ev}
}

func CanApply(from Status, ev Event) error {
	_, err := Next(from, ev)
	return err
}

func InitialStatus() Status {
	return StatusPending
}
