package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

type Kind string

const (
	KindRejected           Kind = "rejected"
	KindCanceled           Kind = "canceled"
	KindRescheduleRejected Kind = "reschedule_rejected"
)

var subjects = map[Kind]string{
	KindRejected:           "Your appointment request was declined",
	KindCanceled:           "Your appointment was canceled",
	KindRescheduleRejected: "Your reschedule request was declined",
}

var bodies = template.Must(template.New("notify").Parse(`
{{- define "rejected" -}}
Hello {{.Patient}},

We could not confirm your {{.Service}} appointment at {{.Branch}} on {{.Date}} at {{.Time}}.
Please contact the clinic to choose another time.
{{- end}}

{{- define "canceled" -}}
Hello {{.Patient}},

Your {{.Service}} appointment at {{.Branch}} on {{.Date}} at {{.Time}} has been canceled.
{{- end}}

{{- define "reschedule_rejected" -}}
Hello {{.Patient}},

Your request to move your appointment was declined. You are still booked at {{.Branch}} on {{.Date}} at {{.Time}}.
{{- end}}
`))

type messageData struct {
	Patient string
	Service string
	Branch  string
	Date    string
	Time    string
}

// Render builds the message for ap, which must carry its references.
func Render(kind Kind, ap *models.Appointment) (EmailMessage, error) {
	subject, ok := subjects[kind]
	if !ok {
		return EmailMessage{}, fmt.Errorf("notify: unknown kind %q", kind)
	}

	data := messageData{
		Patient: ap.Patient.Name,
		Service: ap.Service.Name,
		Branch:  ap.Branch.Name,
		Date:    ap.Date.Format("2006-01-02"),
		Time:    ap.Slot.Label(),
	}

	var buf bytes.Buffer
	if err := bodies.ExecuteTemplate(&buf, string(kind), data); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render %s: %w", kind, err)
	}

	return EmailMessage{
		To:      ap.Patient.Email,
		ToName:  ap.Patient.Name,
		Subject: subject,
		Body:    buf.String(),
	}, nil
}
