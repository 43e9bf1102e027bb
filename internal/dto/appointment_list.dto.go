package dto

// AppointmentListDTO is one row of a branch day view.
type AppointmentListDTO struct {
	ID                uint   `json:"id"`
	Date              string `json:"date"`
	SlotID            uint   `json:"slot_id"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	Status            string `json:"status"`
	Type              string `json:"type,omitempty"`
	PatientName       string `json:"patient_name"`
	ServiceName       string `json:"service_name"`
	DoctorName        string `json:"doctor_name,omitempty"`
	ReschedulePending bool   `json:"reschedule_pending"`
}
