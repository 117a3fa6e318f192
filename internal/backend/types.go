// Package backend is the client for the clinic backend API that owns bookings,
// patients and treatment plans. Every nested record is optional: the backend
// returns null for sub-records it has not populated yet.
package backend

// Booking is a scheduled patient-doctor appointment.
type Booking struct {
	BookingID   string       `json:"bookingId"`
	PatientID   string       `json:"patientId,omitempty"`
	DoctorID    string       `json:"doctorId"`
	SlotID      string       `json:"slotId,omitempty"`
	ServiceID   string       `json:"serviceId,omitempty"`
	DateBooking string       `json:"dateBooking"`
	Status      string       `json:"status"`
	Description string       `json:"description,omitempty"`
	Note        string       `json:"note,omitempty"`
	Slot        *Slot        `json:"slot,omitempty"`
	Service     *Service     `json:"service,omitempty"`
	Doctor      *Doctor      `json:"doctor,omitempty"`
	Payment     *Payment     `json:"payment,omitempty"`
	Examination *Examination `json:"examination,omitempty"`
}

// Slot is a fixed time-of-day window in clinic-local "HH:MM" wall-clock time.
type Slot struct {
	SlotID    string `json:"slotId,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type Service struct {
	ServiceID string   `json:"serviceId,omitempty"`
	Name      string   `json:"name"`
	Price     *float64 `json:"price,omitempty"`
}

type Doctor struct {
	DoctorID       string `json:"doctorId,omitempty"`
	DoctorName     string `json:"doctorName"`
	Specialization string `json:"specialization,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

type Payment struct {
	PaymentID   string   `json:"paymentId"`
	TotalAmount *float64 `json:"totalAmount,omitempty"`
	Method      string   `json:"method,omitempty"`
	Status      string   `json:"status"`
}

type Examination struct {
	ExaminationID          string `json:"examinationId"`
	ExaminationDate        string `json:"examinationDate,omitempty"`
	ExaminationDescription string `json:"examinationDescription,omitempty"`
	Result                 string `json:"result,omitempty"`
	Status                 string `json:"status,omitempty"`
}

// TreatmentPlan is a multi-step treatment course (e.g. IUI, IVF).
type TreatmentPlan struct {
	TreatmentPlanID      string             `json:"treatmentPlanId"`
	PatientID            string             `json:"patientId,omitempty"`
	DoctorID             string             `json:"doctorId"`
	Method               string             `json:"method"`
	StartDate            string             `json:"startDate"`
	EndDate              string             `json:"endDate,omitempty"`
	Status               string             `json:"status"`
	TreatmentDescription string             `json:"treatmentDescription,omitempty"`
	Doctor               *Doctor            `json:"doctor,omitempty"`
	TreatmentProcesses   []TreatmentProcess `json:"treatmentProcesses"`
}

// TreatmentProcess is one stage of a plan. The backend returns stages in
// chronological order.
type TreatmentProcess struct {
	TreatmentProcessID string `json:"treatmentProcessId,omitempty"`
	Method             string `json:"method"`
	ScheduledDate      string `json:"scheduledDate,omitempty"`
	ActualDate         string `json:"actualDate,omitempty"`
	Result             string `json:"result,omitempty"`
	Status             string `json:"status"`
}
