// Package treatments builds the patient's treatment dashboard from treatment
// plans and bookings.
package treatments

import (
	"math"

	"github.com/fertilitycare/patient-portal/internal/backend"
	"github.com/fertilitycare/patient-portal/internal/status"
)

// Treatment is the display-ready view of one treatment plan.
type Treatment struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	StartDate    string        `json:"startDate"`
	EndDate      string        `json:"endDate,omitempty"`
	Doctor       string        `json:"doctor"`
	Status       string        `json:"status"`
	StatusLabel  string        `json:"statusLabel"`
	Progress     int           `json:"progress"`
	CurrentStage string        `json:"currentStage,omitempty"`
	NextStage    string        `json:"nextStage,omitempty"`
	NextDate     string        `json:"nextDate,omitempty"`
	Notes        string        `json:"notes"`
	Result       string        `json:"result,omitempty"`
	Medications  []Medication  `json:"medications"`
	Appointments []Appointment `json:"appointments"`
	TestResults  []TestResult  `json:"testResults"`
	Stages       []Stage       `json:"stages"`
}

// Medication and TestResult are not provided by the backend yet; lists of
// them are always empty.
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Instructions string `json:"instructions"`
}

type TestResult struct {
	Date    string `json:"date"`
	Type    string `json:"type"`
	Result  string `json:"result"`
	Details string `json:"details"`
}

// Appointment is a booking attached to a treatment plan.
type Appointment struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Purpose string `json:"purpose"`
	Status  string `json:"status"`
}

// Stage is one entry of the treatment timeline.
type Stage struct {
	Name        string  `json:"name"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
}

// Stage statuses.
const (
	StageCurrent   = "current"
	StageCompleted = "completed"
	StageUpcoming  = "upcoming"
)

// MapToTreatment projects a plan and the patient's bookings into a Treatment.
// Processes are taken in the order given; the first in-progress one is the
// current stage and the first pending one is the next stage.
func MapToTreatment(plan backend.TreatmentPlan, bookings []backend.Booking) Treatment {
	processes := plan.TreatmentProcesses

	completed := 0
	var current, next *backend.TreatmentProcess
	stages := make([]Stage, 0, len(processes))
	result := ""
	for i := range processes {
		p := &processes[i]
		st := status.ParseProcess(p.Status)
		switch st {
		case status.ProcessCompleted:
			completed++
		case status.ProcessInProgress:
			if current == nil {
				current = p
			}
		case status.ProcessPending:
			if next == nil {
				next = p
			}
		}
		if result == "" && p.Result != "" {
			result = p.Result
		}
		stages = append(stages, toStage(*p, st))
	}

	t := Treatment{
		ID:           plan.TreatmentPlanID,
		Type:         plan.Method,
		StartDate:    plan.StartDate,
		EndDate:      plan.EndDate,
		Status:       status.PlanStatus(plan.Status),
		Progress:     progress(completed, len(processes)),
		Notes:        plan.TreatmentDescription,
		Result:       result,
		Medications:  []Medication{},
		Appointments: appointmentsFor(plan, bookings),
		TestResults:  []TestResult{},
		Stages:       stages,
	}
	t.StatusLabel = status.PlanLabel(t.Status)
	if plan.Doctor != nil {
		t.Doctor = plan.Doctor.DoctorName
	}
	if t.Notes == "" {
		t.Notes = "Không có ghi chú"
	}
	if current != nil {
		t.CurrentStage = current.Method
	}
	if next != nil {
		t.NextStage = next.Method
		t.NextDate = next.ScheduledDate
	}
	return t
}

// progress is round(100*completed/total), 0 for a plan without stages.
func progress(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(completed)/float64(total)*100 + 0.5))
}

// appointmentsFor keeps bookings with the plan's doctor dated on or after the
// plan start. Dates are ISO strings and compare lexicographically.
func appointmentsFor(plan backend.TreatmentPlan, bookings []backend.Booking) []Appointment {
	out := []Appointment{}
	for _, b := range bookings {
		if b.DoctorID != plan.DoctorID || b.DateBooking < plan.StartDate {
			continue
		}
		a := Appointment{
			ID:      b.BookingID,
			Date:    b.DateBooking,
			Time:    "N/A",
			Purpose: "Tư vấn",
			Status:  "upcoming",
		}
		if b.Slot != nil && b.Slot.StartTime != "" {
			a.Time = b.Slot.StartTime
		}
		switch {
		case b.Description != "":
			a.Purpose = b.Description
		case b.Service != nil && b.Service.Name != "":
			a.Purpose = b.Service.Name
		}
		if b.Examination != nil && b.Examination.Status != "" {
			a.Status = b.Examination.Status
		}
		out = append(out, a)
	}
	return out
}

func toStage(p backend.TreatmentProcess, st status.ProcessStatus) Stage {
	s := Stage{
		Name:        p.Method,
		Status:      StageUpcoming,
		Description: p.Result,
	}
	if s.Description == "" {
		s.Description = "Giai đoạn " + p.Method
	}
	switch {
	case p.ActualDate != "":
		s.StartDate = stringPtr(p.ActualDate)
	case p.ScheduledDate != "":
		s.StartDate = stringPtr(p.ScheduledDate)
	}
	switch st {
	case status.ProcessInProgress:
		s.Status = StageCurrent
	case status.ProcessCompleted:
		s.Status = StageCompleted
		if p.ActualDate != "" {
			s.EndDate = stringPtr(p.ActualDate)
		}
	}
	return s
}

func stringPtr(s string) *string { return &s }
