package domain

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle tag of an appointment.
type AppointmentStatus string

const (
	AppointmentPending     AppointmentStatus = "PENDING"
	AppointmentConfirmed   AppointmentStatus = "CONFIRMED"
	AppointmentCancelled   AppointmentStatus = "CANCELLED"
	AppointmentCompleted   AppointmentStatus = "COMPLETED"
	AppointmentRescheduled AppointmentStatus = "RESCHEDULED"
	AppointmentNoShow      AppointmentStatus = "NOSHOW"
)

// Appointment is a booking between a pet owner and a professional.
type Appointment struct {
	ID              uuid.UUID         `json:"id"`
	ProfessionalID  uuid.UUID         `json:"professional_id"`
	OwnerID         uuid.UUID         `json:"owner_id"`
	PetID           uuid.UUID         `json:"pet_id"`
	AppointmentDate time.Time         `json:"appointment_date"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`

	// Filled by joins on the server.
	PetName          string `json:"pet_name,omitempty"`
	OwnerName        string `json:"owner_name,omitempty"`
	ProfessionalName string `json:"professional_name,omitempty"`
}

// Open reports whether the appointment still needs a decision or is scheduled to happen.
func (a Appointment) Open() bool {
	switch a.Status {
	case AppointmentPending, AppointmentConfirmed, AppointmentRescheduled:
		return true
	}
	return false
}

// Upcoming filters appointments that are open and not in the past, keeping order.
func Upcoming(apps []Appointment, now time.Time) []Appointment {
	var out []Appointment
	for _, a := range apps {
		if a.Open() && !a.AppointmentDate.Before(now) {
			out = append(out, a)
		}
	}
	return out
}
