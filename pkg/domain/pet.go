package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pet belongs to a pet owner.
type Pet struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	Weight    float64    `json:"weight,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// MedicalHistory is one clinical entry for a pet, written by a professional.
type MedicalHistory struct {
	ID             uuid.UUID `json:"id"`
	PetID          uuid.UUID `json:"pet_id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	AppointmentID  uuid.UUID `json:"appointment_id"`
	Diagnosis      string    `json:"diagnosis"`
	Treatment      string    `json:"treatment"`
	InternalNotes  string    `json:"internal_notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
