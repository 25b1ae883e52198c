package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity types a professional profile can describe.
const (
	EntityIndividual = "INDIVIDUAL"
	EntityClinic     = "CLINIC"
)

// ProfessionalEntity is the public profile of a vet or clinic.
type ProfessionalEntity struct {
	ID          uuid.UUID   `json:"id"`
	UserID      *uuid.UUID  `json:"user_id,omitempty"`
	EntityType  string      `json:"entity_type"`
	Status      string      `json:"status,omitempty"`
	Name        string      `json:"name"`
	Slug        *string     `json:"slug,omitempty"`
	ProfileData ProfileData `json:"profile_data"`
	Rating      float64     `json:"rating"`
	ReviewCount int         `json:"review_count"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ProfileData is the free-form part of a professional profile.
type ProfileData struct {
	LicenseNumber string                `json:"license_number,omitempty"`
	Bio           string                `json:"bio,omitempty"`
	LogoURL       string                `json:"logo_url,omitempty"`
	Addresses     []Address             `json:"addresses,omitempty"`
	Contact       Contact               `json:"contact"`
	Specialties   []string              `json:"specialties,omitempty"`
	WorkingHours  map[string]WorkingDay `json:"working_hours,omitempty"`
	Pricing       Pricing               `json:"pricing"`
}

// Address is a location a professional works from.
type Address struct {
	FullAddress string  `json:"full_address"`
	City        string  `json:"city"`
	PostalCode  string  `json:"postal_code,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	IsMain      bool    `json:"is_main"`
}

// Contact holds how clients reach the professional.
type Contact struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// WorkingDay is the opening window for one weekday.
type WorkingDay struct {
	Active bool   `json:"active"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// Pricing lists the published rates.
type Pricing struct {
	Rates []Service `json:"tarifas,omitempty"`
}

// Service is a named, priced service.
type Service struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// MainAddress returns the address flagged as main, or the first one.
func (p ProfileData) MainAddress() (Address, bool) {
	for _, a := range p.Addresses {
		if a.IsMain {
			return a, true
		}
	}
	if len(p.Addresses) > 0 {
		return p.Addresses[0], true
	}
	return Address{}, false
}

// ProfileSummary is the lightweight entry used by search results.
type ProfileSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	EntityType  string  `json:"entity_type"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	City        string  `json:"city"`
	FullAddress string  `json:"full_address"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
}

// Located reports whether the summary carries usable coordinates.
func (p ProfileSummary) Located() bool {
	return p.Latitude != 0 || p.Longitude != 0
}

// ProfileDetail is a professional profile plus its subscription state.
type ProfileDetail struct {
	ProfessionalEntity
	SubscriptionStatus string     `json:"subscription_status,omitempty"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	AccessLevel        int        `json:"access_level"`
}
