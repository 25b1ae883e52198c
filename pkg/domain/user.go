package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account as returned by the API.
type User struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Role               Role       `json:"role"`
	IsVerified         bool       `json:"is_verified"`
	SubscriptionStatus string     `json:"subscription_status,omitempty"`
	AccessLevel        *int       `json:"access_level,omitempty"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	Name               string     `json:"name,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	City               string     `json:"city,omitempty"`
	Address            string     `json:"address,omitempty"`
	PostalCode         string     `json:"postal_code,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// OwnerProfileComplete reports whether the fields the booking flow needs are filled in.
func (u User) OwnerProfileComplete() bool {
	return u.Name != "" && u.City != ""
}
