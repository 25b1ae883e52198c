package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veterimap/veterimap/pkg/domain"
)

// LoginRequest is the payload for password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name         string      `json:"name" validate:"required"`
	Email        string      `json:"email" validate:"required,email"`
	Password     string      `json:"password" validate:"required,min=6"`
	Role         domain.Role `json:"role" validate:"required,oneof=PET_OWNER PROFESSIONAL"`
	SelectedPlan string      `json:"selected_plan,omitempty"`
	HasTrial     bool        `json:"has_trial,omitempty"`
}

// MeResponse is the authoritative identity returned by /me.
type MeResponse struct {
	User        domain.User `json:"user"`
	HasProfile  bool        `json:"has_profile"`
	AccessLevel *int        `json:"access_level,omitempty"`
}

// AccountProfile is the caller's account with its subscription state.
type AccountProfile struct {
	User               domain.User           `json:"user"`
	AccessLevel        int                   `json:"access_level"`
	SubscriptionStatus string                `json:"subscription_status,omitempty"`
	TrialEndsAt        *time.Time            `json:"trial_ends_at,omitempty"`
	Professional       *domain.ProfileDetail `json:"professional_entity,omitempty"`
}

// UpdateOwnerProfileRequest is the payload for saving a pet owner's account details.
type UpdateOwnerProfileRequest struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone,omitempty"`
	City       string `json:"city" validate:"required"`
	Address    string `json:"address,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/auth/login", req, &resp); err != nil {
		return "", fmt.Errorf("client.Login: %w", err)
	}
	if resp.Token == "" {
		return "", errors.New("client.Login: no token in response")
	}
	return resp.Token, nil
}

// Register creates an account pending email verification.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.post(ctx, "/auth/register", req, nil); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// Verify confirms an account with the emailed code.
func (c *Client) Verify(ctx context.Context, email, code string) error {
	if err := c.post(ctx, "/auth/verify", map[string]string{"email": email, "code": code}, nil); err != nil {
		return fmt.Errorf("client.Verify: %w", err)
	}
	return nil
}

// GetMe returns the authenticated user's identity.
func (c *Client) GetMe(ctx context.Context) (*MeResponse, error) {
	var me MeResponse
	if err := c.get(ctx, "/me", &me); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &me, nil
}

// GetAccountProfile returns the caller's account, access level and, for
// professionals, their public profile.
func (c *Client) GetAccountProfile(ctx context.Context) (*AccountProfile, error) {
	var p AccountProfile
	if err := c.get(ctx, "/users/me/profile", &p); err != nil {
		return nil, fmt.Errorf("client.GetAccountProfile: %w", err)
	}
	return &p, nil
}

// UpdateOwnerProfile saves the caller's account details.
func (c *Client) UpdateOwnerProfile(ctx context.Context, req UpdateOwnerProfileRequest) error {
	if err := c.post(ctx, "/users/me/profile", req, nil); err != nil {
		return fmt.Errorf("client.UpdateOwnerProfile: %w", err)
	}
	return nil
}
