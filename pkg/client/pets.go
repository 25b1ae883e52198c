package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/veterimap/veterimap/pkg/domain"
)

// CreatePetRequest is the payload for registering a pet.
type CreatePetRequest struct {
	Name    string  `json:"name" validate:"required"`
	Species string  `json:"species" validate:"required"`
	Breed   string  `json:"breed,omitempty"`
	Gender  string  `json:"gender,omitempty"`
	Weight  float64 `json:"weight,omitempty" validate:"gte=0"`
}

// CreateMedicalHistoryRequest is the payload for a new clinical entry.
type CreateMedicalHistoryRequest struct {
	PetID         uuid.UUID  `json:"pet_id" validate:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Diagnosis     string     `json:"diagnosis" validate:"required"`
	Treatment     string     `json:"treatment" validate:"required"`
	InternalNotes string     `json:"internal_notes,omitempty"`
}

// ListMyPets returns the caller's pets.
func (c *Client) ListMyPets(ctx context.Context) ([]domain.Pet, error) {
	var pets []domain.Pet
	if err := c.get(ctx, "/users/me/pets", &pets); err != nil {
		return nil, fmt.Errorf("client.ListMyPets: %w", err)
	}
	return pets, nil
}

// AddPet registers a pet for the caller.
func (c *Client) AddPet(ctx context.Context, req CreatePetRequest) (*domain.Pet, error) {
	var pet domain.Pet
	if err := c.post(ctx, "/users/me/pets", req, &pet); err != nil {
		return nil, fmt.Errorf("client.AddPet: %w", err)
	}
	return &pet, nil
}

// GetPet fetches a single pet by ID.
func (c *Client) GetPet(ctx context.Context, id string) (*domain.Pet, error) {
	var pet domain.Pet
	if err := c.get(ctx, "/users/me/pets/"+url.PathEscape(id), &pet); err != nil {
		return nil, fmt.Errorf("client.GetPet: %w", err)
	}
	return &pet, nil
}

// ListOwnerPets returns the pets of one of the caller's clients.
func (c *Client) ListOwnerPets(ctx context.Context, ownerID string) ([]domain.Pet, error) {
	var pets []domain.Pet
	if err := c.get(ctx, "/users/me/pets/owner/"+url.PathEscape(ownerID), &pets); err != nil {
		return nil, fmt.Errorf("client.ListOwnerPets: %w", err)
	}
	return pets, nil
}

// ListMyClients returns the owners who have booked with the calling professional.
func (c *Client) ListMyClients(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/users/me/clients", &users); err != nil {
		return nil, fmt.Errorf("client.ListMyClients: %w", err)
	}
	return users, nil
}

// GetPetHistory returns the clinical history of a pet.
func (c *Client) GetPetHistory(ctx context.Context, petID string) ([]domain.MedicalHistory, error) {
	var entries []domain.MedicalHistory
	if err := c.get(ctx, "/medical-histories/pet/"+url.PathEscape(petID), &entries); err != nil {
		return nil, fmt.Errorf("client.GetPetHistory: %w", err)
	}
	return entries, nil
}

// CreateMedicalHistory adds a clinical entry. Requires an active paid plan.
func (c *Client) CreateMedicalHistory(ctx context.Context, req CreateMedicalHistoryRequest) (*domain.MedicalHistory, error) {
	var entry domain.MedicalHistory
	if err := c.post(ctx, "/medical-histories", req, &entry); err != nil {
		return nil, fmt.Errorf("client.CreateMedicalHistory: %w", err)
	}
	return &entry, nil
}
