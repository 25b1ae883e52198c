package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/veterimap/veterimap/pkg/domain"
)

// dateLayout is the day format the agenda filter expects.
const dateLayout = "2006-01-02"

// CreateAppointmentRequest is the payload for booking a professional.
type CreateAppointmentRequest struct {
	ProfessionalID  uuid.UUID `json:"professional_id" validate:"required"`
	PetID           uuid.UUID `json:"pet_id" validate:"required"`
	AppointmentDate time.Time `json:"appointment_date" validate:"required"`
	Notes           string    `json:"notes,omitempty"`
}

// ListMyAppointments returns the caller's appointments. A non-zero day
// restricts the result to that date.
func (c *Client) ListMyAppointments(ctx context.Context, day time.Time) ([]domain.Appointment, error) {
	path := "/users/me/appointments"
	if !day.IsZero() {
		path += "?date=" + url.QueryEscape(day.Format(dateLayout))
	}
	var apps []domain.Appointment
	if err := c.get(ctx, path, &apps); err != nil {
		return nil, fmt.Errorf("client.ListMyAppointments: %w", err)
	}
	return apps, nil
}

// CreateAppointment books an appointment. The API answers 402 when the
// professional has no active plan.
func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*domain.Appointment, error) {
	var app domain.Appointment
	if err := c.post(ctx, "/users/me/appointments", req, &app); err != nil {
		return nil, fmt.Errorf("client.CreateAppointment: %w", err)
	}
	return &app, nil
}

// UpdateAppointmentStatus confirms, cancels or completes an appointment.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) error {
	body := map[string]any{"appointment_id": id, "status": status}
	if err := c.doRequest(ctx, http.MethodPatch, "/users/me/appointments/status", body, nil, nil); err != nil {
		return fmt.Errorf("client.UpdateAppointmentStatus: %w", err)
	}
	return nil
}

// RescheduleAppointment moves an appointment to a new date.
func (c *Client) RescheduleAppointment(ctx context.Context, id uuid.UUID, when time.Time, notes string) error {
	body := map[string]any{
		"appointment_id": id,
		"new_date":       when.Format(time.RFC3339),
		"notes":          notes,
	}
	if err := c.doRequest(ctx, http.MethodPatch, "/users/me/appointments/reschedule", body, nil, nil); err != nil {
		return fmt.Errorf("client.RescheduleAppointment: %w", err)
	}
	return nil
}
