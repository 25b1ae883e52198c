package client

import (
	"context"
	"fmt"

	"github.com/veterimap/veterimap/pkg/domain"
)

// ListNotifications returns the caller's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	var ns []domain.Notification
	if err := c.get(ctx, "/notifications", &ns); err != nil {
		return nil, fmt.Errorf("client.ListNotifications: %w", err)
	}
	return ns, nil
}

// MarkNotificationsRead marks every notification as read.
func (c *Client) MarkNotificationsRead(ctx context.Context) error {
	if err := c.post(ctx, "/notifications/read", nil, nil); err != nil {
		return fmt.Errorf("client.MarkNotificationsRead: %w", err)
	}
	return nil
}
