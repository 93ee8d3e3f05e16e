package client

import (
	"context"
	"net/http"
	"net/url"

	"eduboard/internal/domain"
)

// Notifications fetches the bootstrap notification list.
func (c *Client) Notifications(ctx context.Context) ([]domain.Notification, error) {
	var out []domain.Notification
	if err := c.do(ctx, http.MethodGet, "/student/notifications/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Announcements fetches the bootstrap announcement list.
func (c *Client) Announcements(ctx context.Context) ([]domain.Announcement, error) {
	var out []domain.Announcement
	if err := c.do(ctx, http.MethodGet, "/student/announcements/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Settings fetches the user's notification settings.
func (c *Client) Settings(ctx context.Context) (domain.Settings, error) {
	var out domain.Settings
	if err := c.do(ctx, http.MethodGet, "/student/notification-settings/", nil, &out); err != nil {
		return domain.Settings{}, err
	}
	return out, nil
}

// Overview fetches the dashboard statistics snapshot.
func (c *Client) Overview(ctx context.Context) (domain.Overview, error) {
	var out domain.Overview
	if err := c.do(ctx, http.MethodGet, "/student/overview/", nil, &out); err != nil {
		return domain.Overview{}, err
	}
	return out, nil
}

// MarkRead confirms a single read-state change with the server.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/student/notifications/"+url.PathEscape(id)+"/read/", nil, nil)
}

// MarkAllRead confirms a bulk read-state change with the server.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/student/notifications/mark-all-read/", nil, nil)
}

// Delete removes a notification server-side.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/student/notifications/"+url.PathEscape(id)+"/", nil, nil)
}

// UpdateSettings replaces the user's notification settings server-side.
func (c *Client) UpdateSettings(ctx context.Context, s domain.Settings) error {
	return c.do(ctx, http.MethodPut, "/student/notification-settings/", s, nil)
}
