package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"dashkpis/internal/models"
)

func (c *Client) Notifications(ctx context.Context, userID int64, q models.NotificationQuery) ([]models.Notification, error) {
	v := url.Values{}
	if q.Read != nil {
		v.Set("leida", strconv.FormatBool(*q.Read))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	var out []models.Notification
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/usuarios/%d/notificaciones/", userID), v, nil, &out)
	return out, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64, read bool) (models.Notification, error) {
	var out models.Notification
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/notificaciones/%d/leida/", id), nil, map[string]bool{"leida": read}, &out)
	return out, err
}

func (c *Client) NotificationConfig(ctx context.Context, userID int64) ([]models.NotificationConfig, error) {
	var out []models.NotificationConfig
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/usuarios/%d/notificaciones/config/", userID), nil, nil, &out)
	return out, err
}

// UpdateNotificationConfig upserts the given types and returns the full config.
func (c *Client) UpdateNotificationConfig(ctx context.Context, userID int64, cfg []models.NotificationConfig) ([]models.NotificationConfig, error) {
	body := make([]models.NotificationConfig, len(cfg))
	for i, it := range cfg {
		body[i] = models.NotificationConfig{Type: it.Type, Enabled: it.Enabled}
	}
	var out []models.NotificationConfig
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/usuarios/%d/notificaciones/config/", userID), nil, body, &out)
	return out, err
}
