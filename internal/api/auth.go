package api

import (
	"context"
	"net/http"

	"dashkpis/internal/models"
)

type userEnvelope struct {
	User models.User `json:"user"`
}

// Login returns the backend's user for valid credentials; a 401 *Error otherwise.
func (c *Client) Login(ctx context.Context, cred models.Credentials) (models.User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/login/", nil, cred, &out)
	return out.User, err
}

func (c *Client) Register(ctx context.Context, r models.Registration) (models.User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/register/", nil, r, &out)
	return out.User, err
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, http.MethodGet, "/api/usuarios/", nil, nil, &out)
	return out, err
}
