package api

import (
	"context"
	"fmt"
	"net/http"

	"dashkpis/internal/models"
)

func (c *Client) Projects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	err := c.do(ctx, http.MethodGet, "/api/proyectos/", nil, nil, &out)
	return out, err
}

func (c *Client) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, http.MethodPost, "/api/proyectos/", nil, p.Payload(), &out)
	return out, err
}

func (c *Client) UpdateProject(ctx context.Context, id int64, p models.Project) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/proyectos/%d/", id), nil, p.Payload(), &out)
	return out, err
}

func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/proyectos/%d/", id), nil, nil, nil)
}
