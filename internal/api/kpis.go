package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"dashkpis/internal/models"

	"github.com/shopspring/decimal"
)

// KPIs lists every KPI, or those of one project when projectID is set.
func (c *Client) KPIs(ctx context.Context, projectID *int64) ([]models.KPI, error) {
	var q url.Values
	if projectID != nil {
		q = url.Values{"id_proyecto": {strconv.FormatInt(*projectID, 10)}}
	}
	var out []models.KPI
	err := c.do(ctx, http.MethodGet, "/api/kpis/", q, nil, &out)
	return out, err
}

func (c *Client) CreateKPI(ctx context.Context, k models.KPI) (models.KPI, error) {
	var out models.KPI
	err := c.do(ctx, http.MethodPost, "/api/kpis/", nil, k.Payload(), &out)
	return out, err
}

func (c *Client) UpdateKPI(ctx context.Context, id int64, k models.KPI) (models.KPI, error) {
	var out models.KPI
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/kpis/%d/", id), nil, k.Payload(), &out)
	return out, err
}

func (c *Client) DeleteKPI(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/kpis/%d/", id), nil, nil, nil)
}

func (c *Client) UpdateKPIProgress(ctx context.Context, id int64, current decimal.Decimal) (models.KPI, error) {
	body := map[string]decimal.Decimal{"valor_actual": current}
	var out models.KPI
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/kpis/%d/progress/", id), nil, body, &out)
	return out, err
}
