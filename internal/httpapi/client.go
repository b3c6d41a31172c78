package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resty.dev/v3"
)

// Client posts calculation requests to a running jetlag-calc server.
type Client struct {
	client *resty.Client
}

func NewClient(ctx context.Context, baseURL string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		AddRetryConditions(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("User-Agent", "jetlag-calc").
		SetContext(ctx)
	return &Client{client: client}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Timetable posts one request document and decodes the response. Server
// side failures come back as the server's error payload.
func (c *Client) Timetable(req CalcRequest) (CalcResponse, error) {
	resp, err := c.client.R().
		SetContentType("application/json").
		SetHeader("Accept", "application/json").
		SetBody(req).
		Post("/v1/timetable")
	if err != nil {
		return CalcResponse{}, fmt.Errorf("posting request: %w", err)
	}

	if resp.StatusCode() >= 400 {
		var failure ErrorResponse
		if err := json.Unmarshal(resp.Bytes(), &failure); err == nil && failure.Error != "" {
			return CalcResponse{}, fmt.Errorf("server rejected request: %s", failure.Error)
		}
		return CalcResponse{}, fmt.Errorf("server error: %s", resp.Status())
	}

	var out CalcResponse
	if err := json.Unmarshal(resp.Bytes(), &out); err != nil {
		return CalcResponse{}, fmt.Errorf("decoding response: %w", err)
	}
	return out, nil
}
