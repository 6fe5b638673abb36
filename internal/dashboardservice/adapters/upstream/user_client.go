// Package upstream holds the typed HTTP clients the aggregator composes.
// Every call carries the caller's bearer token and correlation id, and every
// outcome is a value: transport errors never escape as raw errors.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/ports"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
)

const maxBodyBytes = 4 << 20

// UserClient reads profiles from the user service.
type UserClient struct {
	baseURL string
	client  *http.Client
}

func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	return &UserClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type profileEnvelope struct {
	Success bool          `json:"success"`
	Data    ports.Profile `json:"data"`
}

func (c *UserClient) GetProfile(ctx context.Context, token string) ports.ProfileResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/profile", nil)
	if err != nil {
		return ports.ProfileResult{Failure: &ports.Failure{Reason: fmt.Sprintf("build request: %v", err)}}
	}
	setOutboundHeaders(ctx, req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.ProfileResult{Failure: &ports.Failure{Reason: fmt.Sprintf("user service unreachable: %v", err)}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.ProfileResult{Failure: &ports.Failure{
			Reason:     fmt.Sprintf("user service returned %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ports.ProfileResult{Failure: &ports.Failure{Reason: fmt.Sprintf("read response: %v", err)}}
	}
	var envelope profileEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ports.ProfileResult{Failure: &ports.Failure{Reason: fmt.Sprintf("decode response: %v", err)}}
	}
	if envelope.Data.ID == "" {
		// A 2xx without a subject is not a usable profile.
		return ports.ProfileResult{Failure: &ports.Failure{Reason: "user service returned no subject"}}
	}
	profile := envelope.Data
	return ports.ProfileResult{Profile: &profile}
}

func setOutboundHeaders(ctx context.Context, req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	correlation.Attach(ctx, req)
}
