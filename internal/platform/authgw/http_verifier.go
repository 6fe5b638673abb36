package authgw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
)

// HTTPVerifier checks tokens against the user service's /api/user endpoint.
type HTTPVerifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPVerifier bounds every verification call by timeout so a slow
// identity service degrades to an unavailable outcome instead of stalling
// the caller's request.
func NewHTTPVerifier(baseURL string, timeout time.Duration) *HTTPVerifier {
	return &HTTPVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type verifyResponse struct {
	Success bool    `json:"success"`
	Data    Subject `json:"data"`
}

func (v *HTTPVerifier) Verify(ctx context.Context, token string) (Subject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/user", nil)
	if err != nil {
		return Subject{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	correlation.Attach(ctx, req)

	resp, err := v.client.Do(req)
	if err != nil {
		// Connect errors and timeouts are the same outcome to the caller.
		return Subject{}, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Subject{}, ErrTokenRejected
	case resp.StatusCode >= 500:
		return Subject{}, fmt.Errorf("%w: identity service returned %d", ErrVerifierUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Subject{}, fmt.Errorf("unexpected identity service status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Subject{}, fmt.Errorf("read verify response: %w", err)
	}
	var parsed verifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Subject{}, fmt.Errorf("decode verify response: %w", err)
	}
	if parsed.Data.ID == "" {
		return Subject{}, fmt.Errorf("identity service returned no subject")
	}
	return parsed.Data, nil
}
