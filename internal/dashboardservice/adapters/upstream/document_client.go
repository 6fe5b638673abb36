package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/ports"
)

// DocumentClient lists documents from the document service.
type DocumentClient struct {
	baseURL string
	client  *http.Client
}

func NewDocumentClient(baseURL string, timeout time.Duration) *DocumentClient {
	return &DocumentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type documentListEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Documents []ports.DocumentRecord `json:"documents"`
	} `json:"data"`
}

func (c *DocumentClient) ListDocuments(ctx context.Context, token string, params url.Values) ports.DocumentListResult {
	endpoint := c.baseURL + "/api/documents"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.DocumentListResult{Failure: &ports.Failure{Reason: fmt.Sprintf("build request: %v", err)}}
	}
	setOutboundHeaders(ctx, req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.DocumentListResult{Failure: &ports.Failure{Reason: fmt.Sprintf("document service unreachable: %v", err)}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.DocumentListResult{Failure: &ports.Failure{
			Reason:     fmt.Sprintf("document service returned %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ports.DocumentListResult{Failure: &ports.Failure{Reason: fmt.Sprintf("read response: %v", err)}}
	}
	var envelope documentListEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ports.DocumentListResult{Failure: &ports.Failure{Reason: fmt.Sprintf("decode response: %v", err)}}
	}
	return ports.DocumentListResult{Documents: envelope.Data.Documents}
}
