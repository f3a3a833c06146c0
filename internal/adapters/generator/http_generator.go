package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
)

var _ domain.ReportGenerator = (*HTTPGenerator)(nil)

const generatorTimeout = 60 * time.Second

// HTTPGenerator calls the external narrative service: POST {baseURL}/weekly-report
// with the structured week payload, expecting {"report": "..."} back. Non-2xx
// responses are hard failures with the body text surfaced.
type HTTPGenerator struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGenerator(baseURL string) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: generatorTimeout},
	}
}

type generateResponse struct {
	Report string `json:"report"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, req domain.ReportRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("generator: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/weekly-report", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("generator: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generator: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("generator: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("generator: failed to decode response: %w", err)
	}

	return parsed.Report, nil
}
