// Package dataprovider implements the external customer/company system of
// record as a narrow HTTP client. The compiler treats everything it returns
// as opaque key-value data.
package dataprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pulsecs/backend/internal/domain/models"
)

// HTTPProvider fetches compilation contexts and renewal candidates from the
// customer data service.
type HTTPProvider struct {
	BaseURL    string
	APIToken   string
	HTTPClient *http.Client
}

// NewHTTPProvider creates an HTTPProvider against the given base URL
func NewHTTPProvider(baseURL, apiToken string) *HTTPProvider {
	return &HTTPProvider{
		BaseURL:  baseURL,
		APIToken: apiToken,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetCompilationContext fetches the customer/company data bundle.
// Expected response envelope:
// { "customer": {...}, "company": {...}, "industry": "...", "segment_fields": {...} }
func (p *HTTPProvider) GetCompilationContext(ctx context.Context, customerID string) (*models.CompilationContext, error) {
	var result models.CompilationContext
	path := fmt.Sprintf("/api/customers/%s/compilation-context", customerID)
	if err := p.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if result.Customer == nil {
		return nil, fmt.Errorf("customer '%s' has no compilation context", customerID)
	}
	return &result, nil
}

// ListCustomersDueForRenewal returns ids of customers whose contracts renew
// within the given window.
func (p *HTTPProvider) ListCustomersDueForRenewal(ctx context.Context, withinDays int) ([]string, error) {
	var result struct {
		CustomerIDs []string `json:"customer_ids"`
	}
	path := fmt.Sprintf("/api/customers/due-for-renewal?within_days=%d", withinDays)
	if err := p.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.CustomerIDs, nil
}

func (p *HTTPProvider) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if p.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIToken)
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("data provider error (%d): %s", resp.StatusCode, string(respBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
