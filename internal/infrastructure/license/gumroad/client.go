// Package gumroad validates license keys against the Gumroad license API.
// The gate fails closed: any provider timeout or transport failure denies
// access rather than letting unpaid analysis through.
package gumroad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

type Client struct {
	verifyURL  string
	productID  string
	httpClient *http.Client
}

func New(verifyURL, productID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		verifyURL:  verifyURL,
		productID:  productID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type verifyResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Purchase struct {
		Refunded             bool   `json:"refunded"`
		Chargebacked         bool   `json:"chargebacked"`
		SubscriptionEndedAt  string `json:"subscription_ended_at"`
		SubscriptionFailedAt string `json:"subscription_failed_at"`
		Variants             string `json:"variants"`
	} `json:"purchase"`
}

func (c *Client) Verify(ctx context.Context, licenseKey string) (domain.LicenseStatus, error) {
	if strings.TrimSpace(licenseKey) == "" {
		return domain.LicenseStatus{}, domain.WrapError(domain.ErrLicenseInvalid, "verify license", errors.New("empty key"))
	}

	form := url.Values{}
	form.Set("product_id", c.productID)
	form.Set("license_key", licenseKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.LicenseStatus{}, fmt.Errorf("create verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.LicenseStatus{}, domain.WrapError(domain.ErrLicenseProviderUnavailable, "verify license", err)
	}
	defer resp.Body.Close()

	// Gumroad answers 404 with success=false for unknown keys.
	if resp.StatusCode >= 500 {
		return domain.LicenseStatus{}, domain.WrapError(domain.ErrLicenseProviderUnavailable, "verify license",
			fmt.Errorf("provider status %s", resp.Status))
	}

	var payload verifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return domain.LicenseStatus{}, domain.WrapError(domain.ErrLicenseProviderUnavailable, "verify license",
			fmt.Errorf("decode provider response: %w", err))
	}

	if !payload.Success {
		return domain.LicenseStatus{}, domain.WrapError(domain.ErrLicenseInvalid, "verify license",
			errors.New("provider rejected key"))
	}
	if payload.Purchase.Refunded || payload.Purchase.Chargebacked ||
		payload.Purchase.SubscriptionEndedAt != "" || payload.Purchase.SubscriptionFailedAt != "" {
		return domain.LicenseStatus{}, domain.WrapError(domain.ErrLicenseExpired, "verify license",
			errors.New("purchase refunded or subscription ended"))
	}

	return domain.LicenseStatus{Valid: true, PlanTier: planTier(payload.Purchase.Variants)}, nil
}

func planTier(variants string) string {
	v := strings.ToLower(strings.Trim(variants, "() "))
	if v == "" {
		return "standard"
	}
	return v
}
