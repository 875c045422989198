// Package payment wraps the SSLCommerz payment gateway's session API.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	sandboxURL = "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"
	liveURL    = "https://securepay.sslcommerz.com/gwprocess/v4/api.php"
)

// InitiateRequest carries the order fields the gateway needs to open a
// payment session.
type InitiateRequest struct {
	TotalAmount  float64
	Currency     string
	TranID       string
	SuccessURL   string
	FailURL      string
	CancelURL    string
	CustomerName string
	CustomerMail string
	ProductName  string
}

// InitiateResponse is the gateway's session reply. Status is "SUCCESS" or
// "FAILED"; on success GatewayPageURL is where the customer completes
// payment.
type InitiateResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// Succeeded reports whether the gateway opened a session.
func (r *InitiateResponse) Succeeded() bool {
	return strings.EqualFold(r.Status, "SUCCESS") && r.GatewayPageURL != ""
}

// Client is a thin HTTP client for the gateway's form-encoded API.
type Client struct {
	storeID       string
	storePassword string
	endpoint      string
	http          *http.Client
}

// NewClient creates a gateway client. live selects the production endpoint;
// everything else goes to the sandbox.
func NewClient(storeID, storePassword string, live bool, timeout time.Duration) *Client {
	endpoint := sandboxURL
	if live {
		endpoint = liveURL
	}
	return &Client{
		storeID:       storeID,
		storePassword: storePassword,
		endpoint:      endpoint,
		http:          &http.Client{Timeout: timeout},
	}
}

// Initiate opens a payment session for the order.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	form := url.Values{}
	form.Set("store_id", c.storeID)
	form.Set("store_passwd", c.storePassword)
	form.Set("total_amount", fmt.Sprintf("%.2f", req.TotalAmount))
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TranID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerMail)
	form.Set("product_name", req.ProductName)
	form.Set("shipping_method", "NO")
	form.Set("product_category", "general")
	form.Set("product_profile", "general")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var out InitiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return &out, nil
}
