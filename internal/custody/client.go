package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tokengate/internal/custody/retry"
	"tokengate/internal/metrics"
)

// Client is the REST implementation of Gateway. Read-only calls go
// through the configured retry strategy; write submission and
// sign-and-push run exactly once, since replaying either could produce
// a second on-chain transaction.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	readRetry  retry.Strategy
}

// NewClient creates a custody REST client. timeout bounds every
// individual HTTP request.
func NewClient(baseURL, apiKey string, timeout time.Duration, readRetry retry.Strategy) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		readRetry:  readRetry,
	}
}

type apiError struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// SubmitWriteCall submits an encoded state-changing call for signing.
func (c *Client) SubmitWriteCall(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	body := map[string]any{
		"description": req.Description,
		"source":      map[string]string{"assetId": req.SourceAssetID},
		"metadata": map[string]string{
			"data":            req.EncodedData,
			"contractAddress": req.ContractAddress,
		},
	}

	var resp SubmitResponse
	if err := c.post(ctx, "/v1/contracts/send", body, &resp); err != nil {
		return nil, err
	}
	if resp.TransactionID == "" {
		return nil, &SubmissionError{StatusCode: http.StatusOK, Message: "custody service returned no transaction id"}
	}

	slog.Debug("Custody accepted write call",
		"custody_tx_id", resp.TransactionID,
		"contract", req.ContractAddress,
	)
	return &resp, nil
}

// ExecuteReadCall runs a read-only contract call. Transient transport
// failures are retried per the configured strategy.
func (c *Client) ExecuteReadCall(ctx context.Context, req ReadRequest) (*ReadResponse, error) {
	body := map[string]any{
		"metadata": map[string]string{
			"data":            req.EncodedData,
			"contractAddress": req.ContractAddress,
		},
	}

	var resp ReadResponse
	err := c.readRetry.Execute(ctx, func() error {
		return c.post(ctx, "/v1/contracts/call", body, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Data == "" {
		return nil, fmt.Errorf("custody read call returned empty data for contract %s", req.ContractAddress)
	}
	return &resp, nil
}

// ConfirmSignAndPush asks the custody service to sign and broadcast a
// submitted transaction.
func (c *Client) ConfirmSignAndPush(ctx context.Context, custodyTxID, recordID string) (*ConfirmResponse, error) {
	body := map[string]string{"recordId": recordID}

	var resp ConfirmResponse
	path := "/v1/transactions/" + custodyTxID + "/sign-and-push"
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// metricPath collapses per-transaction paths so the duration metric
// keeps a bounded label set.
func metricPath(path string) string {
	if strings.HasPrefix(path, "/v1/transactions/") {
		return "/v1/transactions/{id}/sign-and-push"
	}
	return path
}

// post issues one JSON POST and decodes the response into out.
// Non-2xx responses become *SubmissionError with the custody message.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal custody request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build custody request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.CustodyRequestDuration.WithLabelValues(metricPath(path)).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("custody request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read custody response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
			if apiErr.Detail != "" {
				msg += ": " + apiErr.Detail
			}
		}
		return &SubmissionError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode custody response from %s: %w", path, err)
		}
	}
	return nil
}
