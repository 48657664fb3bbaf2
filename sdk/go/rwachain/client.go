package rwachain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultHTTPTimeout defines the timeout used by clients created without a
// custom http.Client. It is intentionally short to avoid hanging network calls.
const DefaultHTTPTimeout = 15 * time.Second

// Client wraps the HTTP interactions with the RWA-Chain REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// IntakeSubmission represents the payload required to submit raw asset text.
type IntakeSubmission struct {
	ID            string `json:"id,omitempty"`
	RawText       string `json:"raw_text"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

// JobOutcome is the result attached to a finished intake job.
type JobOutcome struct {
	AssetID            string  `json:"asset_id"`
	AssetType          string  `json:"asset_type"`
	Confidence         float64 `json:"confidence"`
	VerificationStatus string  `json:"verification_status"`
	OverallScore       float64 `json:"overall_score"`
	Notes              string  `json:"notes,omitempty"`
}

// Job describes an intake job as returned by the API.
type Job struct {
	ID            string      `json:"id"`
	RawText       string      `json:"raw_text"`
	WalletAddress string      `json:"wallet_address"`
	Status        string      `json:"status"`
	Attempts      int         `json:"attempts"`
	MaxRetries    int         `json:"max_retries"`
	LastError     string      `json:"last_error,omitempty"`
	ErrorCode     string      `json:"error_code,omitempty"`
	Result        *JobOutcome `json:"result,omitempty"`
	CreatedAt     int64       `json:"created_at"`
	UpdatedAt     int64       `json:"updated_at"`
}

// AssetRecord mirrors the structured fields extracted for an asset.
type AssetRecord struct {
	ID             string  `json:"id,omitempty"`
	WalletAddress  string  `json:"wallet_address,omitempty"`
	AssetType      string  `json:"asset_type"`
	EstimatedValue float64 `json:"estimated_value"`
	Location       string  `json:"location"`
	Description    string  `json:"description"`
}

// AgentScore is one scoring agent's contribution to a report.
type AgentScore struct {
	Agent string  `json:"agent"`
	Score float64 `json:"score"`
	Notes string  `json:"notes"`
}

// VerificationReport summarises the outcome of asset verification.
type VerificationReport struct {
	OverallScore    float64      `json:"overall_score"`
	Status          string       `json:"status"`
	Breakdown       []AgentScore `json:"breakdown"`
	AgentNotes      []string     `json:"agent_notes"`
	Recommendations []string     `json:"recommendations"`
	NextSteps       []string     `json:"next_steps"`
	Issues          []string     `json:"issues,omitempty"`
}

// TokenReceipt describes the result of a tokenization request.
type TokenReceipt struct {
	Success         bool           `json:"success"`
	TokenID         string         `json:"token_id,omitempty"`
	ContractAddress string         `json:"contract_address,omitempty"`
	TransactionHash string         `json:"transaction_hash,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	Network         string         `json:"network,omitempty"`
	Standard        string         `json:"standard,omitempty"`
	CreatedAt       time.Time      `json:"created_at,omitempty"`
	Status          string         `json:"status"`
	Error           string         `json:"error,omitempty"`
}

// Asset is the stored view of an asset with its attachments.
type Asset struct {
	Asset     AssetRecord         `json:"asset"`
	Report    *VerificationReport `json:"report,omitempty"`
	Token     *TokenReceipt       `json:"token,omitempty"`
	CreatedAt int64               `json:"created_at"`
	UpdatedAt int64               `json:"updated_at"`
}

// Transaction is a journal entry recorded against an asset.
type Transaction struct {
	ID        string `json:"id"`
	AssetID   string `json:"asset_id"`
	Kind      string `json:"kind"`
	Hash      string `json:"hash"`
	CreatedAt int64  `json:"created_at"`
}

// AssetStats aggregates asset level counters.
type AssetStats struct {
	TotalAssets     int64            `json:"total_assets"`
	VerifiedAssets  int64            `json:"verified_assets"`
	TokenizedAssets int64            `json:"tokenized_assets"`
	TotalValue      float64          `json:"total_value"`
	ByType          map[string]int64 `json:"by_type"`
}

// JobStats aggregates intake job counters.
type JobStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Stats bundles both stat views returned by the API.
type Stats struct {
	Assets AssetStats `json:"assets"`
	Jobs   JobStats   `json:"jobs"`
}

// APIError represents server side validation or internal errors.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("rwachain api error (%d): %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("rwachain api error (%d): %s", e.StatusCode, e.Message)
}

// NewClient instantiates a client for the RWA-Chain API. When httpClient is
// nil, a default client with a sensible timeout is used.
func NewClient(rawURL string, httpClient *http.Client) *Client {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		panic(fmt.Sprintf("invalid base url: %v", err))
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}
}

// Submit enqueues raw asset text for extraction and verification.
func (c *Client) Submit(ctx context.Context, submission IntakeSubmission) (Job, error) {
	var job Job
	if err := c.post(ctx, "/api/v1/intake", submission, &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// GetJob fetches an intake job by identifier.
func (c *Client) GetJob(ctx context.Context, jobID string) (Job, error) {
	var job Job
	if err := c.get(ctx, "/api/v1/intake/"+url.PathEscape(jobID), &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// WaitForJob polls an intake job until it reaches a terminal state or the
// context is cancelled.
func (c *Client) WaitForJob(ctx context.Context, jobID string, interval time.Duration) (Job, error) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		job, err := c.GetJob(ctx, jobID)
		if err != nil {
			return Job{}, err
		}
		switch job.Status {
		case "succeeded":
			return job, nil
		case "failed":
			if job.Attempts >= job.MaxRetries {
				return job, nil
			}
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetAsset fetches a stored asset by identifier.
func (c *Client) GetAsset(ctx context.Context, assetID string) (Asset, error) {
	var stored Asset
	if err := c.get(ctx, "/api/v1/assets/"+url.PathEscape(assetID), &stored); err != nil {
		return Asset{}, err
	}
	return stored, nil
}

// Verify re-runs verification for an asset and returns the fresh report.
func (c *Client) Verify(ctx context.Context, assetID string) (VerificationReport, error) {
	var report VerificationReport
	endpoint := "/api/v1/assets/" + url.PathEscape(assetID) + "/verify"
	if err := c.post(ctx, endpoint, nil, &report); err != nil {
		return VerificationReport{}, err
	}
	return report, nil
}

// Tokenize mints a token for a verified asset. When the server rejects the
// mint for an unverified asset it responds with a conflict, surfaced here as
// an *APIError with StatusCode 409.
func (c *Client) Tokenize(ctx context.Context, assetID string) (TokenReceipt, error) {
	var receipt TokenReceipt
	endpoint := "/api/v1/assets/" + url.PathEscape(assetID) + "/tokenize"
	if err := c.post(ctx, endpoint, nil, &receipt); err != nil {
		return TokenReceipt{}, err
	}
	return receipt, nil
}

// Transactions lists the journal entries recorded for an asset.
func (c *Client) Transactions(ctx context.Context, assetID string) ([]Transaction, error) {
	var txs []Transaction
	endpoint := "/api/v1/assets/" + url.PathEscape(assetID) + "/transactions"
	if err := c.get(ctx, endpoint, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// WalletAssets lists the assets registered under a wallet address.
func (c *Client) WalletAssets(ctx context.Context, walletAddress string) ([]Asset, error) {
	var list []Asset
	endpoint := "/api/v1/wallets/" + url.PathEscape(walletAddress) + "/assets"
	if err := c.get(ctx, endpoint, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Stats fetches the aggregated platform statistics.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := c.get(ctx, "/api/v1/stats", &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(body)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	rel := &url.URL{Path: path.Join(c.baseURL.Path, endpoint)}
	u := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr APIError
		apiErr.StatusCode = resp.StatusCode
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		if len(data) > 0 {
			_ = json.Unmarshal(data, &apiErr)
		}
		if apiErr.Message == "" {
			apiErr.Message = string(bytes.TrimSpace(data))
		}
		return &apiErr
	}

	if out == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
