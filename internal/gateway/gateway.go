// Package gateway is the HTTP client for the remote sales store.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fuelsales/internal/domain"
	"fuelsales/internal/xid"
)

const DefaultBaseURL = "http://localhost:5000/api"

// maxMessageRunes caps how much of a non-JSON error body reaches staff.
const maxMessageRunes = 200

// Config replaces the app-wide constants the mobile client used to carry.
type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero leaves requests unbounded except by ctx.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

func (c *Client) ListSales(ctx context.Context, session domain.BranchSession) ([]domain.SaleRecord, error) {
	var sales []domain.SaleRecord
	path := "/fuel-sales/branch/" + url.PathEscape(session.BranchID)
	if err := c.do(ctx, http.MethodGet, path, session.Credential, nil, &sales); err != nil {
		return nil, fmt.Errorf("list sales for branch %s: %w", session.BranchID, err)
	}
	if sales == nil {
		sales = []domain.SaleRecord{}
	}
	return sales, nil
}

func (c *Client) ListInventory(ctx context.Context, session domain.BranchSession) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	path := "/inventory/branch/" + url.PathEscape(session.BranchID)
	if err := c.do(ctx, http.MethodGet, path, session.Credential, nil, &items); err != nil {
		return nil, fmt.Errorf("list inventory for branch %s: %w", session.BranchID, err)
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	return items, nil
}

func (c *Client) CreateSale(ctx context.Context, session domain.BranchSession, rec domain.SaleRecord) (domain.SaleRecord, error) {
	rec.ID = 0
	created := rec
	if err := c.do(ctx, http.MethodPost, "/fuel-sales", session.Credential, rec, &created); err != nil {
		return domain.SaleRecord{}, fmt.Errorf("create sale: %w", err)
	}
	return created, nil
}

func (c *Client) UpdateSale(ctx context.Context, session domain.BranchSession, id int64, rec domain.SaleRecord) (domain.SaleRecord, error) {
	rec.ID = id
	updated := rec
	path := "/fuel-sales/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, path, session.Credential, rec, &updated); err != nil {
		return domain.SaleRecord{}, fmt.Errorf("update sale %d: %w", id, err)
	}
	return updated, nil
}

func (c *Client) DeleteSale(ctx context.Context, session domain.BranchSession, id int64) error {
	path := "/fuel-sales/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodDelete, path, session.Credential, nil, nil); err != nil {
		return fmt.Errorf("delete sale %d: %w", id, err)
	}
	return nil
}

// Login exchanges staff credentials for a bearer token and the staff branch.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	var resp domain.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return domain.LoginResponse{}, fmt.Errorf("login: %w", err)
	}
	return resp, nil
}

// do sends one request. A nil out ignores the body; an empty 2xx body leaves
// out untouched so callers can pre-fill it with what they sent.
func (c *Client) do(ctx context.Context, method, path, token string, in any, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", xid.New("req"))
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s", domain.ErrAuth, errorMessage(raw, resp.Status))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ServerError{Status: resp.StatusCode, Message: errorMessage(raw, "")}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.ServerError{Status: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

// errorMessage pulls the human-readable part out of an error body. The store
// uses {"error": ...}; some deployments answer with {"message": ...}.
func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fallback
	}
	if runes := []rune(text); len(runes) > maxMessageRunes {
		text = string(runes[:maxMessageRunes])
	}
	return text
}
