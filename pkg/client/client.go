// Package client is the wallet API client used by command-line consumers.
// It speaks the JSON envelope the server emits, surfaces server errors as
// apperror values, and implements the reconcile.Backend contract so a
// Syncer can read and write balances through it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"zenfi-wallet/pkg/apperror"
	"zenfi-wallet/pkg/reconcile"

	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// Client talks to one wallet API server on behalf of one session.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client for the given server base URL, e.g.
// "https://api.zenfi.example". The token starts empty; call Login or
// SetToken before hitting authenticated endpoints.
func New(baseURL string, log zerolog.Logger) *Client {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// SetToken installs a previously issued session token.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current session token, empty if not logged in.
func (c *Client) Token() string { return c.token }

// Profile is the account view returned by the wallet endpoints.
type Profile struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	FullName      *string `json:"full_name,omitempty"`
	Balance       int64   `json:"balance"`
	ReferralCode  string  `json:"referral_code"`
	ReferralCount int     `json:"referral_count"`
	Role          string  `json:"role"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// Session is the result of a successful register or login.
type Session struct {
	Profile Profile `json:"profile"`
	Token   string  `json:"token"`
	Expiry  int64   `json:"expiry"`
}

// Payment mirrors the server payment resource.
type Payment struct {
	ID              string  `json:"id"`
	ProfileID       string  `json:"profile_id"`
	Amount          int64   `json:"amount"`
	Status          string  `json:"status"`
	ReceiptURL      *string `json:"receipt_url,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	AcknowledgedAt  *string `json:"acknowledged_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// PaymentPage is one page of a payment listing.
type PaymentPage struct {
	Items      []Payment `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// ClaimResult is the outcome of a daily reward claim.
type ClaimResult struct {
	ClaimID   string `json:"claim_id"`
	Amount    int64  `json:"amount"`
	Balance   int64  `json:"balance"`
	ClaimedAt string `json:"claimed_at"`
}

// Notification mirrors the server notification resource.
type Notification struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Priority    string `json:"priority"`
	IsBroadcast bool   `json:"is_broadcast"`
	IsRead      bool   `json:"is_read"`
	CreatedAt   string `json:"created_at"`
}

// Register creates a new account and keeps its session token.
func (c *Client) Register(ctx context.Context, email, password string, referralCode *string) (*Session, error) {
	body := map[string]any{"email": email, "password": password}
	if referralCode != nil {
		body["referral_code"] = *referralCode
	}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", body, &s); err != nil {
		return nil, err
	}
	c.token = s.Token
	return &s, nil
}

// Login authenticates and keeps the session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, &s)
	if err != nil {
		return nil, err
	}
	c.token = s.Token
	return &s, nil
}

// Wallet fetches the authoritative profile, balance included.
func (c *Client) Wallet(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/wallet", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Claim performs the daily reward claim with the given idempotency key.
func (c *Client) Claim(ctx context.Context, idempotencyKey string) (*ClaimResult, error) {
	var r ClaimResult
	err := c.do(ctx, http.MethodPost, "/api/v1/wallet/claim", map[string]any{
		"idempotency_key": idempotencyKey,
	}, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SubmitPayment submits a transfer claim for review.
func (c *Client) SubmitPayment(ctx context.Context, amount int64, receiptURL *string) (*Payment, error) {
	body := map[string]any{"amount": amount}
	if receiptURL != nil {
		body["receipt_url"] = *receiptURL
	}
	var p Payment
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LatestPayment returns the most recent payment, nil when none exist yet.
func (c *Client) LatestPayment(ctx context.Context) (*Payment, error) {
	var p Payment
	err := c.do(ctx, http.MethodGet, "/api/v1/payments/latest", nil, &p)
	if err == errNoContent {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPayments returns one page of the caller's payment history.
func (c *Client) ListPayments(ctx context.Context, page, pageSize int) (*PaymentPage, error) {
	path := fmt.Sprintf("/api/v1/payments?page=%d&page_size=%d", page, pageSize)
	var pg PaymentPage
	if err := c.do(ctx, http.MethodGet, path, nil, &pg); err != nil {
		return nil, err
	}
	return &pg, nil
}

// AcknowledgePayment marks a reviewed payment as seen.
func (c *Client) AcknowledgePayment(ctx context.Context, paymentID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/payments/"+paymentID+"/ack", nil, nil)
}

// Notifications lists the caller's visible notifications.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var ns []Notification
	if err := c.doList(ctx, "/api/v1/notifications", &ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// ReadBalance implements reconcile.Backend.
func (c *Client) ReadBalance(ctx context.Context) (int64, error) {
	p, err := c.Wallet(ctx)
	if err != nil {
		return 0, err
	}
	return p.Balance, nil
}

// WriteClaim implements reconcile.Backend. The delta key doubles as the
// idempotency key, so a retried write resolves to the first application.
func (c *Client) WriteClaim(ctx context.Context, mutation reconcile.Delta) (int64, error) {
	r, err := c.Claim(ctx, mutation.Key)
	if err != nil {
		return 0, err
	}
	return r.Balance, nil
}

// errNoContent signals a 204 to callers that treat it as "nothing yet".
var errNoContent = fmt.Errorf("no content")

type successEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return errNoContent
	}
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env successEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return json.Unmarshal(env.Data, out)
}

// doList is do for endpoints whose data field is a JSON array.
func (c *Client) doList(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	var env errorEnvelope
	if json.Unmarshal(raw, &env) == nil && env.ErrorCode != "" {
		appErr := apperror.New(env.ErrorCode, env.Message, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests {
			if retry := resp.Header.Get("Retry-After"); retry != "" {
				if secs, perr := strconv.Atoi(retry); perr == nil {
					appErr.Message = fmt.Sprintf("%s (retry in %ds)", env.Message, secs)
				}
			}
		}
		return appErr
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(raw))
}
