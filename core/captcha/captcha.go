package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HeaderToken is the request header carrying the solved challenge token.
const HeaderToken = "X-Captcha-Token"

// Verifier checks a challenge token produced by the client. Implementations
// must be safe for concurrent use.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// VerifierFunc adapts a plain function to the Verifier interface.
type VerifierFunc func(ctx context.Context, token, remoteIP string) error

func (f VerifierFunc) Verify(ctx context.Context, token, remoteIP string) error {
	return f(ctx, token, remoteIP)
}

// Client verifies tokens against a siteverify-style endpoint (Turnstile,
// reCAPTCHA, and hCaptcha all share the same wire contract).
type Client struct {
	verifyURL  string
	secret     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for verification calls.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// New creates a Client for the given siteverify endpoint.
func New(verifyURL, secret string, opts ...Option) (*Client, error) {
	if verifyURL == "" {
		return nil, ErrMissingVerifyURL
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}

	c := &Client{
		verifyURL: verifyURL,
		secret:    secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token to the siteverify endpoint. remoteIP is optional
// and, when set, lets the provider bind the solution to the solver's address.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	if token == "" {
		return ErrMissingToken
	}

	form := url.Values{
		"secret":   {c.secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrVerifyUnavailable, resp.StatusCode)
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}

	if !result.Success {
		if len(result.ErrorCodes) > 0 {
			return fmt.Errorf("%w: %s", ErrVerificationFailed, strings.Join(result.ErrorCodes, ", "))
		}
		return ErrVerificationFailed
	}

	return nil
}
