package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/traceroot-ai/traceroot-sdk-go/pkg/config"
)

// verifyResponse is the wire shape of the credential verification endpoint.
type verifyResponse struct {
	AccessKeyID     string `json:"aws_access_key_id"`
	SecretAccessKey string `json:"aws_secret_access_key"`
	SessionToken    string `json:"aws_session_token"`
	Region          string `json:"region"`
	Hash            string `json:"hash"`
	ExpirationUTC   string `json:"expiration_utc"`
	OtlpEndpoint    string `json:"otlp_endpoint"`
}

// Client fetches credential snapshots from the verification endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

// Fetch performs one GET against the verification endpoint and returns the
// parsed snapshot. Network failures, non-2xx statuses and malformed bodies
// all surface as errors; the caller decides how to recover.
func (c *Client) Fetch(ctx context.Context, token string) (*config.CredentialSnapshot, error) {
	endpoint := fmt.Sprintf("%s%s?token=%s", c.baseURL, verifyPath, url.QueryEscape(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("credentials: building verify request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("credentials: verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("credentials: verify endpoint returned %s", resp.Status)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("credentials: decoding verify response: %w", err)
	}
	if body.AccessKeyID == "" || body.SecretAccessKey == "" {
		return nil, fmt.Errorf("credentials: verify response missing key material")
	}

	expiration, err := ParseExpiration(body.ExpirationUTC)
	if err != nil {
		return nil, err
	}

	return &config.CredentialSnapshot{
		AccessKeyID:     body.AccessKeyID,
		SecretAccessKey: body.SecretAccessKey,
		SessionToken:    body.SessionToken,
		Region:          body.Region,
		Hash:            body.Hash,
		ExpirationUTC:   expiration,
		OtlpEndpoint:    body.OtlpEndpoint,
	}, nil
}

// expirationLayouts are tried in order for timezone-less timestamps. The
// endpoint promises UTC, so a missing suffix is interpreted as UTC.
var expirationLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseExpiration interprets the expiration_utc field. Timestamps carrying a
// timezone are honored and converted to UTC; timestamps without one are
// treated as UTC regardless.
func ParseExpiration(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("credentials: verify response missing expiration_utc")
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range expirationLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("credentials: unparseable expiration_utc %q", raw)
}
