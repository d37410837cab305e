package koraki

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	userAgent = "Koraki-Go/1.4.0"

	// Integration is the integration type announced to Koraki.
	Integration = "wordpress"

	// PlanHeader carries the subscription tier on integration lookups.
	PlanHeader = "x-koraki-plan"
	// TopicHeader carries the notification topic on webhook calls.
	TopicHeader = "x-woo-topic"
	// DeliveryHeader carries a per-call id for correlating logs on both sides.
	DeliveryHeader = "x-koraki-delivery"

	maxBodySize = 1 << 20
)

// HTTPDoer describes the HTTP client used to reach Koraki.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credentials are the client id and secret issued by the Koraki dashboard.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Token returns base64("id:secret"), used both as the Basic auth value and
// as the webhook path token.
func (c Credentials) Token() string {
	return base64.StdEncoding.EncodeToString([]byte(c.ClientID + ":" + c.ClientSecret))
}

// Response is the part of a Koraki reply the callers look at.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client talks to a single Koraki host.
type Client struct {
	host   string
	client HTTPDoer
}

// NewClient returns a Client for host. A nil doer gets an http.Client with
// the given timeout (10s when zero).
func NewClient(host string, doer HTTPDoer, timeout time.Duration) *Client {
	if doer == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		host:   strings.TrimRight(strings.TrimSpace(host), "/"),
		client: doer,
	}
}

// Host returns the API base URL.
func (c *Client) Host() string {
	return c.host
}

type integrationRequest struct {
	Integration string          `json:"integration"`
	Meta        integrationMeta `json:"meta"`
}

type integrationMeta struct {
	URL string `json:"url"`
}

// PutIntegration registers siteURL as a WordPress integration of the
// application owning creds.
func (c *Client) PutIntegration(ctx context.Context, creds Credentials, siteURL string) (*Response, error) {
	body := integrationRequest{Integration: Integration, Meta: integrationMeta{URL: siteURL}}
	return c.do(ctx, http.MethodPut, c.integrationsURL(), creds, body, nil)
}

// GetIntegration fetches the integration; the plan tier is in PlanHeader.
func (c *Client) GetIntegration(ctx context.Context, creds Credentials) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.integrationsURL(), creds, nil, nil)
}

// DeleteIntegration removes the WordPress integration server-side.
func (c *Client) DeleteIntegration(ctx context.Context, creds Credentials) (*Response, error) {
	return c.do(ctx, http.MethodDelete, c.integrationsURL()+"/"+Integration, creds, nil, nil)
}

// PostWebhook sends payload to the webhook endpoint for topic.
func (c *Client) PostWebhook(ctx context.Context, creds Credentials, topic string, payload any) (*Response, error) {
	target := fmt.Sprintf("%s/modules/v1.0/webhooks/%s/%s/%s", c.host, Integration, topic, creds.Token())
	headers := map[string]string{
		TopicHeader:    topic,
		DeliveryHeader: uuid.NewString(),
	}
	return c.do(ctx, http.MethodPost, target, creds, payload, headers)
}

func (c *Client) integrationsURL() string {
	return c.host + "/api/v1.0/applications/0/integrations"
}

func (c *Client) do(ctx context.Context, method, target string, creds Credentials, body any, headers map[string]string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode koraki request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build koraki request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+creds.Token())
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, redact(target, creds), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read koraki response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// redact hides the credential token embedded in webhook URLs.
func redact(target string, creds Credentials) string {
	token := creds.Token()
	if token == "" {
		return target
	}
	return strings.ReplaceAll(target, token, "***")
}
