package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"

	"github.com/goccy/go-json"

	"adboard-sync/internal/config/configs"
	"adboard-sync/internal/core/port"
)

// Client implements port.PlatformClient against the platform REST API.
// Every call is routed through the rate-limited gateway; existence checks
// and network reads go out at high priority so pre-flight work is not
// starved behind bulk creation traffic.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	gw         port.Gateway
}

// NewClient builds a platform client from configuration. The gateway is
// shared so that all callers respect one rate limit.
func NewClient(cfg configs.Platform, gw port.Gateway) *Client {
	return &Client{
		baseURL:    cfg.Addr.String(),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		gw:         gw,
	}
}

// requestConfig describes one platform API request.
type requestConfig struct {
	method string
	path   string
	query  url.Values
	body   any
}

// GetNetwork confirms the network exists and the credentials are accepted.
func (c *Client) GetNetwork(ctx context.Context, id int) (*port.RemoteNetwork, error) {
	var n port.RemoteNetwork
	cfg := requestConfig{method: http.MethodGet, path: fmt.Sprintf("/api/v1/networks/%d", id)}
	key := fmt.Sprintf("network:%d", id)
	if err := c.call(ctx, port.PriorityHigh, key, cfg, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) AdvertiserExists(ctx context.Context, networkID int, name string) (bool, error) {
	e, err := c.findByName(ctx, fmt.Sprintf("/api/v1/networks/%d/advertisers", networkID), name,
		fmt.Sprintf("advertisers:%d:%s", networkID, name))
	return e != nil, err
}

func (c *Client) FindAdvertiserByName(ctx context.Context, networkID int, name string) (*port.RemoteEntity, error) {
	return c.findByName(ctx, fmt.Sprintf("/api/v1/networks/%d/advertisers", networkID), name,
		fmt.Sprintf("advertisers:%d:%s", networkID, name))
}

func (c *Client) CreateAdvertiser(ctx context.Context, p port.AdvertiserPayload) (*port.RemoteEntity, error) {
	return c.create(ctx, "/api/v1/advertisers", p)
}

func (c *Client) ZoneExists(ctx context.Context, networkID int, name string) (bool, error) {
	e, err := c.findByName(ctx, fmt.Sprintf("/api/v1/networks/%d/zones", networkID), name,
		fmt.Sprintf("zones:%d:%s", networkID, name))
	return e != nil, err
}

func (c *Client) CreateZone(ctx context.Context, p port.ZonePayload) (*port.RemoteEntity, error) {
	return c.create(ctx, "/api/v1/zones", p)
}

func (c *Client) CampaignExists(ctx context.Context, advertiserID int, name string) (bool, error) {
	e, err := c.findByName(ctx, fmt.Sprintf("/api/v1/advertisers/%d/campaigns", advertiserID), name,
		fmt.Sprintf("campaigns:%d:%s", advertiserID, name))
	return e != nil, err
}

func (c *Client) FindCampaignByName(ctx context.Context, advertiserID int, name string) (*port.RemoteEntity, error) {
	return c.findByName(ctx, fmt.Sprintf("/api/v1/advertisers/%d/campaigns", advertiserID), name,
		fmt.Sprintf("campaigns:%d:%s", advertiserID, name))
}

func (c *Client) CreateCampaign(ctx context.Context, p port.CampaignPayload) (*port.RemoteEntity, error) {
	return c.create(ctx, "/api/v1/campaigns", p)
}

func (c *Client) CreatePlacement(ctx context.Context, p port.PlacementPayload) (*port.RemoteEntity, error) {
	return c.create(ctx, "/api/v1/placements", p)
}

// findByName lists entities filtered by name and returns the exact match,
// or nil when the name is unknown remotely. Same-key lookups in flight are
// coalesced by the gateway.
func (c *Client) findByName(ctx context.Context, path, name, key string) (*port.RemoteEntity, error) {
	var list []port.RemoteEntity
	cfg := requestConfig{
		method: http.MethodGet,
		path:   path,
		query:  url.Values{"name": []string{name}},
	}
	if err := c.call(ctx, port.PriorityHigh, key, cfg, &list); err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], nil
		}
	}
	return nil, nil
}

// create posts a payload at normal priority. Creates are never coalesced.
func (c *Client) create(ctx context.Context, path string, payload any) (*port.RemoteEntity, error) {
	var e port.RemoteEntity
	cfg := requestConfig{method: http.MethodPost, path: path, body: payload}
	if err := c.call(ctx, port.PriorityNormal, "", cfg, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// call routes one request through the gateway and decodes the JSON
// response into result when it is non-nil.
func (c *Client) call(ctx context.Context, pr port.Priority, key string, cfg requestConfig, result any) error {
	_, err := c.gw.Do(ctx, pr, key, func(ctx context.Context) (any, error) {
		return nil, c.doRequest(ctx, cfg, result)
	})
	return err
}

func (c *Client) doRequest(ctx context.Context, cfg requestConfig, result any) error {
	reqURL := c.baseURL + cfg.path

	var body io.Reader = http.NoBody
	if cfg.body != nil {
		raw, err := json.Marshal(cfg.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method, reqURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if cfg.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(cfg.query) > 0 {
		req.URL.RawQuery = cfg.query.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError is the platform's error envelope. Bodies that do not parse fall
// back to the raw text.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := ""
	var ae apiError
	if json.Unmarshal(raw, &ae) == nil {
		if ae.Message != "" {
			msg = ae.Message
		} else {
			msg = ae.Error
		}
	}
	if msg == "" {
		msg = string(bytes.TrimSpace(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &port.PlatformError{StatusCode: resp.StatusCode, Message: msg}
}

// transportError maps a low-level failure to a classifiable code.
func transportError(err error) error {
	pe := &port.PlatformError{Message: err.Error()}
	var ne net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		pe.TransportCode = port.TransportRefused
	case errors.Is(err, syscall.ECONNRESET):
		pe.TransportCode = port.TransportReset
	case errors.Is(err, context.DeadlineExceeded):
		pe.TransportCode = port.TransportTimeout
	case errors.As(err, &ne) && ne.Timeout():
		pe.TransportCode = port.TransportTimeout
	}
	return pe
}
