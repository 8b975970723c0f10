// Package mapclient is a typed Go client for the munimap API.
package mapclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MunimapAPIClient is the interface for the munimap API.
type MunimapAPIClient interface {
	Health(ctx context.Context) (*http.Response, HealthBody, error)
	GetInfo(ctx context.Context) (*http.Response, InfoBody, error)
	ListLayers(ctx context.Context) (*http.Response, []LayerStatus, error)
	GetLayer(ctx context.Context, id string) (*http.Response, LayerConfig, error)
	UpdateLayer(ctx context.Context, id string, cfg LayerConfig) (*http.Response, LayerConfig, error)
	GetLayerFeatures(ctx context.Context, id string) (*http.Response, []byte, error)
	ListSources(ctx context.Context) (*http.Response, []SourceFile, error)
	GetThematic(ctx context.Context) (*http.Response, ThematicBody, error)
	ListAttributes(ctx context.Context) (*http.Response, []AttributeInfo, error)
	ApplyThematic(ctx context.Context, attribute string) (*http.Response, ThematicBody, error)
	ResetThematic(ctx context.Context) (*http.Response, MessageBody, error)
	AttributeStats(ctx context.Context, layerID, attribute string) (*http.Response, AttributeStats, error)
	ListTables(ctx context.Context) (*http.Response, TablesBody, error)
	Query(ctx context.Context, input QueryInputBody) (*http.Response, QueryBody, error)
}

// Client implements MunimapAPIClient over HTTP.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) MunimapAPIClient {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode >= 400 {
		return resp, fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out != nil && len(data) > 0 {
		if raw, ok := out.(*[]byte); ok {
			*raw = data
		} else if err := json.Unmarshal(data, out); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func (c *Client) Health(ctx context.Context) (*http.Response, HealthBody, error) {
	var body HealthBody
	resp, err := c.do(ctx, http.MethodGet, "/health", nil, &body)
	return resp, body, err
}

func (c *Client) GetInfo(ctx context.Context) (*http.Response, InfoBody, error) {
	var body InfoBody
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/info", nil, &body)
	return resp, body, err
}

func (c *Client) ListLayers(ctx context.Context) (*http.Response, []LayerStatus, error) {
	var body []LayerStatus
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/layers", nil, &body)
	return resp, body, err
}

func (c *Client) GetLayer(ctx context.Context, id string) (*http.Response, LayerConfig, error) {
	var body LayerConfig
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/layers/"+id, nil, &body)
	return resp, body, err
}

func (c *Client) UpdateLayer(ctx context.Context, id string, cfg LayerConfig) (*http.Response, LayerConfig, error) {
	var body LayerConfig
	resp, err := c.do(ctx, http.MethodPut, "/api/v1/layers/"+id, cfg, &body)
	return resp, body, err
}

// GetLayerFeatures returns the styled GeoJSON document verbatim.
func (c *Client) GetLayerFeatures(ctx context.Context, id string) (*http.Response, []byte, error) {
	var body []byte
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/layers/"+id+"/features", nil, &body)
	return resp, body, err
}

func (c *Client) ListSources(ctx context.Context) (*http.Response, []SourceFile, error) {
	var body []SourceFile
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/sources", nil, &body)
	return resp, body, err
}

func (c *Client) GetThematic(ctx context.Context) (*http.Response, ThematicBody, error) {
	var body ThematicBody
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/thematic", nil, &body)
	return resp, body, err
}

func (c *Client) ListAttributes(ctx context.Context) (*http.Response, []AttributeInfo, error) {
	var body []AttributeInfo
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/thematic/attributes", nil, &body)
	return resp, body, err
}

func (c *Client) ApplyThematic(ctx context.Context, attribute string) (*http.Response, ThematicBody, error) {
	var body ThematicBody
	in := map[string]string{"attribute": attribute}
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/thematic/apply", in, &body)
	return resp, body, err
}

func (c *Client) ResetThematic(ctx context.Context) (*http.Response, MessageBody, error) {
	var body MessageBody
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/thematic/reset", struct{}{}, &body)
	return resp, body, err
}

func (c *Client) AttributeStats(ctx context.Context, layerID, attribute string) (*http.Response, AttributeStats, error) {
	var body AttributeStats
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/layers/"+layerID+"/attributes/"+attribute+"/stats", nil, &body)
	return resp, body, err
}

func (c *Client) ListTables(ctx context.Context) (*http.Response, TablesBody, error) {
	var body TablesBody
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/tables", nil, &body)
	return resp, body, err
}

func (c *Client) Query(ctx context.Context, input QueryInputBody) (*http.Response, QueryBody, error) {
	var body QueryBody
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/query", input, &body)
	return resp, body, err
}
