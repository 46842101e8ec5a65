package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pirouette/content/internal/filestore"
	"github.com/pirouette/content/internal/service"
)

// Page is the resolved page document returned by the server.
type Page struct {
	Slug     string                 `json:"slug"`
	ClientID string                 `json:"clientId"`
	Data     map[string]interface{} `json:"data"`
	Version  int64                  `json:"version"`
	Exists   bool                   `json:"exists"`
}

// Client talks to a running content server over HTTP.
type Client interface {
	io.Closer
	GetPage(ctx context.Context, slug, clientID string) (*Page, error)
	SavePage(ctx context.Context, slug, clientID string, data map[string]interface{}, updatedBy, comment string) (*Page, error)
	DeletePage(ctx context.Context, slug, clientID string) error
	ListPageVersions(ctx context.Context, slug, clientID string) ([]service.PageVersion, error)
	RestorePageVersion(ctx context.Context, slug, clientID string, version int64) (*Page, error)
	SaveContent(ctx context.Context, schema map[string]interface{}, author, comment string) (int64, error)
	LoadContent(ctx context.Context, route string) (map[string]interface{}, error)
	ListContentVersions(ctx context.Context, route string) ([]filestore.VersionRecord, error)
}

type client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) (Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:4020"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, err
	}
	return &client{
		base: baseURL,
		http: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var buf io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(encoded)
	}

	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, res.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func scopeQuery(clientID string) url.Values {
	q := url.Values{}
	if clientID != "" {
		q.Set("client_id", clientID)
	}
	return q
}

func (c *client) GetPage(ctx context.Context, slug, clientID string) (*Page, error) {
	var page Page
	err := c.do(ctx, http.MethodGet, "/v1/pages/"+slug, scopeQuery(clientID), nil, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *client) SavePage(ctx context.Context, slug, clientID string, data map[string]interface{}, updatedBy, comment string) (*Page, error) {
	body := map[string]interface{}{
		"data":      data,
		"updatedBy": updatedBy,
		"comment":   comment,
	}

	var page Page
	err := c.do(ctx, http.MethodPut, "/v1/pages/"+slug, scopeQuery(clientID), body, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *client) DeletePage(ctx context.Context, slug, clientID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/pages/"+slug, scopeQuery(clientID), nil, nil)
}

func (c *client) ListPageVersions(ctx context.Context, slug, clientID string) ([]service.PageVersion, error) {
	var versions []service.PageVersion
	err := c.do(ctx, http.MethodGet, "/v1/pages/"+slug+"/versions", scopeQuery(clientID), nil, &versions)
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (c *client) RestorePageVersion(ctx context.Context, slug, clientID string, version int64) (*Page, error) {
	body := map[string]interface{}{"version": version}

	var page Page
	err := c.do(ctx, http.MethodPost, "/v1/pages/"+slug+"/restore", scopeQuery(clientID), body, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *client) SaveContent(ctx context.Context, schema map[string]interface{}, author, comment string) (int64, error) {
	body := map[string]interface{}{
		"schema":  schema,
		"author":  author,
		"comment": comment,
	}

	var res struct {
		Version int64 `json:"version"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/content/save", nil, body, &res); err != nil {
		return 0, err
	}
	return res.Version, nil
}

func (c *client) LoadContent(ctx context.Context, route string) (map[string]interface{}, error) {
	q := url.Values{}
	q.Set("route", route)

	var res struct {
		Schema map[string]interface{} `json:"schema"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/content/load", q, nil, &res); err != nil {
		return nil, err
	}
	return res.Schema, nil
}

func (c *client) ListContentVersions(ctx context.Context, route string) ([]filestore.VersionRecord, error) {
	q := url.Values{}
	q.Set("route", route)

	var versions []filestore.VersionRecord
	if err := c.do(ctx, http.MethodGet, "/api/content/versions", q, nil, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}
