// Package rest implements the record-store contract against a
// PostgREST-style HTTP API: collections addressed by path, filters in query
// parameters, inserts posted as single-element JSON arrays. This is the wire
// shape of the hosted registry backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ptaregistry.org/internal/recordstore"
	"ptaregistry.org/internal/registry"
)

const (
	permitsCollection = "permits"
	usersCollection   = "users"

	defaultTimeout = 15 * time.Second
	maxErrorBody   = 512
)

// Client talks to the remote record store.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

var _ recordstore.Store = (*Client)(nil)

// Option configures Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client with sensible defaults. baseURL points at the REST
// root (the collection name is appended per call).
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("record store base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid record store URL: %w", err)
	}
	c := &Client{
		base:   baseURL,
		apiKey: strings.TrimSpace(apiKey),
		http:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) ListPermits(ctx context.Context) ([]registry.Permit, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "createdAt.desc")
	var out []registry.Permit
	if err := c.do(ctx, http.MethodGet, permitsCollection, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) InsertPermit(ctx context.Context, p registry.Permit) error {
	return c.do(ctx, http.MethodPost, permitsCollection, nil, []registry.Permit{p}, nil)
}

func (c *Client) DeletePermit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, permitsCollection, eqID(id), nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]registry.User, error) {
	q := url.Values{}
	q.Set("select", "*")
	var out []registry.User
	if err := c.do(ctx, http.MethodGet, usersCollection, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) InsertUser(ctx context.Context, u registry.User) error {
	return c.do(ctx, http.MethodPost, usersCollection, nil, []registry.User{u}, nil)
}

func (c *Client) UpdateUser(ctx context.Context, id string, upd recordstore.UserUpdate) error {
	payload := map[string]any{
		"name":     upd.Name,
		"username": upd.Username,
		"role":     upd.Role,
	}
	if upd.Password != nil {
		payload["password"] = *upd.Password
	}
	return c.do(ctx, http.MethodPatch, usersCollection, eqID(id), payload, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, usersCollection, eqID(id), nil, nil)
}

func eqID(id string) url.Values {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return q
}

func (c *Client) do(ctx context.Context, method, collection string, query url.Values, body, out any) error {
	endpoint := c.base + "/" + collection
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", collection, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if out == nil {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("record store %s %s: %w", method, collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("record store %s %s: status %d: %s",
			method, collection, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", collection, err)
		}
	}
	return nil
}
