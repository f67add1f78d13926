// Package client talks to a jokedb server and keeps browsing state for a
// paginated, sortable joke list.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/maruel/jokedb/internal/query"
	"github.com/maruel/jokedb/internal/storage/entity"
)

// APIError is a non-successful answer from the server.
//
// Text answers sent with status 200 in place of JSON, such as "The passed
// path is not a number.", are reported as an APIError too.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Client is a jokedb API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:3005".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do performs an HTTP request and decodes the JSON answer into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	isJSON := false
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		isJSON = mt == "application/json"
	}
	if resp.StatusCode >= 400 || (len(respBody) > 0 && !isJSON) {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		if isJSON {
			var e struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(respBody, &e) == nil && e.Message != "" {
				apiErr.Message = e.Message
			}
		}
		return apiErr
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// RandomJoke returns one random joke, or nil when the collection is empty.
func (c *Client) RandomJoke(ctx context.Context) (*entity.Joke, error) {
	var j *entity.Joke
	if err := c.do(ctx, http.MethodGet, "/jokes/random", nil, &j); err != nil {
		return nil, err
	}
	return j, nil
}

// RandomTen returns up to ten random jokes.
func (c *Client) RandomTen(ctx context.Context) ([]entity.Joke, error) {
	var out []entity.Joke
	return out, c.do(ctx, http.MethodGet, "/jokes/ten", nil, &out)
}

// RandomN returns n distinct random jokes.
func (c *Client) RandomN(ctx context.Context, n int) ([]entity.Joke, error) {
	var out []entity.Joke
	return out, c.do(ctx, http.MethodGet, "/jokes/random/"+strconv.Itoa(n), nil, &out)
}

// ByType returns one random joke of type t, or up to ten when ten is set.
func (c *Client) ByType(ctx context.Context, t string, ten bool) ([]entity.Joke, error) {
	action := "random"
	if ten {
		action = "ten"
	}
	var out []entity.Joke
	return out, c.do(ctx, http.MethodGet, "/jokes/"+url.PathEscape(t)+"/"+action, nil, &out)
}

// Paginated returns number jokes starting at from, in the requested order.
func (c *Client) Paginated(ctx context.Context, from, number int, field query.SortField, order query.SortOrder) (*query.Page, error) {
	v := url.Values{}
	v.Set("from", strconv.Itoa(from))
	v.Set("number", strconv.Itoa(number))
	if field != query.SortNone {
		v.Set("sortBy", string(field))
	}
	if order != query.SortDefault {
		v.Set("sortOrder", string(order))
	}
	var p query.Page
	if err := c.do(ctx, http.MethodGet, "/jokes/paginated?"+v.Encode(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the joke with the given id.
func (c *Client) Get(ctx context.Context, id int) (*entity.Joke, error) {
	var j entity.Joke
	if err := c.do(ctx, http.MethodGet, "/jokes/"+strconv.Itoa(id), nil, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// All returns the whole collection.
func (c *Client) All(ctx context.Context) ([]entity.Joke, error) {
	var out []entity.Joke
	return out, c.do(ctx, http.MethodGet, "/jokes", nil, &out)
}

// Types returns the distinct joke types.
func (c *Client) Types(ctx context.Context) ([]string, error) {
	var out []string
	return out, c.do(ctx, http.MethodGet, "/types", nil, &out)
}

// Create adds a joke and returns it with its id.
func (c *Client) Create(ctx context.Context, f entity.Fields) (*entity.Joke, error) {
	var j entity.Joke
	if err := c.do(ctx, http.MethodPost, "/jokes", &f, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// Update replaces the content of joke id.
func (c *Client) Update(ctx context.Context, id int, f entity.Fields) (*entity.Joke, error) {
	var j entity.Joke
	if err := c.do(ctx, http.MethodPut, "/jokes/"+strconv.Itoa(id), &f, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// Delete removes joke id.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/jokes/"+strconv.Itoa(id), nil, nil)
}
