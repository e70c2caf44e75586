package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"arkive/internal/domain"
)

// DefaultTimeout is the client-wide request timeout
const DefaultTimeout = 30 * time.Second

// Client is a JSON client for one backend base URL.
// Cross-cutting behaviour (bearer token, request IDs, logging) lives in the
// transport, see internal/middleware.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client rooted at baseURL.
// A nil transport uses http.DefaultTransport; a zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, transport http.RoundTripper) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// BaseURL returns the base URL without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins path (and optional query) onto the base URL
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Get performs a GET and decodes the (possibly enveloped) payload into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.Do(ctx, http.MethodGet, path, query, nil, out)
	return err
}

// Post performs a POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, http.MethodPost, path, nil, body, out)
	return err
}

// Put performs a PUT with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, http.MethodPut, path, nil, body, out)
	return err
}

// Delete performs a DELETE, ignoring any response payload
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

// Do sends a JSON request and decodes the response.
// Non-2xx responses become *domain.APIError; requests that never got a
// response become *domain.TransportError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := GetBearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, path, out)
}

// Upload sends a multipart/form-data POST with the given text fields and one file part.
// Empty field values are omitted.
func (c *Client) Upload(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(fileField, fileName)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}

	// Deterministic field order
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(path, nil), &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, err = c.send(req, path, out)
	return err
}

// Download streams a raw response body into w and returns the bytes written
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(path, nil), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &domain.TransportError{Method: req.Method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return 0, &domain.APIError{
			Status:  resp.StatusCode,
			Message: ErrorMessage(body),
			Method:  req.Method,
			Path:    path,
		}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &domain.TransportError{Method: req.Method, Path: path, Err: err}
	}
	return n, nil
}

func (c *Client) send(req *http.Request, path string, out any) (*Envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Method: req.Method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Method: req.Method, Path: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.APIError{
			Status:  resp.StatusCode,
			Message: ErrorMessage(body),
			Method:  req.Method,
			Path:    path,
		}
	}

	env, err := DecodeData(body, out)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	if env.Failed() {
		return env, &domain.APIError{
			Status:  resp.StatusCode,
			Message: env.Message,
			Method:  req.Method,
			Path:    path,
		}
	}
	return env, nil
}
