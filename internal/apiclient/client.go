// Package apiclient is the signed HTTP client shared by every vendor driver.
// It signs, sends and classifies; pacing is the caller's job.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// PayloadCheck inspects a 2xx body for vendor-defined error codes.
type PayloadCheck func(body []byte) error

// Client sends requests to one API host with one signing scheme.
type Client struct {
	Name       string
	BaseURL    string
	Signer     Signer
	HTTPClient *http.Client
	Check      PayloadCheck

	// Header is copied onto every request (user agent, referer, ...).
	Header http.Header

	now func() time.Time
}

// NewClient creates a client with a bounded request timeout.
func NewClient(name, baseURL string, signer Signer, timeout time.Duration) *Client {
	if signer == nil {
		signer = NoSigner{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		Name:       name,
		BaseURL:    baseURL,
		Signer:     signer,
		HTTPClient: &http.Client{Timeout: timeout},
		Header:     make(http.Header),
		now:        time.Now,
	}
}

// Request describes one call. Body and ContentType are optional.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
}

// Response carries the status and raw payload of a successful call.
type Response struct {
	Status int
	Body   []byte
}

// Call issues a bodyless request.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: method, Path: path, Query: query})
}

// Do signs and sends req. Every failure comes back as *APIError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	rawQuery := ""
	if len(req.Query) > 0 {
		rawQuery = req.Query.Encode()
	}

	target := c.BaseURL + req.Path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, NewError(KindRequestRejected, c.Name, 0, nil, fmt.Errorf("failed to build request: %w", err))
	}

	for key, values := range c.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if err := c.Signer.Sign(httpReq.Header, req.Method, req.Path, rawQuery, c.now()); err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, NewError(KindTransientNetwork, c.Name, 0, nil, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindTransientNetwork, c.Name, resp.StatusCode, nil, fmt.Errorf("failed to read body: %w", err))
	}

	if kind := classifyStatus(resp.StatusCode); kind != 0 {
		return nil, NewError(kind, c.Name, resp.StatusCode, payload, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if c.Check != nil {
		if err := c.Check(payload); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				if apiErr.Source == "" {
					apiErr.Source = c.Name
				}
				return nil, apiErr
			}
			return nil, NewError(KindRequestRejected, c.Name, resp.StatusCode, payload, err)
		}
	}

	return &Response{Status: resp.StatusCode, Body: payload}, nil
}
