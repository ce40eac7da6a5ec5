// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Configuration constants for the talk server API.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// Response size limit prevents memory exhaustion from a broken server.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	chatPath      = "/api/chat"
	audioChatPath = "/api/audio-chat"
	eventsPath    = "/api/events"
)

// Error variables for common client errors.
var (
	// ErrNotConfigured indicates the server URL is not set.
	ErrNotConfigured = errors.New("talk server URL not configured")

	// ErrInvalidURL indicates the configured server URL failed to parse.
	ErrInvalidURL = errors.New("invalid talk server URL")
)

// sharedHTTPClient pools connections across all talk server requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the talk server's REST surface.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a client for the given server base URL.
//
// The URL is validated lazily: a malformed URL surfaces as ErrInvalidURL on
// the first request rather than at construction, matching how the client is
// wired from user-editable config.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: sharedHTTPClient,
		timeout:    DefaultTimeout,
	}
}

// WithAPIKey sets the bearer token attached to every request.
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = strings.TrimSpace(key)
	return c
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	c.httpClient = &http.Client{
		Transport: sharedHTTPClient.Transport,
		Timeout:   timeout,
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsConfigured returns true if a server URL has been set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// =============================================================================
// OUTBOUND CALLS
// =============================================================================

// PostChat sends a text chat request.
//
// The returned Response carries the server's status verdict; err is non-nil
// only for transport-level failures.
func (c *Client) PostChat(ctx context.Context, req TalkRequest) (Response, error) {
	endpoint, err := c.endpoint(chatPath)
	if err != nil {
		return Response{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	return c.do(httpReq)
}

// PostAudioChat sends a recorded-audio chat request as multipart form data.
//
// The audio payload travels in the "audio" part under the given filename;
// the TalkRequest fields travel alongside it as form fields, with history
// and options JSON-encoded.
func (c *Client) PostAudioChat(ctx context.Context, audio []byte, filename string, req TalkRequest) (Response, error) {
	endpoint, err := c.endpoint(audioChatPath)
	if err != nil {
		return Response{}, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("audio", filename)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create audio part: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return Response{}, fmt.Errorf("failed to write audio payload: %w", err)
	}

	ms, err := json.Marshal(req.Ms)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode history: %w", err)
	}
	talkOption, err := json.Marshal(req.TalkOption)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode talk option: %w", err)
	}

	fields := map[string]string{
		"chatId":     req.ChatID,
		"ticketId":   req.TicketID,
		"ms":         string(ms),
		"talkOption": string(talkOption),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return Response{}, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return Response{}, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(httpReq)

	return c.do(httpReq)
}

// =============================================================================
// INTERNALS
// =============================================================================

// endpoint joins the base URL with a path, validating the base URL.
func (c *Client) endpoint(path string) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, c.baseURL)
	}
	return c.baseURL + path, nil
}

// authorize attaches the bearer token if one is configured.
func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// do executes the request and converts the result into a Response.
func (c *Client) do(req *http.Request) (Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	// Drain (bounded) so the connection can be reused. The body content is
	// not part of the send contract; completions arrive over SSE.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))

	statusText := resp.Status
	if i := strings.IndexByte(statusText, ' '); i >= 0 {
		statusText = statusText[i+1:]
	}

	return Response{
		Status:     resp.StatusCode,
		StatusText: statusText,
	}, nil
}
