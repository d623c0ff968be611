// Package api talks to the Soulink blog HTTP API.
package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/soulink/soulink/internal/utils"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultUserAgent = "soulink-cli"
	DefaultTimeout   = 30 * time.Second

	// maxErrorBody caps how much of a failed response is kept in StatusError.
	maxErrorBody = 4096
)

// Config holds everything needed to build a Client.
type Config struct {
	BaseURL   string
	Token     string
	Proxy     string
	UserAgent string
	RetryMax  int
	Timeout   time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	http      *retryablehttp.Client
}

// NewClient validates cfg and builds a Client. Retries are disabled unless
// cfg.RetryMax is positive.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", base)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = max(cfg.RetryMax, 0)
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	retryClient.HTTPClient.Timeout = DefaultTimeout
	if cfg.Timeout > 0 {
		retryClient.HTTPClient.Timeout = cfg.Timeout
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		retryClient.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:   strings.TrimRight(u.String(), "/"),
		token:     strings.TrimSpace(cfg.Token),
		userAgent: userAgent,
		http:      retryClient,
	}, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// HasToken reports whether authenticated calls can be made.
func (c *Client) HasToken() bool { return c.token != "" }

type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

type request struct {
	Method      string
	Path        string
	Query       url.Values
	Auth        authMode
	ContentType string
	Accept      string
	Body        []byte
}

func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	if r.Auth == authRequired && c.token == "" {
		return nil, ErrNoToken
	}

	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body any
	if r.Body != nil {
		body = r.Body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	accept := r.Accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if r.Auth != authNone && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	utils.Log.WithField("url", target).Debugf("%s request", r.Method)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.Method, r.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response of %s %s: %w", r.Method, r.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &StatusError{Method: r.Method, Path: r.Path, StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// sendJSON is send for endpoints that answer with a JSON document.
func (c *Client) sendJSON(ctx context.Context, r request) (gjson.Result, error) {
	data, err := c.send(ctx, r)
	if err != nil {
		return gjson.Result{}, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%s %s: response is not valid JSON", r.Method, r.Path)
	}
	return gjson.ParseBytes(data), nil
}
