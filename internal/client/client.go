// Package client is the remote resource client for the back-office REST
// backend. It owns transport, authentication headers, throttling and the
// success/error envelope; it knows nothing about individual resources.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"broker-backoffice-go/internal/models"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 32 << 20

// Client executes Requests against the backend and returns raw response
// bodies. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a Client with the tuned transport.
func New(cfg models.BackendConfig) (*Client, error) {
	httpClient, err := createCustomHttpClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}
	return NewWithHTTPClient(cfg, httpClient)
}

// NewWithHTTPClient creates a Client on top of an existing http.Client.
func NewWithHTTPClient(cfg models.BackendConfig, httpClient *http.Client) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "broker-backoffice-go"
	}

	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		userAgent:  userAgent,
		httpClient: httpClient,
		limiter:    limiter,
	}, nil
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes req. A 2xx response returns its body. Any other status returns
// an *APIError; failures before a response arrives wrap ErrTransport.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	label := req.label()

	timer := prometheus.NewTimer(backendRequestDuration.WithLabelValues(method, label))
	defer timer.ObserveDuration()

	if err := c.limiter.Wait(ctx); err != nil {
		backendRequestsTotal.WithLabelValues(method, label, "throttled").Inc()
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrTransport, err)
	}

	httpReq, err := c.buildRequest(ctx, method, req)
	if err != nil {
		backendRequestsTotal.WithLabelValues(method, label, "invalid").Inc()
		return nil, fmt.Errorf("%w: unable to build request: %w", ErrTransport, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		backendRequestsTotal.WithLabelValues(method, label, "transport_error").Inc()
		zap.L().Warn("Backend request failed",
			zap.String("endpoint", label),
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		backendRequestsTotal.WithLabelValues(method, label, "transport_error").Inc()
		return nil, fmt.Errorf("%w: reading response body: %w", ErrTransport, err)
	}

	status := strconv.Itoa(resp.StatusCode)
	backendRequestsTotal.WithLabelValues(method, label, status).Inc()

	zap.L().Debug("Backend request completed",
		zap.String("endpoint", label),
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", httpReq.Header.Get("X-Request-Id")))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, body)
		zap.L().Info("Backend rejected request",
			zap.String("endpoint", label),
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	return body, nil
}

func (c *Client) buildRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		buf, ct, err := encodeMultipart(req.Form)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}
		body, contentType = bytes.NewReader(payload), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	requestId := ""
	if rc := models.GetRequestContext(ctx); rc != nil {
		requestId = rc.RequestId
		if rc.Actor != "" {
			httpReq.Header.Set("X-Admin-Actor", rc.Actor)
		}
	}
	if requestId == "" {
		requestId = uuid.New().String()
	}
	httpReq.Header.Set("X-Request-Id", requestId)

	if req.Mutating() {
		key := req.IdempotencyKey
		if key == "" {
			key = uuid.New().String()
		}
		httpReq.Header.Set("Idempotency-Key", key)
	}

	return httpReq, nil
}

func encodeMultipart(form *Multipart) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for field, values := range form.Fields {
		for _, v := range values {
			if err := w.WriteField(field, v); err != nil {
				return nil, "", fmt.Errorf("writing field %s: %w", field, err)
			}
		}
	}

	for _, f := range form.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		header.Set("Content-Type", ct)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("creating part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("writing part %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
