// Package api is the HTTP client for the job tracker service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/internal/httpclient"
	"github.com/teranos/jobtrack/logger"
	"github.com/teranos/jobtrack/session"
	"github.com/teranos/jobtrack/version"
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration // 0 = no timeout
	RequestsPerSecond float64       // 0 = unlimited
	BlockPrivateIP    bool

	// HTTPClient replaces the transport entirely (tests pass httptest's client).
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

// Client talks to the job tracker API.
type Client struct {
	baseURL *url.URL
	http    *httpclient.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
	agent   string
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid api base url %q", opts.BaseURL)
	}
	if err := httpclient.CheckURL(base, []string{"http", "https"}); err != nil {
		return nil, errors.Wrapf(err, "invalid api base url %q", opts.BaseURL)
	}
	if opts.RequestsPerSecond < 0 {
		return nil, errors.Newf("requests per second must be >= 0, got %v", opts.RequestsPerSecond)
	}

	c := &Client{
		baseURL: base,
		logger:  opts.Logger,
		agent:   "jobtrack/" + version.Get().Version,
	}
	if c.logger == nil {
		c.logger = logger.ComponentLogger("api")
	}

	if opts.HTTPClient != nil {
		c.http = httpclient.WrapClient(opts.HTTPClient)
	} else {
		c.http = httpclient.NewClient(httpclient.Options{
			Timeout:        opts.Timeout,
			BlockPrivateIP: opts.BlockPrivateIP,
		})
	}

	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// do sends one request. body and out may be nil. sess is nil for the
// unauthenticated endpoints.
func (c *Client) do(ctx context.Context, method, path string, sess *session.Session, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limit wait")
		}
	}

	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
		ctx = logger.WithRequestID(ctx, requestID)
	}
	log := logger.LoggerFromContext(ctx, c.logger)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encode %s %s", method, path)
		}
		if logger.ShouldOutput(logger.Verbosity, logger.OutputRequestBody) && !isCredentialPath(path) {
			log.Debugw("Request body", logger.FieldPath, path, "body", string(payload))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.agent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		req.Header.Set("Authorization", sess.Bearer())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warnw("Request failed", logger.FieldMethod, method, logger.FieldPath, path, logger.FieldError, err)
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s %s response", method, path)
	}

	log.Infow("API request",
		logger.FieldMethod, method,
		logger.FieldPath, path,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	if logger.ShouldOutput(logger.Verbosity, logger.OutputResponseBody) && !isCredentialPath(path) {
		log.Debugw("Response body", logger.FieldPath, path, "body", string(data))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(method, path, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

// isCredentialPath keeps passwords and tokens out of body dumps.
func isCredentialPath(path string) bool {
	return path == pathLogin || path == pathRegister
}
