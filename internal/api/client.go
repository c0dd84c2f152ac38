package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/studiowebux/postboard/internal/types"
)

const (
	// DefaultBaseURL is the public placeholder API the client talks to when nothing else is configured
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"

	// DefaultTimeout bounds a single round trip when the configuration does not say otherwise
	DefaultTimeout = 30 * time.Second

	postsPath = "/posts"

	// maxErrorBody caps how much of a failed response body is kept in a StatusError
	maxErrorBody = 512
)

// Recorder receives a record of every completed round trip
type Recorder interface {
	Record(rec types.CallRecord) error
}

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.URL, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Option configures a Client
type Option func(*Client) error

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.http = hc
		return nil
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.http.Timeout = d
		return nil
	}
}

// WithTLS configures TLS/mTLS for the client transport
func WithTLS(cfg *types.TLSConfig) Option {
	return func(c *Client) error {
		tlsCfg, err := buildTLSConfig(cfg)
		if err != nil {
			return err
		}
		if tlsCfg != nil {
			c.http.Transport = &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: tlsCfg,
			}
		}
		return nil
	}
}

// WithLogger sets the logger used for per-call diagnostics
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithRecorder sets the journal every call is reported to
func WithRecorder(r Recorder) Option {
	return func(c *Client) error {
		c.recorder = r
		return nil
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// Client is the remote store accessor for the posts API
type Client struct {
	baseURL   string
	http      *http.Client
	log       zerolog.Logger
	recorder  Recorder
	userAgent string
	lists     singleflight.Group
}

// NewClient creates a client bound to a single base URL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("invalid base URL %q: must start with http:// or https://", baseURL)
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: DefaultTimeout},
		log:       zerolog.Nop(),
		userAgent: "postboard",
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to configure API client: %w", err)
		}
	}
	return c, nil
}

// BaseURL returns the base URL every path is resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches all posts. Concurrent calls share one in-flight request.
func (c *Client) List(ctx context.Context) ([]types.Post, error) {
	v, err, _ := c.lists.Do("list", func() (interface{}, error) {
		var posts []types.Post
		if err := c.do(ctx, types.OpList, http.MethodGet, postsPath, 0, nil, &posts); err != nil {
			return nil, err
		}
		if posts == nil {
			posts = []types.Post{}
		}
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	posts := v.([]types.Post)
	out := make([]types.Post, len(posts))
	copy(out, posts)
	return out, nil
}

// Create submits a draft; the server assigns the id
func (c *Client) Create(ctx context.Context, draft types.Draft) (types.Post, error) {
	var post types.Post
	if err := c.do(ctx, types.OpCreate, http.MethodPost, postsPath, 0, draft, &post); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

// Update submits a full replacement of the post's title and body
func (c *Client) Update(ctx context.Context, id int, draft types.Draft) (types.Post, error) {
	var post types.Post
	if err := c.do(ctx, types.OpUpdate, http.MethodPut, postPath(id), id, draft, &post); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

// Delete removes a post
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, types.OpDelete, http.MethodDelete, postPath(id), id, nil, nil)
}

func postPath(id int) string {
	return postsPath + "/" + strconv.Itoa(id)
}

// do performs one round trip, decoding a 2xx JSON response into out when out is non-nil
func (c *Client) do(ctx context.Context, op types.Operation, method, path string, postID int, in, out interface{}) (err error) {
	startTime := time.Now()
	url := c.baseURL + path
	rec := types.CallRecord{
		RequestID: uuid.NewString(),
		Operation: op,
		Method:    method,
		URL:       url,
		PostID:    postID,
	}
	defer func() {
		rec.Duration = time.Since(startTime).Milliseconds()
		if err != nil {
			rec.Error = err.Error()
		}
		c.report(rec)
	}()

	var bodyReader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		rec.RequestSize = len(payload)
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", rec.RequestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	rec.Status = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	rec.ResponseSize = len(respBody)

	if !IsSuccessStatus(resp.StatusCode) {
		return &StatusError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       ansi.Truncate(strings.TrimSpace(string(respBody)), maxErrorBody, "..."),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) report(rec types.CallRecord) {
	ev := c.log.Debug()
	if rec.Error != "" {
		ev = c.log.Error()
	}
	ev.Str("request_id", rec.RequestID).
		Str("op", string(rec.Operation)).
		Str("method", rec.Method).
		Str("url", rec.URL).
		Int("status", rec.Status).
		Int64("duration_ms", rec.Duration).
		Str("error", rec.Error).
		Msg("api call")

	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(rec); err != nil {
		c.log.Warn().Err(err).Str("request_id", rec.RequestID).Msg("failed to journal api call")
	}
}

// buildTLSConfig creates a TLS configuration with optional client certificate and CA
func buildTLSConfig(cfg *types.TLSConfig) (*tls.Config, error) {
	if cfg == nil {
		return nil, nil
	}
	if cfg.CertFile == "" && cfg.KeyFile == "" && cfg.CAFile == "" && !cfg.InsecureSkipVerify {
		return nil, nil
	}

	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	// Client certificate (mTLS)
	if cfg.CertFile != "" || cfg.KeyFile != "" {
		if cfg.CertFile == "" || cfg.KeyFile == "" {
			return nil, errors.New("both certFile and keyFile are required for a client certificate")
		}
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	if cfg.CAFile != "" {
		caCert, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		tlsCfg.RootCAs = caCertPool
	}

	return tlsCfg, nil
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

