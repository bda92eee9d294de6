package postsvc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tptin07/blogscout/internal/config"
	"github.com/tptin07/blogscout/internal/discovery"
	"github.com/tptin07/blogscout/internal/validation"
)

const (
	defaultUserAgent = "blogscout/1.0"
	defaultTimeout   = 10 * time.Second
	maxBodyBytes     = 8 << 20
)

// StatusError is returned when the service answers with an HTTP error.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.Code)
}

// Client talks to the post query and popularity endpoints.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewClient returns a client configured from cfg.Service. The base URL is
// validated first; loopback and private hosts need Service.AllowLocal.
func NewClient(cfg *config.Config) (*Client, error) {
	validator := validation.NewServiceURLValidator()
	validator.AllowLocal = cfg.Service.AllowLocal

	baseURL, err := validator.ValidateAndNormalize(cfg.Service.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service URL: %w", err)
	}
	return New(baseURL, cfg.Service.Timeout, cfg.Service.UserAgent), nil
}

// New returns a client for the service rooted at baseURL.
func New(baseURL string, timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// QueryPosts runs a post query. Missing fields in the response default to
// an empty post list and a zero total.
func (c *Client) QueryPosts(ctx context.Context, p discovery.Params) (discovery.Page, error) {
	q := url.Values{}
	q.Set("q", p.Q)
	q.Set("cat", string(p.Category))
	q.Set("tag", p.Tag)
	q.Set("sort", string(p.Sort))
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))

	body, err := c.get(ctx, "/posts", q)
	if err != nil {
		return discovery.Page{}, err
	}
	return decodePage(body)
}

// PopularPosts returns up to count posts ranked by the service.
func (c *Client) PopularPosts(ctx context.Context, count int) ([]discovery.Post, error) {
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))

	body, err := c.get(ctx, "/posts/popular", q)
	if err != nil {
		return nil, err
	}
	posts, err := decodePopular(body)
	if err != nil {
		return nil, err
	}
	if count > 0 && len(posts) > count {
		posts = posts[:count]
	}
	return posts, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
