package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mrlokans/bookfinder/internal/dataerror"
)

// searchFields limits search.json responses to what the book mapper reads.
const searchFields = "key,title,author_name,author_key,cover_edition_key,cover_i,ratings_average,ratings_count,first_publish_year,language,number_of_pages_median,edition_count"

// Config configures the OpenLibrary client.
type Config struct {
	BaseURL   string
	UserAgent string
	Language  string
	Timeout   time.Duration
	RateLimit float64 // requests per second, <= 0 disables limiting
}

// Client talks to the OpenLibrary REST API.
//
// Every method returns either its payload or an error; request failures are
// always *dataerror.Error values, except context cancellation which is passed
// through unchanged.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	language   string
	limiter    *rate.Limiter
}

// NewClient creates a new OpenLibrary API client with rate limiting.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openlibrary.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		language:  cfg.Language,
		limiter:   limiter,
	}
}

// SearchRequest holds search.json parameters. Zero Limit and Page leave the
// server defaults in place.
type SearchRequest struct {
	Query string
	Limit int
	Page  int
}

// SearchBooks runs a free-text search.
func (c *Client) SearchBooks(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", req.Query)
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Page > 1 {
		params.Set("page", strconv.Itoa(req.Page))
	}
	if c.language != "" {
		params.Set("languages", c.language)
	}
	params.Set("fields", searchFields)

	var res SearchResponse
	if err := c.get(ctx, "/search.json", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetWork fetches a work record. workID may be given with or without the
// "/works/" prefix.
func (c *Client) GetWork(ctx context.Context, workID string) (*Work, error) {
	id := strings.TrimPrefix(strings.TrimSpace(workID), "/works/")
	if id == "" {
		return nil, fmt.Errorf("work id is required")
	}

	var work Work
	if err := c.get(ctx, "/works/"+url.PathEscape(id)+".json", nil, &work); err != nil {
		return nil, err
	}
	return &work, nil
}

// get performs a rate limited GET and decodes a successful JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return dataerror.FromTransport(ctx.Err())
		}
		// the wait would outlast the context deadline
		return dataerror.New(dataerror.KindRequestTimeout, err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dataerror.FromTransport(err)
	}
	defer resp.Body.Close()

	if derr := dataerror.FromStatus(resp.StatusCode); derr != nil {
		return derr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A body cut short by cancellation or a timeout is not a parse error.
		if ctx.Err() != nil {
			return dataerror.FromTransport(ctx.Err())
		}
		return dataerror.New(dataerror.KindSerialization, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}
