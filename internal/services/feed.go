package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/shared"
)

const (
	defaultEndpoint = "/tracks/feed-api/"
	maxFeedBody     = 8 << 20
	maxErrorSnippet = 256
)

// FeedClientOpts configures a [FeedClient].
type FeedClientOpts struct {
	BaseURL       string
	Endpoint      string
	SessionCookie string
	UserAgent     string
	HTTPClient    *http.Client
	Logger        *log.Logger
}

// FeedClient fetches pages from the feed endpoint.
type FeedClient struct {
	baseURL    string
	endpoint   string
	cookie     string
	userAgent  string
	httpClient *http.Client
	logger     *log.Logger
}

// NewFeedClient creates a feed client. Missing options fall back to the default endpoint,
// [http.DefaultClient], and a stderr logger.
func NewFeedClient(opts FeedClientOpts) *FeedClient {
	if opts.Endpoint == "" {
		opts.Endpoint = defaultEndpoint
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &FeedClient{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		endpoint:   opts.Endpoint,
		cookie:     opts.SessionCookie,
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

// NewFeedClientFromConfig creates a feed client from the [feed] config section.
func NewFeedClientFromConfig(cfg shared.FeedConfig, client *http.Client, logger *log.Logger) *FeedClient {
	return NewFeedClient(FeedClientOpts{
		BaseURL:       cfg.BaseURL,
		Endpoint:      cfg.Endpoint,
		SessionCookie: cfg.SessionCookie,
		UserAgent:     cfg.UserAgent,
		HTTPClient:    client,
		Logger:        logger,
	})
}

func (c *FeedClient) Name() string { return "feed" }

// PageURL returns the absolute URL of the given page.
func (c *FeedClient) PageURL(page int) (string, error) {
	u, err := url.Parse(c.baseURL + c.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: invalid feed url: %v", shared.ErrFeedRequest, err)
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// BaseURL returns the site origin the client talks to.
func (c *FeedClient) BaseURL() string { return c.baseURL }

// ResolveURL resolves ref, e.g. a track's detail or audio path, against base.
// Absolute refs and unparsable input are returned unchanged.
func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// rawFeedPage detects missing keys, which decoding into [models.FeedPage] would hide.
type rawFeedPage struct {
	Tracks  *[]models.TrackSummary `json:"tracks"`
	HasNext *bool                  `json:"has_next"`
}

// FetchPage requests one page of the feed and validates its shape.
func (c *FeedClient) FetchPage(ctx context.Context, page int) (*models.FeedPage, error) {
	pageURL, err := c.PageURL(page)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrFeedRequest, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("fetching feed page", "page", page, "url", pageURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFeedRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrFeedRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: page %d: status %d: %s", shared.ErrFeedStatus, page, resp.StatusCode, snippet(body))
	}

	return decodeFeedPage(body)
}

func decodeFeedPage(body []byte) (*models.FeedPage, error) {
	var raw rawFeedPage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedFeed, err)
	}
	if raw.Tracks == nil {
		return nil, fmt.Errorf("%w: missing tracks", shared.ErrMalformedFeed)
	}
	if raw.HasNext == nil {
		return nil, fmt.Errorf("%w: missing has_next", shared.ErrMalformedFeed)
	}

	for i, track := range *raw.Tracks {
		if err := track.Validate(); err != nil {
			return nil, fmt.Errorf("%w: track %d: %v", shared.ErrMalformedFeed, i, err)
		}
	}

	return &models.FeedPage{Tracks: *raw.Tracks, HasNext: *raw.HasNext}, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		s = s[:maxErrorSnippet] + "..."
	}
	return s
}
