// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/mixfeed/internal/models"
)

// Track builds a minimal valid [models.TrackSummary] for the given slug.
func Track(slug string) models.TrackSummary {
	return models.TrackSummary{
		Slug:         slug,
		Title:        "Track " + slug,
		CreatedAgo:   "2 hours",
		AudioURL:     "/media/" + slug + ".mp3",
		DetailURL:    "/tracks/" + slug + "/",
		CommentCount: 0,
		Profile:      models.Profile{Username: "dj_" + slug, DisplayName: "DJ " + slug, URL: "/profiles/dj_" + slug + "/"},
	}
}

// Page builds a [models.FeedPage] holding a track per slug.
func Page(hasNext bool, slugs ...string) *models.FeedPage {
	page := &models.FeedPage{HasNext: hasNext, Tracks: []models.TrackSummary{}}
	for _, slug := range slugs {
		page.Tracks = append(page.Tracks, Track(slug))
	}
	return page
}

// MockFetcher is a test double for the feed client.
//
// Pages are served by page number. A page with no entry returns Err, or an error when Err is nil.
// When Gate is set, each fetch blocks until a value is received on it.
type MockFetcher struct {
	mu       sync.Mutex
	Pages    map[int]*models.FeedPage
	Err      error
	Gate     chan struct{}
	Started  chan int
	requests []int
}

// NewMockFetcher creates a fetcher serving the given pages.
func NewMockFetcher(pages map[int]*models.FeedPage) *MockFetcher {
	return &MockFetcher{Pages: pages}
}

func (m *MockFetcher) FetchPage(ctx context.Context, page int) (*models.FeedPage, error) {
	m.mu.Lock()
	m.requests = append(m.requests, page)
	gate, started := m.Gate, m.Started
	m.mu.Unlock()

	if started != nil {
		started <- page
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Pages[page]; ok {
		return p, nil
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return nil, fmt.Errorf("no page %d", page)
}

func (m *MockFetcher) Name() string { return "mock" }

// Requests returns the pages requested so far, in order.
func (m *MockFetcher) Requests() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.requests...)
}

// SetErr replaces the error returned for unknown pages.
func (m *MockFetcher) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// NewFeedServer starts an [httptest.Server] that serves pages as the feed endpoint would.
// Unknown pages return 404.
func NewFeedServer(t *testing.T, pages map[int]*models.FeedPage) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			http.Error(w, "bad page", http.StatusBadRequest)
			return
		}
		page, ok := pages[n]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
