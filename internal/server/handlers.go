package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixfeed/internal/feed"
	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/render"
	"github.com/desertthunder/mixfeed/internal/services"
	"github.com/desertthunder/mixfeed/internal/shared"
)

// FeedHandler serves the feed document and the feed API.
type FeedHandler struct {
	fetcher feed.Fetcher
	baseURL string
	title   string
	assets  assets
	logger  *log.Logger
}

// ServePage renders page 1 on the server. Later pages are loaded by the browser client.
func (h *FeedHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	page, err := h.fetcher.FetchPage(r.Context(), 1)
	if err != nil {
		h.logger.Error("failed to fetch first page", "err", err, "request_id", RequestIDFrom(r.Context()))
		http.Error(w, "Could not load the feed. Please try again.", upstreamStatus(err))
		return
	}

	var buf bytes.Buffer
	if err := render.Page(&buf, render.PageData{
		Title:         h.title,
		Tracks:        h.absolute(dedupe(page.Tracks)),
		HasNext:       page.HasNext,
		NextPage:      2,
		StylesheetURL: h.assets.stylesheet,
		WasmURL:       h.assets.wasm,
		WasmExecURL:   h.assets.wasmExec,
	}); err != nil {
		h.logger.Error("failed to render page", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// ServeAPI answers ?page=N with the validated upstream page.
func (h *FeedHandler) ServeAPI(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		writeJSONError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}

	page, err := h.fetcher.FetchPage(r.Context(), n)
	if err != nil {
		h.logger.Error("failed to fetch page", "page", n, "err", err, "request_id", RequestIDFrom(r.Context()))
		writeJSONError(w, upstreamStatus(err), err.Error())
		return
	}

	out := models.FeedPage{Tracks: h.absolute(page.Tracks), HasNext: page.HasNext}
	if out.Tracks == nil {
		out.Tracks = []models.TrackSummary{}
	}
	writeJSON(w, http.StatusOK, out)
}

// absolute rewrites relative track URLs against the upstream origin so they resolve from
// the preview server's pages.
func (h *FeedHandler) absolute(tracks []models.TrackSummary) []models.TrackSummary {
	out := make([]models.TrackSummary, len(tracks))
	for i, t := range tracks {
		t.AudioURL = services.ResolveURL(h.baseURL, t.AudioURL)
		t.DetailURL = services.ResolveURL(h.baseURL, t.DetailURL)
		t.Profile.URL = services.ResolveURL(h.baseURL, t.Profile.URL)
		if t.ImageURL != "" {
			t.ImageURL = services.ResolveURL(h.baseURL, t.ImageURL)
		}
		if t.Profile.Avatar != "" {
			t.Profile.Avatar = services.ResolveURL(h.baseURL, t.Profile.Avatar)
		}
		out[i] = t
	}
	return out
}

// dedupe keeps the first card per slug.
func dedupe(tracks []models.TrackSummary) []models.TrackSummary {
	seen := feed.NewSeenSet()
	out := make([]models.TrackSummary, 0, len(tracks))
	for _, t := range tracks {
		if seen.Add(t.Slug) {
			out = append(out, t)
		}
	}
	return out
}

func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrFeedStatus), errors.Is(err, shared.ErrMalformedFeed):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrFeedRequest):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
