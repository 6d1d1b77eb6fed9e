package player

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixfeed/internal/audio"
	"github.com/desertthunder/mixfeed/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// Format is a supported audio container.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"
)

// Source opens the audio stream at a URL and reports its Content-Type.
type Source func(ctx context.Context, rawURL string) (io.ReadCloser, string, error)

var (
	speakerMu   sync.Mutex
	speakerRate beep.SampleRate
)

// Options configures a [Player].
type Options struct {
	Buffer time.Duration // speaker buffer, set by the first player to start
	Source Source
	Logger *log.Logger
}

// Player plays one track URL through the shared speaker.
type Player struct {
	mu       sync.Mutex
	url      string
	source   Source
	buffer   time.Duration
	logger   *log.Logger
	state    audio.State
	ctrl     *beep.Ctrl
	streamer beep.StreamSeekCloser
	body     io.ReadCloser
	onPlay   func()
	onPause  func()
}

// New creates a stopped player for the track at rawURL.
func New(rawURL string, opts Options) *Player {
	if opts.Buffer <= 0 {
		opts.Buffer = 100 * time.Millisecond
	}
	if opts.Source == nil {
		opts.Source = HTTPSource(http.DefaultClient, "")
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Player{
		url:    rawURL,
		source: opts.Source,
		buffer: opts.Buffer,
		logger: opts.Logger,
		state:  audio.Stopped,
	}
}

// HTTPSource returns a [Source] that downloads the stream with client, forwarding cookie when set.
func HTTPSource(client *http.Client, cookie string) Source {
	return func(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, "", err
		}
		if cookie != "" {
			req.Header.Set("Cookie", cookie)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, "", err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, "", fmt.Errorf("status %d", resp.StatusCode)
		}
		return resp.Body, resp.Header.Get("Content-Type"), nil
	}
}

// DetectFormat picks a decoder from the Content-Type, falling back to the URL's extension.
func DetectFormat(rawURL, contentType string) (Format, error) {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "audio/mpeg", "audio/mp3":
			return FormatMP3, nil
		case "audio/wav", "audio/x-wav", "audio/wave":
			return FormatWAV, nil
		case "audio/flac", "audio/x-flac":
			return FormatFLAC, nil
		}
	}

	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mp3":
		return FormatMP3, nil
	case ".wav":
		return FormatWAV, nil
	case ".flac":
		return FormatFLAC, nil
	}
	return "", fmt.Errorf("%w: %s", shared.ErrUnsupportedAudio, rawURL)
}

func decode(format Format, r io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch format {
	case FormatMP3:
		return mp3.Decode(r)
	case FormatWAV:
		return wav.Decode(r)
	case FormatFLAC:
		return flac.Decode(r)
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedAudio, format)
}

// ensureSpeaker initializes the speaker once and returns its sample rate.
func ensureSpeaker(rate beep.SampleRate, buffer time.Duration) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerRate != 0 {
		return speakerRate, nil
	}
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return 0, err
	}
	speakerRate = rate
	return rate, nil
}

func (p *Player) URL() string { return p.url }

func (p *Player) State() audio.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Listen installs the play and pause handlers fired on state changes.
func (p *Player) Listen(onPlay, onPause func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onPlay, p.onPause = onPlay, onPause
}

// Play resumes a paused stream or opens the track and starts it.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	switch {
	case p.state == audio.Playing:
		p.mu.Unlock()
		return nil
	case p.state == audio.Paused && p.ctrl != nil:
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
	default:
		if err := p.open(ctx); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	p.state = audio.Playing
	onPlay := p.onPlay
	p.mu.Unlock()

	if onPlay != nil {
		onPlay()
	}
	return nil
}

// open must be called with p.mu held.
func (p *Player) open(ctx context.Context) error {
	body, contentType, err := p.source(ctx, p.url)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPlaybackFailed, err)
	}

	format, err := DetectFormat(p.url, contentType)
	if err != nil {
		body.Close()
		return err
	}

	streamer, f, err := decode(format, body)
	if err != nil {
		body.Close()
		return fmt.Errorf("%w: decode %s: %v", shared.ErrPlaybackFailed, format, err)
	}

	rate, err := ensureSpeaker(f.SampleRate, p.buffer)
	if err != nil {
		streamer.Close()
		return fmt.Errorf("%w: speaker: %v", shared.ErrPlaybackFailed, err)
	}

	var s beep.Streamer = streamer
	if f.SampleRate != rate {
		s = beep.Resample(4, f.SampleRate, rate, streamer)
	}

	p.body = body
	p.streamer = streamer
	p.ctrl = &beep.Ctrl{Streamer: s}

	ctrl := p.ctrl
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() { p.finished(ctrl) })))
	p.logger.Debug("started stream", "url", p.url, "format", format, "rate", f.SampleRate)
	return nil
}

// finished runs on the speaker goroutine when a stream drains.
func (p *Player) finished(ctrl *beep.Ctrl) {
	go func() {
		p.mu.Lock()
		if p.ctrl != ctrl {
			p.mu.Unlock()
			return
		}
		p.release()
		onPause := p.onPause
		p.mu.Unlock()

		if onPause != nil {
			onPause()
		}
	}()
}

// Pause stops output, keeping the position.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.state != audio.Playing || p.ctrl == nil {
		p.mu.Unlock()
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = audio.Paused
	onPause := p.onPause
	p.mu.Unlock()

	if onPause != nil {
		onPause()
	}
}

// Rewind returns to the start of the track.
//
// HTTP streams cannot seek, so the stream is dropped and the next Play fetches it again.
func (p *Player) Rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return
	}

	speaker.Lock()
	err := p.streamer.Seek(0)
	speaker.Unlock()
	if err == nil {
		return
	}
	p.release()
}

// Toggle pauses a playing track and plays otherwise.
func (p *Player) Toggle(ctx context.Context) error {
	if p.State() == audio.Playing {
		p.Pause()
		return nil
	}
	return p.Play(ctx)
}

// Close stops the stream and releases it.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.release()
	return nil
}

// release must be called with p.mu held.
func (p *Player) release() {
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Streamer = nil
		speaker.Unlock()
		p.ctrl = nil
	}
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.body != nil {
		p.body.Close()
		p.body = nil
	}
	p.state = audio.Stopped
}
