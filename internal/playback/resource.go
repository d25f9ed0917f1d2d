package playback

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Resource is the single playable media handle owned by the controller.
// Loading points the same resource at a new source; implementations must
// never hold two sources at once.
type Resource interface {
	// Load points the resource at a new source and resets the position.
	Load(url string) error
	Play() error
	Pause()
	Seek(pos time.Duration)
	Position() time.Duration
	Duration() time.Duration
	// Err reports a playback failure, nil while healthy.
	Err() error
	// Unload clears the source entirely.
	Unload()
}

var ErrNoSource = errors.New("no source loaded")

// DurationProbe estimates the play length of an audio URL.
type DurationProbe func(url string) (time.Duration, error)

// HTTPDurationProbe estimates duration from Content-Length at an assumed
// bitrate. bytesPerSecond <= 0 defaults to 24000 (192 kbit/s audio).
func HTTPDurationProbe(client *http.Client, bytesPerSecond int64) DurationProbe {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if bytesPerSecond <= 0 {
		bytesPerSecond = 24000
	}
	return func(url string) (time.Duration, error) {
		resp, err := client.Head(url)
		if err != nil {
			return 0, fmt.Errorf("failed to probe audio url: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return 0, fmt.Errorf("audio url probe returned status %d", resp.StatusCode)
		}
		if resp.ContentLength <= 0 {
			return 0, fmt.Errorf("audio url has no content length")
		}
		return time.Duration(resp.ContentLength/bytesPerSecond) * time.Second, nil
	}
}

// ClockResource tracks playback position against the wall clock. It is
// the production Resource for this headless engine; tests inject a fake.
type ClockResource struct {
	mu        sync.Mutex
	url       string
	loaded    bool
	playing   bool
	base      time.Duration
	startedAt time.Time
	duration  time.Duration
	probe     DurationProbe
	err       error
}

// NewClockResource returns a resource using probe for durations. A nil
// probe makes every source report a zero duration.
func NewClockResource(probe DurationProbe) *ClockResource {
	return &ClockResource{probe: probe}
}

// Load implements Resource.
func (r *ClockResource) Load(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.url = url
	r.loaded = true
	r.playing = false
	r.base = 0
	r.err = nil
	r.duration = 0
	if r.probe != nil {
		d, err := r.probe(url)
		if err != nil {
			r.err = err
			return err
		}
		r.duration = d
	}
	return nil
}

// Play implements Resource.
func (r *ClockResource) Play() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return ErrNoSource
	}
	if !r.playing {
		r.playing = true
		r.startedAt = time.Now()
	}
	return nil
}

// Pause implements Resource.
func (r *ClockResource) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.playing {
		r.base += time.Since(r.startedAt)
		r.playing = false
	}
}

// Seek implements Resource. A side-effect-free position jump.
func (r *ClockResource) Seek(pos time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	r.base = pos
	if r.playing {
		r.startedAt = time.Now()
	}
}

// Position implements Resource.
func (r *ClockResource) Position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos := r.base
	if r.playing {
		pos += time.Since(r.startedAt)
	}
	if r.duration > 0 && pos > r.duration {
		pos = r.duration
	}
	return pos
}

// Duration implements Resource.
func (r *ClockResource) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

// Err implements Resource.
func (r *ClockResource) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Unload implements Resource.
func (r *ClockResource) Unload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.url = ""
	r.loaded = false
	r.playing = false
	r.base = 0
	r.duration = 0
	r.err = nil
}
