// Package playback wraps the single shared media resource behind a
// play/pause/resume/seek/stop state machine with an auto-advance hook.
// At most one track plays at a time by construction: switching tracks
// re-points the same resource, it never instantiates a second one.
package playback

import (
	"log/slog"
	"sync"
	"time"
)

// State is the controller state.
type State string

const (
	// StateIdle means no source is loaded.
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	// StateEnded is the stopped-but-not-idle state after a natural end
	// or a resource error.
	StateEnded State = "ended"
)

// DefaultPollInterval approximates display-refresh cadence.
const DefaultPollInterval = 16 * time.Millisecond

// Status is the observable playback state republished by the poller.
type Status struct {
	State    State         `json:"state"`
	TrackID  int64         `json:"trackId,omitempty"`
	Position time.Duration `json:"position"`
	Duration time.Duration `json:"duration"`
}

// URLFunc maps a track id to its audio resource URL.
type URLFunc func(trackID int64) string

// Controller drives the shared resource. Position and duration are
// sampled by an active poller rather than resource events, so consumers
// always see smooth, monotonically increasing positions during playback.
type Controller struct {
	mu           sync.Mutex
	res          Resource
	urlFor       URLFunc
	state        State
	trackID      int64
	onEnded      func()
	stopPoll     chan struct{}
	listeners    []func(Status)
	pollInterval time.Duration
}

// NewController wraps the injected resource. The resource is exclusively
// owned by the controller from here on.
func NewController(res Resource, urlFor URLFunc) *Controller {
	return &Controller{
		res:          res,
		urlFor:       urlFor,
		state:        StateIdle,
		pollInterval: DefaultPollInterval,
	}
}

// AddListener registers a status listener fed by the poller.
func (c *Controller) AddListener(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Status returns the current playback status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	return Status{
		State:    c.state,
		TrackID:  c.trackID,
		Position: c.res.Position(),
		Duration: c.res.Duration(),
	}
}

// Play tears down any in-flight playback, points the resource at the
// track's audio URL and starts playing. onEnded, if non-nil, fires once
// on natural end or resource error; the auto-advance use case re-enters
// Play from it. Rapid re-triggering cannot produce overlapping audio.
func (c *Controller) Play(trackID int64, onEnded func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.res.Pause()
	c.res.Seek(0)
	c.stopPollerLocked()

	if err := c.res.Load(c.urlFor(trackID)); err != nil {
		c.endLocked(trackID, onEnded)
		return err
	}
	if err := c.res.Play(); err != nil {
		c.endLocked(trackID, onEnded)
		return err
	}

	c.state = StatePlaying
	c.trackID = trackID
	c.onEnded = onEnded
	c.startPollerLocked()
	slog.Debug("Playback started", "trackId", trackID)
	return nil
}

// endLocked records a failed start as an ended playback. The callback
// still fires so an auto-advance chain skips the broken track instead
// of halting on it.
func (c *Controller) endLocked(trackID int64, onEnded func()) {
	c.state = StateEnded
	c.trackID = trackID
	c.publishLocked()
	if onEnded != nil {
		go onEnded()
	}
}

// Pause suspends playback and the poller.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying {
		return
	}
	c.res.Pause()
	c.state = StatePaused
	c.stopPollerLocked()
	c.publishLocked()
}

// Resume continues paused playback.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePaused {
		return nil
	}
	if err := c.res.Play(); err != nil {
		return err
	}
	c.state = StatePlaying
	c.startPollerLocked()
	return nil
}

// Seek jumps the resource position. Valid while playing or paused; no
// other side effects.
func (c *Controller) Seek(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying && c.state != StatePaused {
		return
	}
	c.res.Seek(pos)
	c.publishLocked()
}

// Stop clears the source and returns to idle from any state.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.res.Pause()
	c.res.Unload()
	c.state = StateIdle
	c.trackID = 0
	c.onEnded = nil
	c.stopPollerLocked()
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	status := c.statusLocked()
	for _, fn := range c.listeners {
		fn(status)
	}
}

func (c *Controller) startPollerLocked() {
	stop := make(chan struct{})
	c.stopPoll = stop
	go c.poll(stop)
}

func (c *Controller) stopPollerLocked() {
	if c.stopPoll != nil {
		close(c.stopPoll)
		c.stopPoll = nil
	}
}

// poll samples position and duration at display-refresh cadence and
// republishes them, detecting natural end and resource errors.
func (c *Controller) poll(stop chan struct{}) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if ended := c.tick(stop); ended {
				return
			}
		}
	}
}

// tick publishes one sample; returns true when playback ended.
func (c *Controller) tick(stop chan struct{}) bool {
	c.mu.Lock()
	if c.stopPoll != stop {
		// A newer Play superseded this poller.
		c.mu.Unlock()
		return true
	}

	err := c.res.Err()
	pos, dur := c.res.Position(), c.res.Duration()
	ended := err != nil || (dur > 0 && pos >= dur)

	var onEnded func()
	if ended {
		// Resource errors are treated identically to natural end.
		c.res.Pause()
		c.state = StateEnded
		c.stopPoll = nil
		onEnded = c.onEnded
		c.onEnded = nil
		if err != nil {
			slog.Warn("Playback resource error", "trackId", c.trackID, "error", err)
		}
	}
	c.publishLocked()
	c.mu.Unlock()

	if onEnded != nil {
		onEnded()
	}
	return ended
}
