// Package refill drives the bulk BPM recompute for all filled slots,
// consuming the chunked NDJSON response incrementally so partial results
// become visible before the whole refill completes.
package refill

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jaki95/set-workshop/internal/domain"
	"github.com/jaki95/set-workshop/internal/workshop"
)

var (
	ErrAlreadyRunning = errors.New("refill already in progress")
	ErrStreamFailed   = errors.New("refill stream failed")
)

// SlotRequest is one filled slot in the recompute request payload. The
// server addresses its results by position in this list.
type SlotRequest struct {
	Source        *domain.SlotSource    `json:"source"`
	Tracks        []*domain.TrackOption `json:"tracks"`
	SelectedIndex int                   `json:"selectedIndex"`
}

// Request is the recompute request body.
type Request struct {
	Slots []SlotRequest `json:"slots"`
}

// Progress reports one applied event to an observer.
type Progress struct {
	Applied int   `json:"applied"`
	Total   int   `json:"total"`
	Event   Event `json:"event"`
}

// Client issues recompute requests against the refill endpoint and
// applies per-slot results to the store as they arrive.
type Client struct {
	store      *workshop.Store
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a refill client for the given endpoint URL.
func NewClient(store *workshop.Store, endpoint string) *Client {
	return &Client{
		store:    store,
		endpoint: endpoint,
		httpClient: &http.Client{
			// No overall timeout: the stream stays open for the whole
			// recompute. Cancellation arrives through the context.
			Timeout: 0,
		},
	}
}

// Run performs one refill for the currently filled slots. Results are
// keyed by the slot ids captured here, before the request is sent, so a
// reorder happening mid-stream cannot misapply a result; a slot deleted
// mid-stream turns its update into a no-op. onProgress may be nil.
func (c *Client) Run(ctx context.Context, onProgress func(Progress)) error {
	snap := c.store.Snapshot()
	if snap.Refilling {
		return ErrAlreadyRunning
	}

	var req Request
	var slotIDs []string
	for _, slot := range snap.State.Slots {
		if !slot.IsFilled() {
			continue
		}
		req.Slots = append(req.Slots, SlotRequest{
			Source:        slot.Source,
			Tracks:        slot.Tracks,
			SelectedIndex: *slot.SelectedTrackIndex,
		})
		slotIDs = append(slotIDs, slot.ID)
	}
	if len(req.Slots) == 0 {
		return nil
	}

	c.store.SetRefilling(true)
	defer c.store.SetRefilling(false)

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode refill request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create refill request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStreamFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrStreamFailed, resp.StatusCode)
	}

	started := time.Now()
	applied, err := c.consume(resp.Body, slotIDs, onProgress)
	if err != nil {
		// Whatever was already applied stays applied; no rollback.
		return err
	}
	slog.Info("Refill completed", "slots", len(slotIDs), "applied", applied, "elapsed", time.Since(started))
	return nil
}

// consume reads the stream chunk by chunk, applying each completed
// record immediately.
func (c *Client) consume(r io.Reader, slotIDs []string, onProgress func(Progress)) (int, error) {
	var dec Decoder
	applied := 0
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, ev := range dec.Feed(buf[:n]) {
				if ev.Done {
					return applied, nil
				}
				if c.apply(ev, slotIDs) {
					applied++
				}
				if onProgress != nil {
					onProgress(Progress{Applied: applied, Total: len(slotIDs), Event: ev})
				}
			}
		}
		if err == io.EOF {
			for _, ev := range dec.Close() {
				if ev.Done {
					break
				}
				if c.apply(ev, slotIDs) {
					applied++
				}
			}
			return applied, nil
		}
		if err != nil {
			return applied, fmt.Errorf("%w: %v", ErrStreamFailed, err)
		}
	}
}

// apply maps the request-relative slot index onto the captured slot id
// and updates that slot. Out-of-range indices are dropped.
func (c *Client) apply(ev Event, slotIDs []string) bool {
	if ev.SlotIndex == nil {
		return false
	}
	i := *ev.SlotIndex
	if i < 0 || i >= len(slotIDs) {
		slog.Debug("Refill result for unknown slot index", "slotIndex", i)
		return false
	}
	c.store.UpdateSlotTracks(slotIDs[i], ev.Tracks, ev.Source)
	return true
}
