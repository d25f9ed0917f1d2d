package refill

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/jaki95/set-workshop/internal/domain"
)

// Event is one newline-delimited record of the recompute stream: either
// a per-slot result or the terminal done marker.
type Event struct {
	SlotIndex *int                  `json:"slotIndex,omitempty"`
	Tracks    []*domain.TrackOption `json:"tracks,omitempty"`
	Source    *domain.SlotSource    `json:"source,omitempty"`
	Done      bool                  `json:"done,omitempty"`
}

// Decoder incrementally parses the chunked stream. Partial lines are
// buffered across chunk boundaries; an incomplete trailing fragment is
// held back until more bytes arrive. A malformed line is skipped without
// aborting the stream.
type Decoder struct {
	buf []byte
}

// Feed appends a chunk and returns every event completed by it.
func (d *Decoder) Feed(chunk []byte) []Event {
	d.buf = append(d.buf, chunk...)
	var events []Event
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			return events
		}
		line := bytes.TrimSpace(d.buf[:i])
		d.buf = d.buf[i+1:]
		if ev, ok := decodeLine(line); ok {
			events = append(events, ev)
		}
	}
}

// Close drains a final complete record lacking a trailing newline.
func (d *Decoder) Close() []Event {
	line := bytes.TrimSpace(d.buf)
	d.buf = nil
	if ev, ok := decodeLine(line); ok {
		return []Event{ev}
	}
	return nil
}

func decodeLine(line []byte) (Event, bool) {
	if len(line) == 0 {
		return Event{}, false
	}
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		slog.Debug("Skipping malformed refill record", "error", err)
		return Event{}, false
	}
	return ev, true
}
