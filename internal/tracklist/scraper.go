// Package tracklist scrapes published tracklist pages into candidate
// lists, backing the "tracklist" slot source type.
package tracklist

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly"

	"github.com/jaki95/set-workshop/internal/domain"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Scraper imports candidate tracks from a tracklist page.
type Scraper struct {
	timeout time.Duration
}

// NewScraper returns a scraper with a 30 second request timeout.
func NewScraper() *Scraper {
	return &Scraper{timeout: 30 * time.Second}
}

// Import scrapes the given tracklist URL and returns the tracks found.
func (s *Scraper) Import(url string) ([]*domain.TrackOption, error) {
	var tracks []*domain.TrackOption

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxDepth(1),
		colly.UserAgent(userAgents[rand.Intn(len(userAgents))]),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Connection", "keep-alive")
	})

	c.OnHTML("div.tlpTog", func(e *colly.HTMLElement) {
		trackValue := strings.TrimSpace(e.ChildText("span.trackValue"))
		if trackValue == "" {
			return
		}
		artist, title := parseTrackValue(trackValue)

		track := &domain.TrackOption{
			ID:     syntheticID(artist, title),
			Artist: artist,
			Title:  title,
		}

		// Some tracklist pages annotate entries with a BPM value.
		if bpmText := strings.TrimSpace(e.DOM.Find("span.bpm").Text()); bpmText != "" {
			if bpm, err := strconv.ParseFloat(bpmText, 64); err == nil {
				track.BPM = &bpm
				bucket := int(bpm)
				track.BPMBucket = &bucket
			}
		}

		tracks = append(tracks, track)
	})

	// Fallback for pages that list entries as a plain table instead of
	// the toggled layout.
	var rawBody []byte
	c.OnResponse(func(r *colly.Response) {
		rawBody = r.Body
	})

	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("scraping failed: %w", err)
	}

	if len(tracks) == 0 && len(rawBody) > 0 {
		tracks = parseTableFallback(rawBody)
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("no tracks found in tracklist")
	}

	slog.Debug("Imported tracklist", "url", url, "tracks", len(tracks))
	return tracks, nil
}

// parseTrackValue splits a "Artist - Title" entry. Entries without a
// separator keep the whole value as the title.
func parseTrackValue(value string) (artist, title string) {
	parts := strings.SplitN(value, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "Unknown Artist", strings.TrimSpace(parts[0])
}

// syntheticID derives a stable numeric id for scraped tracks, which have
// no catalog identity of their own.
func syntheticID(artist, title string) int64 {
	h := fnv.New64a()
	h.Write([]byte(artist))
	h.Write([]byte{0})
	h.Write([]byte(title))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}
