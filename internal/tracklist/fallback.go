package tracklist

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jaki95/set-workshop/internal/domain"
)

// parseTableFallback extracts tracks from table-style tracklist pages
// where each row carries the entry in a td.track cell.
func parseTableFallback(body []byte) []*domain.TrackOption {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var tracks []*domain.TrackOption
	doc.Find("table tr td.track").Each(func(_ int, sel *goquery.Selection) {
		value := strings.TrimSpace(sel.Text())
		if value == "" {
			return
		}
		artist, title := parseTrackValue(value)
		tracks = append(tracks, &domain.TrackOption{
			ID:     syntheticID(artist, title),
			Artist: artist,
			Title:  title,
		})
	})
	return tracks
}
