package playback

import (
	"log/slog"
	"net/url"
)

// PreviewURLFunc maps an (artist, title) pair to a short-clip URL.
type PreviewURLFunc func(artist, title string) string

// NewPreviewURL builds a preview URL resolver against a base endpoint.
func NewPreviewURL(baseURL string) PreviewURLFunc {
	return func(artist, title string) string {
		q := url.Values{"artist": {artist}, "title": {title}}
		return baseURL + "/preview?" + q.Encode()
	}
}

// Previewer plays short clips through throwaway resources, fully
// decoupled from the singleton controller. Fire and forget: nothing is
// tracked and failures are only logged.
type Previewer struct {
	newResource func() Resource
	urlFor      PreviewURLFunc
}

// NewPreviewer creates a previewer. newResource is invoked per clip.
func NewPreviewer(newResource func() Resource, urlFor PreviewURLFunc) *Previewer {
	return &Previewer{newResource: newResource, urlFor: urlFor}
}

// Play starts a clip and forgets about it.
func (p *Previewer) Play(artist, title string) {
	res := p.newResource()
	if err := res.Load(p.urlFor(artist, title)); err != nil {
		slog.Debug("Preview load failed", "artist", artist, "title", title, "error", err)
		return
	}
	if err := res.Play(); err != nil {
		slog.Debug("Preview play failed", "artist", artist, "title", title, "error", err)
	}
}
