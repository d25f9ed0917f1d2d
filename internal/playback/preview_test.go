package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPreviewURL(t *testing.T) {
	urlFor := NewPreviewURL("http://audio.local")

	got := urlFor("Some DJ", "Deep Cut & Friends")
	assert.Equal(t, "http://audio.local/preview?artist=Some+DJ&title=Deep+Cut+%26+Friends", got)
}

func TestPreviewerUsesThrowawayResources(t *testing.T) {
	var created []*fakeResource
	p := NewPreviewer(func() Resource {
		res := &fakeResource{dur: 30 * time.Second}
		created = append(created, res)
		return res
	}, NewPreviewURL("http://audio.local"))

	p.Play("A", "One")
	p.Play("B", "Two")

	if assert.Len(t, created, 2, "one resource per clip") {
		assert.Equal(t, []string{"http://audio.local/preview?artist=A&title=One"}, created[0].loads)
		assert.True(t, created[0].playing)
		assert.True(t, created[1].playing)
	}
}

func TestPreviewerLoadFailureIsSilent(t *testing.T) {
	p := NewPreviewer(func() Resource {
		return &fakeResource{loadErr: assert.AnError}
	}, NewPreviewURL("http://audio.local"))

	// Must not panic or propagate.
	p.Play("A", "One")
}
