package tracklist

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTrackValue(t *testing.T) {
	tests := []struct {
		value      string
		wantArtist string
		wantTitle  string
	}{
		{"Artist - Title", "Artist", "Title"},
		{"  Some DJ  -  Deep Cut  ", "Some DJ", "Deep Cut"},
		{"Artist - Title - Extended Mix", "Artist", "Title - Extended Mix"},
		{"ID", "Unknown Artist", "ID"},
	}

	for _, tt := range tests {
		artist, title := parseTrackValue(tt.value)
		if artist != tt.wantArtist || title != tt.wantTitle {
			t.Errorf("parseTrackValue(%q) = (%q, %q), want (%q, %q)",
				tt.value, artist, title, tt.wantArtist, tt.wantTitle)
		}
	}
}

func TestSyntheticIDIsStableAndPositive(t *testing.T) {
	a := syntheticID("Artist", "Title")
	b := syntheticID("Artist", "Title")
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, int64(0))

	assert.NotEqual(t, syntheticID("Artist", "Title"), syntheticID("Artis", "tTitle"),
		"the separator keeps artist/title boundaries distinct")
}

func TestImportToggledLayout(t *testing.T) {
	page := `<html><body>
		<div class="tlpTog"><span class="trackValue">First Artist - Opener</span></div>
		<div class="tlpTog"><span class="trackValue">Second Artist - Peak Time</span><span class="bpm">128</span></div>
		<div class="tlpTog"><span class="trackValue"></span></div>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	tracks, err := NewScraper().Import(server.URL)
	assert.NoError(t, err)

	if assert.Len(t, tracks, 2) {
		assert.Equal(t, "First Artist", tracks[0].Artist)
		assert.Equal(t, "Opener", tracks[0].Title)
		assert.Nil(t, tracks[0].BPM)

		assert.Equal(t, "Peak Time", tracks[1].Title)
		if assert.NotNil(t, tracks[1].BPM) {
			assert.Equal(t, 128.0, *tracks[1].BPM)
		}
		if assert.NotNil(t, tracks[1].BPMBucket) {
			assert.Equal(t, 128, *tracks[1].BPMBucket)
		}
	}
}

func TestImportTableFallback(t *testing.T) {
	page := `<html><body><table>
		<tr><td class="track">Fallback Artist - Row One</td></tr>
		<tr><td class="track">Fallback Artist - Row Two</td></tr>
		<tr><td class="other">ignored</td></tr>
	</table></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	tracks, err := NewScraper().Import(server.URL)
	assert.NoError(t, err)

	if assert.Len(t, tracks, 2) {
		assert.Equal(t, "Row One", tracks[0].Title)
		assert.Equal(t, "Row Two", tracks[1].Title)
	}
}

func TestImportEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>nothing here</p></body></html>")
	}))
	defer server.Close()

	_, err := NewScraper().Import(server.URL)
	assert.Error(t, err)
}

func TestImportUnreachableURL(t *testing.T) {
	_, err := NewScraper().Import("http://127.0.0.1:1/tracklist")
	assert.Error(t, err)
}

func TestParseTableFallbackDirect(t *testing.T) {
	body := []byte(`<table><tr><td class="track">A - B</td></tr></table>`)
	tracks := parseTableFallback(body)
	if assert.Len(t, tracks, 1) {
		assert.Equal(t, "A", tracks[0].Artist)
	}

	assert.Empty(t, parseTableFallback([]byte("<div>no table</div>")))
}
