// Package layout maps tempo values onto vertical pixel offsets for the
// workshop timeline. Higher tempo renders nearer the top of the track area.
package layout

// Defaults for the tempo axis.
const (
	DefaultMinBPM = 60.0
	DefaultMaxBPM = 200.0
	DefaultHeight = 640.0
)

// Mapper converts a tempo to a y offset within a fixed-height track area.
// It performs no clamping: an out-of-range tempo legitimately maps
// off-canvas, callers are expected to pass plausible values.
type Mapper struct {
	MinBPM float64
	MaxBPM float64
	Height float64
}

// NewMapper returns a mapper over [minBPM, maxBPM] with the given pixel
// height. Zero or inverted arguments fall back to the defaults.
func NewMapper(minBPM, maxBPM, height float64) Mapper {
	if maxBPM <= minBPM {
		minBPM, maxBPM = DefaultMinBPM, DefaultMaxBPM
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return Mapper{MinBPM: minBPM, MaxBPM: maxBPM, Height: height}
}

// Y returns the vertical offset for the given tempo.
func (m Mapper) Y(bpm float64) float64 {
	return m.Height * (m.MaxBPM - bpm) / (m.MaxBPM - m.MinBPM)
}

// Gridline pairs a tempo with its mapped offset, for rendering the
// horizontal BPM guides behind the timeline.
type Gridline struct {
	BPM float64 `json:"bpm"`
	Y   float64 `json:"y"`
}

// Gridlines returns one gridline per step across the mapper's range,
// inclusive of both ends. A step <= 0 defaults to 10 BPM.
func (m Mapper) Gridlines(step float64) []Gridline {
	if step <= 0 {
		step = 10
	}
	var lines []Gridline
	for bpm := m.MinBPM; bpm <= m.MaxBPM; bpm += step {
		lines = append(lines, Gridline{BPM: bpm, Y: m.Y(bpm)})
	}
	return lines
}
