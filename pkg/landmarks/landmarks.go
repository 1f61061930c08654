// Package landmarks converts face-mesh landmark sets into the normalized
// geometry ratios the scoring pipeline consumes.
//
// Landmark sets are produced externally (one per video frame) using the
// MediaPipe face-mesh index scheme with iris refinement. A set is ephemeral:
// it is owned by the frame that delivered it and nothing here retains it.
package landmarks

// Point is a single landmark in normalized frame coordinates.
// X and Y are in [0,1] with (0.5, 0.5) at frame center.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Set is an ordered landmark sequence indexed by the face-mesh numbering.
type Set []Point

// Face-mesh indices used by the extractor.
const (
	NoseTip = 1

	MouthTop    = 0
	MouthBottom = 17
	MouthLeft   = 61
	MouthRight  = 291

	LeftBrow  = 65
	RightBrow = 295

	LeftEyeInner  = 33
	LeftEyeOuter  = 133
	LeftEyeTop    = 159
	LeftEyeBottom = 145
	LeftPupil     = 468

	RightEyeInner  = 263
	RightEyeOuter  = 362
	RightEyeTop    = 386
	RightEyeBottom = 374
	RightPupil     = 473
)

// Index groups used for averaged region positions during calibration.
var (
	LeftEyeRing = []int{33, 7, 163, 144, 145, 153, 154, 155, 133, 173, 157, 158, 159, 160, 161, 246}
	NoseBridge  = []int{1, 168, 197}
)

// At returns the landmark at index i, reporting whether it exists. The
// zero-value point marks an unset slot: a detected face never places a
// landmark exactly at the frame origin, so partial detections can ship a
// full-length set with the missing regions left zeroed.
func (s Set) At(i int) (Point, bool) {
	if i < 0 || i >= len(s) {
		return Point{}, false
	}
	p := s[i]
	if p == (Point{}) {
		return Point{}, false
	}
	return p, true
}

// MeanOf averages the landmarks at the given indices, skipping missing ones.
// Returns false when none of the indices are present.
func (s Set) MeanOf(indices ...int) (Point, bool) {
	var sum Point
	n := 0
	for _, i := range indices {
		p, ok := s.At(i)
		if !ok {
			continue
		}
		sum.X += p.X
		sum.Y += p.Y
		sum.Z += p.Z
		n++
	}
	if n == 0 {
		return Point{}, false
	}
	return Point{X: sum.X / float64(n), Y: sum.Y / float64(n), Z: sum.Z / float64(n)}, true
}
