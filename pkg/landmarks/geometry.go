package landmarks

import "math"

// smileEpsilon keeps the mouth ratio finite when the mouth is fully closed.
const smileEpsilon = 0.001

// Eye selects which eye an extraction applies to.
type Eye int

const (
	LeftEye Eye = iota
	RightEye
)

type eyeRefs struct {
	inner, outer, top, bottom, pupil int
}

func refsFor(eye Eye) eyeRefs {
	if eye == LeftEye {
		return eyeRefs{inner: LeftEyeInner, outer: LeftEyeOuter, top: LeftEyeTop, bottom: LeftEyeBottom, pupil: LeftPupil}
	}
	return eyeRefs{inner: RightEyeInner, outer: RightEyeOuter, top: RightEyeTop, bottom: RightEyeBottom, pupil: RightPupil}
}

// Gaze holds normalized pupil position within the eye, both axes in [0,1].
// 0.5/0.5 is the neutral value used when the eye cannot be measured.
type Gaze struct {
	Horizontal float64
	Vertical   float64
}

// NeutralGaze is the fallback when landmarks are missing or degenerate.
var NeutralGaze = Gaze{Horizontal: 0.5, Vertical: 0.5}

// EyeGaze computes the pupil position ratio for one eye.
// Horizontal = |pupil-inner| / eye width, vertical = |pupil-top| / eye height.
// Missing points or a zero-size eye yield NeutralGaze.
func EyeGaze(s Set, eye Eye) Gaze {
	refs := refsFor(eye)
	inner, okI := s.At(refs.inner)
	outer, okO := s.At(refs.outer)
	top, okT := s.At(refs.top)
	bottom, okB := s.At(refs.bottom)
	pupil, okP := s.At(refs.pupil)
	if !okI || !okO || !okP {
		return NeutralGaze
	}

	width := math.Abs(outer.X - inner.X)
	if width == 0 {
		return NeutralGaze
	}
	h := clamp01(math.Abs(pupil.X-inner.X) / width)

	v := 0.5
	if okT && okB {
		height := math.Abs(bottom.Y - top.Y)
		if height > 0 {
			v = clamp01(math.Abs(pupil.Y-top.Y) / height)
		}
	}
	return Gaze{Horizontal: h, Vertical: v}
}

// AverageGaze averages both eyes' gaze ratios.
func AverageGaze(s Set) Gaze {
	l := EyeGaze(s, LeftEye)
	r := EyeGaze(s, RightEye)
	return Gaze{
		Horizontal: (l.Horizontal + r.Horizontal) / 2,
		Vertical:   (l.Vertical + r.Vertical) / 2,
	}
}

// HeadPose describes where the head sits relative to the frame.
type HeadPose struct {
	Centered bool
	Tilt     float64 // degrees, from the outer-eye-corner line
	Rotation float64 // horizontal offset of the eye midpoint from frame center
	X, Y     float64 // eye midpoint in frame coordinates
}

// Head computes head centering, tilt and rotation from the outer eye corners.
// Missing points yield a not-centered neutral pose.
func Head(s Set) HeadPose {
	left, okL := s.At(LeftEyeOuter)
	right, okR := s.At(RightEyeOuter)
	_, okN := s.At(NoseTip)
	if !okL || !okR || !okN {
		return HeadPose{Centered: false}
	}

	cx := (left.X + right.X) / 2
	cy := (left.Y + right.Y) / 2

	dy := math.Abs(left.Y - right.Y)
	dx := math.Abs(left.X - right.X)
	tilt := math.Atan2(dy, dx) * (180 / math.Pi)

	return HeadPose{
		Centered: math.Abs(cx-0.5) < 0.15 && math.Abs(cy-0.5) < 0.2,
		Tilt:     tilt,
		Rotation: cx - 0.5,
		X:        cx,
		Y:        cy,
	}
}

// Alignment describes how symmetrically the two pupils sit in their sockets.
type Alignment struct {
	Aligned   bool
	Disparity float64
	Left      float64
	Right     float64
}

// PupilAlignment measures left/right pupil offset disparity.
// Missing points yield a fully misaligned result (disparity 1).
func PupilAlignment(s Set) Alignment {
	lp, okLP := s.At(LeftPupil)
	rp, okRP := s.At(RightPupil)
	li, okLI := s.At(LeftEyeOuter)
	ri, okRI := s.At(RightEyeOuter)
	if !okLP || !okRP || !okLI || !okRI {
		return Alignment{Aligned: false, Disparity: 1}
	}

	left := math.Abs(lp.X - li.X)
	right := math.Abs(rp.X - ri.X)
	disparity := math.Abs(left - right)

	return Alignment{
		Aligned:   disparity < 0.05,
		Disparity: disparity,
		Left:      left,
		Right:     right,
	}
}

// MouthRatio returns mouth width over mouth height. The epsilon keeps the
// ratio finite for a closed mouth. Returns false when the mouth is not visible.
func MouthRatio(s Set) (float64, bool) {
	left, okL := s.At(MouthLeft)
	right, okR := s.At(MouthRight)
	top, okT := s.At(MouthTop)
	bottom, okB := s.At(MouthBottom)
	if !okL || !okR || !okT || !okB {
		return 0, false
	}

	width := math.Abs(right.X - left.X)
	height := math.Abs(bottom.Y - top.Y)
	return width / (height + smileEpsilon), true
}

// BrowEyeDistance returns the average vertical distance between eyebrows and
// eyes. Returns false when the brows are not visible.
func BrowEyeDistance(s Set) (float64, bool) {
	lb, okLB := s.At(LeftBrow)
	rb, okRB := s.At(RightBrow)
	le, okLE := s.At(LeftEyeInner)
	re, okRE := s.At(RightEyeInner)
	if !okLB || !okRB || !okLE || !okRE {
		return 0, false
	}

	left := math.Abs(lb.Y - le.Y)
	right := math.Abs(rb.Y - re.Y)
	return (left + right) / 2, true
}

// EyeOpenness returns the average lid separation of both eyes.
// Missing lids yield the neutral 0.5.
func EyeOpenness(s Set) float64 {
	lt, okLT := s.At(LeftEyeTop)
	lb, okLB := s.At(LeftEyeBottom)
	rt, okRT := s.At(RightEyeTop)
	rb, okRB := s.At(RightEyeBottom)
	if !okLT || !okLB || !okRT || !okRB {
		return 0.5
	}

	left := math.Abs(lb.Y - lt.Y)
	right := math.Abs(rb.Y - rt.Y)
	return (left + right) / 2
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
