package engine

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Animation interpolates rendered positions between two discrete snapshots.
// Only one interpolation is in flight; Begin supersedes the current one.
type Animation struct {
	from     []Spot
	to       []Spot
	length   float32
	acc      float32
	lastNow  float32
	travel   bool
	tween    *gween.Tween
	fraction float32
}

// NewAnimation creates an idle animation
func NewAnimation() *Animation {
	return &Animation{}
}

// Begin starts interpolating from -> to over duration seconds.
// A non-positive duration completes immediately.
func (a *Animation) Begin(from, to []Spot, duration float32) {
	a.from = copySpots(from)
	a.to = copySpots(to)
	a.length = duration
	a.acc = 0
	a.fraction = 0
	if duration <= 0 {
		a.tween = nil
		a.travel = false
		a.fraction = 1
		return
	}
	a.tween = gween.New(0, 1, duration, ease.Linear)
	a.travel = true
}

// Snap ends any interpolation with positions set exactly to spots
func (a *Animation) Snap(spots []Spot) {
	a.from = copySpots(spots)
	a.to = copySpots(spots)
	a.tween = nil
	a.travel = false
	a.acc = a.length
	a.fraction = 1
}

// Update advances the elapsed time by dt and returns the current positions.
// A negative dt (regressed host clock) counts as zero.
func (a *Animation) Update(now, dt float32) ([]Vec3, bool) {
	a.lastNow = now
	if dt < 0 {
		dt = 0
	}
	if a.travel {
		a.acc += dt
		f, finished := a.tween.Update(dt)
		if finished || a.acc >= a.length {
			a.travel = false
			a.tween = nil
			f = 1
		}
		a.fraction = clamp01(f)
	}
	return a.Positions(), !a.travel
}

// Positions returns the interpolated positions at the current fraction
func (a *Animation) Positions() []Vec3 {
	out := make([]Vec3, len(a.to))
	for i, target := range a.to {
		if !a.travel || i >= len(a.from) || Same(a.from[i], target) {
			out[i] = SpotToVec3(target)
			continue
		}
		out[i] = lerp(SpotToVec3(a.from[i]), SpotToVec3(target), a.fraction)
	}
	return out
}

// Travel reports whether an interpolation is in flight
func (a *Animation) Travel() bool {
	return a.travel
}

// Fraction returns the elapsed fraction in [0, 1]
func (a *Animation) Fraction() float32 {
	return a.fraction
}

// Elapsed returns the accumulated time of the current interpolation
func (a *Animation) Elapsed() float32 {
	return a.acc
}

// Length returns the duration of the current interpolation
func (a *Animation) Length() float32 {
	return a.length
}

func lerp(from, to Vec3, f float32) Vec3 {
	return Vec3{
		X: from.X + (to.X-from.X)*f,
		Y: from.Y + (to.Y-from.Y)*f,
		Z: from.Z + (to.Z-from.Z)*f,
	}
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
