package game

import "sort"

// CurveKey is a single keyframe on a FloatCurve.
type CurveKey struct {
	Time  float32
	Value float32
}

// FloatCurve is a designer-tunable piecewise-linear curve, used for things
// like scaling wall-run gravity by the angle between input and wall
// direction. Evaluation outside the keyed range clamps to the end values.
type FloatCurve struct {
	keys []CurveKey
}

// NewFloatCurve builds a curve from the given keys. Keys are sorted by time.
func NewFloatCurve(keys ...CurveKey) *FloatCurve {
	c := &FloatCurve{keys: append([]CurveKey(nil), keys...)}
	sort.Slice(c.keys, func(i, j int) bool { return c.keys[i].Time < c.keys[j].Time })
	return c
}

// Eval evaluates the curve at t. An empty curve evaluates to 1 so that a
// missing gravity-scale curve leaves gravity unscaled.
func (c *FloatCurve) Eval(t float32) float32 {
	if c == nil || len(c.keys) == 0 {
		return 1
	}
	if t <= c.keys[0].Time {
		return c.keys[0].Value
	}
	last := c.keys[len(c.keys)-1]
	if t >= last.Time {
		return last.Value
	}
	for i := 1; i < len(c.keys); i++ {
		if t > c.keys[i].Time {
			continue
		}
		a, b := c.keys[i-1], c.keys[i]
		span := b.Time - a.Time
		if span < 1e-8 {
			return b.Value
		}
		alpha := (t - a.Time) / span
		return a.Value + (b.Value-a.Value)*alpha
	}
	return last.Value
}
