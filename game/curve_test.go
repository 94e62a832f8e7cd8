package game

import "testing"

func TestFloatCurveEval(t *testing.T) {
	c := NewFloatCurve(
		CurveKey{Time: 0, Value: 0},
		CurveKey{Time: 90, Value: 1},
	)

	if v := c.Eval(45); !Float32ApproxEq(v, 0.5) {
		t.Fatalf("expected 0.5 at midpoint, got %v", v)
	}
	if v := c.Eval(-10); v != 0 {
		t.Fatalf("expected clamp to first key, got %v", v)
	}
	if v := c.Eval(180); v != 1 {
		t.Fatalf("expected clamp to last key, got %v", v)
	}
}

func TestFloatCurveEmptyDefaultsToOne(t *testing.T) {
	var c *FloatCurve
	if v := c.Eval(30); v != 1 {
		t.Fatalf("nil curve should evaluate to 1, got %v", v)
	}
}

func TestFloatCurveUnsortedKeys(t *testing.T) {
	c := NewFloatCurve(
		CurveKey{Time: 90, Value: 1},
		CurveKey{Time: 0, Value: 3},
	)
	if v := c.Eval(0); v != 3 {
		t.Fatalf("keys should be sorted on construction, got %v at t=0", v)
	}
}
