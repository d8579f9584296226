package vmath

import (
	"math"
	"testing"
)

func TestVec2_Arithmetic(t *testing.T) {
	a := V(1, 2)
	b := V(4, 6)

	if got := a.Add(b); got != V(5, 8) {
		t.Errorf("Add failed: got %v", got)
	}
	if got := b.Sub(a); got != V(3, 4) {
		t.Errorf("Sub failed: got %v", got)
	}
	if got := a.Scale(3); got != V(3, 6) {
		t.Errorf("Scale failed: got %v", got)
	}
	if got := b.Div(2); got != V(2, 3) {
		t.Errorf("Div failed: got %v", got)
	}
	if got := a.Dot(b); got != 16 {
		t.Errorf("Dot failed: got %v", got)
	}
}

func TestVec2_Len(t *testing.T) {
	tests := []struct {
		v    Vec2
		want float32
	}{
		{V(3, 4), 5},
		{V(0, 0), 0},
		{V(-6, 8), 10},
		{V(1, 0), 1},
	}

	for _, tt := range tests {
		if got := tt.v.Len(); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("Len(%v) = %v, want %v", tt.v, got, tt.want)
		}
		if got := tt.v.LenSq(); math.Abs(float64(got-tt.want*tt.want)) > 1e-4 {
			t.Errorf("LenSq(%v) = %v, want %v", tt.v, got, tt.want*tt.want)
		}
	}
}

func TestVec2_IsFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name string
		v    Vec2
		want bool
	}{
		{"zero", Zero(), true},
		{"normal", V(1.5, -2), true},
		{"nan x", V(nan, 0), false},
		{"inf y", V(0, inf), false},
		{"div by zero", V(1, 1).Div(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromAngle(t *testing.T) {
	v := FromAngle(math.Pi / 2)
	if math.Abs(float64(v.X)) > 1e-6 || math.Abs(float64(v.Y-1)) > 1e-6 {
		t.Errorf("FromAngle(pi/2) = %v, want (0, 1)", v)
	}
	if l := FromAngle(1.234).Len(); math.Abs(float64(l-1)) > 1e-6 {
		t.Errorf("expected unit length, got %v", l)
	}
}
