package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Lerp(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		t    float32
		want Vec3
	}{
		{"midpoint", Vec3{0, 0, 0}, Vec3{2, 4, 6}, 0.5, Vec3{1, 2, 3}},
		{"start", Vec3{1, 1, 1}, Vec3{3, 3, 3}, 0, Vec3{1, 1, 1}},
		{"end", Vec3{1, 1, 1}, Vec3{3, 3, 3}, 1, Vec3{3, 3, 3}},
		{"extrapolate", Vec3{0, 0, 0}, Vec3{1, 0, 0}, -1, Vec3{-1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Lerp(tt.b, tt.t); got != tt.want {
				t.Errorf("Lerp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 4, 0}.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec3FromArray(t *testing.T) {
	if got := Vec3FromArray([3]float32{1, 2, 3}); got != (Vec3{1, 2, 3}) {
		t.Errorf("Vec3FromArray = %v, want (1, 2, 3)", got)
	}
}
