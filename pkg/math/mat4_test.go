package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation lives in elements 12..14 (last row when read row-major)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	if got := m.Translation(); got != (Vec3{5, 10, 15}) {
		t.Errorf("Translation() = %v, want (5, 10, 15)", got)
	}
}

func TestScale(t *testing.T) {
	m := ScaleVec(Vec3{2, 3, 4})

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 2, 2)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

// rowMajorMul is the row-major, row-vector product used by DirectX-style
// content: res(i,j) = sum_k a(i,k) * b(k,j) with element (i,j) at i*4+j.
func rowMajorMul(a, b Mat4) Mat4 {
	var res Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			res[i*4+j] = a[i*4+0]*b[0*4+j] + a[i*4+1]*b[1*4+j] + a[i*4+2]*b[2*4+j] + a[i*4+3]*b[3*4+j]
		}
	}
	return res
}

func TestComposeWorldMatchesRowVectorOrder(t *testing.T) {
	pos := Vec3{1, -2, 3}
	rot := QuatFromAxisAngle(Vec3{0, 1, 0}, 0.7)
	scl := Vec3{2, 0.5, 1.5}
	parent := LocalTRS(Vec3{4, 5, 6}, QuatFromAxisAngle(Vec3{1, 0, 0}, -0.3), Vec3{1, 2, 1})

	got := ComposeWorld(LocalTRS(pos, rot, scl), parent)

	// S × R × T × Parent in the row-major convention
	want := rowMajorMul(rowMajorMul(rowMajorMul(ScaleVec(scl), rot.ToMat4()), TranslateVec(pos)), parent)

	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("ComposeWorld:\n got  %v\n want %v", got, want)
	}

	// Reversed operand order must differ for a non-trivial hierarchy
	swapped := ComposeWorld(parent, LocalTRS(pos, rot, scl))
	if swapped.ApproxEqual(want, 1e-5) {
		t.Error("ComposeWorld should depend on operand order")
	}
}

func TestLocalTRSTranslationAndPoint(t *testing.T) {
	m := LocalTRS(Vec3{1, 2, 3}, QuatIdentity(), Vec3{2, 2, 2})

	if got := m.Translation(); got != (Vec3{1, 2, 3}) {
		t.Errorf("translation = %v, want (1, 2, 3)", got)
	}
	// Scale applies before translation
	if got := m.TransformPoint([3]float32{1, 0, 0}); got != [3]float32{3, 2, 3} {
		t.Errorf("TransformPoint = %v, want (3, 2, 3)", got)
	}
}

func TestHorizontalFrustum(t *testing.T) {
	m := HorizontalFrustum(float32(math.Pi/2), 800, 600, 1, 100)

	// 90 degree horizontal FOV at near=1 gives right=1, so m[0] = near/right = 1
	if abs(m[0]-1) > 0.0001 {
		t.Errorf("HorizontalFrustum [0] = %f, want 1", m[0])
	}
	// Vertical extent is right * 600/800
	if abs(m[5]-1/0.75) > 0.0001 {
		t.Errorf("HorizontalFrustum [5] = %f, want %f", m[5], 1/0.75)
	}
	if m[11] != -1 {
		t.Errorf("HorizontalFrustum [11] should be -1, got %f", m[11])
	}
	if m[15] != 0 {
		t.Errorf("HorizontalFrustum [15] should be 0, got %f", m[15])
	}
}

func TestLookAt(t *testing.T) {
	// Eye on +Z looking at the origin is a pure translation
	m := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})
	if !m.ApproxEqual(Translate(0, 0, -5), 1e-6) {
		t.Errorf("LookAt = %v, want translate(0, 0, -5)", m)
	}

	// The target lands on the -Z axis at the eye distance
	m = LookAt(Vec3{3, 4, 0}, Vec3{0, 4, 0}, Vec3{0, 1, 0})
	p := m.TransformPoint([3]float32{0, 4, 0})
	if abs(p[0]) > 1e-5 || abs(p[1]) > 1e-5 || abs(p[2]+3) > 1e-5 {
		t.Errorf("target in view space = %v, want (0, 0, -3)", p)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
