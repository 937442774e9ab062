package animation

import (
	"testing"

	"github.com/Faultbox/midgard-rig/pkg/formats"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

const eps = 1e-4

type recordingTarget struct {
	calls int
	pos   math.Vec3
	rot   math.Quat
	scale math.Vec3
}

func (r *recordingTarget) SetLocalTRS(pos math.Vec3, rot math.Quat, scale math.Vec3) {
	r.calls++
	r.pos, r.rot, r.scale = pos, rot, scale
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func vecNear(a, b math.Vec3) bool {
	return abs(a.X-b.X) < eps && abs(a.Y-b.Y) < eps && abs(a.Z-b.Z) < eps
}

func quatNear(a, b math.Quat) bool {
	return abs(a.W-b.W) < eps && abs(a.X-b.X) < eps && abs(a.Y-b.Y) < eps && abs(a.Z-b.Z) < eps
}

func vkeys(pairs ...any) []formats.VectorKey {
	var keys []formats.VectorKey
	for i := 0; i+1 < len(pairs); i += 2 {
		keys = append(keys, formats.VectorKey{Time: pairs[i].(float64), Value: pairs[i+1].(math.Vec3)})
	}
	return keys
}

func TestChannelEmptyTracksUseDefaults(t *testing.T) {
	ch := &Channel{NodeName: "empty"}
	target := &recordingTarget{}

	ch.Update(0.1, 1000, target)

	if target.calls != 1 {
		t.Fatalf("expected 1 SetLocalTRS call, got %d", target.calls)
	}
	if target.pos != math.Vec3Zero {
		t.Errorf("position = %v, want zero", target.pos)
	}
	if target.rot != math.QuatIdentity() {
		t.Errorf("rotation = %v, want identity", target.rot)
	}
	if target.scale != math.Vec3One {
		t.Errorf("scale = %v, want one", target.scale)
	}
}

func TestChannelSingleScaleKeyIgnored(t *testing.T) {
	ch := &Channel{ScaleKeys: vkeys(0.0, math.Vec3{X: 2, Y: 2, Z: 2})}

	_, _, scale := ch.Evaluate(0)
	if scale != math.Vec3One {
		t.Errorf("scale = %v, want (1, 1, 1)", scale)
	}
}

func TestChannelSinglePositionKeyLoops(t *testing.T) {
	key := math.Vec3{X: 1, Y: 2, Z: 3}
	rot := math.QuatFromAxisAngle(math.Vec3{Y: 1}, 0.5)
	ch := &Channel{
		PositionKeys: vkeys(0.5, key),
		RotationKeys: []formats.QuatKey{{Time: 0.5, Value: rot}},
	}

	first := &recordingTarget{}
	ch.Update(0.25, 1000, first)

	// Advance a full duration; the cursor wraps.
	second := &recordingTarget{}
	ch.Update(ch.Duration(), 1000, second)

	if first.pos != key || second.pos != key {
		t.Errorf("positions = %v, %v; want %v", first.pos, second.pos, key)
	}
	if first.rot != second.rot || first.scale != second.scale {
		t.Errorf("loop changed the evaluated transform: %+v vs %+v", first, second)
	}
	if first.rot != rot.Conjugate() {
		t.Errorf("single rotation key should be conjugated, got %v", first.rot)
	}
}

func TestChannelLinearMidpoint(t *testing.T) {
	ch := &Channel{PositionKeys: vkeys(0.0, math.Vec3{X: 0, Y: 0, Z: 0}, 1.0, math.Vec3{X: 2, Y: 4, Z: 6})}

	pos, _, _ := ch.Evaluate(0.5)
	if !vecNear(pos, math.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("position = %v, want (1, 2, 3)", pos)
	}
}

func TestChannelRotationEndpointsAreConjugates(t *testing.T) {
	q1 := math.QuatFromAxisAngle(math.Vec3{Z: 1}, 0.3)
	q2 := math.QuatFromAxisAngle(math.Vec3{Z: 1}, 1.2)
	ch := &Channel{RotationKeys: []formats.QuatKey{{Time: 0, Value: q1}, {Time: 1, Value: q2}}}

	tests := []struct {
		name string
		tick float64
		want math.Quat
	}{
		{"start", 0, q1.Conjugate()},
		{"end", 1, q2.Conjugate()},
		{"after end", 5, q2.Conjugate()},
		{"before start", -1, q1.Conjugate()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rot, _ := ch.Evaluate(tt.tick)
			if !quatNear(rot, tt.want) {
				t.Errorf("rotation = %v, want %v", rot, tt.want)
			}
		})
	}
}

func TestChannelKeySearchModes(t *testing.T) {
	keys := vkeys(
		0.0, math.Vec3{X: 0},
		1.0, math.Vec3{X: 10},
		2.0, math.Vec3{X: 30},
	)

	tests := []struct {
		name   string
		search KeySearch
		tick   float64
		wantX  float32
	}{
		// The forward scan keeps the last pair, (1, 2), and extrapolates.
		{"overshoot first segment", SearchLastOvershoot, 0.5, 0},
		{"overshoot last segment", SearchLastOvershoot, 1.5, 20},
		{"bracketing first segment", SearchBracketing, 0.5, 5},
		{"bracketing last segment", SearchBracketing, 1.5, 20},
		{"overshoot at last key", SearchLastOvershoot, 2, 30},
		{"bracketing on a key", SearchBracketing, 1, 10},
		{"overshoot before first key", SearchLastOvershoot, -0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &Channel{PositionKeys: keys, Search: tt.search}
			pos, _, _ := ch.Evaluate(tt.tick)
			if abs(pos.X-tt.wantX) > eps {
				t.Errorf("X = %v, want %v", pos.X, tt.wantX)
			}
		})
	}
}

func TestChannelEqualKeyTimes(t *testing.T) {
	if f := lerpFraction(1, 1, 1); f != 0 {
		t.Errorf("lerpFraction with equal times = %v, want 0", f)
	}

	keys := vkeys(0.0, math.Vec3{X: 1}, 1.0, math.Vec3{X: 2}, 1.0, math.Vec3{X: 3}, 2.0, math.Vec3{X: 4})
	for _, search := range []KeySearch{SearchLastOvershoot, SearchBracketing} {
		ch := &Channel{PositionKeys: keys, Search: search}
		pos, _, _ := ch.Evaluate(1)
		if abs(pos.X-3) > eps {
			t.Errorf("%v: X = %v, want 3", search, pos.X)
		}
	}
}

func TestChannelWrapsPastDuration(t *testing.T) {
	ch := &Channel{PositionKeys: vkeys(0.0, math.Vec3{}, 1.0, math.Vec3{X: 1})}
	target := &recordingTarget{}

	ch.Update(0.5, 1000, target)
	if !vecNear(target.pos, math.Vec3{X: 0.5}) {
		t.Errorf("after 0.5s position = %v, want (0.5, 0, 0)", target.pos)
	}

	ch.Update(0.75, 1000, target)
	if ch.LocalTime() != 0 {
		t.Errorf("local time = %v, want wrap to 0", ch.LocalTime())
	}
	if target.pos != math.Vec3Zero {
		t.Errorf("after wrap position = %v, want zero", target.pos)
	}
}

func TestChannelTickRateConversion(t *testing.T) {
	// 4800 ticks per second: one second of playback is 4.8 key units.
	ch := &Channel{PositionKeys: vkeys(0.0, math.Vec3{}, 9.6, math.Vec3{X: 2})}
	target := &recordingTarget{}

	ch.Update(1, 4800, target)
	if !vecNear(target.pos, math.Vec3{X: 1}) {
		t.Errorf("position = %v, want (1, 0, 0)", target.pos)
	}
}

func TestChannelReset(t *testing.T) {
	ch := &Channel{PositionKeys: vkeys(0.0, math.Vec3{}, 10.0, math.Vec3{X: 1})}
	ch.Update(2, 1000, &recordingTarget{})
	if ch.LocalTime() != 2 {
		t.Fatalf("local time = %v, want 2", ch.LocalTime())
	}
	ch.Reset()
	if ch.LocalTime() != 0 {
		t.Errorf("local time after reset = %v, want 0", ch.LocalTime())
	}
}

func TestChannelDuration(t *testing.T) {
	ch := &Channel{
		PositionKeys: vkeys(0.0, math.Vec3{}, 2.0, math.Vec3{}),
		RotationKeys: []formats.QuatKey{{Time: 0}, {Time: 3.5}},
		ScaleKeys:    vkeys(1.0, math.Vec3One),
	}
	if d := ch.Duration(); d != 3.5 {
		t.Errorf("duration = %v, want 3.5", d)
	}
}

func TestParseKeySearch(t *testing.T) {
	tests := []struct {
		in      string
		want    KeySearch
		wantErr bool
	}{
		{"", SearchLastOvershoot, false},
		{"last_overshoot", SearchLastOvershoot, false},
		{"bracketing", SearchBracketing, false},
		{"binary", SearchLastOvershoot, true},
	}

	for _, tt := range tests {
		got, err := ParseKeySearch(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKeySearch(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKeySearch(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && tt.in != "" && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}
