package animation

import "fmt"

// KeySearch selects how a track finds the key pair surrounding a tick.
type KeySearch int

const (
	// SearchLastOvershoot scans forward over adjacent key pairs and keeps
	// the last pair whose second key lies after the tick. With three or more
	// keys this is usually the final pair of the track, so ticks in earlier
	// segments extrapolate along the last segment.
	SearchLastOvershoot KeySearch = iota

	// SearchBracketing uses the pair that actually brackets the tick.
	SearchBracketing
)

// String returns the config spelling of the mode.
func (k KeySearch) String() string {
	switch k {
	case SearchLastOvershoot:
		return "last_overshoot"
	case SearchBracketing:
		return "bracketing"
	default:
		return fmt.Sprintf("KeySearch(%d)", int(k))
	}
}

// ParseKeySearch parses the config spelling of a key search mode.
// An empty string selects the default.
func ParseKeySearch(s string) (KeySearch, error) {
	switch s {
	case "", "last_overshoot":
		return SearchLastOvershoot, nil
	case "bracketing":
		return SearchBracketing, nil
	default:
		return SearchLastOvershoot, fmt.Errorf("unknown key search mode %q", s)
	}
}

// keyPair finds the indices of the two keys to interpolate between for tick
// and the interpolation fraction. times must have at least two entries.
func (k KeySearch) keyPair(times func(i int) float64, n int, tick float64) (int, int, float32) {
	// Before the first key: hold the first value
	if tick <= times(0) {
		return 0, 0, 0
	}
	// At or after the last key: final pair, fully advanced
	if tick >= times(n-1) {
		return n - 2, n - 1, 1
	}

	var k1, k2 int
	switch k {
	case SearchBracketing:
		lo, hi := 0, n-1
		for hi-lo > 1 {
			mid := (lo + hi) / 2
			if times(mid) <= tick {
				lo = mid
			} else {
				hi = mid
			}
		}
		k1, k2 = lo, hi
	default:
		for i := 0; i+1 < n; i++ {
			if times(i+1) > tick {
				k1, k2 = i, i+1
			}
		}
	}

	return k1, k2, lerpFraction(times(k1), times(k2), tick)
}

// lerpFraction returns where tick lies between t1 and t2, or 0 when the two
// key times coincide.
func lerpFraction(t1, t2, tick float64) float32 {
	if t2 == t1 {
		return 0
	}
	return float32((tick - t1) / (t2 - t1))
}
