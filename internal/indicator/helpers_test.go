package indicator

import (
	"math"
	"testing"
)

var na = math.NaN()

const tolerance = 1e-9

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

// assertSeries compares series element-wise, treating NA as equal to NA.
func assertSeries(t *testing.T, want, got []float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		switch {
		case IsNA(want[i]) && IsNA(got[i]):
		case IsNA(want[i]) || IsNA(got[i]):
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		case !almostEqual(want[i], got[i], tolerance):
			t.Errorf("[%d] = %.12f, want %.12f", i, got[i], want[i])
		}
	}
}

func allNA(s []float64) bool {
	for _, v := range s {
		if !IsNA(v) {
			return false
		}
	}
	return true
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}
