// Package indicator implements TradingView-compatible technical indicators
// over fixed price series. A NaN entry marks a missing sample; every function
// returns freshly allocated output of the same length as its primary input and
// never mutates its arguments.
package indicator

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/newthinker/taengine/internal/core"
)

const (
	// deviations at or below this magnitude are treated as zero by STDEV
	devEpsilon = 1e-10
	// smoothed down-moves below this magnitude make RSI 100
	zeroEpsilon = 1e-10
)

var nan = math.NaN()

// NA returns the missing-data marker.
func NA() float64 {
	return nan
}

// IsNA reports whether v is the missing-data marker.
func IsNA(v float64) bool {
	return math.IsNaN(v)
}

// Series is a price or indicator series whose JSON form encodes missing
// entries as null. Infinite values have no JSON form and are encoded as null
// too.
type Series []float64

// MarshalJSON implements json.Marshaler.
func (s Series) MarshalJSON() ([]byte, error) {
	vals := make([]*float64, len(s))
	for i, v := range s {
		if IsNA(v) || math.IsInf(v, 0) {
			continue
		}
		vals[i] = &v
	}
	return json.Marshal(vals)
}

// UnmarshalJSON implements json.Unmarshaler. A JSON null array leaves the
// series nil; null elements become NA.
func (s *Series) UnmarshalJSON(data []byte) error {
	var vals []*float64
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	if vals == nil {
		*s = nil
		return nil
	}
	out := make(Series, len(vals))
	for i, v := range vals {
		if v == nil {
			out[i] = nan
			continue
		}
		out[i] = *v
	}
	*s = out
	return nil
}

// Last returns the final entry, or NA for an empty series.
func (s Series) Last() float64 {
	if len(s) == 0 {
		return nan
	}
	return s[len(s)-1]
}

func naSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = nan
	}
	return out
}

func firstPresent(s []float64) int {
	for i, v := range s {
		if !IsNA(v) {
			return i
		}
	}
	return -1
}

func invalid(format string, args ...any) error {
	return core.WrapError(core.ErrInvalidArgument, fmt.Errorf(format, args...))
}

func validateSource(name string, s []float64) error {
	if s == nil {
		return invalid("%s series is nil", name)
	}
	return nil
}

func validateLength(length int) error {
	if length <= 0 {
		return invalid("length must be positive, got %d", length)
	}
	return nil
}

func validateAligned(name string, s []float64, n int) error {
	if err := validateSource(name, s); err != nil {
		return err
	}
	if len(s) != n {
		return invalid("%s series has %d entries, want %d", name, len(s), n)
	}
	return nil
}
