package analysis

import (
	"encoding/json"
	"math"
	"time"

	"github.com/newthinker/taengine/internal/indicator"
)

// Series names used in Report.Series and by Evaluate.
const (
	SMA   = "sma"
	EMA   = "ema"
	RMA   = "rma"
	RSI   = "rsi"
	STDEV = "stdev"
	TR    = "tr"
	ATR   = "atr"
	BB    = "bb"
)

// Report is the full indicator set computed over one candle history.
type Report struct {
	ID          string                      `json:"id" yaml:"id"`
	Symbol      string                      `json:"symbol" yaml:"symbol"`
	Interval    string                      `json:"interval" yaml:"interval"`
	Provider    string                      `json:"provider,omitempty" yaml:"provider,omitempty"`
	GeneratedAt time.Time                   `json:"generated_at" yaml:"generated_at"`
	Params      Params                      `json:"params" yaml:"params"`
	Times       []time.Time                 `json:"times" yaml:"times"`
	Close       indicator.Series            `json:"close" yaml:"close"`
	Series      map[string]indicator.Series `json:"series" yaml:"series"`
	Bands       indicator.Bands             `json:"bands" yaml:"bands"`
}

// Len returns the number of bars in the report.
func (r *Report) Len() int {
	return len(r.Close)
}

// Last returns the most recent value of the named series, NA if unknown.
func (r *Report) Last(name string) float64 {
	return r.Series[name].Last()
}

// Summary holds the most recent value of every series.
type Summary struct {
	Symbol   string             `json:"symbol" yaml:"symbol"`
	Interval string             `json:"interval" yaml:"interval"`
	Time     time.Time          `json:"time" yaml:"time"`
	Close    float64            `json:"close" yaml:"close"`
	Values   map[string]float64 `json:"values" yaml:"values"`
}

// Summary collapses the report to its final bar. Missing and infinite values
// are left out of Values.
func (r *Report) Summary() Summary {
	s := Summary{
		Symbol:   r.Symbol,
		Interval: r.Interval,
		Close:    r.Close.Last(),
		Values:   make(map[string]float64, len(r.Series)+3),
	}
	if n := len(r.Times); n > 0 {
		s.Time = r.Times[n-1]
	}
	put := func(name string, v float64) {
		if !indicator.IsNA(v) && !math.IsInf(v, 0) {
			s.Values[name] = v
		}
	}
	for name, series := range r.Series {
		put(name, series.Last())
	}
	put("bb_middle", r.Bands.Middle.Last())
	put("bb_upper", r.Bands.Upper.Last())
	put("bb_lower", r.Bands.Lower.Last())
	return s
}

// MarshalJSON writes a missing close as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	out := struct {
		plain
		Close *float64 `json:"close"`
	}{plain: plain(s)}
	if !math.IsNaN(s.Close) && !math.IsInf(s.Close, 0) {
		c := s.Close
		out.Close = &c
	}
	return json.Marshal(out)
}
