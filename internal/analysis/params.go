package analysis

import (
	"fmt"

	"github.com/newthinker/taengine/internal/config"
	"github.com/newthinker/taengine/internal/core"
)

// Params holds the indicator parameters applied when building a report.
type Params struct {
	SMALength   int     `json:"sma_length" yaml:"sma_length"`
	EMALength   int     `json:"ema_length" yaml:"ema_length"`
	RMALength   int     `json:"rma_length" yaml:"rma_length"`
	RSILength   int     `json:"rsi_length" yaml:"rsi_length"`
	ATRLength   int     `json:"atr_length" yaml:"atr_length"`
	StdevLength int     `json:"stdev_length" yaml:"stdev_length"`
	Biased      bool    `json:"biased" yaml:"biased"`
	BBLength    int     `json:"bb_length" yaml:"bb_length"`
	BBMult      float64 `json:"bb_mult" yaml:"bb_mult"`
}

// DefaultParams returns the parameters from config.Defaults.
func DefaultParams() Params {
	return ParamsFromConfig(config.Defaults().Indicators)
}

// ParamsFromConfig maps the indicators config section.
func ParamsFromConfig(c config.IndicatorsConfig) Params {
	return Params{
		SMALength:   c.SMALength,
		EMALength:   c.EMALength,
		RMALength:   c.RMALength,
		RSILength:   c.RSILength,
		ATRLength:   c.ATRLength,
		StdevLength: c.StdevLength,
		Biased:      c.Biased,
		BBLength:    c.BBLength,
		BBMult:      c.BBMult,
	}
}

// Validate rejects non-positive lengths and multipliers up front so a report
// is either built in full or not at all.
func (p Params) Validate() error {
	for _, l := range []struct {
		name string
		n    int
	}{
		{"sma_length", p.SMALength},
		{"ema_length", p.EMALength},
		{"rma_length", p.RMALength},
		{"rsi_length", p.RSILength},
		{"atr_length", p.ATRLength},
		{"stdev_length", p.StdevLength},
		{"bb_length", p.BBLength},
	} {
		if l.n <= 0 {
			return core.WrapError(core.ErrInvalidArgument, fmt.Errorf("%s must be positive, got %d", l.name, l.n))
		}
	}
	if !(p.BBMult > 0) {
		return core.WrapError(core.ErrInvalidArgument, fmt.Errorf("bb_mult must be positive, got %v", p.BBMult))
	}
	return nil
}
