package analysis

import (
	"fmt"
	"sort"

	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
)

// Input carries the arguments of a single indicator call. Single-series
// indicators read Source; TR and ATR read High, Low and Close.
type Input struct {
	Source indicator.Series `json:"source,omitempty"`
	High   indicator.Series `json:"high,omitempty"`
	Low    indicator.Series `json:"low,omitempty"`
	Close  indicator.Series `json:"close,omitempty"`
	Length int              `json:"length"`
	Mult   float64          `json:"mult,omitempty"`
	Biased *bool            `json:"biased,omitempty"`
}

// Output is the result of Evaluate: Values for line indicators, Bands for BB.
type Output struct {
	Values indicator.Series `json:"values,omitempty"`
	Bands  *indicator.Bands `json:"bands,omitempty"`
}

type evaluator func(in Input) (Output, error)

func line(out []float64, err error) (Output, error) {
	if err != nil {
		return Output{}, err
	}
	return Output{Values: out}, nil
}

var evaluators = map[string]evaluator{
	SMA: func(in Input) (Output, error) { return line(indicator.SMA(in.Source, in.Length)) },
	EMA: func(in Input) (Output, error) { return line(indicator.EMA(in.Source, in.Length)) },
	RMA: func(in Input) (Output, error) { return line(indicator.RMA(in.Source, in.Length)) },
	RSI: func(in Input) (Output, error) { return line(indicator.RSI(in.Source, in.Length)) },
	STDEV: func(in Input) (Output, error) {
		biased := true
		if in.Biased != nil {
			biased = *in.Biased
		}
		return line(indicator.STDEV(in.Source, in.Length, biased))
	},
	BB: func(in Input) (Output, error) {
		bands, err := indicator.BB(in.Source, in.Length, in.Mult)
		if err != nil {
			return Output{}, err
		}
		return Output{Bands: &bands}, nil
	},
	TR:  func(in Input) (Output, error) { return line(indicator.TrueRange(in.High, in.Low, in.Close)) },
	ATR: func(in Input) (Output, error) { return line(indicator.ATR(in.High, in.Low, in.Close, in.Length)) },
}

// Evaluate runs the named indicator on in.
func Evaluate(name string, in Input) (Output, error) {
	fn, ok := evaluators[name]
	if !ok {
		return Output{}, core.WrapError(core.ErrUnknownIndicator, fmt.Errorf("%q", name))
	}
	return fn(in)
}

// Names lists the indicators accepted by Evaluate.
func Names() []string {
	names := make([]string, 0, len(evaluators))
	for name := range evaluators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
