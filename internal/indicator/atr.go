package indicator

import "math"

// TrueRange calculates the true range of each bar, like ta.tr(true). The
// first bar, and any bar whose previous close is missing, uses high-low.
func TrueRange(high, low, close []float64) ([]float64, error) {
	if err := validateOHLC(high, low, close); err != nil {
		return nil, err
	}
	return trueRange(high, low, close), nil
}

// ATR calculates the average true range: RMA of TrueRange over length bars.
func ATR(high, low, close []float64, length int) ([]float64, error) {
	if err := validateOHLC(high, low, close); err != nil {
		return nil, err
	}
	if err := validateLength(length); err != nil {
		return nil, err
	}

	tr := trueRange(high, low, close)
	return rma(tr, sma(tr, length), length), nil
}

func validateOHLC(high, low, close []float64) error {
	if err := validateSource("high", high); err != nil {
		return err
	}
	if err := validateAligned("low", low, len(high)); err != nil {
		return err
	}
	return validateAligned("close", close, len(high))
}

func trueRange(high, low, close []float64) []float64 {
	result := naSeries(len(high))

	for i := range high {
		h, l, c := high[i], low[i], close[i]
		if IsNA(h) || IsNA(l) || IsNA(c) {
			continue
		}
		if i == 0 || IsNA(close[i-1]) {
			result[i] = h - l
			continue
		}
		prev := close[i-1]
		result[i] = math.Max(h-l, math.Max(math.Abs(h-prev), math.Abs(l-prev)))
	}

	return result
}
