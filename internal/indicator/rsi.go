package indicator

import "math"

// RSI calculates the relative strength index, like ta.rsi. Up and down moves
// are smoothed with RMA; a smoothed down-move of zero gives exactly 100.
func RSI(source []float64, length int) ([]float64, error) {
	if err := validateSource("source", source); err != nil {
		return nil, err
	}
	if err := validateLength(length); err != nil {
		return nil, err
	}

	n := len(source)
	up := naSeries(n)
	down := naSeries(n)
	for i := 1; i < n; i++ {
		prev, cur := source[i-1], source[i]
		if IsNA(prev) || IsNA(cur) {
			continue
		}
		up[i] = math.Max(cur-prev, 0)
		down[i] = math.Max(prev-cur, 0)
	}

	avgUp := rma(up, sma(up, length), length)
	avgDown := rma(down, sma(down, length), length)

	result := naSeries(n)
	for i := 0; i < n; i++ {
		u, d := avgUp[i], avgDown[i]
		if IsNA(u) || IsNA(d) {
			continue
		}
		if math.Abs(d) < zeroEpsilon {
			result[i] = 100
			continue
		}
		result[i] = 100 - 100/(1+u/d)
	}

	return result, nil
}
