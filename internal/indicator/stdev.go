package indicator

import "math"

// STDEV calculates the standard deviation of the trailing window around its
// SMA, like ta.stdev. biased selects the population divisor n; otherwise the
// sample divisor n-1 is used. Only present samples count towards n.
func STDEV(source []float64, length int, biased bool) ([]float64, error) {
	if err := validateSource("source", source); err != nil {
		return nil, err
	}
	if err := validateLength(length); err != nil {
		return nil, err
	}
	return stdev(source, sma(source, length), length, biased), nil
}

// STDEVWithMean is STDEV with a precomputed SMA(source, length) as the window
// mean.
func STDEVWithMean(source, mean []float64, length int, biased bool) ([]float64, error) {
	if err := validateSource("source", source); err != nil {
		return nil, err
	}
	if err := validateAligned("mean", mean, len(source)); err != nil {
		return nil, err
	}
	if err := validateLength(length); err != nil {
		return nil, err
	}
	return stdev(source, mean, length, biased), nil
}

func stdev(source, mean []float64, length int, biased bool) []float64 {
	result := naSeries(len(source))

	for i := length - 1; i < len(source); i++ {
		m := mean[i]
		if IsNA(m) {
			continue
		}

		var sumSq float64
		var n int
		for j := i - length + 1; j <= i; j++ {
			v := source[j]
			if IsNA(v) {
				continue
			}
			dev := v - m
			if math.Abs(dev) <= devEpsilon {
				dev = 0
			}
			sumSq += dev * dev
			n++
		}

		divisor := n
		if !biased {
			divisor--
		}
		if divisor <= 0 {
			continue
		}
		result[i] = math.Sqrt(sumSq / float64(divisor))
	}

	return result
}
