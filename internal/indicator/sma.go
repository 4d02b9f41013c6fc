package indicator

// SMA calculates the simple moving average over a trailing window of length
// bars, like ta.sma. Missing samples are skipped rather than propagated: the
// mean is taken over whatever present samples remain in the window. Output is
// NA before index length-1 and wherever the window holds no present sample.
func SMA(source []float64, length int) ([]float64, error) {
	if err := validateSource("source", source); err != nil {
		return nil, err
	}
	if err := validateLength(length); err != nil {
		return nil, err
	}
	return sma(source, length), nil
}

func sma(source []float64, length int) []float64 {
	result := make([]float64, len(source))

	var sum float64
	var count int
	for i, v := range source {
		if !IsNA(v) {
			sum += v
			count++
		}

		// Drop the sample leaving the window
		if i >= length {
			if old := source[i-length]; !IsNA(old) {
				sum -= old
				count--
			}
		}

		if i >= length-1 && count > 0 {
			result[i] = sum / float64(count)
		} else {
			result[i] = nan
		}
	}

	return result
}
