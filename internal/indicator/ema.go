package indicator

// EMA calculates the exponential moving average with alpha = 2/(length+1),
// like ta.ema. The average is seeded with the first present sample. A missing
// sample yields NA and resets the average, which is seeded again from the
// next present sample.
func EMA(source []float64, length int) ([]float64, error) {
	if err := validateSource("source", source); err != nil {
		return nil, err
	}
	if err := validateLength(length); err != nil {
		return nil, err
	}

	alpha := 2.0 / float64(length+1)
	result := naSeries(len(source))

	acc := nan
	for i, v := range source {
		if IsNA(v) {
			acc = nan
			continue
		}
		if IsNA(acc) {
			acc = v
		} else {
			acc = alpha*v + (1-alpha)*acc
		}
		result[i] = acc
	}

	return result, nil
}
