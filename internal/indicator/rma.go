package indicator

// RMA calculates Wilder's moving average with alpha = 1/length, like ta.rma.
// It is seeded with the first present SMA value. After the seed a missing
// sample holds the previous value instead of producing NA.
func RMA(source []float64, length int) ([]float64, error) {
	if err := validateSource("source", source); err != nil {
		return nil, err
	}
	if err := validateLength(length); err != nil {
		return nil, err
	}
	return rma(source, sma(source, length), length), nil
}

// RMAWithSeed is RMA with a precomputed SMA(source, length), for callers that
// already hold it.
func RMAWithSeed(source, seed []float64, length int) ([]float64, error) {
	if err := validateSource("source", source); err != nil {
		return nil, err
	}
	if err := validateAligned("seed", seed, len(source)); err != nil {
		return nil, err
	}
	if err := validateLength(length); err != nil {
		return nil, err
	}
	return rma(source, seed, length), nil
}

func rma(source, seed []float64, length int) []float64 {
	alpha := 1.0 / float64(length)
	result := naSeries(len(source))

	start := firstPresent(seed)
	if start < 0 {
		return result
	}

	acc := seed[start]
	result[start] = acc

	for i := start + 1; i < len(source); i++ {
		v := source[i]
		if IsNA(v) {
			result[i] = acc
			continue
		}
		if IsNA(acc) {
			acc = seed[i]
		} else {
			acc = alpha*v + (1-alpha)*acc
		}
		result[i] = acc
	}

	return result
}
