package indicator

// Bands holds Bollinger Bands lines, index-aligned with the source series.
type Bands struct {
	Middle Series `json:"middle" yaml:"middle"`
	Upper  Series `json:"upper" yaml:"upper"`
	Lower  Series `json:"lower" yaml:"lower"`
}

// BB calculates Bollinger Bands, like ta.bb: the middle line is SMA and the
// band width is mult times the population STDEV. All three lines are NA
// wherever either the mean or the deviation is NA.
func BB(source []float64, length int, mult float64) (Bands, error) {
	if err := validateSource("source", source); err != nil {
		return Bands{}, err
	}
	if err := validateLength(length); err != nil {
		return Bands{}, err
	}
	if !(mult > 0) {
		return Bands{}, invalid("multiplier must be positive, got %v", mult)
	}
	return bands(source, sma(source, length), length, mult), nil
}

// BBWithBasis is BB with a precomputed SMA(source, length) as the middle line.
func BBWithBasis(source, basis []float64, length int, mult float64) (Bands, error) {
	if err := validateSource("source", source); err != nil {
		return Bands{}, err
	}
	if err := validateAligned("basis", basis, len(source)); err != nil {
		return Bands{}, err
	}
	if err := validateLength(length); err != nil {
		return Bands{}, err
	}
	if !(mult > 0) {
		return Bands{}, invalid("multiplier must be positive, got %v", mult)
	}
	return bands(source, basis, length, mult), nil
}

func bands(source, basis []float64, length int, mult float64) Bands {
	dev := stdev(source, basis, length, true)

	n := len(source)
	b := Bands{
		Middle: naSeries(n),
		Upper:  naSeries(n),
		Lower:  naSeries(n),
	}
	for i := 0; i < n; i++ {
		if IsNA(basis[i]) || IsNA(dev[i]) {
			continue
		}
		width := mult * dev[i]
		b.Middle[i] = basis[i]
		b.Upper[i] = basis[i] + width
		b.Lower[i] = basis[i] - width
	}
	return b
}
