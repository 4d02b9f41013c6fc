package analysis

// Recorder receives computation metrics. *metrics.Registry implements it.
type Recorder interface {
	RecordComputation(indicator string, err error, duration float64)
	RecordSeriesLength(n int)
	RecordFetch(provider string, candles int, err error, duration float64)
	RecordReport(err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordComputation(string, error, float64) {}
func (nopRecorder) RecordSeriesLength(int)                   {}
func (nopRecorder) RecordFetch(string, int, error, float64)  {}
func (nopRecorder) RecordReport(error)                       {}

func orNop(rec Recorder) Recorder {
	if rec == nil {
		return nopRecorder{}
	}
	return rec
}
