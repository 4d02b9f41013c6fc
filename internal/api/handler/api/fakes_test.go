// internal/api/handler/api/fakes_test.go
package api

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/indicator"
	"github.com/newthinker/taengine/internal/storage/archive"
)

type fakeAnalyzer struct {
	err     error
	targets []analysis.Target
	mu      sync.Mutex
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, target analysis.Target) (*analysis.Report, error) {
	f.mu.Lock()
	f.targets = append(f.targets, target)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return fakeReport(target.Symbol, target.Interval), nil
}

func (f *fakeAnalyzer) AnalyzeAll(ctx context.Context, targets []analysis.Target) ([]*analysis.Report, error) {
	reports := make([]*analysis.Report, 0, len(targets))
	for _, t := range targets {
		r, err := f.Analyze(ctx, t)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

type fakeArchive struct {
	mu      sync.Mutex
	reports map[string]*analysis.Report
	saveErr error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{reports: make(map[string]*analysis.Report)}
}

func (f *fakeArchive) Save(ctx context.Context, report *analysis.Report) (archive.ReportRef, error) {
	if f.saveErr != nil {
		return archive.ReportRef{}, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := archive.ReportPath(report.Symbol, report.Interval, report.ID)
	f.reports[p] = report
	return archive.ReportRef{Symbol: report.Symbol, Interval: report.Interval, ID: report.ID, Path: p}, nil
}

func (f *fakeArchive) Load(ctx context.Context, symbol, interval, id string) (*analysis.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := archive.ReportPath(symbol, interval, id)
	r, ok := f.reports[p]
	if !ok {
		return nil, core.WrapError(core.ErrReportNotFound, fmt.Errorf("%s", p))
	}
	return r, nil
}

func (f *fakeArchive) List(ctx context.Context, symbol, interval string) ([]archive.ReportRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var refs []archive.ReportRef
	for _, r := range f.reports {
		if symbol != "" && r.Symbol != symbol {
			continue
		}
		if interval != "" && r.Interval != interval {
			continue
		}
		refs = append(refs, archive.ReportRef{Symbol: r.Symbol, Interval: r.Interval, ID: r.ID,
			Path: archive.ReportPath(r.Symbol, r.Interval, r.ID)})
	}
	return refs, nil
}

func (f *fakeArchive) Delete(ctx context.Context, symbol, interval, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := archive.ReportPath(symbol, interval, id)
	if _, ok := f.reports[p]; !ok {
		return core.WrapError(core.ErrReportNotFound, fmt.Errorf("%s", p))
	}
	delete(f.reports, p)
	return nil
}

func fakeReport(symbol, interval string) *analysis.Report {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &analysis.Report{
		ID:       "r-" + symbol,
		Symbol:   symbol,
		Interval: interval,
		Provider: "fake",
		Params:   analysis.DefaultParams(),
		Times:    []time.Time{t0, t0.Add(time.Hour)},
		Close:    indicator.Series{100, 102},
		Series: map[string]indicator.Series{
			analysis.SMA: {math.NaN(), 101},
			analysis.RSI: {math.NaN(), 100},
		},
	}
}

type fakeNotifier struct {
	err       error
	summaries []analysis.Summary
}

func (f *fakeNotifier) Notify(ctx context.Context, summaries []analysis.Summary) error {
	f.summaries = append(f.summaries, summaries...)
	return f.err
}
