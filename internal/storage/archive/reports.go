package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/logger"
	"github.com/newthinker/taengine/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const reportsRoot = "reports"

// segment matches symbol, interval and ID path components.
var segment = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ArchiveRecorder receives archive outcomes. *metrics.Registry implements it.
type ArchiveRecorder interface {
	RecordArchive(err error)
}

type nopArchiveRecorder struct{}

func (nopArchiveRecorder) RecordArchive(error) {}

// ReportRef identifies one archived report.
type ReportRef struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	ID       string `json:"id"`
	Path     string `json:"path"`
}

// ReportStore keeps analysis reports as JSON documents laid out as
// reports/<symbol>/<interval>/<id>.json on a Storage backend.
type ReportStore struct {
	storage Storage
	rec     ArchiveRecorder
	log     *zap.Logger
}

// NewReportStore wraps storage. rec and log may be nil.
func NewReportStore(storage Storage, rec ArchiveRecorder, log *zap.Logger) *ReportStore {
	if rec == nil {
		rec = nopArchiveRecorder{}
	}
	return &ReportStore{
		storage: storage,
		rec:     rec,
		log:     logger.OrNop(log),
	}
}

// ReportPath returns the storage path of a report.
func ReportPath(symbol, interval, id string) string {
	return path.Join(reportsRoot, symbol, interval, id+".json")
}

// Save writes report and returns its reference.
func (s *ReportStore) Save(ctx context.Context, report *analysis.Report) (ReportRef, error) {
	ref, err := s.save(ctx, report)
	s.rec.RecordArchive(err)
	if err != nil {
		s.log.Error("archiving report failed",
			zap.String("symbol", report.Symbol),
			zap.String("id", report.ID),
			zap.Error(err),
		)
		return ReportRef{}, err
	}
	s.log.Info("report archived", zap.String("path", ref.Path))
	return ref, nil
}

func (s *ReportStore) save(ctx context.Context, report *analysis.Report) (ReportRef, error) {
	if err := checkSegments(report.Symbol, report.Interval, report.ID); err != nil {
		return ReportRef{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "archive.save")
	defer span.End()

	data, err := json.Marshal(report)
	if err != nil {
		return ReportRef{}, core.WrapError(core.ErrStorageFailed, fmt.Errorf("encoding report: %w", err))
	}

	ref := ReportRef{
		Symbol:   report.Symbol,
		Interval: report.Interval,
		ID:       report.ID,
		Path:     ReportPath(report.Symbol, report.Interval, report.ID),
	}
	span.SetAttributes(attribute.String("path", ref.Path), attribute.Int("bytes", len(data)))

	if err := s.storage.Write(ctx, ref.Path, data); err != nil {
		span.RecordError(err)
		return ReportRef{}, core.WrapError(core.ErrStorageFailed, err)
	}
	return ref, nil
}

// Load reads one report back. A missing report yields ErrReportNotFound.
func (s *ReportStore) Load(ctx context.Context, symbol, interval, id string) (*analysis.Report, error) {
	if err := checkSegments(symbol, interval, id); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "archive.load")
	defer span.End()

	p := ReportPath(symbol, interval, id)
	data, err := s.storage.Read(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, core.WrapError(core.ErrReportNotFound, fmt.Errorf("%s", p))
		}
		span.RecordError(err)
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}

	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("decoding %s: %w", p, err))
	}
	return &report, nil
}

// List returns references to the archived reports of symbol and interval,
// oldest first. Empty interval lists every interval of the symbol; empty
// symbol lists everything.
func (s *ReportStore) List(ctx context.Context, symbol, interval string) ([]ReportRef, error) {
	prefix := reportsRoot
	if symbol != "" {
		if err := checkSegments(symbol); err != nil {
			return nil, err
		}
		prefix = path.Join(prefix, symbol)
		if interval != "" {
			if err := checkSegments(interval); err != nil {
				return nil, err
			}
			prefix = path.Join(prefix, interval)
		}
	}

	paths, err := s.storage.List(ctx, prefix+"/")
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}

	refs := make([]ReportRef, 0, len(paths))
	for _, p := range paths {
		ref, ok := parseReportPath(p)
		if !ok {
			continue
		}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].ID != refs[j].ID {
			return refs[i].ID < refs[j].ID
		}
		return refs[i].Path < refs[j].Path
	})
	return refs, nil
}

// Delete removes one archived report.
func (s *ReportStore) Delete(ctx context.Context, symbol, interval, id string) error {
	if err := checkSegments(symbol, interval, id); err != nil {
		return err
	}
	p := ReportPath(symbol, interval, id)
	if err := s.storage.Delete(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return core.WrapError(core.ErrReportNotFound, fmt.Errorf("%s", p))
		}
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

func parseReportPath(p string) (ReportRef, bool) {
	parts := strings.Split(p, "/")
	if len(parts) != 4 || parts[0] != reportsRoot || !strings.HasSuffix(parts[3], ".json") {
		return ReportRef{}, false
	}
	return ReportRef{
		Symbol:   parts[1],
		Interval: parts[2],
		ID:       strings.TrimSuffix(parts[3], ".json"),
		Path:     p,
	}, true
}

func checkSegments(parts ...string) error {
	for _, p := range parts {
		if !segment.MatchString(p) {
			return core.WrapError(core.ErrInvalidArgument, fmt.Errorf("invalid path segment %q", p))
		}
	}
	return nil
}
