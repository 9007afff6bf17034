// Package ingest drives archive files through mapping, assembly and storage.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fliaght/novelmof/internal/config"
	"github.com/fliaght/novelmof/internal/diagnostic"
	"github.com/fliaght/novelmof/internal/domain"
	"github.com/fliaght/novelmof/internal/mapper"
	"github.com/fliaght/novelmof/internal/record"
	"github.com/fliaght/novelmof/internal/source"
	"github.com/fliaght/novelmof/pkg/ctxutil"
)

// ErrFileTooLarge is returned for inputs above the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

// Store persists mapped entries.
type Store interface {
	Upsert(ctx context.Context, e domain.MOFEntry) error
}

// Outcome classifies how one document ended.
type Outcome string

const (
	OutcomeStored    Outcome = "stored"
	OutcomeMapped    Outcome = "mapped"
	OutcomeMalformed Outcome = "malformed"
	OutcomeFailed    Outcome = "failed"
)

// FileResult is the result of ingesting one file.
type FileResult struct {
	Path        string
	Outcome     Outcome
	Entry       *domain.MOFEntry
	Diagnostics []diagnostic.Diagnostic
	Err         error
}

// Result holds batch statistics.
type Result struct {
	FilesProcessed int
	Stored         int
	Mapped         int
	Malformed      int
	Failed         int
	Diagnostics    int
}

func (r *Result) add(fr FileResult) {
	r.FilesProcessed++
	r.Diagnostics += len(fr.Diagnostics)
	switch fr.Outcome {
	case OutcomeStored:
		r.Stored++
	case OutcomeMapped:
		r.Mapped++
	case OutcomeMalformed:
		r.Malformed++
	case OutcomeFailed:
		r.Failed++
	}
}

// Pipeline maps archive files and hands the records to a Store.
type Pipeline struct {
	cfg     config.IngestConfig
	mapper  *mapper.Mapper
	store   Store
	metrics *Metrics
	log     *slog.Logger
	now     func() time.Time
}

// NewPipeline creates a pipeline. store may be nil only in dry-run mode;
// metrics may be nil.
func NewPipeline(cfg config.IngestConfig, m *mapper.Mapper, store Store, metrics *Metrics, log *slog.Logger) (*Pipeline, error) {
	if m == nil {
		return nil, errors.New("ingest: mapper is required")
	}
	if store == nil && !cfg.DryRun {
		return nil, errors.New("ingest: store is required unless dry_run is set")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cfg:     cfg,
		mapper:  m,
		store:   store,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}, nil
}

// Run ingests paths with a bounded number of workers. Per-file failures are
// counted in the result; only cancellation of ctx is returned as an error.
func (p *Pipeline) Run(ctx context.Context, paths []string) (Result, error) {
	var (
		mu     sync.Mutex
		result Result
	)

	runID, ok := ctxutil.RunIDFromCtx(ctx)
	if !ok {
		runID = uuid.New()
		ctx = ctxutil.WithRunID(ctx, runID)
	}
	log := p.log.With(slog.String("run_id", runID.String()))
	log.Info("ingest started", slog.Int("files", len(paths)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Workers, 1))

	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fr := p.IngestFile(gctx, path)
			mu.Lock()
			result.add(fr)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	log.Info("ingest complete",
		slog.Int("files", result.FilesProcessed),
		slog.Int("stored", result.Stored),
		slog.Int("mapped", result.Mapped),
		slog.Int("malformed", result.Malformed),
		slog.Int("failed", result.Failed),
		slog.Int("diagnostics", result.Diagnostics),
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("ingest interrupted: %w", err)
	}
	return result, nil
}

// IngestFile maps one file and stores the record. Diagnostics are logged
// with the file path attached.
func (p *Pipeline) IngestFile(ctx context.Context, path string) FileResult {
	start := p.now()
	if p.cfg.DocumentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.DocumentTimeout)
		defer cancel()
	}

	fr := p.ingest(ctx, path)
	p.metrics.observe(fr.Outcome, fr.Diagnostics, p.now().Sub(start))

	log := p.fileLogger(ctx, path)
	switch fr.Outcome {
	case OutcomeMalformed:
		log.Error("malformed document", slog.String("error", fr.Err.Error()))
	case OutcomeFailed:
		log.Error("ingest failed", slog.String("error", fr.Err.Error()))
	default:
		log.Debug("document ingested",
			slog.String("outcome", string(fr.Outcome)),
			slog.Int("diagnostics", len(fr.Diagnostics)),
		)
	}
	return fr
}

func (p *Pipeline) ingest(ctx context.Context, path string) FileResult {
	fr := FileResult{Path: path}
	fail := func(outcome Outcome, err error) FileResult {
		fr.Outcome = outcome
		fr.Err = err
		return fr
	}

	data, err := p.read(path)
	if err != nil {
		return fail(OutcomeFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return fail(OutcomeFailed, err)
	}

	fields, diags, err := p.mapper.MapBytes(path, data)
	if err != nil {
		if errors.Is(err, source.ErrMalformedDocument) {
			p.quarantine(path, data, err)
			return fail(OutcomeMalformed, err)
		}
		return fail(OutcomeFailed, err)
	}
	fr.Diagnostics = diags.Entries()
	diags.Report(ctx, p.fileLogger(ctx, path))

	rec, err := record.Assemble(fields)
	if err != nil {
		return fail(OutcomeFailed, fmt.Errorf("assemble record: %w", err))
	}
	entry := domain.NewMOFEntry(rec, path, p.now().UTC())
	fr.Entry = &entry

	if p.cfg.DryRun {
		fr.Outcome = OutcomeMapped
		return fr
	}
	if err := p.store.Upsert(ctx, entry); err != nil {
		return fail(OutcomeFailed, fmt.Errorf("store entry: %w", err))
	}
	fr.Outcome = OutcomeStored
	return fr
}

func (p *Pipeline) fileLogger(ctx context.Context, path string) *slog.Logger {
	log := p.log.With(slog.String("file", path))
	if id, ok := ctxutil.RunIDFromCtx(ctx); ok {
		log = log.With(slog.String("run_id", id.String()))
	}
	return log
}

func (p *Pipeline) read(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	if p.cfg.MaxFileSize <= 0 {
		return io.ReadAll(f)
	}
	data, err := io.ReadAll(io.LimitReader(f, p.cfg.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if int64(len(data)) > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, p.cfg.MaxFileSize)
	}
	return data, nil
}

func (p *Pipeline) quarantine(path string, data []byte, reason error) {
	if p.cfg.QuarantineDir == "" {
		return
	}
	dst, err := quarantine(p.cfg.QuarantineDir, path, data, reason)
	if err != nil {
		p.log.Warn("quarantine failed", slog.String("file", path), slog.String("error", err.Error()))
		return
	}
	p.log.Info("document quarantined", slog.String("file", path), slog.String("copy", dst))
}
