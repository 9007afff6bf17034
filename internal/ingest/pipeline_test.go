package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fliaght/novelmof/internal/config"
	"github.com/fliaght/novelmof/internal/domain"
	"github.com/fliaght/novelmof/internal/mapper"
	"github.com/fliaght/novelmof/pkg/ctxutil"
)

const mof001 = `{"identifier": "MOF001", "calculation_properties": {"structural_properties": {"pore_characteristics": {"PLD_angstrom": "5.2"}}}}`

const mof002CSV = `identifier,MOF002
reference_data.year,2004
compositional_information.metal_types,"['Cu', 'Zn']"
`

type memStore struct {
	mu      sync.Mutex
	entries map[string]domain.MOFEntry
	err     error
	block   bool
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]domain.MOFEntry)}
}

func (s *memStore) Upsert(ctx context.Context, e domain.MOFEntry) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID.String()] = e
	return nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.IngestConfig {
	return config.IngestConfig{
		Workers:         2,
		DocumentTimeout: 5 * time.Second,
		MaxFileSize:     1 << 20,
	}
}

func newTestPipeline(t *testing.T, cfg config.IngestConfig, store Store, metrics *Metrics) *Pipeline {
	t.Helper()
	m, err := mapper.New(mapper.Config{}, mapper.MOFArchiveDescriptors())
	require.NoError(t, err)
	p, err := NewPipeline(cfg, m, store, metrics, discardLogger())
	require.NoError(t, err)
	return p
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewPipeline_Validation(t *testing.T) {
	m, err := mapper.New(mapper.Config{}, mapper.MOFArchiveDescriptors())
	require.NoError(t, err)

	_, err = NewPipeline(testConfig(), nil, newMemStore(), nil, nil)
	assert.Error(t, err)

	_, err = NewPipeline(testConfig(), m, nil, nil, nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.DryRun = true
	_, err = NewPipeline(cfg, m, nil, nil, nil)
	assert.NoError(t, err)
}

func TestIngestFile_StoresRecord(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.mofarch.json", mof001)
	store := newMemStore()
	p := newTestPipeline(t, testConfig(), store, nil)

	fr := p.IngestFile(context.Background(), path)

	require.NoError(t, fr.Err)
	assert.Equal(t, OutcomeStored, fr.Outcome)
	require.NotNil(t, fr.Entry)
	require.NotNil(t, fr.Entry.Record.Identifier)
	assert.Equal(t, "MOF001", *fr.Entry.Record.Identifier)
	assert.Equal(t, path, fr.Entry.SourcePath)
	assert.Equal(t, 1, store.len())

	recovered := 0
	for _, d := range fr.Diagnostics {
		if d.Reason == "type-mismatch-recovered" {
			recovered++
		}
	}
	assert.Equal(t, 1, recovered)
}

func TestIngestFile_VerticalCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "b.mofarch.csv", mof002CSV)
	p := newTestPipeline(t, testConfig(), newMemStore(), nil)

	fr := p.IngestFile(context.Background(), path)

	require.NoError(t, fr.Err)
	assert.Equal(t, OutcomeStored, fr.Outcome)
	rec := fr.Entry.Record
	require.NotNil(t, rec.ReferenceData.Year)
	assert.Equal(t, int64(2004), *rec.ReferenceData.Year)
	assert.Equal(t, []string{"Cu", "Zn"}, rec.CompositionalInformation.MetalTypes)
}

func TestIngestFile_MalformedIsQuarantined(t *testing.T) {
	dir := t.TempDir()
	quarantineDir := filepath.Join(dir, "quarantine")
	path := writeFile(t, dir, "bad.mofarch.json", `{"identifier": `)

	cfg := testConfig()
	cfg.QuarantineDir = quarantineDir
	store := newMemStore()
	p := newTestPipeline(t, cfg, store, nil)

	fr := p.IngestFile(context.Background(), path)

	assert.Equal(t, OutcomeMalformed, fr.Outcome)
	assert.Error(t, fr.Err)
	assert.Zero(t, store.len())

	copies, err := filepath.Glob(filepath.Join(quarantineDir, "*-bad.mofarch.json"))
	require.NoError(t, err)
	require.Len(t, copies, 1)
	data, err := os.ReadFile(copies[0])
	require.NoError(t, err)
	assert.Equal(t, `{"identifier": `, string(data))

	note, err := os.ReadFile(copies[0] + ".error.txt")
	require.NoError(t, err)
	assert.Contains(t, string(note), path)
}

func TestIngestFile_DryRunSkipsStore(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.mofarch.json", mof001)
	cfg := testConfig()
	cfg.DryRun = true
	p := newTestPipeline(t, cfg, nil, nil)

	fr := p.IngestFile(context.Background(), path)

	require.NoError(t, fr.Err)
	assert.Equal(t, OutcomeMapped, fr.Outcome)
	assert.NotNil(t, fr.Entry)
}

func TestIngestFile_Failures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.mofarch.json", mof001)
	big := writeFile(t, dir, "big.mofarch.json", `{"identifier": "`+strings.Repeat("x", 100)+`"}`)

	t.Run("missing file", func(t *testing.T) {
		p := newTestPipeline(t, testConfig(), newMemStore(), nil)
		fr := p.IngestFile(context.Background(), filepath.Join(dir, "nope.mofarch.json"))
		assert.Equal(t, OutcomeFailed, fr.Outcome)
		assert.ErrorIs(t, fr.Err, os.ErrNotExist)
	})

	t.Run("too large", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxFileSize = 32
		p := newTestPipeline(t, cfg, newMemStore(), nil)
		fr := p.IngestFile(context.Background(), big)
		assert.Equal(t, OutcomeFailed, fr.Outcome)
		assert.ErrorIs(t, fr.Err, ErrFileTooLarge)
	})

	t.Run("store error", func(t *testing.T) {
		store := newMemStore()
		store.err = domain.ErrAlreadyExists
		p := newTestPipeline(t, testConfig(), store, nil)
		fr := p.IngestFile(context.Background(), good)
		assert.Equal(t, OutcomeFailed, fr.Outcome)
		assert.ErrorIs(t, fr.Err, domain.ErrAlreadyExists)
	})

	t.Run("document timeout", func(t *testing.T) {
		store := newMemStore()
		store.block = true
		cfg := testConfig()
		cfg.DocumentTimeout = 20 * time.Millisecond
		p := newTestPipeline(t, cfg, store, nil)
		fr := p.IngestFile(context.Background(), good)
		assert.Equal(t, OutcomeFailed, fr.Outcome)
		assert.True(t, errors.Is(fr.Err, context.DeadlineExceeded))
	})
}

func TestIngestFile_LogsDiagnosticsWithFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.mofarch.json", `{"identifier": "MOF003", "structural_data": {"unmodified": "maybe"}}`)

	var buf bytes.Buffer
	m, err := mapper.New(mapper.Config{}, mapper.MOFArchiveDescriptors())
	require.NoError(t, err)
	p, err := NewPipeline(testConfig(), m, newMemStore(), nil,
		slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	require.NoError(t, err)

	fr := p.IngestFile(context.Background(), path)
	require.NoError(t, fr.Err)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "path=structural_data.unmodified")
	assert.Contains(t, out, "file="+path)
}

func TestRun_BatchContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.mofarch.json", mof001),
		writeFile(t, dir, "b.mofarch.csv", mof002CSV),
		writeFile(t, dir, "c.mofarch.json", `[1, 2, 3]`),
		writeFile(t, dir, "d.mofarch.json", `{"identifier": "MOF004"}`),
	}
	store := newMemStore()
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)
	p := newTestPipeline(t, testConfig(), store, metrics)

	result, err := p.Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 4, result.FilesProcessed)
	assert.Equal(t, 3, result.Stored)
	assert.Equal(t, 1, result.Malformed)
	assert.Equal(t, 0, result.Failed)
	assert.Positive(t, result.Diagnostics)
	assert.Equal(t, 3, store.len())

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.documents.WithLabelValues(string(OutcomeStored))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.documents.WithLabelValues(string(OutcomeMalformed))))
	// PLD in a.mofarch.json, year and metal_types in b.mofarch.csv.
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.diagnostics.WithLabelValues("type-mismatch-recovered")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))
}

func TestRun_ReingestUpserts(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.mofarch.json", mof001)
	store := newMemStore()
	p := newTestPipeline(t, testConfig(), store, nil)

	_, err := p.Run(context.Background(), []string{path})
	require.NoError(t, err)
	_, err = p.Run(context.Background(), []string{path})
	require.NoError(t, err)

	assert.Equal(t, 1, store.len())
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.mofarch.json", mof001)
	p := newTestPipeline(t, testConfig(), newMemStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestRun_TagsLogsWithRunID(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.mofarch.json", mof001)

	var buf bytes.Buffer
	m, err := mapper.New(mapper.Config{}, mapper.MOFArchiveDescriptors())
	require.NoError(t, err)
	p, err := NewPipeline(testConfig(), m, newMemStore(), nil, slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)

	id := uuid.New()
	_, err = p.Run(ctxutil.WithRunID(context.Background(), id), []string{path})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ingest complete")
	assert.Contains(t, out, "run_id="+id.String())
	// The recovered PLD warning carries the run too.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "level=WARN") {
			assert.Contains(t, line, "run_id="+id.String())
		}
	}
}
