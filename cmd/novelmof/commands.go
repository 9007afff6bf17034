package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fliaght/novelmof/internal/app"
	"github.com/fliaght/novelmof/internal/diagnostic"
	"github.com/fliaght/novelmof/internal/domain"
	"github.com/fliaght/novelmof/internal/ingest"
	"github.com/fliaght/novelmof/internal/mapper"
	"github.com/fliaght/novelmof/internal/record"
	"github.com/fliaght/novelmof/internal/transport/rest"
	"github.com/fliaght/novelmof/migrations"
)

func newMapper(e *env) (*mapper.Mapper, error) {
	return mapper.New(e.cfg.Mapper, mapper.MOFArchiveDescriptors())
}

// serveOps starts the ops endpoint (probes and metrics) when enabled and
// returns the ingest collectors plus a shutdown func. st may be nil.
func serveOps(e *env, st rest.Pinger) (*ingest.Metrics, func(), error) {
	if !e.cfg.Metrics.Enabled {
		return nil, func() {}, nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := ingest.NewMetrics(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}

	handler := rest.NewHandler(rest.NewHealthHandler(st, app.BuildVersion()), reg, e.log)
	srv := &http.Server{Addr: e.cfg.Metrics.Addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		e.log.Info("ops endpoint listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("ops server", slog.String("error", err.Error()))
		}
	}()

	return metrics, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func newPipeline(ctx context.Context, e *env) (*ingest.Pipeline, func(), error) {
	m, err := newMapper(e)
	if err != nil {
		return nil, nil, err
	}

	var (
		st         store
		closeStore = func() {}
	)
	if e.cfg.Ingest.DryRun {
		e.log.Info("dry-run mode: no storage writes")
	} else {
		st, closeStore, err = openStore(ctx, e.cfg, e.log)
		if err != nil {
			return nil, nil, err
		}
	}

	metrics, stopOps, err := serveOps(e, st)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	p, err := ingest.NewPipeline(e.cfg.Ingest, m, st, metrics, e.log)
	if err != nil {
		stopOps()
		closeStore()
		return nil, nil, err
	}
	return p, func() { stopOps(); closeStore() }, nil
}

func ingestCmd(e *env) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "ingest [paths...]",
		Short: "Map and store archive files",
		Long: `Ingest maps every archive file found under the given paths (or the
configured ingest root) and stores the records. Directories are searched
with the configured patterns; files are ingested as given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				e.cfg.Ingest.DryRun = true
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			paths, err := ingest.Expand(e.cfg.Ingest.Root, args, e.cfg.Ingest.Patterns)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				e.log.Info("no archive files found", slog.String("root", e.cfg.Ingest.Root))
				return nil
			}

			p, cleanup, err := newPipeline(ctx, e)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := p.Run(ctx, paths)
			if err != nil {
				return err
			}
			if result.Failed > 0 || result.Malformed > 0 {
				return fmt.Errorf("%d of %d documents were not ingested", result.Failed+result.Malformed, result.FilesProcessed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "map documents without storing them")
	return cmd
}

func watchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Ingest archive files as they are written under the ingest root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, cleanup, err := newPipeline(ctx, e)
			if err != nil {
				return err
			}
			defer cleanup()

			w, err := ingest.NewWatcher(e.cfg.Ingest.Root, e.cfg.Ingest.Patterns, e.cfg.Ingest.WatchDebounce,
				func(ctx context.Context, path string) { p.IngestFile(ctx, path) }, e.log)
			if err != nil {
				return err
			}
			return w.Run(ctx)
		},
	}
}

// mapOutput is what the map command prints.
type mapOutput struct {
	Record      any                     `json:"record" yaml:"record"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

func mapCmd(e *env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "map <file>",
		Short: "Print the mapped record and diagnostics of one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMapper(e)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fields, diags, err := m.MapBytes(args[0], data)
			if err != nil {
				return err
			}
			rec, err := record.Assemble(fields)
			if err != nil {
				return err
			}

			out := mapOutput{Record: rec, Diagnostics: diags.Entries()}
			if out.Diagnostics == nil {
				out.Diagnostics = []diagnostic.Diagnostic{}
			}
			return writeMapOutput(cmd.OutOrStdout(), format, out)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func writeMapOutput(w io.Writer, format string, out mapOutput) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		// Round-trip through JSON so the record keeps its json field names.
		raw, err := json.Marshal(out.Record)
		if err != nil {
			return err
		}
		var rec map[string]any
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(mapOutput{Record: rec, Diagnostics: out.Diagnostics}); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func searchCmd(e *env) *cobra.Command {
	var (
		f         domain.Filter
		ident     string
		name      string
		hall      string
		pub       string
		method    string
		doi       string
		yearFrom  int64
		yearTo    int64
		pldMin    float64
		pldMax    float64
		termsOf   string
		histogram string
		bins      int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query stored entries",
		Long: `Search lists stored entries matching the filter flags. With --terms it
prints value counts of a facet instead; with --histogram it prints a
histogram of a numeric field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			setString := func(flag string, v string, dst **string) {
				if flags.Changed(flag) {
					*dst = &v
				}
			}
			setString("identifier", ident, &f.Identifier)
			setString("name", name, &f.CommonName)
			setString("hall", hall, &f.Hall)
			setString("publication", pub, &f.Publication)
			setString("method", method, &f.SynthesisMethod)
			setString("doi", doi, &f.DOI)
			if flags.Changed("year-from") {
				f.YearFrom = &yearFrom
			}
			if flags.Changed("year-to") {
				f.YearTo = &yearTo
			}
			if flags.Changed("pld-min") {
				f.PLDMin = &pldMin
			}
			if flags.Changed("pld-max") {
				f.PLDMax = &pldMax
			}

			ctx := cmd.Context()
			st, closeStore, err := openStore(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer closeStore()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			switch {
			case termsOf != "":
				terms, err := st.Terms(ctx, domain.Facet(termsOf), f, f.Limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "TERM\tCOUNT")
				for _, t := range terms {
					fmt.Fprintf(w, "%s\t%d\n", t.Term, t.Count)
				}

			case histogram != "":
				hist, err := st.Histogram(ctx, domain.NumericField(histogram), f, bins)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "MIN\tMAX\tCOUNT")
				for _, b := range hist {
					fmt.Fprintf(w, "%g\t%g\t%d\n", b.Min, b.Max, b.Count)
				}

			default:
				entries, total, err := st.Search(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "IDENTIFIER\tNAME\tYEAR\tPLD\tSOURCE")
				for _, en := range entries {
					r := en.Record
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						deref(r.Identifier), deref(r.CommonName), deref(r.ReferenceData.Year),
						deref(r.CalculationProperties.StructuralProperties.PoreCharacteristics.PLDAngstrom),
						en.SourcePath)
				}
				fmt.Fprintf(w, "\n%d of %d entries\n", len(entries), total)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&ident, "identifier", "", "exact identifier")
	fl.StringVar(&name, "name", "", "common name substring")
	fl.StringVar(&hall, "hall", "", "exact Hall symbol")
	fl.StringVar(&pub, "publication", "", "exact publication")
	fl.StringVar(&method, "method", "", "exact synthesis method")
	fl.StringVar(&doi, "doi", "", "exact DOI")
	fl.Int64Var(&yearFrom, "year-from", 0, "earliest publication year")
	fl.Int64Var(&yearTo, "year-to", 0, "latest publication year")
	fl.Float64Var(&pldMin, "pld-min", 0, "minimum pore limiting diameter")
	fl.Float64Var(&pldMax, "pld-max", 0, "maximum pore limiting diameter")
	fl.StringVar(&f.SortBy, "sort", "", "sort column: identifier, pld_angstrom, year, ingested_at")
	fl.StringVar(&f.SortOrder, "order", "", "ASC or DESC")
	fl.IntVar(&f.Limit, "limit", 0, "maximum rows (default 50)")
	fl.IntVar(&f.Offset, "offset", 0, "rows to skip")
	fl.StringVar(&termsOf, "terms", "", "print value counts of a facet: hall, publication, synthesis_method, doi")
	fl.StringVar(&histogram, "histogram", "", "print a histogram of: pld_angstrom, asa_m2_cm3, pv_cm3_g, synthesis_temperature")
	fl.IntVar(&bins, "bins", 10, "histogram bin count")
	cmd.MarkFlagsMutuallyExclusive("terms", "histogram")
	return cmd
}

func deref[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

func migrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, driver, closeDB, err := openSQL(cmd.Context(), e.cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := migrations.Up(cmd.Context(), driver, db)
			if err != nil {
				return err
			}
			e.log.Info("migrations applied", slog.String("driver", driver), slog.Int("count", n))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, driver, closeDB, err := openSQL(cmd.Context(), e.cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			provider, err := migrations.Provider(driver, db)
			if err != nil {
				return err
			}
			statuses, err := provider.Status(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED\tFILE")
			for _, s := range statuses {
				applied := "-"
				if !s.AppliedAt.IsZero() {
					applied = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
			}
			return nil
		},
	})
	return cmd
}
