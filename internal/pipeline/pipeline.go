// Package pipeline sequences the full cleaning run: load, schema gate,
// rule application, row filtering, report building, and persistence of the
// two output artifacts.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cleanse/internal/config"
	"cleanse/internal/datasource"
	"cleanse/internal/datasource/file"
	"cleanse/internal/metrics"
	csvparser "cleanse/internal/parser/csv"
	"cleanse/internal/report"
	"cleanse/internal/rules"
	"cleanse/internal/schema"
	"cleanse/internal/storage"
	"cleanse/internal/transformer"
	"cleanse/internal/transformer/builtin"
	"cleanse/pkg/records"
)

// maxNullFields is the row retention threshold: rows with more nulls than
// this are dropped. Fixed, not configurable.
const maxNullFields = 2

// rejectLogLimit caps per-value rejection log lines; totals still appear in
// the summary.
const rejectLogLimit = 10

// Function variables used to introduce test seams. In production these
// point at the real implementations.
var (
	openSourceFn = openSource

	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return storage.New(ctx, cfg)
	}
)

// counters accumulates run statistics for the summary log and metrics.
type counters struct {
	total        int // data rows parsed
	skipped      int // malformed rows dropped by the parser
	valuesNulled int // individual field values nulled by rules
	deduped      int // rows removed as exact duplicates
	dropped      int // rows removed by the null threshold
	valid        int // rows in the final dataset
}

// Run executes one cleaning run and returns the final dataset plus its
// report. Any error is logged and returned unmodified; when err is non-nil
// no output files have been written and the returned dataset and report
// must not be used.
func Run(ctx context.Context, cfg config.Pipeline, logger *log.Logger) (*records.Dataset, report.Report, error) {
	job := cfg.Job
	if job == "" {
		job = "cleanse"
	}

	var c counters

	// 1) Load.
	start := time.Now()
	ds, skipped, err := load(ctx, cfg, logger)
	metrics.RecordStage(job, "load", err, time.Since(start))
	if err != nil {
		logger.Printf("load: %v", err)
		return nil, report.Report{}, err
	}
	c.skipped = skipped
	c.total = len(ds.Rows)
	logger.Printf("load: rows=%d skipped=%d columns=%d", len(ds.Rows), skipped, len(ds.Columns))

	// 2) Schema gate: fatal, and ahead of any mutation at all. The gate
	// itself tolerates padded numerics, so it needs no normalization first.
	expected := schema.Patients()
	start = time.Now()
	err = schema.Validate(ds, expected, logger)
	metrics.RecordStage(job, "schema", err, time.Since(start))
	if err != nil {
		logger.Printf("schema gate: %v", err)
		return nil, report.Report{}, err
	}

	// 3) Whitespace normalization, then numeric coercion. Coercion cannot
	// fail: the gate proved convertibility.
	ds = builtin.Normalize{}.Apply(ds)
	ds = builtin.Coerce{Numeric: numericColumns(expected)}.Apply(ds)

	// 4) Rules: null out non-conforming values, collect distinct rejects.
	engine := rules.Engine{
		Rules: rules.Defaults(),
		Reject: func(r rules.Rejection) {
			c.valuesNulled++
			if c.valuesNulled <= rejectLogLimit {
				logger.Printf("rule reject: column=%s value=%q (%s)", r.Column, r.Value, r.Reason)
			}
			if c.valuesNulled == rejectLogLimit+1 {
				logger.Printf("... additional rejections suppressed ...")
			}
		},
	}
	start = time.Now()
	invalid := engine.Apply(ds)
	metrics.RecordStage(job, "rules", nil, time.Since(start))

	// 5) Row filtering: exact duplicates first, then the null threshold.
	filters := transformer.Chain{
		builtin.DeDup{Dropped: func(int) { c.deduped++ }},
		builtin.NullThreshold{MaxNulls: maxNullFields, Dropped: func(int) { c.dropped++ }},
	}
	start = time.Now()
	ds = filters.Apply(ds)
	metrics.RecordStage(job, "filter", nil, time.Since(start))
	c.valid = len(ds.Rows)

	// 6) Report, from the final dataset.
	rep := report.Build(c.total, ds, invalid)

	// 7) Persist both artifacts, then the optional database sink.
	start = time.Now()
	err = persist(ctx, cfg, ds, rep)
	metrics.RecordStage(job, "persist", err, time.Since(start))
	if err != nil {
		logger.Printf("persist: %v", err)
		return nil, report.Report{}, err
	}

	logSummary(logger, &c)
	recordRowMetrics(job, &c)

	return ds, rep, nil
}

// load opens the configured source and parses it into a dataset.
func load(ctx context.Context, cfg config.Pipeline, logger *log.Logger) (*records.Dataset, int, error) {
	src, err := openSourceFn(cfg)
	if err != nil {
		return nil, 0, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("source open: %w", err)
	}
	defer rc.Close()

	p, err := buildParser(cfg.Parser, logger)
	if err != nil {
		return nil, 0, err
	}
	return p.Parse(rc)
}

// openSource maps source configuration onto a concrete datasource.
func openSource(cfg config.Pipeline) (datasource.Source, error) {
	switch cfg.Source.Kind {
	case "file":
		return file.NewLocal(cfg.Source.File.Path), nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", cfg.Source.Kind)
	}
}

// buildParser maps parser configuration onto a concrete parser.
func buildParser(p config.Parser, logger *log.Logger) (*csvparser.Parser, error) {
	switch p.Kind {
	case "csv":
		return csvparser.NewParser(csvparser.Options{
			HasHeader:      p.Options.Bool("has_header", true),
			Comma:          p.Options.Rune("comma", ','),
			TrimSpace:      p.Options.Bool("trim_space", true),
			HeaderMap:      p.Options.StringMap("header_map"),
			FoldDiacritics: p.Options.Bool("fold_diacritics", true),
			Logger:         logger,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", p.Kind)
	}
}

// persist writes the cleaned dataset and the report. The two files are
// independent, so they write concurrently; the database sink (when
// configured) runs after both files land.
func persist(ctx context.Context, cfg config.Pipeline, ds *records.Dataset, rep report.Report) error {
	var g errgroup.Group

	g.Go(func() error {
		return writeFileAtomic(cfg.Output.Data, func(w io.Writer) error {
			return csvparser.Write(w, ds)
		})
	})
	g.Go(func() error {
		b, err := rep.Render()
		if err != nil {
			return err
		}
		return os.WriteFile(cfg.Output.Report, b, 0o644)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Storage.Kind == "" || cfg.Storage.Kind == "none" {
		return nil
	}
	return loadStorage(ctx, cfg, ds)
}

// loadStorage bulk-inserts the cleaned dataset into the configured backend.
func loadStorage(ctx context.Context, cfg config.Pipeline, ds *records.Dataset) error {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:           cfg.Storage.Kind,
		DSN:            cfg.Storage.DB.DSN,
		Table:          cfg.Storage.DB.Table,
		Columns:        ds.Columns,
		NumericColumns: numericColumns(schema.Patients()),
	})
	if err != nil {
		return fmt.Errorf("init repo: %w", err)
	}
	defer repo.Close()

	if cfg.Storage.DB.AutoCreateTable {
		if err := repo.EnsureTable(ctx); err != nil {
			return err
		}
	}

	n, err := repo.CopyFrom(ctx, ds.Columns, storage.RowsFromDataset(ds, ds.Columns))
	if err != nil {
		return err
	}
	if n != int64(len(ds.Rows)) {
		return fmt.Errorf("storage: inserted %d of %d rows", n, len(ds.Rows))
	}
	return nil
}

// writeFileAtomic writes via a temp file in the target directory and
// renames it into place, so readers never see a half-written artifact.
func writeFileAtomic(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(dirOf(path), ".cleanse-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == os.PathSeparator {
			return path[:i]
		}
	}
	return "."
}

// numericColumns extracts the numeric column names from the schema.
func numericColumns(s schema.Schema) []string {
	var out []string
	for _, c := range s.Columns {
		if c.Kind == schema.KindNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// logSummary prints final aggregated statistics for the run.
//
// Invariant for data rows: valid + deduped + dropped == total.
func logSummary(logger *log.Logger, c *counters) {
	logger.Printf(
		"summary: total=%d skipped=%d values_nulled=%d deduped=%d dropped=%d valid=%d",
		c.total, c.skipped, c.valuesNulled, c.deduped, c.dropped, c.valid,
	)

	if accounted := c.valid + c.deduped + c.dropped; accounted != c.total {
		logger.Printf("WARNING: row accounting mismatch: total=%d accounted=%d (delta=%d)",
			c.total, accounted, c.total-accounted)
	}
}

func recordRowMetrics(job string, c *counters) {
	metrics.RecordRows(job, "records_total", int64(c.total))
	metrics.RecordRows(job, "records_valid", int64(c.valid))
	metrics.RecordRows(job, "values_nulled", int64(c.valuesNulled))
	metrics.RecordRows(job, "rows_deduped", int64(c.deduped))
	metrics.RecordRows(job, "rows_dropped", int64(c.dropped))
	metrics.RecordRows(job, "rows_skipped", int64(c.skipped))
}
