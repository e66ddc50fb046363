// Command snapshot renders the dashboard charts and the XLSX export for one
// date range into a directory, without starting the web server.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"ecommerce-dashboard/internal/config"
	"ecommerce-dashboard/internal/dataset"
	"ecommerce-dashboard/internal/export"
	"ecommerce-dashboard/internal/models"
	"ecommerce-dashboard/internal/observability"
	"ecommerce-dashboard/internal/render"
	"ecommerce-dashboard/internal/services"
)

type options struct {
	csvFile string
	outDir  string
	start   string
	end     string
	workers int
	timeout time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.csvFile, "csv", "dashboard/all_df.csv", "path to the joined orders CSV")
	flag.StringVar(&opts.outDir, "out", "snapshot", "output directory")
	flag.StringVar(&opts.start, "start", "", "first date (YYYY-MM-DD), defaults to the earliest order")
	flag.StringVar(&opts.end, "end", "", "last date (YYYY-MM-DD), defaults to the latest order")
	flag.IntVar(&opts.workers, "workers", 8, "CSV parse workers")
	flag.DurationVar(&opts.timeout, "timeout", time.Minute, "overall deadline")
	flag.Parse()

	logger := observability.NewLogger(config.LoggerConfig{Level: "info", Format: "text"})
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	files, err := snapshot(ctx, opts, logger)
	if err != nil {
		logger.Error("snapshot failed", "error", err)
		os.Exit(1)
	}
	logger.Info("snapshot written", "dir", opts.outDir, "files", files)
}

// snapshot writes every chart and the workbook, returning the file names.
func snapshot(ctx context.Context, opts options, logger *slog.Logger) ([]string, error) {
	analytics := services.NewAnalytics(nil)
	if err := analytics.LoadFromCSV(ctx, opts.csvFile, dataset.Options{Workers: opts.workers}); err != nil {
		return nil, err
	}

	r, err := analytics.ParseRange(opts.start, opts.end)
	if err != nil {
		return nil, err
	}
	d, err := analytics.Dashboard(ctx, r)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	files := make([]string, len(render.ChartNames)+1)
	g, ctx := errgroup.WithContext(ctx)

	for i, name := range render.ChartNames {
		files[i] = name + ".png"
		g.Go(func() error {
			spec, err := render.ChartFor(name, d)
			if err != nil {
				return err
			}
			return writeFile(ctx, filepath.Join(opts.outDir, files[i]), func(w io.Writer) error {
				return render.BarChart(w, spec)
			})
		})
	}

	last := len(files) - 1
	files[last] = fmt.Sprintf("dashboard_%s_%s.xlsx", d.Range.Start.Format(models.DateLayout), d.Range.End.Format(models.DateLayout))
	g.Go(func() error {
		return writeFile(ctx, filepath.Join(opts.outDir, files[last]), func(w io.Writer) error {
			return export.Workbook(w, d)
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("dashboard rendered",
		"range", d.Range.String(),
		"rows", d.Summary.Records,
		"total_sales", d.Summary.SalesLabel,
	)
	return files, nil
}

// writeFile renders into memory first so a failed render leaves no partial file.
func writeFile(ctx context.Context, path string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
