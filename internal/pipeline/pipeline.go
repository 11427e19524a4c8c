// Package pipeline orchestrates the ETL stages. Each stage fully
// materializes its output and hands it to the next through an explicit
// value; there is no package-level accumulation state. Reruns overwrite
// the output file whole, and two concurrent invocations on the same
// output path race with last writer wins.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gridhistory/internal/config"
	"gridhistory/internal/export"
	"gridhistory/internal/hourly"
	"gridhistory/internal/ingest"
	"gridhistory/internal/observability/metrics"
	"gridhistory/internal/pricing"
	"gridhistory/internal/reshape"
)

// Pipeline wires the stages to one configuration and logger.
type Pipeline struct {
	cfg    config.Config
	logger *log.Logger
}

// New creates a pipeline.
func New(cfg config.Config, logger *log.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, logger: logger}
}

// Process runs load, reshape and hourly aggregation, writes the final
// table and returns it. Fails if no source workbook in the supported
// year range exists.
func (p *Pipeline) Process(ctx context.Context) (export.Table, error) {
	mode, err := hourly.ParseMode(p.cfg.Aggregation)
	if err != nil {
		return export.Table{}, err
	}

	p.logger.Printf("scanning %s...", p.cfg.DataDir)
	loader := ingest.NewLoader(p.cfg.ReportName, p.cfg.StartYear, p.cfg.EndYear, p.logger)
	sheets, stats, err := loader.Scan(p.cfg.DataDir, nil)
	if err != nil {
		return export.Table{}, err
	}
	metrics.ObserveIngest(stats.WorkbooksRead, stats.WorkbooksSkipped, stats.SheetsRead, stats.SheetsSkipped)

	var pivoted []reshape.Table
	totalDropped := 0
	for _, sheet := range sheets {
		records, droppedRows, err := reshape.Melt(sheet)
		if err != nil {
			p.logger.Printf("skipping sheet %s of %s: %v", sheet.Sheet, sheet.File, err)
			continue
		}
		p.logger.Printf("sheet %s of %s: %d records (%d dropped)", sheet.Sheet, sheet.File, len(records), droppedRows)
		totalDropped += droppedRows
		pivoted = append(pivoted, reshape.Pivot(records))
	}
	metrics.ObserveDropped(totalDropped)

	agg := hourly.Aggregate(pivoted, mode)
	if len(agg.Rows) == 0 {
		return export.Table{}, fmt.Errorf("no usable sheet data found in %s", p.cfg.DataDir)
	}
	matches := hourly.ResolveFactors(agg.Fuels, factors(p.cfg.EmissionFactors))
	agg.ApplyEmissions(matches)

	table := export.FromHourly(agg)
	if err := export.WriteCSV(p.cfg.OutputFile, table); err != nil {
		return export.Table{}, fmt.Errorf("write %s: %w", p.cfg.OutputFile, err)
	}
	metrics.ObserveOutputRows(len(table.Rows))
	p.logger.Printf("saved processed data to %s with %d rows", p.cfg.OutputFile, len(table.Rows))
	p.logger.Printf("columns: %v", append([]string{"Timestamp"}, table.Columns...))

	if err := p.store(ctx, table); err != nil {
		return export.Table{}, err
	}
	return table, nil
}

// MergePrices loads the yearly price series, left-joins them onto the
// written table and rewrites the file. No price data at all is reported
// and leaves the placeholder Price column unchanged.
func (p *Pipeline) MergePrices(ctx context.Context) error {
	p.logger.Printf("loading main data from %s...", p.cfg.OutputFile)
	table, err := export.ReadCSV(p.cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", p.cfg.OutputFile, err)
	}

	loader := pricing.NewLoader(p.cfg.ReferenceNode, p.cfg.StartYear, p.cfg.EndYear, p.logger)
	points, stats := loader.Load(p.cfg.PriceDir)
	metrics.ObservePrices(stats.FilesLoaded, stats.FilesMissing, stats.FilesSkipped)
	if len(points) == 0 {
		p.logger.Printf("no price data found")
		return nil
	}
	p.logger.Printf("collected %d price records", len(points))

	if err := pricing.Merge(&table, points); err != nil {
		return err
	}
	if err := export.WriteCSV(p.cfg.OutputFile, table); err != nil {
		return fmt.Errorf("write %s: %w", p.cfg.OutputFile, err)
	}
	p.logger.Printf("updated %s with price data", p.cfg.OutputFile)

	return p.store(ctx, table)
}

// Run executes the full pipeline: process then price merge.
func (p *Pipeline) Run(ctx context.Context) error {
	if _, err := p.Process(ctx); err != nil {
		return err
	}
	return p.MergePrices(ctx)
}

// store upserts the table into Postgres when a database is configured.
func (p *Pipeline) store(ctx context.Context, table export.Table) error {
	if p.cfg.DatabaseURL == "" {
		return nil
	}
	db, err := sql.Open("pgx", p.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer db.Close()

	sink := export.NewPostgresSink(db, export.WithSinkTable(p.cfg.DBTable))
	if err := sink.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("db schema: %w", err)
	}
	if err := sink.Store(ctx, table); err != nil {
		return fmt.Errorf("db store: %w", err)
	}
	p.logger.Printf("stored %d rows in %s", len(table.Rows), p.cfg.DBTable)
	return nil
}

func factors(cfg []config.EmissionFactor) []hourly.Factor {
	out := make([]hourly.Factor, len(cfg))
	for i, f := range cfg {
		out[i] = hourly.Factor{Fuel: f.Fuel, Factor: f.Factor}
	}
	return out
}
