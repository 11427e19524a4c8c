package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gridhistory/internal/config"
	"gridhistory/internal/observability/metrics"
	"gridhistory/internal/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to yaml config (default: GRIDHISTORY_CONFIG)")
		stage      = flag.String("stage", "all", "pipeline stage to run: process, prices or all")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	metrics.Init()
	p := pipeline.New(cfg, logger)
	ctx := context.Background()

	switch *stage {
	case "process":
		_, err = p.Process(ctx)
	case "prices":
		err = p.MergePrices(ctx)
	case "all":
		err = p.Run(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown stage %q (want process, prices or all)\n", *stage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("pipeline error: %v", err)
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Printf("warning: write metrics textfile: %v", err)
		}
	}
}
