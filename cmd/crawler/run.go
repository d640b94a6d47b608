package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kowhai-tools/nzcrawl/internal/config"
	"github.com/kowhai-tools/nzcrawl/internal/orchestrator"
)

// runCrawl drives one full crawl from cfg: it runs the orchestrator to
// completion and writes the resulting report to cfg.OutputDir(). A
// report write failure is printed to standard output rather than
// returned, per the crawl's fatal/non-fatal split: only seed-file I/O
// failure during the run itself is treated as fatal.
func runCrawl(cfg config.Config) error {
	report, err := orchestrator.New(cfg).Run(context.Background())
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	path, err := report.Write(cfg.OutputDir(), time.Now())
	if err != nil {
		fmt.Printf("warning: failed to write crawl report: %s\n", err)
		return nil
	}

	fmt.Printf("crawl complete: %d pages visited, report written to %s\n", report.TotalPages, path)
	return nil
}
