package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kowhai-tools/nzcrawl/pkg/fileutil"
)

// Report is the terminal, derived summary of a completed crawl: the
// per-URL visit lines plus the aggregate totals described in the crawl
// report format. It is computed once, after termination, and never
// influences scheduling or termination itself.
type Report struct {
	Visits            []VisitEvent
	TotalPages        int
	TotalBytes        int64
	AverageSuccessize float64
	TotalRedirects    int
	ElapsedSeconds    float64
	StatusHistogram   map[string]int
	WorkerVisitCounts map[int]int
	FinalFrontierSize int
	FinalDistinctHosts int
}

// BuildReport derives a Report from everything a Recorder has accumulated.
// frontierSize and distinctHosts are measured by the orchestrator at the
// moment of termination, since the Recorder itself has no visibility into
// frontier or host-stats state.
func BuildReport(r *Recorder, frontierSize, distinctHosts int) Report {
	visits := r.Snapshot()

	histogram := make(map[string]int)
	var totalBytes int64
	var successCount int
	var redirects int

	for _, v := range visits {
		histogram[v.Status]++
		if _, err := strconv.Atoi(v.Status); err == nil {
			totalBytes += int64(v.SizeBytes)
			successCount++
		}
		if v.RedirectTarget != "" {
			redirects++
		}
	}

	var avg float64
	if successCount > 0 {
		avg = float64(totalBytes) / float64(successCount)
	}

	return Report{
		Visits:             visits,
		TotalPages:         len(visits),
		TotalBytes:         totalBytes,
		AverageSuccessize:  avg,
		TotalRedirects:     redirects,
		ElapsedSeconds:     time.Since(r.StartedAt()).Seconds(),
		StatusHistogram:    histogram,
		WorkerVisitCounts:  r.WorkerVisitCounts(),
		FinalFrontierSize:  frontierSize,
		FinalDistinctHosts: distinctHosts,
	}
}

// Format renders the report in the crawl log's textual layout: one line
// per visited URL, then the totals, histogram, per-worker counts, final
// frontier size, and final distinct-host count.
func (rep Report) Format() string {
	var b strings.Builder

	for _, v := range rep.Visits {
		seedMarker := ""
		if v.IsSeed {
			seedMarker = "[seed]"
		}
		redirect := "-"
		if v.RedirectTarget != "" {
			redirect = v.RedirectTarget
		}
		fingerprint := "-"
		if v.Fingerprint != "" {
			fingerprint = v.Fingerprint
		}
		fmt.Fprintf(&b, "order=%d depth=%d status=%s %s url=%s redirect=%s time=%s size=%d fingerprint=%s\n",
			v.Order, v.Depth, v.Status, seedMarker, v.URL, redirect,
			v.Timestamp.Format(time.RFC3339), v.SizeBytes, fingerprint)
	}

	fmt.Fprintf(&b, "\n--- totals ---\n")
	fmt.Fprintf(&b, "pages=%d bytes=%d avg_success_size=%.1f redirects=%d elapsed_seconds=%.2f\n",
		rep.TotalPages, rep.TotalBytes, rep.AverageSuccessize, rep.TotalRedirects, rep.ElapsedSeconds)

	fmt.Fprintf(&b, "\n--- status histogram ---\n")
	for status, count := range rep.StatusHistogram {
		fmt.Fprintf(&b, "%s=%d\n", status, count)
	}

	fmt.Fprintf(&b, "\n--- per-worker visit counts ---\n")
	for worker, count := range rep.WorkerVisitCounts {
		fmt.Fprintf(&b, "worker_%d=%d\n", worker, count)
	}

	fmt.Fprintf(&b, "\n--- final state ---\n")
	fmt.Fprintf(&b, "frontier_size=%d distinct_hosts=%d\n", rep.FinalFrontierSize, rep.FinalDistinctHosts)

	return b.String()
}

// Write persists the report under outputDir as
// crawler_log_<YYYY-MM-DD-HH-MM-SS>.txt, creating outputDir if needed.
// Write failures are non-fatal to the caller by contract of spec §7: the
// caller decides whether to only print to stdout.
func (rep Report) Write(outputDir string, at time.Time) (string, error) {
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return "", fmt.Errorf("ensure output dir: %w", err)
	}

	path := filepath.Join(outputDir, fileutil.TimestampedLogFilename(at))
	if err := os.WriteFile(path, []byte(rep.Format()), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
