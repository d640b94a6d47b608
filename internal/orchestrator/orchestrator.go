// Package orchestrator runs the worker pool that drains the frontier: each
// worker claims an entry, enforces politeness and robots policy, fetches
// and parses the page, and feeds newly discovered links back into the
// frontier under the crawl's scoring and dedup rules.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kowhai-tools/nzcrawl/internal/config"
	"github.com/kowhai-tools/nzcrawl/internal/dedup"
	"github.com/kowhai-tools/nzcrawl/internal/fetcher"
	"github.com/kowhai-tools/nzcrawl/internal/frontier"
	"github.com/kowhai-tools/nzcrawl/internal/linkextract"
	"github.com/kowhai-tools/nzcrawl/internal/metadata"
	"github.com/kowhai-tools/nzcrawl/internal/ratelimit"
	"github.com/kowhai-tools/nzcrawl/internal/robots"
	"github.com/kowhai-tools/nzcrawl/internal/robots/cache"
	"github.com/kowhai-tools/nzcrawl/internal/scoring"
	"github.com/kowhai-tools/nzcrawl/internal/urlnorm"
	"github.com/kowhai-tools/nzcrawl/pkg/timeutil"
	"github.com/kowhai-tools/nzcrawl/pkg/urlutil"
)

// Orchestrator owns every shared structure in the crawl and runs its
// worker pool. A fresh Orchestrator is good for exactly one Run.
type Orchestrator struct {
	cfg config.Config

	frontier   *frontier.Frontier
	registry   *dedup.Registry
	engine     *scoring.Engine
	limiter    *ratelimit.HostLimiter
	policy     *robots.Policy
	fetch      *fetcher.Fetcher
	recorder   *metadata.Recorder
	hostStats  *hostStatsTable
	labelStats *secondLabelStatsTable
	sleeper    timeutil.Sleeper

	sequence atomic.Int64
	visited  atomic.Int64
}

// New wires an Orchestrator from cfg. Every shared structure is built
// fresh; nothing is reused across Run calls.
func New(cfg config.Config) *Orchestrator {
	recorder := metadata.NewRecorder()
	sleeper := timeutil.NewRealSleeper()

	return &Orchestrator{
		cfg: cfg,

		frontier: frontier.New(),
		registry: dedup.NewRegistry(),
		engine:   scoring.NewEngine(urlutil.SecondLabelWhitelist),
		limiter:  ratelimit.NewHostLimiter(cfg.RandomSeed(), sleeper),
		policy: robots.NewPolicy(
			cfg.UserAgent(),
			cfg.RobotsConnectTimeout(),
			cfg.RobotsReadTimeout(),
			cache.NewMemoryCache(),
			recorder,
		),
		fetch:      fetcher.New(cfg.UserAgent(), cfg.ConnectTimeout(), cfg.ReadTimeout()),
		recorder:   recorder,
		hostStats:  newHostStatsTable(),
		labelStats: newSecondLabelStatsTable(),
		sleeper:    sleeper,
	}
}

// Run samples the seed file, pushes the seeds onto the frontier, and
// drains it with cfg.NumThreads workers until every worker has exited.
// It returns the crawl's final report. A non-nil error means the seed
// file itself could not be read; no page-level failure ever surfaces
// here.
func (o *Orchestrator) Run(ctx context.Context) (metadata.Report, error) {
	rng := rand.New(rand.NewSource(o.cfg.RandomSeed()))

	seeds, err := loadSeeds(o.cfg.SeedFilePath(), o.cfg.NumSeeds(), rng)
	if err != nil {
		return metadata.Report{}, fmt.Errorf("loading seed file: %w", err)
	}

	for _, raw := range seeds {
		o.enqueueSeed(raw)
	}

	var wg sync.WaitGroup
	for i := 0; i < o.cfg.NumThreads(); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			o.runWorker(ctx, workerID)
		}(i)
	}
	wg.Wait()

	report := metadata.BuildReport(o.recorder, o.frontier.Len(), o.hostStats.distinctHosts())
	return report, nil
}

func (o *Orchestrator) enqueueSeed(raw string) {
	normalized, ok := urlnorm.Normalize(raw)
	if !ok {
		return
	}
	o.pushIfNew(normalized, 0, "")
}

// runWorker is one worker's loop: pop an entry, visit it, repeat, until
// the visit cap is reached or the frontier has stayed empty for
// RetryBudgetEmpties consecutive pops.
func (o *Orchestrator) runWorker(ctx context.Context, workerID int) {
	emptyStreak := 0
	for {
		if o.visited.Load() >= int64(o.cfg.MaxPages()) {
			return
		}

		entry, ok := o.frontier.Pop(o.cfg.FrontierPopTimeout())
		if !ok {
			emptyStreak++
			if emptyStreak >= o.cfg.RetryBudgetEmpties() {
				return
			}
			o.sleeper.Sleep(o.cfg.RetryBudgetSleep())
			continue
		}
		emptyStreak = 0

		o.visitEntry(ctx, workerID, entry)
	}
}

// visitEntry runs steps 3 through 13 of the per-entry crawl algorithm
// against a single popped frontier entry.
func (o *Orchestrator) visitEntry(ctx context.Context, workerID int, entry frontier.Entry) {
	minimized := urlnorm.Minimize(entry.URL)
	if !o.registry.TryMarkVisited(minimized) {
		// Another worker, or a prior redirect, already claimed this URL.
		return
	}

	// The commit index doubles as the cap gate: reserving it here, rather
	// than after the fetch, means no worker can ever record beyond
	// MaxPages even when several workers reach this point concurrently
	// with the counter one below the cap.
	order := o.visited.Add(1)
	if order > int64(o.cfg.MaxPages()) {
		return
	}

	parsed, err := url.Parse(entry.URL)
	if err != nil {
		return
	}
	host := parsed.Host
	isSeed := entry.Depth == 0

	o.labelStats.bumpVisit(urlutil.SecondLabel(host))

	// Acquire is best-effort: the rate-limit gate is a politeness delay,
	// not an admission decision, so the fetch proceeds whether or not the
	// full spacing was honored within max_wait.
	o.limiter.Acquire(host, o.cfg.HostMinInterval(), o.cfg.HostMaxWait())

	event := metadata.VisitEvent{
		URL:       entry.URL,
		Depth:     entry.Depth,
		IsSeed:    isSeed,
		Order:     order,
		Timestamp: time.Now(),
		WorkerID:  workerID,
	}

	if !o.policy.MayFetch(ctx, *parsed) {
		event.Status = fetcher.StatusRobots
		o.recorder.RecordVisit(event)
		return
	}

	result := o.fetch.Fetch(ctx, *parsed)
	event.Status = result.Status
	event.SizeBytes = result.SizeBytes
	event.Fingerprint = result.Fingerprint

	if result.RedirectURL != "" {
		event.RedirectTarget = result.RedirectURL
		o.admitRedirectTarget(result.RedirectURL)
	}

	o.recorder.RecordVisit(event)

	if len(result.Body) == 0 {
		return
	}

	o.extractAndPush(*parsed, result.Body, host, entry.Depth)
}

// admitRedirectTarget marks a redirect target as visited-or-redirected
// and enqueued unconditionally, so it is never fetched independently,
// regardless of whether it would otherwise pass the validity filter.
func (o *Orchestrator) admitRedirectTarget(raw string) {
	normalized, ok := urlnorm.Normalize(raw)
	if !ok {
		return
	}
	minimized := urlnorm.Minimize(normalized)
	o.registry.TryMarkVisited(minimized)
	o.registry.TryMarkEnqueued(minimized)
}

func (o *Orchestrator) extractAndPush(base url.URL, body []byte, parentHost string, parentDepth int) {
	links := linkextract.Extract(base, body, o.cfg.HTMLParseBudget())
	for _, link := range links {
		o.pushIfNew(link, parentDepth+1, parentHost)
	}
}

// pushIfNew scores and pushes normalized onto the frontier unless it is
// already visited or enqueued. depth 0 marks a seed, which is exempt
// from the validity filter; every other depth requires the target TLD
// and a non-blacklisted path. fromHost is the discovering page's host,
// or "" for a seed with no parent.
func (o *Orchestrator) pushIfNew(normalized string, depth int, fromHost string) {
	parsed, err := url.Parse(normalized)
	if err != nil {
		return
	}
	if depth > 0 && !urlutil.IsValid(*parsed) {
		return
	}

	minimized := urlnorm.Minimize(normalized)
	if o.registry.IsVisited(minimized) {
		return
	}
	if !o.registry.TryMarkEnqueued(minimized) {
		return
	}

	host := parsed.Host
	enqueueCount, inDegree := o.hostStats.bumpEnqueue(host, fromHost)
	label := urlutil.SecondLabel(host)
	visitCount := o.labelStats.snapshot(label)

	domainPriority := o.engine.DomainPriority(enqueueCount)
	inDegreePriority := o.engine.InDegreePriority(inDegree)
	secondLabelPriority := o.engine.SecondLabelPriority(label, visitCount)
	finalPriority := o.engine.FinalPriority(domainPriority, inDegreePriority, secondLabelPriority)

	o.frontier.Push(frontier.Entry{
		FinalPriority:       finalPriority,
		Sequence:            o.sequence.Add(1),
		URL:                 normalized,
		Depth:               depth,
		DomainPriority:      domainPriority,
		InDegreePriority:    inDegreePriority,
		SecondLabelPriority: secondLabelPriority,
	})
}
