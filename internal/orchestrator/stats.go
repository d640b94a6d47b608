package orchestrator

import "sync"

// hostStat is one host's bookkeeping for the scoring engine: how many
// times a link into this host has been enqueued, and how many of those
// enqueued links were discovered on a different host.
type hostStat struct {
	enqueueCount int
	inDegree     int
}

// hostStatsTable is the single shared structure tracking every host's
// enqueue count and in-degree, guarded by one lock per the crawl's
// shared-resource discipline.
type hostStatsTable struct {
	mu   sync.Mutex
	data map[string]*hostStat
}

func newHostStatsTable() *hostStatsTable {
	return &hostStatsTable{data: make(map[string]*hostStat)}
}

// bumpEnqueue increments host's enqueue count and, if fromHost differs
// from host (a cross-host link), its in-degree, returning the updated
// counts for immediate scoring.
func (t *hostStatsTable) bumpEnqueue(host, fromHost string) (enqueueCount, inDegree int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stat, exists := t.data[host]
	if !exists {
		stat = &hostStat{}
		t.data[host] = stat
	}
	stat.enqueueCount++
	if fromHost != "" && fromHost != host {
		stat.inDegree++
	}
	return stat.enqueueCount, stat.inDegree
}

// distinctHosts returns the number of distinct hosts ever enqueued.
func (t *hostStatsTable) distinctHosts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.data)
}

// secondLabelStatsTable tracks, per second-level label (the label
// immediately preceding the target TLD), how many attempted visits have
// occurred against hosts carrying that label.
type secondLabelStatsTable struct {
	mu   sync.Mutex
	data map[string]int
}

func newSecondLabelStatsTable() *secondLabelStatsTable {
	return &secondLabelStatsTable{data: make(map[string]int)}
}

// bumpVisit increments label's visit count and returns the count as it
// stood before this visit. The scoring engine buckets the current count
// read through snapshot, not this return value.
func (t *secondLabelStatsTable) bumpVisit(label string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := t.data[label]
	t.data[label] = before + 1
	return before
}

// snapshot returns label's current visit count without mutating it.
func (t *secondLabelStatsTable) snapshot(label string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data[label]
}
