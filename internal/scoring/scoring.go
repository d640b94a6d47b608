// Package scoring computes a frontier entry's priority from how explored
// its host is, how many links into it were found on other hosts, and how common
// its second-level label is among visited .nz hosts. Lower scores are more
// urgent.
package scoring

// bucket is one (upper bound, priority) step of a threshold table. A count
// matches the first bucket whose UpperBound it does not exceed; MaxInt64-like
// sentinel buckets (UpperBound < 0) always match as the fallback.
type bucket struct {
	UpperBound int
	Priority   int
}

const noUpperBound = -1

// Engine holds the bucket tables and second-label whitelist as data, so
// boundary behavior is a matter of configuration rather than a hardcoded
// switch chain.
type Engine struct {
	domainBuckets             []bucket
	inDegreeBuckets           []bucket
	secondLabelWhitelisted    []bucket
	secondLabelNonWhitelisted []bucket
	whitelist                 map[string]bool

	domainWeight      int
	inDegreeWeight    int
	secondLabelWeight int
}

// NewEngine returns the Engine configured per the crawl's bucket tables
// and priority weights.
func NewEngine(whitelist map[string]bool) *Engine {
	return &Engine{
		domainBuckets: []bucket{
			{0, 1}, {1, 2}, {2, 3}, {5, 4}, {10, 5},
			{100, 6}, {1000, 7}, {10000, 8}, {1000000, 9},
			{noUpperBound, 10},
		},
		inDegreeBuckets: []bucket{
			{0, 10}, {1, 9}, {2, 8}, {5, 7}, {10, 6},
			{20, 5}, {50, 4}, {500, 3}, {8000, 2},
			{noUpperBound, 1},
		},
		secondLabelWhitelisted: []bucket{
			{0, 1}, {5, 2}, {20, 3}, {50, 4}, {200, 5},
			{500, 6}, {1000, 7}, {10000, 8}, {100000, 9},
			{noUpperBound, 10},
		},
		secondLabelNonWhitelisted: []bucket{
			{0, 2}, {5, 3}, {20, 4}, {50, 5}, {200, 6},
			{500, 7}, {1000, 8}, {10000, 9},
			{noUpperBound, 10},
		},
		whitelist:         whitelist,
		domainWeight:      47,
		inDegreeWeight:    13,
		secondLabelWeight: 29,
	}
}

func bucketPriority(buckets []bucket, count int) int {
	for _, b := range buckets {
		if b.UpperBound == noUpperBound || count <= b.UpperBound {
			return b.Priority
		}
	}
	return buckets[len(buckets)-1].Priority
}

// DomainPriority buckets a host's enqueue count.
func (e *Engine) DomainPriority(enqueueCount int) int {
	return bucketPriority(e.domainBuckets, enqueueCount)
}

// InDegreePriority buckets a host's cross-host in-degree.
func (e *Engine) InDegreePriority(inDegree int) int {
	return bucketPriority(e.inDegreeBuckets, inDegree)
}

// SecondLabelPriority buckets how often secondLabel has been seen,
// applying the whitelist's more permissive curve when secondLabel is a
// member.
func (e *Engine) SecondLabelPriority(secondLabel string, visitCount int) int {
	if e.whitelist[secondLabel] {
		return bucketPriority(e.secondLabelWhitelisted, visitCount)
	}
	return bucketPriority(e.secondLabelNonWhitelisted, visitCount)
}

// FinalPriority combines the three component priorities into the
// frontier's ordering key: lower is more urgent.
func (e *Engine) FinalPriority(domainPriority, inDegreePriority, secondLabelPriority int) int {
	return e.domainWeight*domainPriority +
		e.inDegreeWeight*inDegreePriority +
		e.secondLabelWeight*secondLabelPriority
}
