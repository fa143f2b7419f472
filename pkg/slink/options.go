package slink

import (
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultProgressEvery is the default number of inserted items between two
// progress reports.
const DefaultProgressEvery = 100

// DefaultParallelThreshold is the smallest distance row computed in parallel
// when workers are enabled.
const DefaultParallelThreshold = 2048

type config struct {
	workers           int
	parallelThreshold int
	progress          func(Progress)
	progressEvery     int
}

func defaultConfig() config {
	return config{
		workers:           1,
		parallelThreshold: DefaultParallelThreshold,
		progressEvery:     DefaultProgressEvery,
	}
}

// Option configures a [Run].
type Option func(*config)

// WithWorkers computes each distance row with up to n goroutines.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		c.workers = n
	}
}

// WithParallelThreshold sets the row length from which rows are split
// between workers. Shorter rows are computed inline.
func WithParallelThreshold(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.parallelThreshold = n
		}
	}
}

// WithProgress registers fn to be called from the clustering loop.
// It runs on the caller's goroutine and must not block.
func WithProgress(fn func(Progress)) Option {
	return func(c *config) { c.progress = fn }
}

// WithProgressEvery sets how many items are inserted between two progress
// reports. The last item is always reported.
func WithProgressEvery(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.progressEvery = n
		}
	}
}

// fillRow stores dist(items[i], items[k]) in m[i] for every i < k. Rows at
// or above the parallel threshold are split into one chunk per worker and
// joined before returning.
func fillRow[T any](items []T, k int, m []float64, dist func(a, b T) float64, cfg config) error {
	if cfg.workers <= 1 || k < cfg.parallelThreshold {
		for i := 0; i < k; i++ {
			m[i] = dist(items[i], items[k])
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(cfg.workers)
	chunk := (k + cfg.workers - 1) / cfg.workers
	for lo := 0; lo < k; lo += chunk {
		hi := min(lo+chunk, k)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				m[i] = dist(items[i], items[k])
			}
			return nil
		})
	}
	return g.Wait()
}

// Progress is a snapshot of a running clustering.
//
// SLINK inserts items one by one and the k-th insertion costs k-1 distance
// evaluations, so work is measured in steps: Done items account for
// Done·(Done-1)/2 steps out of Total·(Total-1)/2.
type Progress struct {
	Done    int
	Total   int
	Elapsed time.Duration
}

// Steps returns the number of distance evaluations done so far.
func (p Progress) Steps() int64 { return pairs(p.Done) }

// TotalSteps returns the number of distance evaluations of the whole run.
func (p Progress) TotalSteps() int64 { return pairs(p.Total) }

// Fraction returns the share of steps done, in [0, 1].
func (p Progress) Fraction() float64 {
	total := p.TotalSteps()
	if total == 0 {
		return 1
	}
	return float64(p.Steps()) / float64(total)
}

// Rate returns the steps per second achieved so far.
func (p Progress) Rate() float64 {
	secs := p.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(p.Steps()) / secs
}

// ETA estimates the remaining time at the current rate. It is zero when no
// rate is known yet.
func (p Progress) ETA() time.Duration {
	rate := p.Rate()
	if rate == 0 {
		return 0
	}
	left := float64(p.TotalSteps() - p.Steps())
	return time.Duration(left / rate * float64(time.Second))
}

func pairs(n int) int64 {
	if n < 2 {
		return 0
	}
	k := int64(n)
	return k * (k - 1) / 2
}
