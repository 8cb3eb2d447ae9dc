package recompute

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
	"github.com/fentz26/focus/internal/store"
)

// Source supplies the snapshot a recomputation runs over.
type Source interface {
	Snapshot(ctx context.Context) (*store.Snapshot, error)
}

// Result is the outcome of one recomputation.
type Result struct {
	Generation uint64         `json:"generation"`
	Counts     map[string]int `json:"counts"`
	ComputedAt time.Time      `json:"computed_at"`
}

// Stats reports coordinator activity.
type Stats struct {
	Requested uint64 `json:"requested"`
	Applied   uint64 `json:"applied"`
	Computed  int    `json:"computed"`
	Discarded int    `json:"discarded"`
}

// Coordinator recomputes badge counts in the background. Requests that
// arrive while a computation is pending are folded into it, and a result
// whose generation has been superseded is discarded instead of applied.
type Coordinator struct {
	source Source
	config *Config
	clock  func() time.Time
	gens   Tracker

	mu        sync.Mutex
	latest    *Result
	computed  int
	discarded int

	wake chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new coordinator.
func New(src Source, cfg *Config) *Coordinator {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		source: src,
		config: cfg,
		clock:  time.Now,
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins the coordinator loop.
func (c *Coordinator) Start() {
	c.wg.Add(1)
	go c.loop()
	log.Println("Recompute coordinator started")
}

// Stop gracefully stops the coordinator.
func (c *Coordinator) Stop() {
	c.cancel()
	c.wg.Wait()
	log.Println("Recompute coordinator stopped")
}

// Request asks for a recomputation and returns its generation. It never
// blocks.
func (c *Coordinator) Request() uint64 {
	gen := c.gens.Next()
	select {
	case c.wake <- struct{}{}:
	default:
		// A wake-up is already pending and will pick this generation up.
	}
	return gen
}

// Latest returns the most recently applied result.
func (c *Coordinator) Latest() (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return nil, false
	}
	return c.latest, true
}

// Stats returns current coordinator statistics.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Requested: c.gens.Latest(),
		Computed:  c.computed,
		Discarded: c.discarded,
	}
	if c.latest != nil {
		s.Applied = c.latest.Generation
	}
	return s
}

func (c *Coordinator) loop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.wake:
		}

		if c.config.Coalesce > 0 {
			timer := time.NewTimer(c.config.Coalesce)
			select {
			case <-c.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		// Every request made so far is covered by this computation.
		select {
		case <-c.wake:
		default:
		}
		gen := c.gens.Latest()

		result, err := c.Compute(c.ctx, gen)
		if err != nil {
			if c.ctx.Err() == nil {
				log.Printf("Recompute generation %d failed: %v", gen, err)
			}
			continue
		}
		c.apply(result)
	}
}

// Compute runs one recomputation tagged with gen over a fresh snapshot.
func (c *Coordinator) Compute(ctx context.Context, gen uint64) (*Result, error) {
	snap, err := c.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock()
	counts := CountsNow(snap, now)

	c.mu.Lock()
	c.computed++
	c.mu.Unlock()

	return &Result{Generation: gen, Counts: counts, ComputedAt: now}, nil
}

// apply installs r unless a newer generation has been requested since it
// started. It reports whether r was applied.
func (c *Coordinator) apply(r *Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.gens.Current(r.Generation) {
		c.discarded++
		log.Printf("Discarding stale recompute generation %d (latest %d)", r.Generation, c.gens.Latest())
		return false
	}
	c.latest = r
	return true
}

// CountsNow computes counts synchronously, for callers that cannot wait
// for the first background result.
func CountsNow(snap *store.Snapshot, now time.Time) map[string]int {
	views := make([]models.Perspective, 0, len(snap.Perspectives)+9)
	views = append(views, perspective.BuiltIns()...)
	views = append(views, snap.Perspectives...)
	return perspective.Counts(snap.Tasks, views, snap.Boards, now)
}
