package prefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"samplerank/internal/logging"
	"samplerank/internal/pathguard"
	"samplerank/internal/tournament"
)

const (
	defaultBytes   = 256 << 10
	defaultWorkers = 4
)

// Options configures a Preloader.
type Options struct {
	Bytes   int64
	Workers int
	Logger  *slog.Logger
}

// Preloader reads the first Bytes of upcoming samples.
type Preloader struct {
	guard   *pathguard.AllowedPaths
	bytes   int64
	workers int
	logger  *slog.Logger

	sf     singleflight.Group
	mu     sync.Mutex
	warmed map[string]int64
}

// Stats summarizes one Warm call.
type Stats struct {
	Warmed  int
	Cached  int
	Skipped int
	Failed  int
}

// New builds a Preloader that only touches paths guard allows.
func New(guard *pathguard.AllowedPaths, opts Options) *Preloader {
	if opts.Bytes <= 0 {
		opts.Bytes = defaultBytes
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Preloader{
		guard:   guard,
		bytes:   opts.Bytes,
		workers: opts.Workers,
		logger:  logging.NewComponentLogger(logger, "prefetch"),
		warmed:  make(map[string]int64),
	}
}

// UpcomingPaths lists the distinct sample paths of the next count matches.
func UpcomingPaths(state tournament.State, count int) []string {
	var paths []string
	seen := make(map[string]struct{})
	for _, m := range state.UpcomingPairings(count) {
		for _, it := range []tournament.Item{m.A, m.B} {
			if _, ok := seen[it.Path]; ok {
				continue
			}
			seen[it.Path] = struct{}{}
			paths = append(paths, it.Path)
		}
	}
	return paths
}

// Warm reads the head of every path not already warmed. Individual read
// failures are logged and counted, never returned; only ctx cancellation is.
func (p *Preloader) Warm(ctx context.Context, paths []string) (Stats, error) {
	var (
		stats   Stats
		statsMu sync.Mutex
	)
	count := func(field *int) {
		statsMu.Lock()
		*field++
		statsMu.Unlock()
	}

	logger := logging.WithContext(ctx, p.logger)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, path := range paths {
		if p.Warmed(path) {
			stats.Cached++
			continue
		}
		if p.guard == nil || !p.guard.IsAllowed(path) {
			logger.Debug("prefetch skipped path outside allowed roots", logging.String("path", path))
			stats.Skipped++
			continue
		}
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err, _ := p.sf.Do(path, func() (any, error) {
				return p.readHead(path)
			})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				logging.WarnWithContext(logger, "prefetch read failed", "prefetch_failed",
					logging.String("path", path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the sample file is readable"),
					logging.String(logging.FieldImpact, "playback of this sample may start slowly"),
				)
				count(&stats.Failed)
				return nil
			}
			count(&stats.Warmed)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	p.logger.Debug("prefetch pass finished",
		logging.Int("warmed", stats.Warmed),
		logging.Int("cached", stats.Cached),
		logging.Int("skipped", stats.Skipped),
		logging.Int("failed", stats.Failed),
	)
	return stats, err
}

// Warmed reports whether path has been read by this Preloader.
func (p *Preloader) Warmed(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.warmed[path]
	return ok
}

// Forget drops every cache entry; the next Warm rereads all paths.
func (p *Preloader) Forget() {
	p.mu.Lock()
	p.warmed = make(map[string]int64)
	p.mu.Unlock()
}

func (p *Preloader) readHead(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open sample: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(io.Discard, io.LimitReader(f, p.bytes))
	if err != nil {
		return n, fmt.Errorf("read sample: %w", err)
	}
	p.mu.Lock()
	p.warmed[path] = n
	p.mu.Unlock()
	return n, nil
}
