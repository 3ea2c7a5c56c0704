package gc

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/livecart/housekeeper/internal/logging"
	"github.com/livecart/housekeeper/internal/streams"
)

// Purger purges a single stream.
type Purger interface {
	Purge(ctx context.Context, r streams.Record) (PurgeResult, error)
}

// ExpiryConfig configures an ExpiryScanner.
type ExpiryConfig struct {
	// Parallelism is the number of streams purged concurrently.
	// Default: 1 (strictly sequential).
	Parallelism int

	// Now returns the current time. Default: time.Now.
	Now func() time.Time

	// Metrics receives scan counters. Optional.
	Metrics ExpiryMetricsRecorder

	// Logger is used when the context carries no logger. Optional.
	Logger *logging.Logger
}

// ExpiryResult summarizes one scan.
type ExpiryResult struct {
	// Success is true when the scan ran to completion, even if individual
	// purges failed.
	Success      bool `json:"success"`
	Matched      int  `json:"matched"`
	DeletedCount int  `json:"deletedCount"`
	ErrorCount   int  `json:"errorCount"`
}

// ExpiryScanner finds expired streams and purges them one by one.
type ExpiryScanner struct {
	streams *streams.Store
	purger  Purger
	config  ExpiryConfig
}

// NewExpiryScanner creates an ExpiryScanner.
func NewExpiryScanner(st *streams.Store, purger Purger, config ExpiryConfig) *ExpiryScanner {
	if config.Parallelism <= 0 {
		config.Parallelism = 1
	}
	config.Now = defaultNow(config.Now)
	if config.Metrics == nil {
		config.Metrics = nopExpiryMetrics{}
	}
	return &ExpiryScanner{
		streams: st,
		purger:  purger,
		config:  config,
	}
}

// Run performs one scan. A failing query fails the run; a failing purge is
// counted and the scan moves on. When ctx is cancelled, no further purges
// start and the partial result is returned with the context error.
func (s *ExpiryScanner) Run(ctx context.Context) (ExpiryResult, error) {
	log := logging.FromCtx(ctx, s.config.Logger)
	log.Info("starting expired streams cleanup")

	records, err := s.streams.ListExpired(ctx, s.config.Now())
	if err != nil {
		log.Errorf("expired streams query failed", map[string]any{"error": err.Error()})
		return ExpiryResult{}, err
	}

	result := ExpiryResult{Matched: len(records)}
	s.config.Metrics.RecordMatched(len(records))
	log.Infof("found expired streams", map[string]any{"count": len(records)})

	var mu sync.Mutex
	purgeOne := func(r streams.Record) {
		_, err := s.purger.Purge(ctx, r)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.ErrorCount++
			s.config.Metrics.RecordPurgeError()
			log.Errorf("error deleting stream", map[string]any{
				"streamId": r.ID,
				"error":    err.Error(),
			})
			return
		}
		result.DeletedCount++
		s.config.Metrics.RecordPurged()
	}

	if s.config.Parallelism == 1 {
		for _, r := range records {
			if ctx.Err() != nil {
				break
			}
			purgeOne(r)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.config.Parallelism)
		for _, r := range records {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				purgeOne(r)
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		log.Warnf("cleanup interrupted", map[string]any{
			"deleted": result.DeletedCount,
			"errors":  result.ErrorCount,
			"error":   err.Error(),
		})
		return result, err
	}

	result.Success = true
	log.Infof("cleanup completed", map[string]any{
		"deleted": result.DeletedCount,
		"errors":  result.ErrorCount,
	})
	return result, nil
}
