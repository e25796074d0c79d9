package retag

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.roriz.xyz/retag/tags"
)

// Processor runs the pipeline over a batch of records, one file at a time.
// Stop and Pause are safe to call from another goroutine, a UI or signal
// handler typically owns them.
type Processor struct {
	Pipeline *Pipeline

	// OnRecord fires after each record settles, resolved or not.
	OnRecord func(*Record)
	// OnProgress fires with the running done count and the batch total.
	OnProgress func(done, total int)

	stop   atomic.Bool
	paused atomic.Bool
}

func (p *Processor) Stop()          { p.stop.Store(true) }
func (p *Processor) Pause(on bool)  { p.paused.Store(on) }
func (p *Processor) Stopped() bool  { return p.stop.Load() }
func (p *Processor) IsPaused() bool { return p.paused.Load() }

const pausePoll = 100 * time.Millisecond

// Run reconciles every record in order. Stop and pause are checked at file
// granularity, a file in flight always settles. A record that errors is
// marked and the batch moves on.
func (p *Processor) Run(ctx context.Context, records []*Record, cfg Config) error {
	total := len(records)
	for done, rec := range records {
		for p.paused.Load() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pausePoll):
			}
		}
		if p.stop.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.process(ctx, rec, cfg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rec.Status = StatusError
			rec.Message = err.Error()
		}

		if p.OnRecord != nil {
			p.OnRecord(rec)
		}
		if p.OnProgress != nil {
			p.OnProgress(done+1, total)
		}
	}
	return nil
}

func (p *Processor) process(ctx context.Context, rec *Record, cfg Config) error {
	if err := p.Pipeline.Reconcile(ctx, rec, cfg); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	if len(p.Pipeline.CoverSources) > 0 && p.needsCover(rec, cfg) {
		if err := p.Pipeline.ResolveCover(ctx, rec); err != nil {
			return fmt.Errorf("resolve cover: %w", err)
		}
	}
	return nil
}

// needsCover skips the lookup for files that already carry art, which is
// most of a re-run batch.
func (p *Processor) needsCover(rec *Record, cfg Config) bool {
	if cfg.ForceCover {
		return true
	}
	if rec.Cover != nil {
		return false
	}
	embedded, err := tags.HasCover(rec.Path)
	return err != nil || !embedded
}
