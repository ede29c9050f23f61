// Package extract runs strategy chains against a page and assembles the
// consensus result.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/cartex"
	"golang.org/x/sync/errgroup"
)

// DefaultStrategyTimeout bounds a single strategy run.
const DefaultStrategyTimeout = 500 * time.Millisecond

// Scheduler runs strategies, each raced against its own timeout.
// A strategy that fails, panics or overruns contributes nothing and never
// affects its siblings. Results that arrive after the timeout are dropped.
type Scheduler struct {
	Timeout  time.Duration
	Logger   *slog.Logger
	Observer cartex.StrategyObserver
}

// NewScheduler creates a Scheduler with DefaultStrategyTimeout.
func NewScheduler() *Scheduler {
	return &Scheduler{Timeout: DefaultStrategyTimeout}
}

// RunAll dispatches every strategy concurrently and waits until each has
// produced a value, failed, or timed out. Candidates are returned in
// strategy order; absent values are omitted.
func (s *Scheduler) RunAll(ctx context.Context, strategies []cartex.Strategy, page cartex.Page) []cartex.Candidate {
	results := make([]cartex.Raw, len(strategies))

	var g errgroup.Group
	for i, st := range strategies {
		g.Go(func() error {
			results[i] = s.run(ctx, st, page)
			return nil
		})
	}
	_ = g.Wait()

	var candidates []cartex.Candidate
	for i, raw := range results {
		if raw.IsZero() {
			continue
		}
		candidates = append(candidates, cartex.Candidate{Value: raw, Source: strategies[i].Name()})
	}
	return candidates
}

// AcceptFunc converts a raw value into its final form, reporting false
// when the value should be skipped.
type AcceptFunc func(raw cartex.Raw) (string, bool)

// RunFirst runs strategies in order and returns the first value accepted
// by accept, along with the name of the strategy that produced it.
func (s *Scheduler) RunFirst(ctx context.Context, strategies []cartex.Strategy, page cartex.Page, accept AcceptFunc) (value, source string, ok bool) {
	for _, st := range strategies {
		if ctx.Err() != nil {
			return "", "", false
		}
		raw := s.run(ctx, st, page)
		if raw.IsZero() {
			continue
		}
		if v, ok := accept(raw); ok {
			return v, st.Name(), true
		}
		s.logger().Debug("candidate rejected",
			"strategy", st.Name(),
			"kind", st.Kind(),
			"value", raw.String(),
		)
	}
	return "", "", false
}

type outcome struct {
	raw cartex.Raw
	err error
}

// run executes one strategy bounded by the scheduler timeout.
func (s *Scheduler) run(ctx context.Context, st cartex.Strategy, page cartex.Page) cartex.Raw {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	begin := time.Now()
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("strategy panicked: %v", r)}
			}
		}()
		raw, err := st.Extract(ctx, page)
		done <- outcome{raw: raw, err: err}
	}()

	select {
	case o := <-done:
		switch {
		case o.err != nil:
			s.fail(st, cartex.OutcomeFailed, begin, cartex.Errorf(cartex.ESTRATEGY, "strategy %s: %v", st.Name(), o.err))
			return cartex.Raw{}
		case o.raw.IsZero():
			s.observe(st, cartex.OutcomeMiss, begin)
		default:
			s.observe(st, cartex.OutcomeHit, begin)
		}
		return o.raw
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.fail(st, cartex.OutcomeTimeout, begin, cartex.Errorf(cartex.ETIMEOUT, "strategy %s exceeded %s", st.Name(), s.timeout()))
		} else {
			s.fail(st, cartex.OutcomeFailed, begin, cartex.Errorf(cartex.ESTRATEGY, "strategy %s: %v", st.Name(), ctx.Err()))
		}
		return cartex.Raw{}
	}
}

func (s *Scheduler) fail(st cartex.Strategy, o cartex.Outcome, begin time.Time, err error) {
	s.observe(st, o, begin)
	s.logger().Debug("strategy failure",
		"strategy", st.Name(),
		"kind", st.Kind(),
		"outcome", o,
		"code", cartex.ErrorCode(err),
		"err", err,
	)
}

func (s *Scheduler) observe(st cartex.Strategy, o cartex.Outcome, begin time.Time) {
	if s.Observer != nil {
		s.Observer.ObserveStrategy(st.Name(), st.Kind(), o, time.Since(begin))
	}
}

func (s *Scheduler) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultStrategyTimeout
	}
	return s.Timeout
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
