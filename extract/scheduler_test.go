package extract_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/extract"
	"github.com/fwojciec/cartex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(name, value string) cartex.Strategy {
	return cartex.NewStrategy(name, cartex.KindPrice, func(context.Context, cartex.Page) (cartex.Raw, error) {
		return cartex.Text(value), nil
	})
}

// blocking returns a strategy that ignores its context and only returns
// once release is closed.
func blocking(name string, release <-chan struct{}) cartex.Strategy {
	return cartex.NewStrategy(name, cartex.KindPrice, func(context.Context, cartex.Page) (cartex.Raw, error) {
		<-release
		return cartex.Text("$1.00"), nil
	})
}

func TestScheduler_RunAll(t *testing.T) {
	t.Parallel()

	t.Run("collects candidates in strategy order", func(t *testing.T) {
		t.Parallel()

		s := extract.NewScheduler()
		strategies := []cartex.Strategy{
			constant("first", "$19.99"),
			constant("absent", ""),
			cartex.NewStrategy("failing", cartex.KindPrice, func(context.Context, cartex.Page) (cartex.Raw, error) {
				return cartex.Raw{}, errors.New("boom")
			}),
			cartex.NewStrategy("panicking", cartex.KindPrice, func(context.Context, cartex.Page) (cartex.Raw, error) {
				panic("selector exploded")
			}),
			constant("last", "$25.00"),
		}

		candidates := s.RunAll(context.Background(), strategies, &mock.Page{})

		require.Len(t, candidates, 2)
		assert.Equal(t, "first", candidates[0].Source)
		assert.Equal(t, "$19.99", candidates[0].Value.String())
		assert.Equal(t, "last", candidates[1].Source)
	})

	t.Run("bounds fan-out by the per-strategy timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		t.Cleanup(func() { close(release) })

		strategies := []cartex.Strategy{constant("fast", "$5.00")}
		for i := range 50 {
			strategies = append(strategies, blocking(fmt.Sprintf("slow-%d", i), release))
		}
		s := &extract.Scheduler{Timeout: 50 * time.Millisecond}

		begin := time.Now()
		candidates := s.RunAll(context.Background(), strategies, &mock.Page{})

		assert.Less(t, time.Since(begin), time.Second)
		require.Len(t, candidates, 1)
		assert.Equal(t, "fast", candidates[0].Source)
	})

	t.Run("ignores results that arrive late", func(t *testing.T) {
		t.Parallel()

		late := cartex.NewStrategy("late", cartex.KindPrice, func(context.Context, cartex.Page) (cartex.Raw, error) {
			time.Sleep(100 * time.Millisecond)
			return cartex.Text("$9.99"), nil
		})
		s := &extract.Scheduler{Timeout: 10 * time.Millisecond}

		candidates := s.RunAll(context.Background(), []cartex.Strategy{late}, &mock.Page{})

		assert.Empty(t, candidates)
	})

	t.Run("reports outcomes to observer", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		t.Cleanup(func() { close(release) })

		var mu sync.Mutex
		outcomes := make(map[string]cartex.Outcome)
		s := &extract.Scheduler{
			Timeout: 20 * time.Millisecond,
			Observer: &mock.StrategyObserver{
				ObserveStrategyFn: func(name string, kind cartex.Kind, outcome cartex.Outcome, d time.Duration) {
					mu.Lock()
					defer mu.Unlock()
					outcomes[name] = outcome
				},
			},
		}

		s.RunAll(context.Background(), []cartex.Strategy{
			constant("hit", "$1.00"),
			constant("miss", ""),
			cartex.NewStrategy("failed", cartex.KindPrice, func(context.Context, cartex.Page) (cartex.Raw, error) {
				return cartex.Raw{}, errors.New("boom")
			}),
			blocking("timeout", release),
		}, &mock.Page{})

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, map[string]cartex.Outcome{
			"hit":     cartex.OutcomeHit,
			"miss":    cartex.OutcomeMiss,
			"failed":  cartex.OutcomeFailed,
			"timeout": cartex.OutcomeTimeout,
		}, outcomes)
	})
}

func TestScheduler_RunFirst(t *testing.T) {
	t.Parallel()

	accept := func(raw cartex.Raw) (string, bool) {
		return raw.String(), raw.String() != "reject me"
	}

	t.Run("returns first accepted value in order", func(t *testing.T) {
		t.Parallel()

		calls := 0
		counting := cartex.NewStrategy("unreached", cartex.KindTitle, func(context.Context, cartex.Page) (cartex.Raw, error) {
			calls++
			return cartex.Text("never"), nil
		})
		strategies := []cartex.Strategy{
			constant("absent", ""),
			constant("rejected", "reject me"),
			constant("winner", "Brass Lamp"),
			counting,
		}

		value, source, ok := extract.NewScheduler().RunFirst(context.Background(), strategies, &mock.Page{}, accept)

		require.True(t, ok)
		assert.Equal(t, "Brass Lamp", value)
		assert.Equal(t, "winner", source)
		assert.Zero(t, calls)
	})

	t.Run("moves past timed out strategies", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		t.Cleanup(func() { close(release) })
		s := &extract.Scheduler{Timeout: 20 * time.Millisecond}

		value, _, ok := s.RunFirst(context.Background(), []cartex.Strategy{
			blocking("slow", release),
			constant("next", "Lamp"),
		}, &mock.Page{}, accept)

		require.True(t, ok)
		assert.Equal(t, "Lamp", value)
	})

	t.Run("reports false when nothing is accepted", func(t *testing.T) {
		t.Parallel()

		_, _, ok := extract.NewScheduler().RunFirst(context.Background(), []cartex.Strategy{
			constant("rejected", "reject me"),
		}, &mock.Page{}, accept)

		assert.False(t, ok)
	})
}
