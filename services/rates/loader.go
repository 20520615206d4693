package ratesvc

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/pricing"
)

type snapshot struct {
	table   pricing.RateTable
	loading bool
}

// Loader fetches the rate table once, in the background, and publishes it atomically.
// Readers never block: until the fetch resolves they get the base-only table.
type Loader struct {
	base     string
	provider Provider
	cache    Cache // optional
	timeout  time.Duration
	logger   core.Logger

	current atomic.Pointer[snapshot]
	once    sync.Once
	done    chan struct{}
}

func NewLoader(base string, provider Provider, cache Cache, timeout time.Duration, logger core.Logger) *Loader {
	vala.BeginValidation().Validate(
		vala.IsNotNil(provider, "provider"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	l := &Loader{
		base:     base,
		provider: provider,
		cache:    cache,
		timeout:  timeout,
		logger:   logger,
		done:     make(chan struct{}),
	}
	l.current.Store(&snapshot{table: pricing.BaseOnly(base), loading: true})
	return l
}

// Start fires the single fetch. Later calls do nothing.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		go l.load(ctx)
	})
}

// Current returns the published table and whether the fetch is still in flight.
func (l *Loader) Current() (pricing.RateTable, bool) {
	s := l.current.Load()
	return s.table, s.loading
}

// Done is closed once the fetch has resolved.
func (l *Loader) Done() <-chan struct{} { return l.done }

func (l *Loader) load(ctx context.Context) {
	defer close(l.done)

	rates, err := l.fetch(ctx)
	if err != nil {
		l.logger.Error("loading exchange rates", err, map[string]interface{}{"base": l.base})
		l.current.Store(&snapshot{table: pricing.BaseOnly(l.base)})
		return
	}

	table := pricing.NewRateTable(l.base, rates)
	l.current.Store(&snapshot{table: table})
	l.logger.Info("exchange rates loaded", map[string]interface{}{"base": table.Base(), "currencies": len(rates)})
}

func (l *Loader) fetch(ctx context.Context) (map[string]float64, error) {
	if l.cache != nil {
		rates, err := l.cache.Get(l.base)
		if err == nil {
			return rates, nil
		}
		if errors.Cause(err) != errCacheMiss {
			l.logger.Warn("reading rates cache", err)
		}
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	rates, err := l.provider.Fetch(ctx, l.base)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Set(l.base, rates); err != nil {
			l.logger.Warn("writing rates cache", err)
		}
	}
	return rates, nil
}
