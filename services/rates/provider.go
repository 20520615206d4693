package ratesvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
)

var ErrUnavailable = errors.New("exchange rates unavailable")

// Provider fetches the exchange rates relative to `base`: 1 base = rates[code] code.
type Provider interface {
	Fetch(ctx context.Context, base string) (map[string]float64, error)
}

// ProviderFunc adapts a function to a Provider.
type ProviderFunc func(ctx context.Context, base string) (map[string]float64, error)

func (f ProviderFunc) Fetch(ctx context.Context, base string) (map[string]float64, error) {
	return f(ctx, base)
}

// Static serves fixed rates.
type Static map[string]float64

var _ Provider = Static(nil)

func (s Static) Fetch(_ context.Context, base string) (map[string]float64, error) {
	if s == nil {
		return nil, ErrUnavailable
	}
	rates := make(map[string]float64, len(s)+1)
	for code, rate := range s {
		rates[code] = rate
	}
	rates[strings.ToUpper(base)] = 1
	return rates, nil
}

// DefaultStaticRates are the MWK rates used offline.
var DefaultStaticRates = Static{
	"MWK": 1,
	"USD": 0.00058,
	"GBP": 0.00046,
	"EUR": 0.00053,
	"ZAR": 0.0106,
	"ZMW": 0.0152,
}

// NewProvider returns the provider named by conf.Rates.Provider.
// The returned closer releases its connections.
func NewProvider(conf *core.Config) (Provider, func() error, error) {
	nop := func() error { return nil }
	switch conf.Rates.Provider {
	case "exchangerate-api", "":
		return NewExchangeRateAPI(conf.Rates.APIURL, conf.Rates.APIKey, conf.Rates.Timeout), nop, nil
	case "exchanger":
		ex, err := NewExchanger(conf.Rates.ExchangerAddress)
		if err != nil {
			return nil, nop, err
		}
		return ex, ex.Close, nil
	case "static":
		return DefaultStaticRates, nop, nil
	default:
		return nil, nop, core.NewArgumentError(fmt.Sprintf("unknown rates provider %q", conf.Rates.Provider))
	}
}
