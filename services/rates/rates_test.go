package ratesvc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	proto "github.com/lynxbites/proto-grpc/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/trezcool/tutorhub/core"
)

func TestExchangeRateAPI_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/v6/key/latest/MWK", "/v6/se%2Fcret/latest/MWK":
			_, _ = w.Write([]byte(`{"result":"success","base_code":"MWK","conversion_rates":{"MWK":1,"USD":0.00058,"GBP":0.00046}}`))
		case "/v6/bad-key/latest/MWK":
			_, _ = w.Write([]byte(`{"result":"error","error-type":"invalid-key"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	rates, err := NewExchangeRateAPI(srv.URL+"/", "key", time.Second).Fetch(ctx, "mwk")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"MWK": 1, "USD": 0.00058, "GBP": 0.00046}, rates)

	_, err = NewExchangeRateAPI(srv.URL, "bad-key", time.Second).Fetch(ctx, "MWK")
	assert.Error(t, err)

	_, err = NewExchangeRateAPI(srv.URL, "key", time.Second).Fetch(ctx, "ZAR")
	assert.EqualError(t, err, "exchange rates: unexpected status 404")

	// path segments are escaped
	rates, err = NewExchangeRateAPI(srv.URL, "se/cret", time.Second).Fetch(ctx, " mwk ")
	require.NoError(t, err)
	assert.Len(t, rates, 3)
	_, err = NewExchangeRateAPI(srv.URL, "key", time.Second).Fetch(ctx, "MWK/../ZAR")
	assert.EqualError(t, err, "exchange rates: unexpected status 404")

	// the request honours the context
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewExchangeRateAPI(srv.URL, "key", time.Second).Fetch(cancelled, "MWK")
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

type exchangerServer struct {
	proto.UnimplementedExchangeServiceServer
	rates map[string]float64
}

func (s *exchangerServer) GetExchangeRates(context.Context, *proto.Empty) (*proto.ExchangeRatesResponse, error) {
	return &proto.ExchangeRatesResponse{Rates: s.rates}, nil
}

func TestExchanger_Fetch(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	proto.RegisterExchangeServiceServer(s, &exchangerServer{rates: map[string]float64{"USD": 1, "MWK": 1724, "EUR": 0.92}})
	go func() { _ = s.Serve(lis) }()
	defer s.Stop()

	ex, err := NewExchanger("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	defer ex.Close()

	rates, err := ex.Fetch(context.Background(), "MWK")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rates["MWK"])
	assert.InDelta(t, 1.0/1724, rates["USD"], 1e-12)
	assert.InDelta(t, 0.92/1724, rates["EUR"], 1e-12)

	_, err = ex.Fetch(context.Background(), "ZMW")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestStatic_Fetch(t *testing.T) {
	rates, err := Static{"USD": 0.5}.Fetch(context.Background(), "mwk")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"USD": 0.5, "MWK": 1}, rates)

	_, err = Static(nil).Fetch(context.Background(), "MWK")
	assert.Equal(t, ErrUnavailable, err)
}

func TestNewProvider(t *testing.T) {
	conf := core.NewTestConfig()

	p, closer, err := NewProvider(conf)
	require.NoError(t, err)
	assert.IsType(t, Static{}, p)
	assert.NoError(t, closer())

	conf.Rates.Provider = "exchangerate-api"
	p, _, err = NewProvider(conf)
	require.NoError(t, err)
	assert.IsType(t, &ExchangeRateAPI{}, p)

	conf.Rates.Provider = "exchanger"
	conf.Rates.ExchangerAddress = "localhost:8020"
	p, closer, err = NewProvider(conf)
	require.NoError(t, err)
	assert.IsType(t, &Exchanger{}, p)
	assert.NoError(t, closer())

	conf.Rates.Provider = "carrier-pigeon"
	_, _, err = NewProvider(conf)
	assert.IsType(t, &core.ArgumentError{}, err)
	assert.EqualError(t, err, `unknown rates provider "carrier-pigeon"`)
}

func TestEncodeDecodeRates(t *testing.T) {
	data, err := encodeRates(map[string]float64{"MWK": 1, "USD": 0.00058}, time.Now())
	require.NoError(t, err)
	rates, err := decodeRates(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"MWK": 1, "USD": 0.00058}, rates)

	_, err = decodeRates([]byte("garbage"))
	assert.Error(t, err)
}

type blockingProvider struct {
	release chan struct{}
	rates   map[string]float64
	err     error

	mu    sync.Mutex
	calls int
}

func (p *blockingProvider) Fetch(ctx context.Context, _ string) (map[string]float64, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.release != nil {
		<-p.release
	}
	return p.rates, p.err
}

type memCache struct {
	mu    sync.Mutex
	rates map[string]map[string]float64
	err   error
}

func (c *memCache) Get(base string) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	r, ok := c.rates[base]
	if !ok {
		return nil, errCacheMiss
	}
	return r, nil
}

func (c *memCache) Set(base string, rates map[string]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rates == nil {
		c.rates = make(map[string]map[string]float64)
	}
	c.rates[base] = rates
	return nil
}

func waitDone(t *testing.T, l *Loader) {
	t.Helper()
	select {
	case <-l.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("rates never resolved")
	}
}

func TestLoader_Success(t *testing.T) {
	p := &blockingProvider{release: make(chan struct{}), rates: map[string]float64{"USD": 0.00058}}
	cache := new(memCache)
	l := NewLoader("MWK", p, cache, time.Second, &core.NopLogger{})

	table, loading := l.Current()
	assert.True(t, loading)
	assert.False(t, table.Complete())

	l.Start(context.Background())
	l.Start(context.Background())

	table, loading = l.Current()
	assert.True(t, loading, "still in flight")
	assert.Equal(t, []string{"MWK"}, table.Currencies())

	close(p.release)
	waitDone(t, l)

	table, loading = l.Current()
	assert.False(t, loading)
	assert.True(t, table.Complete())
	assert.Equal(t, []string{"MWK", "USD"}, table.Currencies())
	assert.Equal(t, 1, p.calls)

	cached, err := cache.Get("MWK")
	require.NoError(t, err)
	assert.Equal(t, 0.00058, cached["USD"])
}

func TestLoader_Failure(t *testing.T) {
	p := &blockingProvider{err: errors.New("network down")}
	l := NewLoader("MWK", p, nil, time.Second, &core.NopLogger{})
	l.Start(context.Background())
	waitDone(t, l)

	table, loading := l.Current()
	assert.False(t, loading)
	assert.False(t, table.Complete())
	assert.Equal(t, []string{"MWK"}, table.Currencies())
}

func TestNewLoader(t *testing.T) {
	assert.Panics(t, func() { NewLoader("MWK", nil, nil, time.Second, &core.NopLogger{}) })
	assert.Panics(t, func() { NewLoader("MWK", DefaultStaticRates, nil, time.Second, nil) })

	unavailable := ProviderFunc(func(context.Context, string) (map[string]float64, error) {
		return nil, ErrUnavailable
	})
	var l *Loader
	require.NotPanics(t, func() { l = NewLoader("MWK", unavailable, nil, time.Second, &core.NopLogger{}) })
	l.Start(context.Background())
	waitDone(t, l)

	table, loading := l.Current()
	assert.False(t, loading)
	assert.False(t, table.Complete())
}

func TestLoader_CacheFirst(t *testing.T) {
	p := &blockingProvider{err: errors.New("must not be called")}
	cache := &memCache{rates: map[string]map[string]float64{"MWK": {"MWK": 1, "GBP": 0.00046}}}
	l := NewLoader("MWK", p, cache, time.Second, &core.NopLogger{})
	l.Start(context.Background())
	waitDone(t, l)

	table, _ := l.Current()
	assert.True(t, table.Complete())
	assert.Equal(t, []string{"GBP", "MWK"}, table.Currencies())
	assert.Zero(t, p.calls)
}

func TestLoader_CacheErrorFallsBackToProvider(t *testing.T) {
	p := &blockingProvider{rates: map[string]float64{"USD": 0.00058}}
	cache := &memCache{err: errors.New("redis down")}
	l := NewLoader("MWK", p, cache, 0, &core.NopLogger{})
	l.Start(context.Background())
	waitDone(t, l)

	table, loading := l.Current()
	assert.False(t, loading)
	assert.True(t, table.Complete())
	assert.Equal(t, 1, p.calls)
}
