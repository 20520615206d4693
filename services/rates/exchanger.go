package ratesvc

import (
	"context"
	"strings"

	proto "github.com/lynxbites/proto-grpc/proto"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Exchanger fetches rates from a gw-exchanger gRPC service.
// The service quotes every currency against USD.
type Exchanger struct {
	conn   *grpc.ClientConn
	client proto.ExchangeServiceClient
}

var _ Provider = (*Exchanger)(nil)

func NewExchanger(addr string, opts ...grpc.DialOption) (*Exchanger, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating exchanger client")
	}
	return &Exchanger{conn: conn, client: proto.NewExchangeServiceClient(conn)}, nil
}

func (p *Exchanger) Fetch(ctx context.Context, base string) (map[string]float64, error) {
	res, err := p.client.GetExchangeRates(ctx, &proto.Empty{})
	if err != nil {
		return nil, errors.Wrap(err, "requesting exchanger rates")
	}
	return rebase(res.GetRates(), base)
}

func (p *Exchanger) Close() error {
	return p.conn.Close()
}

// rebase turns rates quoted against any currency into rates quoted against `base`.
func rebase(rates map[string]float64, base string) (map[string]float64, error) {
	base = strings.ToUpper(base)
	baseRate, ok := rates[base]
	if !ok || baseRate <= 0 {
		return nil, errors.Wrapf(ErrUnavailable, "no %s rate", base)
	}
	out := make(map[string]float64, len(rates))
	for code, rate := range rates {
		out[strings.ToUpper(code)] = rate / baseRate
	}
	out[base] = 1
	return out, nil
}
