package ratesvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

// ExchangeRateAPI fetches rates from the exchangerate-api.com v6 API.
type ExchangeRateAPI struct {
	baseURL string
	apiKey  string
	client  *rest.Client
}

var _ Provider = (*ExchangeRateAPI)(nil)

type latestResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

func NewExchangeRateAPI(baseURL, apiKey string, timeout time.Duration) *ExchangeRateAPI {
	return &ExchangeRateAPI{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

func (p *ExchangeRateAPI) latestURL(base string) string {
	return p.baseURL + "/v6/" + url.PathEscape(p.apiKey) + "/latest/" + url.PathEscape(strings.ToUpper(strings.TrimSpace(base)))
}

func (p *ExchangeRateAPI) Fetch(ctx context.Context, base string) (map[string]float64, error) {
	req, err := rest.BuildRequestObject(rest.Request{
		Method:  rest.Get,
		BaseURL: p.latestURL(base),
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "building exchange rates request")
	}
	httpRes, err := p.client.MakeRequest(req.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "requesting exchange rates")
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return nil, errors.Wrap(err, "reading exchange rates")
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.Errorf("exchange rates: unexpected status %d", res.StatusCode)
	}

	var body latestResponse
	if err := json.Unmarshal([]byte(res.Body), &body); err != nil {
		return nil, errors.Wrap(err, "decoding exchange rates")
	}
	if body.Result != "success" {
		return nil, errors.Errorf("exchange rates: result %q (%s)", body.Result, body.ErrorType)
	}
	if len(body.ConversionRates) == 0 {
		return nil, errors.Wrap(ErrUnavailable, "empty conversion rates")
	}
	return body.ConversionRates, nil
}
