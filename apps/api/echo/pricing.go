package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core/pricing"
)

type pricingApi struct {
	rates RatesSource
}

func registerPricingAPI(g *echo.Group, rates RatesSource) {
	api := pricingApi{rates: rates}

	pg := g.Group("/pricing")
	pg.GET("/rates", api.rateTable)
	pg.GET("/quote", api.quote)
	pg.POST("/quote", api.quote)
}

// quantityField holds a raw word or page count: a JSON number or string, or a query value.
// It is parsed leniently by pricing.ParseQuantity.
type quantityField string

func (q *quantityField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*q = quantityField(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*q = ""
		return nil
	}
	*q = quantityField(data)
	return nil
}

type QuoteRequest struct {
	Words    quantityField `json:"words" query:"words"`
	Pages    quantityField `json:"pages" query:"pages"`
	Currency string        `json:"currency" query:"currency"`
	Type     string        `json:"type" query:"type"`
}

type QuoteResponse struct {
	Type pricing.AssignmentType `json:"type"`
	pricing.Quote
	RatesLoading bool `json:"rates_loading"`
}

type RatesResponse struct {
	Base       string             `json:"base"`
	Currencies []string           `json:"currencies"`
	Rates      map[string]float64 `json:"rates"`
	Complete   bool               `json:"complete"`
	Loading    bool               `json:"loading"`
}

// Handlers

func (api *pricingApi) rateTable(ctx echo.Context) error {
	table, loading := api.rates.Current()
	return ctx.JSON(http.StatusOK, RatesResponse{
		Base:       table.Base(),
		Currencies: table.Currencies(),
		Rates:      table.Rates(),
		Complete:   table.Complete(),
		Loading:    loading,
	})
}

func (api *pricingApi) quote(ctx echo.Context) error {
	var data QuoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuoteRequest")
	}

	typ, ok := pricing.ParseAssignmentType(data.Type)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "type must be one of: assignment, report")
	}

	table, loading := api.rates.Current()
	currency := data.Currency
	if loading {
		currency = "" // base currency only until the rates resolve
	}
	qty := pricing.ParseQuantity(string(data.Words), string(data.Pages))
	return ctx.JSON(http.StatusOK, QuoteResponse{
		Type:         typ,
		Quote:        pricing.NewQuote(qty, table, currency),
		RatesLoading: loading,
	})
}
