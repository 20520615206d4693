package curriculum

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/pricing"
)

type Curriculum struct {
	ID          int             `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description null.String     `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"` // in pricing.BaseCurrency
	Archived    bool            `json:"archived" db:"archived"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"` // UTC
}

type Subject struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	CurriculumID int    `json:"curriculum_id" db:"curriculum_id"`
}

// PricedCurriculum is a public view of a Curriculum, its price converted to a display currency.
type PricedCurriculum struct {
	Curriculum
	Subjects        []Subject       `json:"subjects"`
	DisplayCurrency string          `json:"display_currency"`
	DisplayPrice    decimal.Decimal `json:"display_price"`
}

// NewCurriculum contains information needed to create a new Curriculum.
type NewCurriculum struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

func (nc *NewCurriculum) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	if err := validate.Struct(nc); err != nil {
		return err
	}
	return validatePrice(nc.Price)
}

func (nc NewCurriculum) price() decimal.Decimal {
	if nc.Price == nil {
		return decimal.Zero
	}
	return *nc.Price
}

// UpdateCurriculum defines what information may be provided to modify an existing Curriculum.
// Nil fields keep their current value; a blank description clears it.
type UpdateCurriculum struct {
	Name        string           `json:"name" validate:"max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

func (uc *UpdateCurriculum) Validate(orig Curriculum, validate *validator.Validate) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if err := validate.Struct(uc); err != nil {
		return err
	}
	return validatePrice(uc.Price)
}

func validatePrice(price *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "price", Error: "price cannot be negative"})
	}
	return nil
}

type NewSubject struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type QueryFilter struct {
	Search string      `query:"search"`
	Status core.Status `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && (qf.Status == "" || qf.Status == core.StatusAll)
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = qf.Status.Clean()
}

// Orderable maps API ordering fields to columns.
var Orderable = map[string]string{
	"id":         "id",
	"name":       "LOWER(name)",
	"price":      "price",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// Priced converts the curriculum price into `currency` with `table`.
func (c Curriculum) Priced(table pricing.RateTable, currency string, subjects []Subject) PricedCurriculum {
	currency = strings.ToUpper(core.CleanString(currency))
	if currency == "" {
		currency = table.Base()
	}
	if subjects == nil {
		subjects = []Subject{}
	}
	return PricedCurriculum{
		Curriculum:      c,
		Subjects:        subjects,
		DisplayCurrency: currency,
		DisplayPrice:    pricing.Convert(c.Price, table, currency),
	}
}
