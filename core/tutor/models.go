package tutor

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tutorhub/core"
)

type Tutor struct {
	ID             int       `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Qualification  string    `json:"qualification" db:"qualification"`
	Bio            string    `json:"bio" db:"bio"`
	ProfilePicture string    `json:"profile_picture" db:"profile_picture"` // public URL
	Archived       bool      `json:"archived" db:"archived"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewTutor contains information needed to create a new Tutor.
type NewTutor struct {
	Name          string `json:"name" form:"name" validate:"required,max=255"`
	Qualification string `json:"qualification" form:"qualification" validate:"max=255"`
	Bio           string `json:"bio" form:"bio"`
}

func (nt *NewTutor) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Qualification = core.CleanString(nt.Qualification)
	nt.Bio = core.CleanString(nt.Bio)
	return validate.Struct(nt)
}

// UpdateTutor defines what information may be provided to modify an existing Tutor.
// Blank fields keep their current value.
type UpdateTutor struct {
	Name          string  `json:"name" form:"name" validate:"max=255"`
	Qualification *string `json:"qualification" form:"qualification" validate:"omitempty,max=255"`
	Bio           *string `json:"bio" form:"bio"`
}

func (ut *UpdateTutor) Validate(orig Tutor, validate *validator.Validate) error {
	if name := core.CleanString(ut.Name); name != "" {
		ut.Name = name
	} else {
		ut.Name = orig.Name
	}
	if ut.Qualification != nil {
		q := core.CleanString(*ut.Qualification)
		ut.Qualification = &q
	}
	if ut.Bio != nil {
		b := core.CleanString(*ut.Bio)
		ut.Bio = &b
	}
	return validate.Struct(ut)
}

type QueryFilter struct {
	Search string      `query:"search"`
	Status core.Status `query:"status"`
	Limit  int         `query:"-"` // 0: no limit
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
	"id":            "id",
	"name":          "LOWER(name)",
	"qualification": "LOWER(qualification)",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}
