package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core/curriculum"
	"github.com/trezcool/tutorhub/core/tutor"
)

// publicApi serves the public site: archived records are never shown.
type publicApi struct {
	tutorSvc      *tutor.Service
	curriculumSvc *curriculum.Service
	rates         RatesSource
}

func registerPublicAPI(g *echo.Group, tutorSvc *tutor.Service, curriculumSvc *curriculum.Service, rates RatesSource) {
	api := publicApi{tutorSvc: tutorSvc, curriculumSvc: curriculumSvc, rates: rates}

	g.GET("/tutors", api.tutors)
	g.GET("/tutors/:id", api.tutor)
	g.GET("/curriculums", api.curriculums)
	g.GET("/curriculums/:id/subjects", api.subjects)
}

func (api *publicApi) tutors(ctx echo.Context) error {
	tutors, err := api.tutorSvc.QueryActive(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying tutors")
	}
	if tutors == nil {
		tutors = []tutor.Tutor{}
	}
	return ctx.JSON(http.StatusOK, tutors)
}

func (api *publicApi) tutor(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	t, err := api.tutorSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting tutor")
	}
	if t.Archived {
		return tutor.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *publicApi) curriculums(ctx echo.Context) error {
	table, loading := api.rates.Current()
	currency := ctx.QueryParam("currency")
	if loading {
		currency = ""
	}
	priced, err := api.curriculumSvc.QueryPriced(ctx.Request().Context(), table, currency)
	if err != nil {
		return errors.Wrap(err, "querying priced curriculums")
	}
	return ctx.JSON(http.StatusOK, priced)
}

func (api *publicApi) subjects(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.curriculumSvc.ActiveSubjects(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []curriculum.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}
