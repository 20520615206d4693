package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core/curriculum"
)

type curriculumApi struct {
	svc      *curriculum.Service
	validate *validator.Validate
}

func registerAdminCurriculumAPI(g *echo.Group, svc *curriculum.Service, validate *validator.Validate) {
	api := curriculumApi{svc: svc, validate: validate}

	cg := g.Group("/curriculums")
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.POST("/:id/archive", api.archive)
	cg.POST("/:id/unarchive", api.unarchive)
	cg.GET("/:id/subjects", api.querySubjects)
	cg.POST("/:id/subjects", api.createSubject)

	sg := g.Group("/subjects")
	sg.GET("/:id", api.retrieveSubject)
	sg.PUT("/:id", api.updateSubject)
	sg.DELETE("/:id", api.destroySubject)
}

// Handlers

func (api *curriculumApi) query(ctx echo.Context) error {
	filter := new(curriculum.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []curriculum.Curriculum{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	curriculums, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying curriculums")
	}
	if curriculums == nil {
		curriculums = []curriculum.Curriculum{}
	}
	return ctx.JSON(http.StatusOK, curriculums)
}

func (api *curriculumApi) create(ctx echo.Context) error {
	var data curriculum.NewCurriculum
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCurriculum")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating curriculum")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *curriculumApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting curriculum")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *curriculumApi) update(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	orig, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting curriculum")
	}

	var data curriculum.UpdateCurriculum
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCurriculum")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating curriculum")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *curriculumApi) destroy(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting curriculum")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *curriculumApi) archive(ctx echo.Context) error {
	return api.setArchived(ctx, true)
}

func (api *curriculumApi) unarchive(ctx echo.Context) error {
	return api.setArchived(ctx, false)
}

func (api *curriculumApi) setArchived(ctx echo.Context, archived bool) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	var c curriculum.Curriculum
	if archived {
		c, err = api.svc.Archive(ctx.Request().Context(), id)
	} else {
		c, err = api.svc.Unarchive(ctx.Request().Context(), id)
	}
	if err != nil {
		return errors.Wrap(err, "archiving curriculum")
	}
	return ctx.JSON(http.StatusOK, c)
}

// Subjects

func (api *curriculumApi) querySubjects(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.svc.Subjects(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []curriculum.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *curriculumApi) createSubject(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	var data curriculum.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.CreateSubject(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *curriculumApi) retrieveSubject(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	s, err := api.svc.GetSubject(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting subject")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *curriculumApi) updateSubject(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	var data curriculum.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.UpdateSubject(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *curriculumApi) destroySubject(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSubject(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}
