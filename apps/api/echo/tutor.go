package echoapi

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core/tutor"
)

const photoField = "photo"

type tutorApi struct {
	svc      *tutor.Service
	validate *validator.Validate
}

func registerAdminTutorAPI(g *echo.Group, svc *tutor.Service, validate *validator.Validate) {
	api := tutorApi{svc: svc, validate: validate}

	tg := g.Group("/tutors")
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
	tg.POST("/:id/archive", api.archive)
	tg.POST("/:id/unarchive", api.unarchive)
}

// photoFile holds the optional `photo` part of a multipart request.
type photoFile struct {
	file  multipart.File
	photo *tutor.Photo
}

func (pf *photoFile) Close() {
	if pf.file != nil {
		_ = pf.file.Close()
	}
}

// formPhoto opens the uploaded photo, if any. The content type is sniffed from the content, not trusted from the client.
func formPhoto(ctx echo.Context) (*photoFile, error) {
	pf := new(photoFile)
	if !strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return pf, nil
	}
	fh, err := ctx.FormFile(photoField)
	if err != nil {
		if err == http.ErrMissingFile {
			return pf, nil
		}
		return nil, errors.Wrap(err, "reading photo")
	}
	file, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening photo")
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		_ = file.Close()
		return nil, errors.Wrap(err, "sniffing photo")
	}
	head = head[:n]

	pf.file = file
	pf.photo = &tutor.Photo{
		Filename:    fh.Filename,
		ContentType: http.DetectContentType(head),
		Size:        fh.Size,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	}
	return pf, nil
}

// Handlers

func (api *tutorApi) query(ctx echo.Context) error {
	filter := new(tutor.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []tutor.Tutor{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	tutors, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying tutors")
	}
	if tutors == nil {
		tutors = []tutor.Tutor{}
	}
	return ctx.JSON(http.StatusOK, tutors)
}

func (api *tutorApi) create(ctx echo.Context) error {
	var data tutor.NewTutor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTutor")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pf, err := formPhoto(ctx)
	if err != nil {
		return err
	}
	defer pf.Close()

	t, err := api.svc.Create(ctx.Request().Context(), data, pf.photo)
	if err != nil {
		return errors.Wrap(err, "creating tutor")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *tutorApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting tutor")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tutorApi) update(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	orig, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting tutor")
	}

	var data tutor.UpdateTutor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTutor")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	pf, err := formPhoto(ctx)
	if err != nil {
		return err
	}
	defer pf.Close()

	t, err := api.svc.Update(ctx.Request().Context(), id, data, pf.photo)
	if err != nil {
		return errors.Wrap(err, "updating tutor")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tutorApi) destroy(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting tutor")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *tutorApi) archive(ctx echo.Context) error {
	return api.setArchived(ctx, true)
}

func (api *tutorApi) unarchive(ctx echo.Context) error {
	return api.setArchived(ctx, false)
}

func (api *tutorApi) setArchived(ctx echo.Context, archived bool) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	var t tutor.Tutor
	if archived {
		t, err = api.svc.Archive(ctx.Request().Context(), id)
	} else {
		t, err = api.svc.Unarchive(ctx.Request().Context(), id)
	}
	if err != nil {
		return errors.Wrap(err, "archiving tutor")
	}
	return ctx.JSON(http.StatusOK, t)
}
