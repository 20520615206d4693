package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/curriculum"
	"github.com/trezcool/tutorhub/core/tutor"
)

const recentTutorsCount = 5

type DashboardResponse struct {
	Tutors         int           `json:"tutors"`
	Curriculums    int           `json:"curriculums"`
	Subjects       int           `json:"subjects"`
	ArchivedTutors int           `json:"archived_tutors"`
	RecentTutors   []tutor.Tutor `json:"recent_tutors"`
}

type dashboardApi struct {
	tutorSvc      *tutor.Service
	curriculumSvc *curriculum.Service
}

func registerDashboardAPI(g *echo.Group, tutorSvc *tutor.Service, curriculumSvc *curriculum.Service) {
	api := dashboardApi{tutorSvc: tutorSvc, curriculumSvc: curriculumSvc}
	g.GET("/dashboard", api.stats)
}

func (api *dashboardApi) stats(ctx echo.Context) error {
	var resp DashboardResponse
	g, gctx := errgroup.WithContext(ctx.Request().Context())

	g.Go(func() (err error) {
		resp.Tutors, err = api.tutorSvc.Count(gctx, tutor.QueryFilter{})
		return errors.Wrap(err, "counting tutors")
	})
	g.Go(func() (err error) {
		resp.ArchivedTutors, err = api.tutorSvc.Count(gctx, tutor.QueryFilter{Status: core.StatusArchived})
		return errors.Wrap(err, "counting archived tutors")
	})
	g.Go(func() (err error) {
		resp.Curriculums, err = api.curriculumSvc.Count(gctx, curriculum.QueryFilter{})
		return errors.Wrap(err, "counting curriculums")
	})
	g.Go(func() (err error) {
		resp.Subjects, err = api.curriculumSvc.CountSubjects(gctx)
		return errors.Wrap(err, "counting subjects")
	})
	g.Go(func() (err error) {
		resp.RecentTutors, err = api.tutorSvc.Recent(gctx, recentTutorsCount)
		return errors.Wrap(err, "getting recent tutors")
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if resp.RecentTutors == nil {
		resp.RecentTutors = []tutor.Tutor{}
	}
	return ctx.JSON(http.StatusOK, resp)
}
