package curriculum

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/pricing"
)

var (
	// errors
	ErrNotFound        = errors.New("curriculum not found")
	ErrSubjectNotFound = errors.New("subject not found")
)

type (
	Repository interface {
		CreateCurriculum(ctx context.Context, c Curriculum) (Curriculum, error)
		// QueryCurriculums applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Curriculum.Name or Curriculum.Description.
		QueryCurriculums(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Curriculum, error)
		GetCurriculumByID(ctx context.Context, id int) (Curriculum, error)
		UpdateCurriculum(ctx context.Context, c Curriculum) (Curriculum, error)
		SetCurriculumArchived(ctx context.Context, id int, archived bool, updatedAt time.Time) (Curriculum, error)
		// DeleteCurriculum also deletes its subjects.
		DeleteCurriculum(ctx context.Context, id int) error
		CountCurriculums(ctx context.Context, filter QueryFilter) (int, error)

		CreateSubject(ctx context.Context, s Subject) (Subject, error)
		// QuerySubjects returns the subjects of the given curriculums (all subjects when none given), by name.
		QuerySubjects(ctx context.Context, curriculumIDs ...int) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
		UpdateSubject(ctx context.Context, s Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id int) error
		CountSubjects(ctx context.Context) (int, error)
	}

	Service struct {
		repo   Repository
		events core.EventPublisher
	}
)

func NewService(repo Repository, events core.EventPublisher) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(events, "events"),
	).CheckAndPanic()

	return &Service{repo: repo, events: events}
}

func (svc *Service) Create(ctx context.Context, nc NewCurriculum) (Curriculum, error) {
	now := time.Now().UTC()
	c, err := svc.repo.CreateCurriculum(ctx, Curriculum{
		Name:        nc.Name,
		Description: core.NullString(nc.Description),
		Price:       nc.price(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Curriculum{}, errors.Wrap(err, "creating curriculum")
	}
	svc.events.Publish(ctx, core.NewEvent(ctx, "curriculum", core.ActionCreated, c.ID, c))
	return c, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Curriculum, error) {
	filter.Clean()
	return svc.repo.QueryCurriculums(ctx, filter, ordering...)
}

// QueryPriced lists the active curriculums with their subjects, prices converted into `currency`.
func (svc *Service) QueryPriced(ctx context.Context, table pricing.RateTable, currency string) ([]PricedCurriculum, error) {
	curriculums, err := svc.repo.QueryCurriculums(ctx, QueryFilter{Status: core.StatusActive}, core.DBOrdering{Field: "name", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying curriculums")
	}
	if len(curriculums) == 0 {
		return []PricedCurriculum{}, nil
	}

	ids := make([]int, 0, len(curriculums))
	for _, c := range curriculums {
		ids = append(ids, c.ID)
	}
	subjects, err := svc.repo.QuerySubjects(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	byCurriculum := make(map[int][]Subject, len(curriculums))
	for _, s := range subjects {
		byCurriculum[s.CurriculumID] = append(byCurriculum[s.CurriculumID], s)
	}

	priced := make([]PricedCurriculum, 0, len(curriculums))
	for _, c := range curriculums {
		priced = append(priced, c.Priced(table, currency, byCurriculum[c.ID]))
	}
	return priced, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Curriculum, error) {
	return svc.repo.GetCurriculumByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateCurriculum) (Curriculum, error) {
	c, err := svc.repo.GetCurriculumByID(ctx, id)
	if err != nil {
		return Curriculum{}, err
	}
	c.Name = uc.Name
	if uc.Description != nil {
		c.Description = core.NullString(*uc.Description)
	}
	if uc.Price != nil {
		c.Price = *uc.Price
	}
	c.UpdatedAt = time.Now().UTC()

	c, err = svc.repo.UpdateCurriculum(ctx, c)
	if err != nil {
		return Curriculum{}, errors.Wrap(err, "updating curriculum")
	}
	svc.events.Publish(ctx, core.NewEvent(ctx, "curriculum", core.ActionUpdated, c.ID, c))
	return c, nil
}

func (svc *Service) Archive(ctx context.Context, id int) (Curriculum, error) {
	return svc.setArchived(ctx, id, true)
}

func (svc *Service) Unarchive(ctx context.Context, id int) (Curriculum, error) {
	return svc.setArchived(ctx, id, false)
}

func (svc *Service) setArchived(ctx context.Context, id int, archived bool) (Curriculum, error) {
	c, err := svc.repo.SetCurriculumArchived(ctx, id, archived, time.Now().UTC())
	if err != nil {
		return Curriculum{}, err
	}
	action := core.ActionArchived
	if !archived {
		action = core.ActionUnarchived
	}
	svc.events.Publish(ctx, core.NewEvent(ctx, "curriculum", action, c.ID, nil))
	return c, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if err := svc.repo.DeleteCurriculum(ctx, id); err != nil {
		return err
	}
	svc.events.Publish(ctx, core.NewEvent(ctx, "curriculum", core.ActionDeleted, id, nil))
	return nil
}

func (svc *Service) Count(ctx context.Context, filter QueryFilter) (int, error) {
	filter.Clean()
	return svc.repo.CountCurriculums(ctx, filter)
}

// Subjects

// CreateSubject adds a subject to an existing curriculum.
func (svc *Service) CreateSubject(ctx context.Context, curriculumID int, ns NewSubject) (Subject, error) {
	if _, err := svc.repo.GetCurriculumByID(ctx, curriculumID); err != nil {
		return Subject{}, err
	}
	s, err := svc.repo.CreateSubject(ctx, Subject{Name: ns.Name, CurriculumID: curriculumID})
	if err != nil {
		return Subject{}, errors.Wrap(err, "creating subject")
	}
	svc.events.Publish(ctx, core.NewEvent(ctx, "subject", core.ActionCreated, s.ID, s))
	return s, nil
}

func (svc *Service) Subjects(ctx context.Context, curriculumID int) ([]Subject, error) {
	if _, err := svc.repo.GetCurriculumByID(ctx, curriculumID); err != nil {
		return nil, err
	}
	return svc.repo.QuerySubjects(ctx, curriculumID)
}

// ActiveSubjects lists the subjects of a curriculum shown on the public site.
func (svc *Service) ActiveSubjects(ctx context.Context, curriculumID int) ([]Subject, error) {
	c, err := svc.repo.GetCurriculumByID(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if c.Archived {
		return nil, ErrNotFound
	}
	return svc.repo.QuerySubjects(ctx, curriculumID)
}

func (svc *Service) GetSubject(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) UpdateSubject(ctx context.Context, id int, ns NewSubject) (Subject, error) {
	s, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	s.Name = ns.Name
	s, err = svc.repo.UpdateSubject(ctx, s)
	if err != nil {
		return Subject{}, errors.Wrap(err, "updating subject")
	}
	svc.events.Publish(ctx, core.NewEvent(ctx, "subject", core.ActionUpdated, s.ID, s))
	return s, nil
}

func (svc *Service) DeleteSubject(ctx context.Context, id int) error {
	if err := svc.repo.DeleteSubject(ctx, id); err != nil {
		return err
	}
	svc.events.Publish(ctx, core.NewEvent(ctx, "subject", core.ActionDeleted, id, nil))
	return nil
}

func (svc *Service) CountSubjects(ctx context.Context) (int, error) {
	return svc.repo.CountSubjects(ctx)
}
