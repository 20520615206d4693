package inmemdb

import (
	"cmp"
	"context"
	"time"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/curriculum"
)

var curriculumFields = map[string]comparator[curriculum.Curriculum]{
	"id":         func(a, b curriculum.Curriculum) int { return cmp.Compare(a.ID, b.ID) },
	"name":       func(a, b curriculum.Curriculum) int { return compareFold(a.Name, b.Name) },
	"price":      func(a, b curriculum.Curriculum) int { return a.Price.Cmp(b.Price) },
	"created_at": func(a, b curriculum.Curriculum) int { return compareTime(a.CreatedAt, b.CreatedAt) },
	"updated_at": func(a, b curriculum.Curriculum) int { return compareTime(a.UpdatedAt, b.UpdatedAt) },
}

type curriculumRepository struct {
	db *curriculumTable
}

var _ curriculum.Repository = (*curriculumRepository)(nil) // interface compliance check

func NewCurriculumRepository(db *DB) *curriculumRepository {
	return &curriculumRepository{db: db.curriculum}
}

func (repo *curriculumRepository) filter(filter curriculum.QueryFilter) []curriculum.Curriculum {
	curriculums := make([]curriculum.Curriculum, 0)
	for _, c := range repo.db.table {
		if matches(filter.Search, c.Name, c.Description.String) && filter.Status.Matches(c.Archived) {
			curriculums = append(curriculums, *c)
		}
	}
	return curriculums
}

func (repo *curriculumRepository) CreateCurriculum(_ context.Context, c curriculum.Curriculum) (curriculum.Curriculum, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	c.ID = repo.db.pk
	stored := c
	repo.db.table[c.ID] = &stored
	return c, nil
}

func (repo *curriculumRepository) QueryCurriculums(_ context.Context, filter curriculum.QueryFilter, ordering ...core.DBOrdering) ([]curriculum.Curriculum, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	curriculums := repo.filter(filter)
	sortRecords(curriculums, ordering, curriculumFields, core.DBOrdering{Field: "id"})
	return curriculums, nil
}

func (repo *curriculumRepository) GetCurriculumByID(_ context.Context, id int) (curriculum.Curriculum, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return curriculum.Curriculum{}, curriculum.ErrNotFound
}

func (repo *curriculumRepository) UpdateCurriculum(_ context.Context, c curriculum.Curriculum) (curriculum.Curriculum, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[c.ID]
	if !ok {
		return curriculum.Curriculum{}, curriculum.ErrNotFound
	}
	c.CreatedAt = orig.CreatedAt
	*orig = c
	return c, nil
}

func (repo *curriculumRepository) SetCurriculumArchived(_ context.Context, id int, archived bool, updatedAt time.Time) (curriculum.Curriculum, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[id]
	if !ok {
		return curriculum.Curriculum{}, curriculum.ErrNotFound
	}
	c.Archived = archived
	c.UpdatedAt = updatedAt
	return *c, nil
}

func (repo *curriculumRepository) DeleteCurriculum(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return curriculum.ErrNotFound
	}
	delete(repo.db.table, id)
	for sid, s := range repo.db.subjects {
		if s.CurriculumID == id {
			delete(repo.db.subjects, sid)
		}
	}
	return nil
}

func (repo *curriculumRepository) CountCurriculums(_ context.Context, filter curriculum.QueryFilter) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.filter(filter)), nil
}

func (repo *curriculumRepository) CreateSubject(_ context.Context, s curriculum.Subject) (curriculum.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.CurriculumID]; !ok {
		return curriculum.Subject{}, curriculum.ErrNotFound
	}
	repo.db.subjectPK++
	s.ID = repo.db.subjectPK
	stored := s
	repo.db.subjects[s.ID] = &stored
	return s, nil
}

func (repo *curriculumRepository) QuerySubjects(_ context.Context, curriculumIDs ...int) ([]curriculum.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[int]bool, len(curriculumIDs))
	for _, id := range curriculumIDs {
		wanted[id] = true
	}
	subjects := make([]curriculum.Subject, 0)
	for _, s := range repo.db.subjects {
		if len(wanted) == 0 || wanted[s.CurriculumID] {
			subjects = append(subjects, *s)
		}
	}
	sortRecords(subjects, []core.DBOrdering{{Field: "name", Ascending: true}, {Field: "id", Ascending: true}}, map[string]comparator[curriculum.Subject]{
		"name": func(a, b curriculum.Subject) int { return cmp.Compare(a.Name, b.Name) },
		"id":   func(a, b curriculum.Subject) int { return cmp.Compare(a.ID, b.ID) },
	})
	return subjects, nil
}

func (repo *curriculumRepository) GetSubjectByID(_ context.Context, id int) (curriculum.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return *s, nil
	}
	return curriculum.Subject{}, curriculum.ErrSubjectNotFound
}

func (repo *curriculumRepository) UpdateSubject(_ context.Context, s curriculum.Subject) (curriculum.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.subjects[s.ID]
	if !ok {
		return curriculum.Subject{}, curriculum.ErrSubjectNotFound
	}
	orig.Name = s.Name
	return *orig, nil
}

func (repo *curriculumRepository) DeleteSubject(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return curriculum.ErrSubjectNotFound
	}
	delete(repo.db.subjects, id)
	return nil
}

func (repo *curriculumRepository) CountSubjects(_ context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.subjects), nil
}
