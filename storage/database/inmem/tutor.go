package inmemdb

import (
	"cmp"
	"context"
	"time"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/tutor"
)

var tutorFields = map[string]comparator[tutor.Tutor]{
	"id":            func(a, b tutor.Tutor) int { return cmp.Compare(a.ID, b.ID) },
	"name":          func(a, b tutor.Tutor) int { return compareFold(a.Name, b.Name) },
	"qualification": func(a, b tutor.Tutor) int { return compareFold(a.Qualification, b.Qualification) },
	"created_at":    func(a, b tutor.Tutor) int { return compareTime(a.CreatedAt, b.CreatedAt) },
	"updated_at":    func(a, b tutor.Tutor) int { return compareTime(a.UpdatedAt, b.UpdatedAt) },
}

type tutorRepository struct {
	db *tutorTable
}

var _ tutor.Repository = (*tutorRepository)(nil) // interface compliance check

func NewTutorRepository(db *DB) *tutorRepository {
	return &tutorRepository{db: db.tutor}
}

func (repo *tutorRepository) filter(filter tutor.QueryFilter) []tutor.Tutor {
	tutors := make([]tutor.Tutor, 0)
	for _, t := range repo.db.table {
		if matches(filter.Search, t.Name, t.Qualification) && filter.Status.Matches(t.Archived) {
			tutors = append(tutors, *t)
		}
	}
	return tutors
}

func (repo *tutorRepository) CreateTutor(_ context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	t.ID = repo.db.pk
	stored := t
	repo.db.table[t.ID] = &stored
	return t, nil
}

func (repo *tutorRepository) QueryTutors(_ context.Context, filter tutor.QueryFilter, ordering ...core.DBOrdering) ([]tutor.Tutor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tutors := repo.filter(filter)
	sortRecords(tutors, ordering, tutorFields, core.DBOrdering{Field: "id"})
	if filter.Limit > 0 && len(tutors) > filter.Limit {
		tutors = tutors[:filter.Limit]
	}
	return tutors, nil
}

func (repo *tutorRepository) GetTutorByID(_ context.Context, id int) (tutor.Tutor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return tutor.Tutor{}, tutor.ErrNotFound
}

func (repo *tutorRepository) UpdateTutor(_ context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[t.ID]
	if !ok {
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	t.CreatedAt = orig.CreatedAt
	*orig = t
	return t, nil
}

func (repo *tutorRepository) SetTutorArchived(_ context.Context, id int, archived bool, updatedAt time.Time) (tutor.Tutor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.table[id]
	if !ok {
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	t.Archived = archived
	t.UpdatedAt = updatedAt
	return *t, nil
}

func (repo *tutorRepository) DeleteTutor(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return tutor.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *tutorRepository) CountTutors(_ context.Context, filter tutor.QueryFilter) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.filter(filter)), nil
}
