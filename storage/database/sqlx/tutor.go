package sqlxrepos

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/tutor"
)

const tutorColumns = `id, name, qualification, bio, profile_picture, archived, created_at, updated_at`

type tutorRepository struct {
	exec core.DBExecutor
}

var _ tutor.Repository = (*tutorRepository)(nil) // interface compliance check

func NewTutorRepository(exec core.DBExecutor) *tutorRepository {
	return &tutorRepository{exec: exec}
}

func tutorWhere(filter tutor.QueryFilter) *where {
	w := new(where)
	// tutors with Name or Qualification matching the search keyword
	w.search(filter.Search, "name", "qualification")
	w.status(filter.Status)
	return w
}

func (repo tutorRepository) CreateTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	q := repo.exec.Rebind(`INSERT INTO tutor (name, qualification, bio, profile_picture, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := repo.exec.GetContext(ctx, &t.ID, q,
		t.Name, t.Qualification, t.Bio, t.ProfilePicture, t.Archived, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	if err != nil {
		return tutor.Tutor{}, errors.Wrap(err, "inserting tutor")
	}
	return t, nil
}

func (repo tutorRepository) QueryTutors(ctx context.Context, filter tutor.QueryFilter, ordering ...core.DBOrdering) ([]tutor.Tutor, error) {
	w := tutorWhere(filter)
	q := `SELECT ` + tutorColumns + ` FROM tutor` + w.String() +
		` ORDER BY ` + core.OrderByClause(ordering, tutor.Orderable, defaultOrdering)
	if filter.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}

	tutors := make([]tutor.Tutor, 0)
	if err := repo.exec.SelectContext(ctx, &tutors, repo.exec.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying tutors")
	}
	return tutors, nil
}

func (repo tutorRepository) GetTutorByID(ctx context.Context, id int) (tutor.Tutor, error) {
	var t tutor.Tutor
	q := repo.exec.Rebind(`SELECT ` + tutorColumns + ` FROM tutor WHERE id = ?`)
	if err := repo.exec.GetContext(ctx, &t, q, id); err != nil {
		return tutor.Tutor{}, trapNoRowsErr(err, tutor.ErrNotFound, "finding tutor")
	}
	return t, nil
}

func (repo tutorRepository) UpdateTutor(ctx context.Context, t tutor.Tutor) (tutor.Tutor, error) {
	q := repo.exec.Rebind(`UPDATE tutor SET name = ?, qualification = ?, bio = ?, profile_picture = ?, archived = ?, updated_at = ?
		WHERE id = ?`)
	res, err := repo.exec.ExecContext(ctx, q,
		t.Name, t.Qualification, t.Bio, t.ProfilePicture, t.Archived, t.UpdatedAt.UTC(), t.ID)
	if err != nil {
		return tutor.Tutor{}, errors.Wrap(err, "updating tutor")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	return repo.GetTutorByID(ctx, t.ID)
}

func (repo tutorRepository) SetTutorArchived(ctx context.Context, id int, archived bool, updatedAt time.Time) (tutor.Tutor, error) {
	q := repo.exec.Rebind(`UPDATE tutor SET archived = ?, updated_at = ? WHERE id = ?`)
	res, err := repo.exec.ExecContext(ctx, q, archived, updatedAt.UTC(), id)
	if err != nil {
		return tutor.Tutor{}, errors.Wrap(err, "archiving tutor")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	return repo.GetTutorByID(ctx, id)
}

func (repo tutorRepository) DeleteTutor(ctx context.Context, id int) error {
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind(`DELETE FROM tutor WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting tutor")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tutor.ErrNotFound
	}
	return nil
}

func (repo tutorRepository) CountTutors(ctx context.Context, filter tutor.QueryFilter) (int, error) {
	w := tutorWhere(filter)
	var n int
	if err := repo.exec.GetContext(ctx, &n, repo.exec.Rebind(`SELECT COUNT(*) FROM tutor`+w.String()), w.args...); err != nil {
		return 0, errors.Wrap(err, "counting tutors")
	}
	return n, nil
}
