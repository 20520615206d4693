package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/curriculum"
)

const (
	curriculumColumns = `id, name, description, price, archived, created_at, updated_at`
	subjectColumns    = `id, name, curriculum_id`
)

type curriculumRepository struct {
	exec core.DBExecutor
}

var _ curriculum.Repository = (*curriculumRepository)(nil) // interface compliance check

func NewCurriculumRepository(exec core.DBExecutor) *curriculumRepository {
	return &curriculumRepository{exec: exec}
}

func curriculumWhere(filter curriculum.QueryFilter) *where {
	w := new(where)
	// curriculums with Name or Description matching the search keyword
	w.search(filter.Search, "name", "COALESCE(description, '')")
	w.status(filter.Status)
	return w
}

func (repo curriculumRepository) CreateCurriculum(ctx context.Context, c curriculum.Curriculum) (curriculum.Curriculum, error) {
	q := repo.exec.Rebind(`INSERT INTO curriculum (name, description, price, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := repo.exec.GetContext(ctx, &c.ID, q,
		c.Name, c.Description, c.Price, c.Archived, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if err != nil {
		return curriculum.Curriculum{}, errors.Wrap(err, "inserting curriculum")
	}
	return c, nil
}

func (repo curriculumRepository) QueryCurriculums(ctx context.Context, filter curriculum.QueryFilter, ordering ...core.DBOrdering) ([]curriculum.Curriculum, error) {
	w := curriculumWhere(filter)
	q := `SELECT ` + curriculumColumns + ` FROM curriculum` + w.String() +
		` ORDER BY ` + core.OrderByClause(ordering, curriculum.Orderable, defaultOrdering)

	curriculums := make([]curriculum.Curriculum, 0)
	if err := repo.exec.SelectContext(ctx, &curriculums, repo.exec.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying curriculums")
	}
	return curriculums, nil
}

func (repo curriculumRepository) GetCurriculumByID(ctx context.Context, id int) (curriculum.Curriculum, error) {
	var c curriculum.Curriculum
	q := repo.exec.Rebind(`SELECT ` + curriculumColumns + ` FROM curriculum WHERE id = ?`)
	if err := repo.exec.GetContext(ctx, &c, q, id); err != nil {
		return curriculum.Curriculum{}, trapNoRowsErr(err, curriculum.ErrNotFound, "finding curriculum")
	}
	return c, nil
}

func (repo curriculumRepository) UpdateCurriculum(ctx context.Context, c curriculum.Curriculum) (curriculum.Curriculum, error) {
	q := repo.exec.Rebind(`UPDATE curriculum SET name = ?, description = ?, price = ?, archived = ?, updated_at = ? WHERE id = ?`)
	res, err := repo.exec.ExecContext(ctx, q, c.Name, c.Description, c.Price, c.Archived, c.UpdatedAt.UTC(), c.ID)
	if err != nil {
		return curriculum.Curriculum{}, errors.Wrap(err, "updating curriculum")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return curriculum.Curriculum{}, curriculum.ErrNotFound
	}
	return repo.GetCurriculumByID(ctx, c.ID)
}

func (repo curriculumRepository) SetCurriculumArchived(ctx context.Context, id int, archived bool, updatedAt time.Time) (curriculum.Curriculum, error) {
	q := repo.exec.Rebind(`UPDATE curriculum SET archived = ?, updated_at = ? WHERE id = ?`)
	res, err := repo.exec.ExecContext(ctx, q, archived, updatedAt.UTC(), id)
	if err != nil {
		return curriculum.Curriculum{}, errors.Wrap(err, "archiving curriculum")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return curriculum.Curriculum{}, curriculum.ErrNotFound
	}
	return repo.GetCurriculumByID(ctx, id)
}

// DeleteCurriculum relies on ON DELETE CASCADE to drop the subjects.
func (repo curriculumRepository) DeleteCurriculum(ctx context.Context, id int) error {
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind(`DELETE FROM curriculum WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting curriculum")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return curriculum.ErrNotFound
	}
	return nil
}

func (repo curriculumRepository) CountCurriculums(ctx context.Context, filter curriculum.QueryFilter) (int, error) {
	w := curriculumWhere(filter)
	var n int
	if err := repo.exec.GetContext(ctx, &n, repo.exec.Rebind(`SELECT COUNT(*) FROM curriculum`+w.String()), w.args...); err != nil {
		return 0, errors.Wrap(err, "counting curriculums")
	}
	return n, nil
}

func (repo curriculumRepository) CreateSubject(ctx context.Context, s curriculum.Subject) (curriculum.Subject, error) {
	q := repo.exec.Rebind(`INSERT INTO subject (name, curriculum_id) VALUES (?, ?) RETURNING id`)
	if err := repo.exec.GetContext(ctx, &s.ID, q, s.Name, s.CurriculumID); err != nil {
		return curriculum.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return s, nil
}

func (repo curriculumRepository) QuerySubjects(ctx context.Context, curriculumIDs ...int) ([]curriculum.Subject, error) {
	q := `SELECT ` + subjectColumns + ` FROM subject`
	var args []interface{}
	if len(curriculumIDs) > 0 {
		var err error
		q, args, err = sqlx.In(q+` WHERE curriculum_id IN (?)`, curriculumIDs)
		if err != nil {
			return nil, errors.Wrap(err, "querying subjects")
		}
	}
	q += ` ORDER BY name ASC, id ASC`

	subjects := make([]curriculum.Subject, 0)
	if err := repo.exec.SelectContext(ctx, &subjects, repo.exec.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo curriculumRepository) GetSubjectByID(ctx context.Context, id int) (curriculum.Subject, error) {
	var s curriculum.Subject
	q := repo.exec.Rebind(`SELECT ` + subjectColumns + ` FROM subject WHERE id = ?`)
	if err := repo.exec.GetContext(ctx, &s, q, id); err != nil {
		return curriculum.Subject{}, trapNoRowsErr(err, curriculum.ErrSubjectNotFound, "finding subject")
	}
	return s, nil
}

func (repo curriculumRepository) UpdateSubject(ctx context.Context, s curriculum.Subject) (curriculum.Subject, error) {
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind(`UPDATE subject SET name = ? WHERE id = ?`), s.Name, s.ID)
	if err != nil {
		return curriculum.Subject{}, errors.Wrap(err, "updating subject")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return curriculum.Subject{}, curriculum.ErrSubjectNotFound
	}
	return repo.GetSubjectByID(ctx, s.ID)
}

func (repo curriculumRepository) DeleteSubject(ctx context.Context, id int) error {
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind(`DELETE FROM subject WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return curriculum.ErrSubjectNotFound
	}
	return nil
}

func (repo curriculumRepository) CountSubjects(ctx context.Context) (int, error) {
	var n int
	if err := repo.exec.GetContext(ctx, &n, `SELECT COUNT(*) FROM subject`); err != nil {
		return 0, errors.Wrap(err, "counting subjects")
	}
	return n, nil
}
