package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/user"
)

const userColumns = `id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login`

var userOrderable = map[string]string{
	"id":         "id",
	"name":       "name",
	"username":   "username",
	"email":      "email",
	"created_at": "created_at",
	"last_login": "last_login",
}

// userRow maps the "user" table; roles are stored comma-separated.
type userRow struct {
	user.User
	RolesStr  string    `db:"roles"`
	LastLogin null.Time `db:"last_login"`
}

func (r userRow) unrow() user.User {
	usr := r.User
	usr.Roles = splitRoles(r.RolesStr)
	usr.LastLogin = r.LastLogin.Time
	return usr
}

func splitRoles(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	q := `SELECT username, email FROM "user" WHERE ((username <> '' AND username = ?) OR (email <> '' AND email = ?))`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q += ` AND id NOT IN (?)`
		args = append(args, ids)
	}
	q, args, err := sqlx.In(q+` LIMIT 1`, args...)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}

	var existing struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err := repo.exec.GetContext(ctx, &existing, repo.exec.Rebind(q), args...); err != nil {
		return trapNoRowsErr(err, nil, "checking user uniqueness")
	}
	if username != "" && existing.Username == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.exec.Rebind(`INSERT INTO "user" (name, username, email, is_active, roles, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := repo.exec.GetContext(ctx, &usr.ID, q,
		usr.Name, usr.Username, usr.Email, usr.IsActive, strings.Join(usr.Roles, ","),
		usr.PasswordHash, usr.CreatedAt.UTC(), usr.UpdatedAt.UTC())
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var w where
	// users with Name, Username or Email matching the search keyword
	w.search(filter.Search, "name", "username", "email")
	if filter.IsActive != nil {
		w.add("is_active = ?", *filter.IsActive)
	}
	q := `SELECT ` + userColumns + ` FROM "user"` + w.String() +
		` ORDER BY ` + core.OrderByClause(ordering, userOrderable, defaultOrdering)

	var rows []userRow
	if err := repo.exec.SelectContext(ctx, &rows, repo.exec.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.unrow())
	}
	return users, nil
}

func (repo userRepository) getUser(ctx context.Context, cond string, args ...interface{}) (user.User, error) {
	var row userRow
	q := repo.exec.Rebind(`SELECT ` + userColumns + ` FROM "user" WHERE ` + cond + ` LIMIT 1`)
	if err := repo.exec.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return row.unrow(), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getUser(ctx, "id = ?", id)
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	if username == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, "username = ? OR email = ?", username, username)
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.exec.Rebind(`UPDATE "user" SET name = ?, username = ?, email = ?, is_active = ?, roles = ?, password_hash = ?, updated_at = ?
		WHERE id = ?`)
	res, err := repo.exec.ExecContext(ctx, q,
		usr.Name, usr.Username, usr.Email, usr.IsActive, strings.Join(usr.Roles, ","),
		usr.PasswordHash, usr.UpdatedAt.UTC(), usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) SetUserLastLogin(ctx context.Context, id int, at time.Time) error {
	q := repo.exec.Rebind(`UPDATE "user" SET last_login = ? WHERE id = ?`)
	if _, err := repo.exec.ExecContext(ctx, q, at.UTC(), id); err != nil {
		return errors.Wrap(err, "setting user last login")
	}
	return nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	if _, err := repo.exec.ExecContext(ctx, repo.exec.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
