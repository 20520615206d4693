// Package sqlxrepos implements the core repositories with sqlx.
// Queries are written with `?` placeholders and rebound for the driver in use.
package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
)

// trapNoRowsErr maps "no rows" err to `notFound`
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// where accumulates AND-ed conditions.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// search matches `term` case-insensitively against any of `cols`.
func (w *where) search(term string, cols ...string) {
	if term == "" {
		return
	}
	val := "%" + strings.ToLower(term) + "%"
	ors := make([]string, 0, len(cols))
	for _, col := range cols {
		ors = append(ors, "LOWER("+col+") LIKE ?")
		w.args = append(w.args, val)
	}
	w.conds = append(w.conds, "("+strings.Join(ors, " OR ")+")")
}

func (w *where) status(s core.Status) {
	switch s {
	case core.StatusActive:
		w.add("archived = ?", false)
	case core.StatusArchived:
		w.add("archived = ?", true)
	}
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var defaultOrdering = core.DBOrdering{Field: "id", Ascending: false}
