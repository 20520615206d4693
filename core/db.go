package core

import (
	"context"
	"database/sql"
	"strings"
)

// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderByClause renders `orderings` as a SQL ORDER BY list.
// Fields missing from `allowed` (api field -> column) are dropped; `fallback` is used when nothing remains.
func OrderByClause(orderings []DBOrdering, allowed map[string]string, fallback ...DBOrdering) string {
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		parts = append(parts, DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(parts) == 0 {
		for _, ord := range fallback {
			parts = append(parts, ord.String())
		}
	}
	return strings.Join(parts, ", ")
}

// Status filters archivable records.
type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Clean normalizes unknown statuses to StatusAll.
func (s Status) Clean() Status {
	switch Status(CleanString(string(s), true)) {
	case StatusActive:
		return StatusActive
	case StatusArchived:
		return StatusArchived
	default:
		return StatusAll
	}
}

// Matches reports whether a record with the given archived flag passes the filter.
func (s Status) Matches(archived bool) bool {
	switch s {
	case StatusActive:
		return !archived
	case StatusArchived:
		return archived
	default:
		return true
	}
}
