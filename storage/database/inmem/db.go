// Package inmemdb implements the core repositories in memory, for tests and demos.
package inmemdb

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/curriculum"
	"github.com/trezcool/tutorhub/core/tutor"
	"github.com/trezcool/tutorhub/core/user"
)

type (
	DB struct {
		user       *userTable
		tutor      *tutorTable
		curriculum *curriculumTable
	}

	userTable struct {
		sync.RWMutex
		pk    int
		table map[int]*user.User
	}

	tutorTable struct {
		sync.RWMutex
		pk    int
		table map[int]*tutor.Tutor
	}

	// curriculumTable also holds the subjects: deleting a curriculum deletes its subjects atomically.
	curriculumTable struct {
		sync.RWMutex
		pk        int
		subjectPK int
		table     map[int]*curriculum.Curriculum
		subjects  map[int]*curriculum.Subject
	}
)

func Open() *DB {
	return &DB{
		user:       &userTable{table: make(map[int]*user.User)},
		tutor:      &tutorTable{table: make(map[int]*tutor.Tutor)},
		curriculum: &curriculumTable{table: make(map[int]*curriculum.Curriculum), subjects: make(map[int]*curriculum.Subject)},
	}
}

// comparator compares two records on one field.
type comparator[T any] func(a, b T) int

// sortRecords sorts like an SQL ORDER BY: unknown fields are skipped, ties fall through to the next field.
func sortRecords[T any](records []T, ordering []core.DBOrdering, fields map[string]comparator[T], fallback ...core.DBOrdering) {
	cmps := make([]comparator[T], 0, len(ordering))
	for _, ord := range ordering {
		if c, ok := fields[ord.Field]; ok {
			cmps = append(cmps, direction(c, ord.Ascending))
		}
	}
	if len(cmps) == 0 {
		for _, ord := range fallback {
			cmps = append(cmps, direction(fields[ord.Field], ord.Ascending))
		}
	}
	// maps iterate randomly: start from the primary key order
	if byID, ok := fields["id"]; ok {
		slices.SortFunc(records, byID)
	}
	slices.SortStableFunc(records, func(a, b T) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	})
}

func direction[T any](c comparator[T], asc bool) comparator[T] {
	if asc {
		return c
	}
	return func(a, b T) int { return c(b, a) }
}

func compareTime(a, b time.Time) int { return a.Compare(b) }

func compareFold(a, b string) int { return cmp.Compare(strings.ToLower(a), strings.ToLower(b)) }

// matches reports whether any of `values` contains `search`, case-insensitively.
func matches(search string, values ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}
