// Package dbtest holds the behaviour every repository implementation must share.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/curriculum"
	"github.com/trezcool/tutorhub/core/tutor"
	"github.com/trezcool/tutorhub/core/user"
)

func now() time.Time { return time.Now().UTC().Truncate(time.Second) }

func UserRepository(t *testing.T, repo user.Repository) {
	ctx := context.Background()

	newUser := func(name, uname, email string, active bool) user.User {
		usr := user.User{Name: name, Username: uname, Email: email, IsActive: active, Roles: []string{user.RoleAdmin}, CreatedAt: now(), UpdatedAt: now()}
		require.NoError(t, usr.SetPassword("pwd"))
		created, err := repo.CreateUser(ctx, usr)
		require.NoError(t, err)
		require.NotZero(t, created.ID)
		return created
	}
	ada := newUser("Ada Lovelace", "ada", "ada@test.test", true)
	alan := newUser("Alan Turing", "alan", "", false)

	t.Run("uniqueness", func(t *testing.T) {
		assert.Equal(t, user.ErrUsernameExists, repo.CheckUsernameUniqueness(ctx, "ada", "other@test.test"))
		assert.Equal(t, user.ErrEmailExists, repo.CheckUsernameUniqueness(ctx, "other", "ada@test.test"))
		assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "ada", "ada@test.test", ada))
		assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "grace", ""), "blank emails never clash")
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetUserByID(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada", got.Username)
		assert.Equal(t, []string{user.RoleAdmin}, got.Roles)
		assert.NoError(t, got.CheckPassword("pwd"))
		assert.True(t, got.LastLogin.IsZero())

		got, err = repo.GetUserByUsernameOrEmail(ctx, "ada@test.test")
		require.NoError(t, err)
		assert.Equal(t, ada.ID, got.ID)

		_, err = repo.GetUserByID(ctx, 9999)
		assert.Equal(t, user.ErrNotFound, err)
		_, err = repo.GetUserByUsernameOrEmail(ctx, "")
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("query", func(t *testing.T) {
		users, err := repo.QueryUsers(ctx, user.QueryFilter{})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, alan.ID, users[0].ID, "newest first by default")

		active := true
		users, err = repo.QueryUsers(ctx, user.QueryFilter{IsActive: &active})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, ada.ID, users[0].ID)

		users, err = repo.QueryUsers(ctx, user.QueryFilter{Search: "TURING"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, alan.ID, users[0].ID)

		users, err = repo.QueryUsers(ctx, user.QueryFilter{}, core.DBOrdering{Field: "username", Ascending: true})
		require.NoError(t, err)
		assert.Equal(t, []int{ada.ID, alan.ID}, []int{users[0].ID, users[1].ID})
	})

	t.Run("update", func(t *testing.T) {
		ada.Name = "Augusta Ada King"
		ada.Roles = []string{user.RoleAdminOwner}
		ada.UpdatedAt = now()
		updated, err := repo.UpdateUser(ctx, ada)
		require.NoError(t, err)
		assert.Equal(t, "Augusta Ada King", updated.Name)
		assert.Equal(t, []string{user.RoleAdminOwner}, updated.Roles)

		at := now()
		require.NoError(t, repo.SetUserLastLogin(ctx, ada.ID, at))
		got, err := repo.GetUserByID(ctx, ada.ID)
		require.NoError(t, err)
		assert.True(t, at.Equal(got.LastLogin), "%v != %v", at, got.LastLogin)

		_, err = repo.UpdateUser(ctx, user.User{ID: 9999, Name: "ghost"})
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteUsersByID(ctx, ada.ID, alan.ID))
		users, err := repo.QueryUsers(ctx, user.QueryFilter{})
		require.NoError(t, err)
		assert.Empty(t, users)
		assert.NoError(t, repo.DeleteUsersByID(ctx))
	})
}

func TutorRepository(t *testing.T, repo tutor.Repository) {
	ctx := context.Background()

	newTutor := func(name, qualification string, created time.Time) tutor.Tutor {
		tt, err := repo.CreateTutor(ctx, tutor.Tutor{Name: name, Qualification: qualification, Bio: "bio", CreatedAt: created, UpdatedAt: created})
		require.NoError(t, err)
		require.NotZero(t, tt.ID)
		return tt
	}
	base := now().Add(-time.Hour)
	chisomo := newTutor("Chisomo Banda", "BSc Mathematics", base)
	thoko := newTutor("thoko Phiri", "MA English", base.Add(time.Minute))
	kondwani := newTutor("Kondwani Mwale", "PhD Physics", base.Add(2*time.Minute))

	t.Run("archive", func(t *testing.T) {
		archived, err := repo.SetTutorArchived(ctx, kondwani.ID, true, now())
		require.NoError(t, err)
		assert.True(t, archived.Archived)

		_, err = repo.SetTutorArchived(ctx, 9999, true, now())
		assert.Equal(t, tutor.ErrNotFound, err)
	})

	t.Run("query", func(t *testing.T) {
		tutors, err := repo.QueryTutors(ctx, tutor.QueryFilter{Status: core.StatusActive}, core.DBOrdering{Field: "name", Ascending: true})
		require.NoError(t, err)
		require.Len(t, tutors, 2)
		assert.Equal(t, []int{chisomo.ID, thoko.ID}, []int{tutors[0].ID, tutors[1].ID}, "case-insensitive name order")

		tutors, err = repo.QueryTutors(ctx, tutor.QueryFilter{Status: core.StatusArchived})
		require.NoError(t, err)
		require.Len(t, tutors, 1)
		assert.Equal(t, kondwani.ID, tutors[0].ID)

		tutors, err = repo.QueryTutors(ctx, tutor.QueryFilter{Search: "english", Status: core.StatusAll})
		require.NoError(t, err)
		require.Len(t, tutors, 1)
		assert.Equal(t, thoko.ID, tutors[0].ID)

		tutors, err = repo.QueryTutors(ctx, tutor.QueryFilter{Status: core.StatusAll, Limit: 2},
			core.DBOrdering{Field: "created_at"}, core.DBOrdering{Field: "id"})
		require.NoError(t, err)
		assert.Equal(t, []int{kondwani.ID, thoko.ID}, []int{tutors[0].ID, tutors[1].ID})

		tutors, err = repo.QueryTutors(ctx, tutor.QueryFilter{Status: core.StatusAll}, core.DBOrdering{Field: "bogus; DROP TABLE tutor"})
		require.NoError(t, err)
		assert.Len(t, tutors, 3)
	})

	t.Run("count", func(t *testing.T) {
		n, err := repo.CountTutors(ctx, tutor.QueryFilter{Status: core.StatusAll})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		n, err = repo.CountTutors(ctx, tutor.QueryFilter{Status: core.StatusActive})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("update", func(t *testing.T) {
		chisomo.Bio = "Maths & statistics"
		chisomo.ProfilePicture = "http://media.test/tutor-photos/tutor_1.png"
		chisomo.UpdatedAt = now()
		updated, err := repo.UpdateTutor(ctx, chisomo)
		require.NoError(t, err)
		assert.Equal(t, "Maths & statistics", updated.Bio)

		got, err := repo.GetTutorByID(ctx, chisomo.ID)
		require.NoError(t, err)
		assert.Equal(t, chisomo.ProfilePicture, got.ProfilePicture)
		assert.True(t, base.Equal(got.CreatedAt))

		_, err = repo.UpdateTutor(ctx, tutor.Tutor{ID: 9999})
		assert.Equal(t, tutor.ErrNotFound, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteTutor(ctx, thoko.ID))
		_, err := repo.GetTutorByID(ctx, thoko.ID)
		assert.Equal(t, tutor.ErrNotFound, err)
		assert.Equal(t, tutor.ErrNotFound, repo.DeleteTutor(ctx, thoko.ID))
	})
}

func CurriculumRepository(t *testing.T, repo curriculum.Repository) {
	ctx := context.Background()

	newCurriculum := func(name, desc, price string) curriculum.Curriculum {
		c, err := repo.CreateCurriculum(ctx, curriculum.Curriculum{
			Name:        name,
			Description: core.NullString(desc),
			Price:       decimal.RequireFromString(price),
			CreatedAt:   now(),
			UpdatedAt:   now(),
		})
		require.NoError(t, err)
		require.NotZero(t, c.ID)
		return c
	}
	igcse := newCurriculum("IGCSE", "Cambridge secondary", "15000")
	msce := newCurriculum("MSCE", "", "12500.50")
	ib := newCurriculum("IB Diploma", "International Baccalaureate", "30000")

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetCurriculumByID(ctx, msce.ID)
		require.NoError(t, err)
		assert.False(t, got.Description.Valid)
		assert.True(t, decimal.RequireFromString("12500.5").Equal(got.Price), got.Price.String())

		_, err = repo.GetCurriculumByID(ctx, 9999)
		assert.Equal(t, curriculum.ErrNotFound, err)
	})

	t.Run("query", func(t *testing.T) {
		_, err := repo.SetCurriculumArchived(ctx, ib.ID, true, now())
		require.NoError(t, err)

		cs, err := repo.QueryCurriculums(ctx, curriculum.QueryFilter{Status: core.StatusActive}, core.DBOrdering{Field: "price", Ascending: true})
		require.NoError(t, err)
		require.Len(t, cs, 2)
		assert.Equal(t, []int{msce.ID, igcse.ID}, []int{cs[0].ID, cs[1].ID})

		cs, err = repo.QueryCurriculums(ctx, curriculum.QueryFilter{Search: "baccalaureate"})
		require.NoError(t, err)
		require.Len(t, cs, 1)
		assert.True(t, cs[0].Archived)

		n, err := repo.CountCurriculums(ctx, curriculum.QueryFilter{Status: core.StatusArchived})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("update", func(t *testing.T) {
		igcse.Description = null.String{}
		igcse.Price = decimal.RequireFromString("16000")
		igcse.UpdatedAt = now()
		updated, err := repo.UpdateCurriculum(ctx, igcse)
		require.NoError(t, err)
		assert.False(t, updated.Description.Valid)
		assert.True(t, decimal.NewFromInt(16000).Equal(updated.Price))
	})

	t.Run("subjects", func(t *testing.T) {
		newSubject := func(name string, cid int) curriculum.Subject {
			s, err := repo.CreateSubject(ctx, curriculum.Subject{Name: name, CurriculumID: cid})
			require.NoError(t, err)
			return s
		}
		physics := newSubject("Physics", igcse.ID)
		biology := newSubject("Biology", igcse.ID)
		chichewa := newSubject("Chichewa", msce.ID)

		subjects, err := repo.QuerySubjects(ctx, igcse.ID)
		require.NoError(t, err)
		assert.Equal(t, []curriculum.Subject{biology, physics}, subjects)

		subjects, err = repo.QuerySubjects(ctx)
		require.NoError(t, err)
		assert.Len(t, subjects, 3)

		chichewa.Name = "Chichewa Literature"
		updated, err := repo.UpdateSubject(ctx, chichewa)
		require.NoError(t, err)
		assert.Equal(t, "Chichewa Literature", updated.Name)
		assert.Equal(t, msce.ID, updated.CurriculumID)

		require.NoError(t, repo.DeleteSubject(ctx, physics.ID))
		_, err = repo.GetSubjectByID(ctx, physics.ID)
		assert.Equal(t, curriculum.ErrSubjectNotFound, err)
		assert.Equal(t, curriculum.ErrSubjectNotFound, repo.DeleteSubject(ctx, physics.ID))

		n, err := repo.CountSubjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("delete cascades to subjects", func(t *testing.T) {
		require.NoError(t, repo.DeleteCurriculum(ctx, igcse.ID))
		subjects, err := repo.QuerySubjects(ctx, igcse.ID)
		require.NoError(t, err)
		assert.Empty(t, subjects)

		n, err := repo.CountSubjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, curriculum.ErrNotFound, repo.DeleteCurriculum(ctx, igcse.ID))
	})
}
