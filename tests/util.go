// Package testutil creates fixtures straight through the repositories.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/curriculum"
	"github.com/trezcool/tutorhub/core/tutor"
	"github.com/trezcool/tutorhub/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateTutor(t *testing.T, repo tutor.Repository, name, qualification string, archived bool, createdAt ...time.Time) tutor.Tutor {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	tt, err := repo.CreateTutor(context.Background(), tutor.Tutor{
		Name:          name,
		Qualification: qualification,
		Archived:      archived,
		CreatedAt:     tstamp,
		UpdatedAt:     tstamp,
	})
	if err != nil {
		t.Fatalf("CreateTutor() failed: %v", err)
	}
	return tt
}

func CreateCurriculum(t *testing.T, repo curriculum.Repository, name, description string, price int64, archived bool) curriculum.Curriculum {
	t.Helper()
	now := time.Now().UTC()
	c, err := repo.CreateCurriculum(context.Background(), curriculum.Curriculum{
		Name:        name,
		Description: core.NullString(description),
		Price:       decimal.NewFromInt(price),
		Archived:    archived,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateCurriculum() failed: %v", err)
	}
	return c
}

func CreateSubject(t *testing.T, repo curriculum.Repository, curriculumID int, name string) curriculum.Subject {
	t.Helper()
	s, err := repo.CreateSubject(context.Background(), curriculum.Subject{Name: name, CurriculumID: curriculumID})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return s
}
