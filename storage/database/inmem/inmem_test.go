package inmemdb

import (
	"testing"

	"github.com/trezcool/tutorhub/storage/database/dbtest"
)

func TestUserRepository(t *testing.T) {
	dbtest.UserRepository(t, NewUserRepository(Open()))
}

func TestTutorRepository(t *testing.T) {
	dbtest.TutorRepository(t, NewTutorRepository(Open()))
}

func TestCurriculumRepository(t *testing.T) {
	dbtest.CurriculumRepository(t, NewCurriculumRepository(Open()))
}
