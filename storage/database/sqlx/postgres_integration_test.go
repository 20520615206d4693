//go:build integration

package sqlxrepos

import (
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/storage/database"
	"github.com/trezcool/tutorhub/storage/database/dbtest"
)

func TestPostgresRepositories(t *testing.T) {
	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env:        []string{"POSTGRES_USER=postgres", "POSTGRES_PASSWORD=secret", "POSTGRES_DB=postgres"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	defer func() { _ = pool.Purge(resource) }()
	_ = resource.Expire(120)

	conf := core.NewTestConfig()
	conf.Database = core.DatabaseConfig{
		Engine:        database.Postgres,
		Host:          "localhost",
		Port:          resource.GetPort("5432/tcp"),
		Name:          "tutorhub_test",
		User:          "tutorhub",
		Password:      "tutorhub",
		AdminUser:     "postgres",
		AdminPassword: "secret",
		DisableTLS:    true,
	}
	require.NoError(t, database.CreateIfNotExist(conf))

	db, err := database.Open(conf)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, pool.Retry(db.Ping))
	require.NoError(t, database.Migrate(db, conf.Database.Engine))

	t.Run("users", func(t *testing.T) { dbtest.UserRepository(t, NewUserRepository(db)) })
	t.Run("tutors", func(t *testing.T) { dbtest.TutorRepository(t, NewTutorRepository(db)) })
	t.Run("curriculums", func(t *testing.T) { dbtest.CurriculumRepository(t, NewCurriculumRepository(db)) })
}
