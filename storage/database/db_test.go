package database

import (
	"database/sql"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core"
)

func TestPostgresURL(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database = core.DatabaseConfig{
		Engine: Postgres, Host: "db", Port: "5433", Name: "tutorhub",
		User: "app", Password: "p@ss", AdminUser: "root", AdminPassword: "r00t",
	}

	assert.Equal(t, "postgres://app:p%40ss@db:5433/tutorhub?sslmode=require&timezone=utc", postgresURL("tutorhub", false, conf))
	assert.Equal(t, "postgres://root:r00t@db:5433/postgres?sslmode=require&timezone=utc", postgresURL("postgres", true, conf))

	conf.Database.DisableTLS = true
	assert.Contains(t, postgresURL("tutorhub", false, conf), "sslmode=disable")
}

func TestOpen_UnknownEngine(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database.Engine = "oracle"
	_, err := Open(conf)
	assert.EqualError(t, err, `unsupported database engine "oracle"`)
}

func TestOpenTest(t *testing.T) {
	db, err := OpenTest()
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('user', 'tutor', 'curriculum', 'subject') ORDER BY name`))
	assert.Equal(t, []string{"curriculum", "subject", "tutor", "user"}, tables)
}

func TestRunMigrations(t *testing.T) {
	db, err := OpenTest()
	require.NoError(t, err)
	defer db.Close()

	var gotCmd, gotDir string
	var gotArgs []string
	orig := gooseRunFunc
	defer func() { gooseRunFunc = orig }()
	gooseRunFunc = func(command string, _ *sql.DB, _ fs.FS, dir string, args ...string) error {
		gotCmd, gotDir, gotArgs = command, dir, args
		return nil
	}

	require.NoError(t, RunMigrations(db, SQLite, "down-to", "0"))
	assert.Equal(t, "down-to", gotCmd)
	assert.Equal(t, "migrations/sqlite3", gotDir)
	assert.Equal(t, []string{"0"}, gotArgs)
}
