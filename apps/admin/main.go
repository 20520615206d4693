package main

import (
	"fmt"
	"os"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/user"
	emailsvc "github.com/trezcool/tutorhub/services/email"
	logsvc "github.com/trezcool/tutorhub/services/logger"
	ratesvc "github.com/trezcool/tutorhub/services/rates"
	"github.com/trezcool/tutorhub/storage/database"
	sqlxrepos "github.com/trezcool/tutorhub/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger("ADMIN", conf), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	if err = db.Ping(); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	provider, closeProvider, err := ratesvc.NewProvider(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up exchange rates: %v", err), err)
	}
	defer func() { _ = closeProvider() }()

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)

	// start CLI
	cli := &commandLine{
		db:            db,
		engine:        conf.Database.Engine,
		usrSvc:        user.NewService(sqlxrepos.NewUserRepository(db), emailsvc.NewConsoleService(conf, logger), conf),
		validate:      validate,
		translator:    translator,
		rates:         provider,
		ratesBase:     conf.Rates.Base,
		ratesTimeout:  conf.Rates.Timeout,
		logger:        logger,
		runMigrations: database.RunMigrations,
		out:           os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		os.Exit(1)
	}
}
