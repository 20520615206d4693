package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-redis/redis/v7"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	echoapi "github.com/trezcool/tutorhub/apps/api/echo"
	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/curriculum"
	"github.com/trezcool/tutorhub/core/tutor"
	"github.com/trezcool/tutorhub/core/user"
	emailsvc "github.com/trezcool/tutorhub/services/email"
	eventsvc "github.com/trezcool/tutorhub/services/events"
	logsvc "github.com/trezcool/tutorhub/services/logger"
	ratesvc "github.com/trezcool/tutorhub/services/rates"
	storagesvc "github.com/trezcool/tutorhub/services/storage"
	"github.com/trezcool/tutorhub/storage/database"
	sqlxrepos "github.com/trezcool/tutorhub/storage/database/sqlx"
)

func init() {
	// prices are JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger("API", conf), conf)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(logsvc.NewStdLogger("DB", conf), conf)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up exchange rates: fetched once, in the background
	loader, closeRates, err := setUpRates(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up exchange rates: %v", err), err)
	}
	defer closeRates()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	if err = core.ParseEmailTemplates(logger, !conf.Debug); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}

	ratesCtx, stopRates := context.WithCancel(context.Background())
	defer stopRates()
	loader.Start(ratesCtx)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.Publish("rates", expvar.Func(func() interface{} {
		table, loading := loader.Current()
		return map[string]interface{}{"base": table.Base(), "complete": table.Complete(), "loading": loading}
	}))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server, closeServices, err := newAPIServer(conf, db, logger, loader)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up services: %v", err), err)
	}
	defer closeServices()

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// newAPIServer wires the services behind the HTTP API. The returned func releases the broker connection.
func newAPIServer(conf *core.Config, db *sqlx.DB, logger core.Logger, rates echoapi.RatesSource) (*echoapi.Server, func(), error) {
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var publisher core.EventPublisher
	closeAll := func() {}
	if conf.AMQP.URL != "" {
		amqpPub, err := eventsvc.NewAMQPPublisher(conf, logger)
		if err != nil {
			return nil, closeAll, errors.Wrap(err, "connecting to AMQP broker")
		}
		closeAll = func() { _ = amqpPub.Close() }
		publisher = amqpPub
	} else {
		publisher = eventsvc.NewConsolePublisher(logger)
	}

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf),
			TutorSvc:      tutor.NewService(sqlxrepos.NewTutorRepository(db), storagesvc.NewFileSystemStore(conf), publisher, logger),
			CurriculumSvc: curriculum.NewService(sqlxrepos.NewCurriculumRepository(db), publisher),
			Rates:         rates,
			Validate:      validate,
			Translator:    translator,
		},
	)
	return server, closeAll, nil
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// setUpRates builds the rate loader; rates are cached in redis when an address is configured.
func setUpRates(conf *core.Config, logger core.Logger) (*ratesvc.Loader, func(), error) {
	provider, closeProvider, err := ratesvc.NewProvider(conf)
	if err != nil {
		return nil, func() {}, err
	}

	var cache ratesvc.Cache
	var client *redis.Client
	if conf.Rates.RedisAddress != "" {
		client = redis.NewClient(&redis.Options{Addr: conf.Rates.RedisAddress})
		if err := client.Ping().Err(); err != nil {
			// rates still load from the provider
			logger.Warn("connecting to redis", err, map[string]interface{}{"address": conf.Rates.RedisAddress})
		}
		cache = ratesvc.NewRedisCache(client, conf.Rates.CacheTTL)
	}

	closeAll := func() {
		if err := closeProvider(); err != nil {
			logger.Error("closing rates provider", err)
		}
		if client != nil {
			_ = client.Close()
		}
	}
	return ratesvc.NewLoader(conf.Rates.Base, provider, cache, conf.Rates.Timeout, logger), closeAll, nil
}
