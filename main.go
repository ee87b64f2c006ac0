package main

import (
	"io"

	"MedShare/cache"
	"MedShare/config"
	"MedShare/events"
	"MedShare/jobs"
	"MedShare/migrations"
	"MedShare/routes"
	"MedShare/services"
	"MedShare/store"
	"MedShare/store/memstore"
	"MedShare/store/mongostore"

	server "github.com/KanapuramVaishnavi/Core/server"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

var (
	startServer = server.Start
	isTest      = false
)

func main() {
	defer logger.Init("MedShare", true, false, io.Discard).Close()
	run()
}

func run() {
	cfg := config.Load()
	if isTest {
		cfg.StoreDriver = config.StoreMemory
		cfg.RedisAddr = ""
		cfg.KafkaBrokers = nil
	}
	app := build(cfg)

	defaultopts := server.GetDefaultOptions()

	options := server.Options{
		CacheEnabled:     defaultopts.CacheEnabled,
		MongoEnabled:     defaultopts.MongoEnabled && cfg.StoreDriver == config.StoreMongo,
		WebServerEnabled: defaultopts.WebServerEnabled,
		WebServerPort:    defaultopts.WebServerPort,

		JobsEnabled: !isTest,
		JobsHandler: func() {
			if isTest {
				return
			}
			if _, err := jobs.StartReconcileScheduler(cfg.ReconcileSchedule, app.Requests); err != nil {
				logger.Errorf("Error starting reconcile scheduler: %v", err)
			}
		},

		WebServerPreHandler: func(r *gin.Engine) {
			r.Use(cors.New(cors.Config{
				AllowOrigins:     []string{"*"},
				AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
				AllowCredentials: true,
			}))
			routes.Routes(r, app)
		},

		MigrationEnabled: !isTest && cfg.StoreDriver == config.StoreMongo,
		MigrationHandler: func() {
			if isTest {
				return
			}
			migrations.CreateIndexes()
		},
	}
	startServer(options)
}

/*
* Pick the store from STORE_DRIVER
* Redis cache and Kafka events when configured, in-process fallbacks otherwise
* Wire the services over the shared deps
 */
func build(cfg *config.Config) routes.Services {
	var st store.Store
	if cfg.StoreDriver == config.StoreMemory {
		logger.Info("Using the in-memory store")
		st = memstore.New()
	} else {
		st = mongostore.New(mongostore.Options{Transactions: cfg.MongoTransactions})
	}

	deps := services.Deps{Store: st}
	if cfg.RedisAddr != "" {
		deps.Cache = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.Errorf("Error connecting to kafka, events disabled: %v", err)
		} else {
			deps.Events = producer
		}
	}

	medicines := services.NewMedicineService(deps)
	return routes.Services{
		Manufacturers: services.NewManufacturerService(deps),
		Medicines:     medicines,
		Requests:      services.NewRequestService(deps, medicines),
		Search:        services.NewDrugSearchService(cfg.OpenFDAURL, cfg.UpstreamTimeout),
		JWTSecret:     cfg.JWTSecret,
	}
}
