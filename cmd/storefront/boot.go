package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/repositories/memory"
	mongostore "github.com/shashiranjanraj/storefront/app/repositories/mongo"
	sqlstore "github.com/shashiranjanraj/storefront/app/repositories/sql"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/health"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/payment/stripe"
	"github.com/shashiranjanraj/storefront/pkg/publish"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// runtime holds every long-lived dependency of a storefront process.
type runtime struct {
	store     *repositories.Store
	db        *gorm.DB // set only for the sql store
	rdb       *redis.Client
	cache     *cache.Cache
	queue     *queue.Manager
	events    *event.Dispatcher
	publisher publish.Publisher
	hub       *ws.Hub
	disk      storage.Disk
	checks    *health.Checks
	tokens    *auth.Tokens
}

// openStore connects the repository backend named by STORE_DRIVER.
func openStore(ctx context.Context) (*repositories.Store, *gorm.DB, error) {
	switch config.StoreDriver() {
	case "memory":
		logger.Warn("store: using in-memory repositories, data is lost on exit")
		return memory.NewStore(), nil, nil

	case "sql":
		db, err := database.Connect(ctx, config.DatabaseDriver(), config.DatabaseDSN())
		if err != nil {
			return nil, nil, err
		}
		logger.Info("store: sql connected", "driver", config.DatabaseDriver())
		return sqlstore.NewStore(db), db, nil

	default:
		client, err := mongostore.Connect(ctx, config.MongoURI())
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(config.MongoDB())
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		logger.Info("store: mongo connected", "db", config.MongoDB())
		return mongostore.NewStore(client, db), nil, nil
	}
}

// openDB connects the relational database for the migrate commands.
func openDB(ctx context.Context) (*gorm.DB, error) {
	if config.StoreDriver() != "sql" {
		return nil, fmt.Errorf("migrations need STORE_DRIVER=sql (got %q)", config.StoreDriver())
	}
	return database.Connect(ctx, config.DatabaseDriver(), config.DatabaseDSN())
}

func needsRedis() bool {
	return config.CacheDriver() == "redis" || config.QueueDriver() == "redis"
}

// boot wires the store, cache, queue and event plumbing shared by serve and
// queue:work.
func boot(ctx context.Context) (*runtime, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	rt := &runtime{
		tokens: auth.NewTokens(config.JWTSecret()),
		checks: health.New(0),
	}

	store, db, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	rt.store, rt.db = store, db
	rt.checks.Add("store", store.Ping)

	if db != nil {
		n, err := migration.New(db, io.Discard).Run(ctx)
		if err != nil {
			rt.close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		if n > 0 {
			logger.Info("store: applied pending migrations", "count", n)
		}
	}

	if needsRedis() {
		rdb, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
		if err != nil {
			rt.close()
			return nil, err
		}
		rt.rdb = rdb
		rt.checks.Add("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	if config.CacheDriver() == "redis" {
		rt.cache = cache.New(cache.NewRedisDriver(rt.rdb), "storefront")
	} else {
		rt.cache = cache.New(cache.NewMemoryDriver(), "storefront")
	}

	var qopts []queue.Option
	if db != nil {
		qopts = append(qopts, queue.WithFailedJobsDB(db))
	}
	if config.QueueDriver() == "redis" {
		rt.queue = queue.New(queue.NewRedisDriver(rt.rdb), qopts...)
	} else {
		rt.queue = queue.New(queue.NewMemoryDriver(), qopts...)
	}
	jobs.Register(rt.queue, store)

	rt.publisher, err = publish.Open(publish.Config{
		Driver:       config.EventsDriver(),
		KafkaBrokers: config.KafkaBrokers(),
		KafkaTopic:   config.KafkaOrdersTopic(),
		AMQPURL:      config.AMQPURL(),
		AMQPQueue:    config.AMQPQueue(),
	})
	if err != nil {
		rt.close()
		return nil, err
	}
	logger.Info("events: publisher ready", "driver", rt.publisher.Name())

	rt.hub = ws.NewHub(ws.AllowOrigins(config.CORSOrigins()))
	rt.events = event.NewDispatcher(4)
	listeners.Register(rt.events, listeners.Deps{Queue: rt.queue, Publisher: rt.publisher, Hub: rt.hub})

	rt.disk, err = storage.Open(ctx, storage.ConfigFromEnv())
	if err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

// handler builds the HTTP surface over rt.
func (rt *runtime) handler() (*router.Router, error) {
	gateway := stripe.New(config.StripeSecretKey(), config.StripeWebhookSecret())
	if config.StripeWebhookSecret() == "" {
		logger.Warn("payments: STRIPE_WEBHOOK_SECRET is empty, every webhook will be rejected")
	}

	catalog := services.NewCatalogService(rt.store.Products, rt.cache, config.CacheTTL())
	gql, err := controllers.GraphQL(catalog)
	if err != nil {
		return nil, fmt.Errorf("graphql: %w", err)
	}

	h := routes.Handlers{
		Auth:     controllers.NewAuthController(services.NewAuthService(rt.store.Users, rt.tokens), rt.tokens.TTL(), config.IsProduction()),
		Products: controllers.NewProductController(catalog),
		Cart:     controllers.NewCartController(services.NewCartService(rt.store.Carts)),
		Checkout: controllers.NewCheckoutController(
			services.NewCheckoutService(gateway, services.CheckoutConfig{
				Currency:  config.CheckoutCurrency(),
				Countries: config.CheckoutCountries(),
				AppURL:    config.AppURL(),
			}),
			services.NewMaterializer(gateway, rt.store.Orders, rt.events),
		),
		Orders:   controllers.NewOrderController(services.NewOrderService(rt.store.Orders)),
		Admin:    controllers.NewAdminController(services.NewAdminService(rt.store), services.NewUploadService(rt.disk)),
		GraphQL:  gql,
		LiveFeed: rt.hub,
		Health:   rt.checks,
	}
	if local, ok := rt.disk.(*storage.Local); ok {
		h.Files = http.FileServer(http.Dir(local.Root()))
	}

	r := server.NewRouter(server.Options{
		CORSOrigins:        config.CORSOrigins(),
		RateLimitPerMinute: config.RateLimitPerMinute(),
	})
	routes.RegisterAPI(r, rt.tokens, h)
	return r, nil
}

// close releases everything boot opened. Safe on a partially built runtime.
func (rt *runtime) close() {
	var errs []error
	if rt.events != nil {
		rt.events.Close()
	}
	if rt.publisher != nil {
		errs = append(errs, rt.publisher.Close())
	}
	if rt.rdb != nil {
		errs = append(errs, rt.rdb.Close())
	}
	if rt.store != nil {
		errs = append(errs, rt.store.Close(context.Background()))
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("shutdown: release failed", "error", err)
	}
}
