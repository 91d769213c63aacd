package container

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/application"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	esinfra "github.com/oksasatya/go-storefront/internal/infrastructure/elasticsearch"
	"github.com/oksasatya/go-storefront/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-storefront/internal/infrastructure/postgres"
	"github.com/oksasatya/go-storefront/internal/infrastructure/rabbitmq"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/payment"
)

// Infra holds the adapters a Container is assembled from.
// Nil Redis disables rate limiting; nil Indexer and Notifier fall back to no-ops.
type Infra struct {
	Users    repo.UserRepository
	Orders   repo.OrderRepository
	Redis    *redis.Client
	Indexer  application.OrderIndexer
	Notifier application.Notifier
	Hasher   helpers.Hasher
	Gateway  payment.Gateway
	Mock     payment.Gateway
	Ping     func(ctx context.Context) error
}

// Container carries the process-wide components built once at startup.
// It is passed explicitly to the router; nothing reads it through globals.
type Container struct {
	Cfg    *config.Config
	Logger *logrus.Logger

	Users  repo.UserRepository
	Orders repo.OrderRepository
	Redis  *redis.Client
	JWT    *helpers.JWTManager

	Auth     *application.AuthService
	OrderSvc *application.OrderService
	Gateway  payment.Gateway
	Mock     payment.Gateway

	ping    func(ctx context.Context) error
	closers []func()
}

// Assemble builds the services over already constructed adapters.
func Assemble(cfg *config.Config, logger *logrus.Logger, in Infra) (*Container, error) {
	policy, err := application.ParsePolicy(cfg.OrderTransitionPolicy)
	if err != nil {
		return nil, err
	}
	hasher := in.Hasher
	if hasher == nil {
		hasher = helpers.NewBcryptHasher(cfg.BcryptCost)
	}
	gw := in.Gateway
	if gw == nil {
		creds := payment.Credentials{
			MerchantID: cfg.PaymentMerchantID,
			PublicKey:  cfg.PaymentPublicKey,
			PrivateKey: cfg.PaymentPrivateKey,
		}
		gw = payment.NewBreaker("braintree", payment.NewSandbox(creds, 2*time.Second), logger)
	}
	mock := in.Mock
	if mock == nil {
		mock = payment.NewBreaker("mock", payment.NewMock(time.Second), logger)
	}

	jwt := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	return &Container{
		Cfg:      cfg,
		Logger:   logger,
		Users:    in.Users,
		Orders:   in.Orders,
		Redis:    in.Redis,
		JWT:      jwt,
		Auth:     application.NewAuthService(in.Users, hasher, jwt, in.Notifier, logger),
		OrderSvc: application.NewOrderService(in.Orders, in.Users, policy, in.Indexer, in.Notifier, logger),
		Gateway:  gw,
		Mock:     mock,
		ping:     in.Ping,
	}, nil
}

// New connects every configured backend and assembles the container.
// Optional backends (Redis, RabbitMQ, Elasticsearch) are skipped when unconfigured.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	var (
		in      Infra
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StoreDriver {
	case "memory":
		in.Users = memory.NewUserRepository()
		in.Orders = memory.NewOrderRepository()
		logger.Warn("using in-memory store; data is lost on restart")
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			closeAll()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		in.Users = pginfra.NewUserRepository(pool)
		in.Orders = pginfra.NewOrderRepository(pool)
		in.Ping = poolPing(pool)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.RateLimitEnabled && cfg.RedisAddr != "" {
		rdb, err := helpers.OpenRedis(ctx, helpers.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			helpers.LogDegraded(logger, "redis", err, logrus.Fields{"disables": "rate limiting"})
		} else {
			in.Redis = rdb
			closers = append(closers, func() { _ = rdb.Close() })
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		idx, err := newOrderIndex(ctx, cfg, addrs)
		if err != nil {
			helpers.LogDegraded(logger, "elasticsearch", err, logrus.Fields{"disables": "order search"})
		} else {
			in.Indexer = idx
		}
	}

	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			helpers.LogDegraded(logger, "rabbitmq", err, logrus.Fields{"disables": "email notifications"})
		} else {
			closers = append(closers, pub.Close)
			in.Notifier = rabbitmq.NewNotifier(pub, cfg.CompanyName, cfg.SupportURL)
		}
	}

	c, err := Assemble(cfg, logger, in)
	if err != nil {
		closeAll()
		return nil, err
	}
	c.closers = closers
	helpers.LogInfo(logger, "container ready", logrus.Fields{
		"store":      cfg.StoreDriver,
		"rate_limit": in.Redis != nil,
		"search":     in.Indexer != nil,
		"notify":     in.Notifier != nil,
		"policy":     c.OrderSvc.Policy.Name(),
		"payment":    cfg.PaymentConfigured(),
	})
	return c, nil
}

func newOrderIndex(ctx context.Context, cfg *config.Config, addrs []string) (*esinfra.OrderIndex, error) {
	client, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		return nil, err
	}
	return initIndex(ctx, client, cfg.ESOrdersIndex)
}

func initIndex(ctx context.Context, client *elasticsearch.Client, name string) (*esinfra.OrderIndex, error) {
	idx := esinfra.NewOrderIndex(client, name)
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := idx.Init(c); err != nil {
		return nil, err
	}
	return idx, nil
}

func poolPing(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}

// Ping checks the primary store. It is a no-op for the in-memory store.
func (c *Container) Ping(ctx context.Context) error {
	if c.ping == nil {
		return nil
	}
	return c.ping(ctx)
}

// Close releases backends in reverse order of construction.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
