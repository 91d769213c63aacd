package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	pginfra "github.com/oksasatya/go-storefront/internal/infrastructure/postgres"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

// seed creates the administrator account, or promotes it when the email is
// already registered. Credentials come from SEED_ADMIN_* variables.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	users := pginfra.NewUserRepository(pool)
	auth := application.NewAuthService(users, helpers.NewBcryptHasher(cfg.BcryptCost), helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL), nil, logger)

	in := application.RegisterInput{
		Name:     env("SEED_ADMIN_NAME", "Store Admin"),
		Email:    env("SEED_ADMIN_EMAIL", "admin@example.com"),
		Password: env("SEED_ADMIN_PASSWORD", "admin123"),
		Phone:    env("SEED_ADMIN_PHONE", "0000000000"),
		Address:  env("SEED_ADMIN_ADDRESS", "Head office"),
		Answer:   env("SEED_ADMIN_ANSWER", "admin"),
	}
	u, err := auth.Register(ctx, in)
	switch {
	case errors.Is(err, application.ErrDuplicateEmail):
		logger.WithField("email", in.Email).Info("user exists, promoting")
	case err != nil:
		logger.WithError(err).Fatal("failed to seed administrator")
	default:
		logger.WithField("user_id", u.ID).Info("administrator created")
	}

	if err := users.SetRole(ctx, in.Email, entity.RoleAdmin); err != nil {
		logger.WithError(err).Fatal("failed to grant admin role")
	}
	logger.WithFields(logrus.Fields{"email": in.Email, "role": entity.RoleAdmin.String()}).Info("seed complete")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
