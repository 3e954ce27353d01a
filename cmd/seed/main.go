package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/postboard/config"
	"github.com/oksasatya/postboard/internal/application"
	pginfra "github.com/oksasatya/postboard/internal/infrastructure/postgres"
	"github.com/oksasatya/postboard/pkg/apperror"
	"github.com/oksasatya/postboard/pkg/helpers"
)

// seed creates a demo account with one post, reusing the services so the
// data goes through the same rules as API traffic.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	users := pginfra.NewUserRepository(pool)
	userSvc := application.NewUserService(users, helpers.NewJWTManager(cfg.TokenConfig()), nil, logger)
	postSvc := application.NewPostService(pginfra.NewPostRepository(pool), users, nil, logger, cfg.PostSaveRetries)

	const (
		email    = "demo@postboard.local"
		password = "password123"
	)
	u, _, err := userSvc.Register(ctx, application.RegisterInput{Name: "Demo User", Email: email, Password: password})
	if apperror.Is(err, apperror.KindDuplicateIdentity) {
		logger.WithField("email", email).Info("demo user already exists, nothing to do")
		return
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}

	p, err := postSvc.CreatePost(ctx, u.ID, "Hello from the seed script!")
	if err != nil {
		logger.WithError(err).Fatal("failed to seed post")
	}
	logger.WithFields(logrus.Fields{
		"user_id":  u.ID,
		"email":    email,
		"password": password,
		"post_id":  p.ID,
	}).Info("seeded demo data")
}
