package router

import (
	"context"

	"github.com/oksasatya/postboard/internal/application"
	"github.com/oksasatya/postboard/internal/container"
	repo "github.com/oksasatya/postboard/internal/domain/repository"
	"github.com/oksasatya/postboard/internal/infrastructure/cache"
	"github.com/oksasatya/postboard/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/postboard/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/postboard/internal/interface/http"
	"github.com/oksasatya/postboard/internal/router/modules"
)

type Repositories struct {
	Users repo.UserRepository
	Posts repo.PostRepository
}

// buildRepositories picks the store from the container: Postgres when a pool
// is set, the in-memory store otherwise. Posts are cached when Redis is set.
func buildRepositories() Repositories {
	var r Repositories
	if pool := container.GetPGPool(); pool != nil {
		r.Users = pginfra.NewUserRepository(pool)
		r.Posts = pginfra.NewPostRepository(pool)
	} else {
		r.Users = memory.NewUserRepository()
		r.Posts = memory.NewPostRepository()
	}
	if rdb := container.GetRedis(); rdb != nil {
		r.Posts = cache.NewPostRepository(r.Posts, rdb, container.GetConfig().PostCacheTTL, container.GetLogger())
	}
	return r
}

// publisher returns the job publisher, or nil when RabbitMQ is not set. The
// nil check avoids handing services a non-nil interface over a nil pointer.
func publisher() application.JobPublisher {
	if p := container.GetRabbitPub(); p != nil {
		return p
	}
	return nil
}

func healthChecks() map[string]handlers.Check {
	checks := map[string]handlers.Check{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

// InitModules builds services from the container and registers every module.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()
	repos := buildRepositories()
	pub := publisher()

	userSvc := application.NewUserService(repos.Users, jwt, pub, logger)
	userSvc.AppName = cfg.AppName
	postSvc := application.NewPostService(repos.Posts, repos.Users, pub, logger, cfg.PostSaveRetries)
	postSvc.AppName = cfg.AppName

	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger, cfg.CookieDomain, cfg.CookieSecure), jwt))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(postSvc), jwt))

	modules.NewOpsModule(handlers.NewHealthHandler(healthChecks()), cfg.MetricsEnabled).RegisterRoot(r.Engine)
}
