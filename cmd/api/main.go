// Package main is the entry point for the helpdesk API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk/ticket-system/internal/api"
	"github.com/helpdesk/ticket-system/internal/core/ports"
	"github.com/helpdesk/ticket-system/internal/core/service"
	"github.com/helpdesk/ticket-system/internal/infrastructure/db/memory"
	mongodb "github.com/helpdesk/ticket-system/internal/infrastructure/db/mongo"
	redisdb "github.com/helpdesk/ticket-system/internal/infrastructure/db/redis"
	"github.com/helpdesk/ticket-system/internal/infrastructure/http/handlers"
	"github.com/helpdesk/ticket-system/internal/pkg/config"
	"github.com/helpdesk/ticket-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// repositories is the storage backend selected by STORE.
type repositories struct {
	tx          ports.TxManager
	users       ports.UserRepository
	roles       ports.RoleRepository
	memberships ports.MembershipRepository
	tickets     ports.TicketRepository
	responses   ports.ResponseRepository
	idem        ports.IdempotencyStore
	checks      []handlers.Check
	close       func(context.Context)
}

// @title Helpdesk API
// @version 1.0
// @description Support tickets, responses, users and roles behind bearer-token authentication.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token from /api/auth/login.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{Pretty: true})
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "helpdesk-api",
	})

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("storage unavailable")
	}
	defer repos.close(context.Background())

	creds := service.NewCredentialVerifier(bcrypt.DefaultCost)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL)
	manager := service.NewMembershipManager(repos.roles, repos.memberships)

	boot := service.NewBootstrapper(repos.tx, repos.users, repos.roles, manager, creds, log)
	if err := boot.EnsureRoles(ctx); err != nil {
		log.Fatal().Err(err).Msg("seed roles")
	}
	if err := boot.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}

	e := api.NewRouter(api.Services{
		Auth:      service.NewAuthService(repos.users, repos.memberships, creds, tokens, log),
		Tokens:    tokens,
		Tickets:   service.NewTicketService(repos.tx, repos.tickets, repos.responses, repos.users, repos.idem, log),
		Responses: service.NewResponseService(repos.tx, repos.responses, repos.tickets, repos.users, log),
		Users:     service.NewUserService(repos.tx, repos.users, repos.memberships, manager, creds, log),
		Roles:     service.NewRoleService(repos.tx, repos.roles, log),
	}, log, repos.checks...)

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("starting helpdesk api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openRepositories connects the configured backend. The memory store keeps
// everything in process and runs without Redis, so ticket creation is not
// deduplicated there.
func openRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on exit")
		store := memory.NewStore()
		return &repositories{
			tx:          store,
			users:       store.Users(),
			roles:       store.Roles(),
			memberships: store.Memberships(),
			tickets:     store.Tickets(),
			responses:   store.Responses(),
			close:       func(context.Context) {},
		}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &repositories{
		tx:          mongodb.NewTxManager(client),
		users:       mongodb.NewUserRepository(db),
		roles:       mongodb.NewRoleRepository(db),
		memberships: mongodb.NewMembershipRepository(db),
		tickets:     mongodb.NewTicketRepository(db),
		responses:   mongodb.NewResponseRepository(db),
		idem:        redisdb.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL),
		checks:      []handlers.Check{handlers.MongoCheck(db), handlers.RedisCheck(rdb)},
		close: func(ctx context.Context) {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("close redis")
			}
			if err := client.Disconnect(ctx); err != nil {
				log.Error().Err(err).Msg("disconnect mongo")
			}
		},
	}, nil
}
