// Command signagectl administers the user store directly, without going
// through the API. It is used to create the first administrator and to
// mint access tokens.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"signage-user-service/cmd/api/di"
	"signage-user-service/cmd/api/infrastructure"
	"signage-user-service/internal/adapter/db/postgres"
	"signage-user-service/internal/config"
	domain "signage-user-service/internal/domain/user"
	"signage-user-service/internal/usecase/user"
	"signage-user-service/pkg/auth"
	"signage-user-service/pkg/logger"
)

var (
	app        *kingpin.Application
	configPath *string
	timeout    *time.Duration
)

func main() {
	app = kingpin.New("signagectl", "administer the signage user store")
	configPath = app.Flag("config", "directory holding app.env").Short('C').Envar("CONFIG_PATH").Default(".").String()
	timeout = app.Flag("timeout", "time limit for the whole command").Default("1m").Duration()

	setupBootstrapCommand()
	setupTokenCommand()
	setupStatusCommand()

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func setupBootstrapCommand() {
	cmd := app.Command("bootstrap", "create an administrator with a generated password")
	name := cmd.Flag("user", "name of the administrator").Required().String()

	cmd.Action(func(*kingpin.ParseContext) error {
		return withEnv(func(ctx context.Context, e *env) error {
			res, err := di.NewUsecase(e.cfg, e.repo, e.log).BootstrapAdmin(ctx, user.BootstrapAdminRequest{Name: *name})
			if err != nil {
				return err
			}
			return printCreated(os.Stdout, res)
		})
	})
}

func setupTokenCommand() {
	cmd := app.Command("token", "mint an access token for an existing user")
	name := cmd.Flag("user", "name of the user").Required().String()

	cmd.Action(func(*kingpin.ParseContext) error {
		return withEnv(func(ctx context.Context, e *env) error {
			u, err := e.repo.GetByName(ctx, *name)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("user %q doesn't exist", *name)
				}
				return err
			}

			tokens := auth.NewTokenIssuer(e.cfg.Auth.JWTSecret, e.cfg.Auth.TokenTTL(), e.cfg.Auth.Issuer)
			token, err := tokens.Issue(u.Name)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		})
	})
}

func setupStatusCommand() {
	cmd := app.Command("status", "show how many users are stored")

	cmd.Action(func(*kingpin.ParseContext) error {
		return withEnv(func(ctx context.Context, e *env) error {
			n, err := e.repo.Count(ctx)
			if err != nil {
				return err
			}
			return printStatus(os.Stdout, n, e.cfg.Users.MaxUsers)
		})
	})
}

type env struct {
	cfg  *config.Config
	log  *zap.Logger
	repo *postgres.UserRepoPG
}

// withEnv loads configuration, opens the store and runs fn against it.
func withEnv(fn func(ctx context.Context, e *env) error) error {
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.NewWithConfig(logger.Config{
		Level:       cfg.Logger.Level,
		Format:      "console",
		OutputPath:  "stderr",
		ServiceName: "signagectl",
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := infrastructure.NewDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = infrastructure.CloseDatabase(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	return fn(ctx, &env{
		cfg:  cfg,
		log:  log,
		repo: postgres.NewUserRepoPG(db, cfg.Users.MaxUsers, log),
	})
}

func printCreated(w io.Writer, res *user.CreateUserResponse) error {
	_, err := fmt.Fprintf(w, "user:     %s\ngroups:   %v\npassword: %s\n", res.User.Name, res.User.Groups, res.Password)
	return err
}

func printStatus(w io.Writer, count int64, maxUsers int) error {
	limit := "unlimited"
	if maxUsers > 0 {
		limit = fmt.Sprintf("%d", maxUsers)
	}
	_, err := fmt.Fprintf(w, "users: %d (limit %s)\n", count, limit)
	return err
}
