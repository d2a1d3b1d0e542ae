package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/iliyamo/social-auth/internal/auth"
	"github.com/iliyamo/social-auth/internal/config"
	"github.com/iliyamo/social-auth/internal/database"
	"github.com/iliyamo/social-auth/internal/handler"
	"github.com/iliyamo/social-auth/internal/logging"
	"github.com/iliyamo/social-auth/internal/model"
	"github.com/iliyamo/social-auth/internal/queue"
	"github.com/iliyamo/social-auth/internal/repository"
	"github.com/iliyamo/social-auth/internal/router"
	"github.com/iliyamo/social-auth/internal/service"
)

const (
	serviceAuth   = "auth"
	serviceSocial = "social"
)

const servicesFlag = "services"

var serveFlags = map[string]cobraflags.Flag{
	servicesFlag: &cobraflags.StringFlag{
		Name:  servicesFlag,
		Value: serviceAuth + "," + serviceSocial,
		Usage: "Comma separated services to mount (auth, social)",
	},
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  serveCommand,
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

// parseServices validates the --services list.
func parseServices(s string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "":
			continue
		case serviceAuth, serviceSocial:
			out[name] = true
		default:
			return nil, fmt.Errorf("unknown service %q", name)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no services selected")
	}
	return out, nil
}

// stores holds the backends chosen by configuration.
type stores struct {
	ping        handler.Pinger
	users       service.UserStore
	interests   service.SingletonStore
	preferences service.SingletonStore
	profiles    service.ProfileStore
	friendships service.FriendshipStore
	communities service.CommunityStore

	db  *sql.DB
	rdb *redis.Client
}

func (s *stores) Close() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

func openStores(ctx context.Context, cfg config.Config, log logging.Logger) (*stores, error) {
	s := &stores{}
	if cfg.DB.Driver == config.DriverMemory {
		mem := repository.NewMemory()
		s.ping = mem
		s.users = mem.Users()
		s.interests = mem.Singleton(model.ResourceInterests)
		s.preferences = mem.Singleton(model.ResourcePreferences)
		s.profiles = mem.Profiles()
		s.friendships = mem.Friendships()
		s.communities = mem.Communities()
		log.Warn(ctx, "using in-memory store; data is lost on restart")
	} else {
		dialect, err := repository.ParseDialect(cfg.DB.Driver)
		if err != nil {
			return nil, err
		}
		db, err := database.Open(cfg.DB.Driver, cfg.DB.ConnString())
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		s.db = db
		if cfg.AutoMigrate {
			if err := database.Migrate(ctx, db, cfg.DB.Driver, database.MigrateUp); err != nil {
				s.Close()
				return nil, err
			}
		}
		users := repository.NewUserRepo(db, dialect)
		s.ping = users
		s.users = users
		s.interests = repository.NewSingletonRepo(db, dialect, model.ResourceInterests)
		s.preferences = repository.NewSingletonRepo(db, dialect, model.ResourcePreferences)
		s.profiles = repository.NewProfileRepo(db, dialect)
		s.friendships = repository.NewFriendshipRepo(db, dialect)
		s.communities = repository.NewCommunityRepo(db, dialect)
	}

	if cfg.PreferencesBackend == config.PreferencesRedis {
		rdb, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.rdb = rdb
		s.preferences = repository.NewRedisSingletonStore(rdb, model.ResourcePreferences)
		log.Info(ctx, "preferences stored in redis", "addr", cfg.Redis.Addr)
	}
	return s, nil
}

func serveCommand(_ *cobra.Command, _ []string) error {
	enabled, err := parseServices(serveFlags[servicesFlag].GetString())
	if err != nil {
		return err
	}

	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel).With("env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		events = queue.NewAMQPPublisher(cfg.AMQPURL, log)
	}

	issuer := auth.NewIssuer(cfg.JWTSecret)
	e := router.New(log, router.Options{
		AllowOrigins:   cfg.CORSAllowOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})
	router.RegisterRoutes(e, st.ping)

	if enabled[serviceAuth] {
		authSvc := service.NewAuthService(st.users, auth.NewBcryptHasher(cfg.BcryptCost), issuer, events, log)
		interests := service.NewInterestsService(st.interests, log)
		router.RegisterAuth(e, handler.NewAuthHandler(authSvc, interests), issuer)
	}
	if enabled[serviceSocial] {
		router.RegisterSocial(e, router.Social{
			Preferences: handler.NewPreferencesHandler(service.NewPreferencesService(st.preferences, events, log)),
			Profiles:    handler.NewProfileHandler(service.NewProfileService(st.profiles, log)),
			Friendships: handler.NewFriendshipHandler(service.NewFriendshipService(st.friendships, st.users, log)),
			Communities: handler.NewCommunityHandler(service.NewCommunityService(st.communities, log)),
		}, issuer)
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", addr, "services", serveFlags[servicesFlag].GetString())
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
