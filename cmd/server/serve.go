package main

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "net/http"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"

    "github.com/chrolluash/rentconnect/internal/config"
    "github.com/chrolluash/rentconnect/internal/database"
    "github.com/chrolluash/rentconnect/internal/geocode"
    "github.com/chrolluash/rentconnect/internal/handler"
    "github.com/chrolluash/rentconnect/internal/middleware"
    "github.com/chrolluash/rentconnect/internal/queue"
    "github.com/chrolluash/rentconnect/internal/repository"
    "github.com/chrolluash/rentconnect/internal/router"
    "github.com/chrolluash/rentconnect/internal/service"
    "github.com/chrolluash/rentconnect/internal/session"
    "github.com/chrolluash/rentconnect/internal/storage"
)

func serveCmd() *cobra.Command {
    var migrate bool
    cmd := &cobra.Command{
        Use:   "serve",
        Short: "Start the HTTP API",
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg := config.Load()
            log := config.NewLogger(cfg)
            ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
            defer stop()
            return serve(ctx, cfg, log, migrate)
        },
    }
    cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
    return cmd
}

func serve(ctx context.Context, cfg config.Config, log *logrus.Logger, migrate bool) error {
    if migrate {
        if err := migrateUp(cfg, log); err != nil {
            return err
        }
    }

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        return fmt.Errorf("open database: %w", err)
    }
    defer db.Close()

    disk, err := storage.NewDisk(cfg.UploadDir, cfg.MaxUploadBytes)
    if err != nil {
        return err
    }

    rdb := config.NewRedisClient(cfg.Redis, log)
    if rdb != nil {
        defer rdb.Close()
    }
    store, err := sessionStore(cfg.SessionStore, rdb, db)
    if err != nil {
        return err
    }
    log.WithField("store", fmt.Sprintf("%T", store)).Info("session store")
    sessions := session.NewManager(store, cfg.SessionSecret, cfg.SessionTTL)

    var events queue.Publisher = queue.NopPublisher{}
    if cfg.EventsEnabled {
        events = queue.NewAMQPPublisher(cfg.RabbitURL, log)
    }
    cache := middleware.NewResponseCache(cfg.Cache, rdb, log)

    users := repository.NewUserRepo(db)
    props := repository.NewPropertyRepo(db)
    geo := geocode.NewClient(geocode.Options{
        BaseURL:   cfg.Geocode.URL,
        Timeout:   cfg.Geocode.Timeout,
        Country:   cfg.Geocode.Country,
        Capital:   cfg.Geocode.Capital,
        UserAgent: cfg.Geocode.UserAgent,
    }, log)

    authSvc := service.NewAuthService(users, sessions, cfg.BcryptCost, log)
    propSvc := service.NewPropertyService(props, disk, events, cache, log)
    profileSvc := service.NewProfileService(users, disk, log)
    geoSvc := service.NewGeocodeService(geo)

    base := cfg.PublicBasePath
    e := router.New(router.Handlers{
        Auth:     handler.NewAuthHandler(authSvc, sessions, handler.CookieOptions{Secure: cfg.CookieSecure}, base, log),
        Landlord: handler.NewLandlordHandler(propSvc, base, log),
        Tenant:   handler.NewTenantHandler(propSvc, base, log),
        Geocode:  handler.NewGeocodeHandler(geoSvc, log),
        Profile:  handler.NewProfileHandler(profileSvc, base, log),
        Health:   handler.Health(db),
    }, router.Options{
        Sessions:    sessions,
        Cache:       cache,
        RateLimit:   middleware.RateLimit(cfg.RateLimit, rdb, log),
        UploadDir:   cfg.UploadDir,
        BodyLimit:   bodyLimit(cfg.MaxUploadBytes),
        CORSOrigins: cfg.CORSOrigins,
        Log:         log,
    })

    return run(ctx, e, ":"+cfg.Port, log.WithField("env", cfg.Env))
}

// sessionStore picks where login sessions live.  "auto" prefers Redis and
// falls back to the sessions table.
func sessionStore(kind string, rdb *redis.Client, db *sql.DB) (session.Store, error) {
    switch kind {
    case "", "auto":
        if rdb != nil {
            return session.NewRedisStore(rdb, ""), nil
        }
        return repository.NewSessionRepo(db), nil
    case "redis":
        if rdb == nil {
            return nil, errors.New("SESSION_STORE=redis but Redis is disabled or unreachable")
        }
        return session.NewRedisStore(rdb, ""), nil
    case "mysql":
        return repository.NewSessionRepo(db), nil
    case "memory":
        return session.NewMemoryStore(), nil
    }
    return nil, fmt.Errorf("unknown SESSION_STORE %q", kind)
}

// bodyLimit leaves room for a full gallery of maximum-size photos plus form fields.
func bodyLimit(perFile int64) string {
    return fmt.Sprintf("%dK", (perFile*9)/1024+1024)
}

func run(ctx context.Context, e *echo.Echo, addr string, log logrus.FieldLogger) error {
    errc := make(chan error, 1)
    go func() {
        log.WithField("addr", addr).Info("listening")
        errc <- e.Start(addr)
    }()

    select {
    case err := <-errc:
        if errors.Is(err, http.ErrServerClosed) {
            return nil
        }
        return err
    case <-ctx.Done():
    }

    log.Info("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    return e.Shutdown(shutdownCtx)
}
