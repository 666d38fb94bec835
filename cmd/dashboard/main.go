package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/auth"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/config"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory/repo"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/events"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/i18n"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/router"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/session"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/setting"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/shell"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/token"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/update"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/pkg/database"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/pkg/localstore"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting dashboard-core-go")

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}

	// the state file plays the role browser local storage plays for the
	// web front-end: sessions and preferences survive restarts through it
	kv, err := localstore.Open(cfg.StatePath)
	if err != nil {
		sugar.Fatalf("open state file %s: %v", cfg.StatePath, err)
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// user directory: Postgres when a DSN is configured, seed accounts otherwise
	var source directory.RecordSource
	if cfg.DatabaseURL != "" {
		sqlDB, err := database.Connect(database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			sugar.Fatalf("db connect: %v", err)
		}
		defer sqlDB.Close()

		// wrap with sqlx for convenience in the directory repo
		sqlxDB := sqlx.NewDb(sqlDB, "postgres")
		defer sqlxDB.Close()

		pg := repo.NewPGDirectory(sqlxDB)
		if err := pg.EnsureTable(ctx); err != nil {
			sugar.Fatalf("ensure users table: %v", err)
		}
		seedAccounts, _ := directory.NewSeedSource().GetUsers(ctx)
		if err := pg.Bootstrap(ctx, seedAccounts); err != nil {
			sugar.Warnf("bootstrap demo accounts: %v", err)
		}
		source = pg
		sugar.Info("user directory backed by postgres")
	} else {
		sugar.Info("no DATABASE_URL set, serving demo accounts only")
	}

	// tunables the settings screen owns override the env defaults, but only
	// once the user has actually saved them
	sessionTTL := cfg.SessionTTL()
	pollEvery := cfg.UpdateInterval()
	if prefs, stored := setting.ReadPreferences(kv, sugar); stored {
		if prefs.SessionTTLHours > 0 {
			sessionTTL = time.Duration(prefs.SessionTTLHours) * time.Hour
		}
		if prefs.UpdatePollMinutes > 0 {
			pollEvery = time.Duration(prefs.UpdatePollMinutes) * time.Minute
		}
	}

	bus := events.NewBus(sugar)
	sessions := session.NewStore(kv, sessionTTL, sugar)

	authSvc := auth.NewService(source, sessions, bus, sugar)
	shellMgr := shell.NewManager(authSvc, bus, sugar)
	authSvc.AttachShell(shellMgr)

	settingSvc := setting.NewService(kv, source, authSvc, sugar)
	i18nSvc := i18n.NewService(i18n.NewCatalog(), settingSvc, bus, sugar)
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL())

	checker := update.NewChecker(update.Config{
		Endpoint:       cfg.UpdateEndpoint,
		Interval:       pollEvery,
		CurrentVersion: cfg.AppVersion,
	}, bus, shellMgr, sugar)
	if cfg.UpdateEndpoint != "" {
		go checker.Run(ctx)
	} else {
		sugar.Info("no UPDATE_ENDPOINT set, release polling disabled")
	}

	// pick the persisted session back up so a restart lands signed in
	if u, err := authSvc.RestoreSession(ctx); err != nil {
		sugar.Warnf("restore session: %v", err)
	} else if u != nil {
		sugar.Infow("session restored", "username", u.Username)
	}

	sugar.Info("dashboard core is running; press Ctrl+C to stop")

	// mount http server
	handler := router.RegisterRoutes(router.Deps{
		Auth:     authSvc,
		Tokens:   tokens,
		Settings: settingSvc,
		Sessions: sessions,
		I18n:     i18nSvc,
		Shell:    shellMgr,
		Updates:  checker,
		Origins:  cfg.AllowedOrigins,
	}, sugar)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
