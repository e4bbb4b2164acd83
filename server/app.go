package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedhub/config"
	"feedhub/internal/access"
	"feedhub/internal/api"
	"feedhub/internal/auth"
	"feedhub/internal/configsvc"
	"feedhub/internal/db"
	"feedhub/internal/health"
	"feedhub/internal/identity"
	"feedhub/internal/logs"
	"feedhub/internal/metrics"
	"feedhub/internal/middleware"
	"feedhub/internal/repo"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db      *gorm.DB
	metrics *metrics.Metrics
	ctx     context.Context
	cancel  context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) error {
	a.cfg = cfg

	// 1) Логи
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	// 2) БД
	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN, a.cfg.Database.LogLevel)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	a.db = d
	if a.cfg.Database.AutoMigrate {
		if err := db.Migrate(a.db); err != nil {
			return fmt.Errorf("db migrate: %w", err)
		}
	}
	return a.initRouter(nil)
}

// initRouter собирает роутер; provider != nil подменяет внешнего провайдера.
func (a *App) initRouter(provider auth.Provider) error {
	schedPolicy, err := repo.ParseDeletePolicy(a.cfg.Scheduling.ScheduleDeletePolicy)
	if err != nil {
		return err
	}
	devPolicy, err := repo.ParseDeletePolicy(a.cfg.Scheduling.DeviceDeletePolicy)
	if err != nil {
		return err
	}
	a.metrics = metrics.New()

	// 3) Роутер + middleware
	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)
	a.Router.Use(middleware.Metrics(a.metrics))

	// 4) Служебные маршруты
	health.RegisterRoutesWithDB(a.Router, a.db) // /healthz и /readyz
	a.Router.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)

	// 5) Доменные хранилища
	stores := repo.New(a.db, repo.Policies{Schedule: schedPolicy, Device: devPolicy})
	settings := configsvc.NewRepo(a.db)
	roles := access.NewStore(a.db, settings)

	// 6) Авторизация: /authorization открыт, остальное — за bearer-токеном
	protected := a.Router.NewRoute().Subrouter()
	if a.cfg.Identity.Enabled {
		if provider == nil {
			provider = identity.NewClient(identity.Options{
				BaseURL:      a.cfg.Identity.BaseURL,
				TokenPath:    a.cfg.Identity.TokenPath,
				UserInfoPath: a.cfg.Identity.UserInfoPath,
				Timeout:      a.cfg.Identity.Timeout,
				RetryCount:   a.cfg.Identity.RetryCount,
			})
		}
		authHTTP := auth.NewHTTP(provider, roles)
		authHTTP.RegisterRoutes(a.Router)
		protected.Use(middleware.RequireIdentity(provider))
		authHTTP.RegisterProtected(protected)
	} else {
		logs.Logger.Warn("identity is disabled: API is served without authentication")
	}

	api.New(stores, a.metrics).RegisterRoutes(protected)
	configsvc.NewHTTP(settings, a.metrics).RegisterRoutes(protected)
	access.NewHTTP(roles).RegisterRoutes(protected)

	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := rt.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := rt.GetMethods()
		logs.With("http").Debugf("route: %-6v %s", methods, path)
		return nil
	})
	return nil
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	defer a.cancel()
	go func() {
		select {
		case <-sigs:
			a.cancel()
		case <-a.ctx.Done():
		}
	}()

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	defer a.closeDB()

	errCh := make(chan error, 1)
	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-a.ctx.Done():
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Warnf("http shutdown: %v", err)
	}
	return nil
}

func (a *App) closeDB() {
	if a.db == nil {
		return
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logs.Logger.Warnf("db close: %v", err)
	}
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
