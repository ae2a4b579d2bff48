package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/activitylog"
	activitylogPostgres "github.com/servicehub/admin-backend/internal/activitylog/postgres"
	"github.com/servicehub/admin-backend/internal/auth"
	"github.com/servicehub/admin-backend/internal/booking"
	bookingPostgres "github.com/servicehub/admin-backend/internal/booking/postgres"
	"github.com/servicehub/admin-backend/internal/core/events"
	"github.com/servicehub/admin-backend/internal/module"
	modulePostgres "github.com/servicehub/admin-backend/internal/module/postgres"
	"github.com/servicehub/admin-backend/internal/permission"
	permissionPostgres "github.com/servicehub/admin-backend/internal/permission/postgres"
	"github.com/servicehub/admin-backend/internal/registration"
	registrationPostgres "github.com/servicehub/admin-backend/internal/registration/postgres"
	"github.com/servicehub/admin-backend/internal/role"
	rolePostgres "github.com/servicehub/admin-backend/internal/role/postgres"
	"github.com/servicehub/admin-backend/internal/transport/rest"
	"github.com/servicehub/admin-backend/internal/user"
	userPostgres "github.com/servicehub/admin-backend/internal/user/postgres"
	"github.com/servicehub/admin-backend/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	Activity *activitylog.AsyncRecorder
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.Activity.Shutdown()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	db := deps.GormDB

	activityRepo := activitylogPostgres.NewActivityLogRepository(db)
	recorder := deps.Activity
	if recorder == nil {
		deps.Activity = activitylog.NewAsyncRecorder(activityRepo, activitylog.Config{
			Workers:   cfg.ActivityLog.Workers,
			QueueSize: cfg.ActivityLog.QueueSize,
		}, deps.Logger)
		recorder = deps.Activity
	}

	// Audit entries flow through the in-process bus: mutations publish
	// activity.recorded, the async pool subscriber persists them.
	bus := events.NewEventBus(deps.Logger)
	activitylog.SubscribeRecorder(bus, recorder)
	audit := activitylog.NewBusRecorder(bus)

	bus.Subscribe(events.EventTypeRegistrationFinalized, func(ctx context.Context, event events.Event) error {
		deps.Logger.Info("registration finalized", "event_id", event.EventID(), "payload", event.Payload())
		return nil
	})
	bus.Subscribe(events.EventTypePermissionsReplaced, func(ctx context.Context, event events.Event) error {
		deps.Logger.Info("role grants replaced", "event_id", event.EventID(), "payload", event.Payload())
		return nil
	})

	moduleRepo := modulePostgres.NewModuleRepository(db)
	moduleService := module.NewService(moduleRepo, audit, deps.Logger)
	moduleHandler := module.NewHandler(moduleService)

	roleRepo := rolePostgres.NewRoleRepository(db)
	roleService := role.NewService(roleRepo, audit, deps.Logger)
	roleHandler := role.NewHandler(roleService)

	userRepo := userPostgres.NewUserRepository(db)
	userService := user.NewService(userRepo, roleService, audit, cfg.Security.BCryptCost, deps.Logger)
	staffHandler := user.NewHandler(userService)

	permissionRepo := permissionPostgres.NewPermissionRepository(db)
	resolver := permission.NewResolver(permissionRepo, cfg.Permissions.IgnoreInactiveRoles, deps.Logger)
	permissionService := permission.NewService(permissionRepo, roleService, userService, audit, bus, deps.Logger)
	permissionHandler := permission.NewHandler(permissionService, resolver)

	registrationRepo := registrationPostgres.NewRegistrationRepository(db)
	registrationService := registration.NewService(registrationRepo, audit, bus, deps.Logger)
	registrationHandler := registration.NewHandler(registrationService)

	bookingRepo := bookingPostgres.NewBookingRepository(db)
	bookingService := booking.NewService(bookingRepo, audit, deps.Logger)
	bookingHandler := booking.NewHandler(bookingService)

	activityHandler := activitylog.NewHandler(activityRepo)

	tokenGen := auth.NewJWTTokenGenerator(cfg.Security.AccessTokenSecret, cfg.Security.RefreshTokenSecret)
	if cfg.Security.AccessTokenDuration > 0 {
		tokenGen.AccessTokenTTL = cfg.Security.AccessTokenDuration
	}
	if cfg.Security.RefreshTokenDuration > 0 {
		tokenGen.RefreshTokenTTL = cfg.Security.RefreshTokenDuration
	}
	authService := auth.NewService(userRepo, roleService, tokenGen)
	authHandler := auth.NewHandler(authService)

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		authHandler,
		moduleHandler,
		roleHandler,
		permissionHandler,
		registrationHandler,
		bookingHandler,
		staffHandler,
		activityHandler,
		resolver,
		deps.Logger,
	)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the already-open pgx connection so GORM repositories and the
// health check share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
}
