package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"tailored-cv-web/internal/services/health"
	"tailored-cv-web/internal/session"
	"tailored-cv-web/internal/shared/config"
	"tailored-cv-web/internal/shared/server"
	"tailored-cv-web/internal/shared/server/middleware"
	"tailored-cv-web/internal/shared/storage/db"
	"tailored-cv-web/internal/shared/storage/object"
	localstore "tailored-cv-web/internal/shared/storage/object/local"
	s3store "tailored-cv-web/internal/shared/storage/object/s3"
	"tailored-cv-web/internal/tailor"
	"tailored-cv-web/internal/web"
	"tailored-cv-web/internal/wizard"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.ObjectStore
	SessionStore   session.Store
	Sessions       *session.Service
	Backend        wizard.Backend
	Wizards        *wizard.Registry
	Health         *health.Service
	SessionHandler *session.Handler
	WizardHandler  *wizard.Handler
	WebHandler     *web.Handler
}

// Options overrides dependencies, mostly for tests.
type Options struct {
	Backend wizard.Backend
	Store   object.ObjectStore
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	return BuildWithOptions(cfg, Options{})
}

// BuildWithOptions is Build with injectable dependencies.
func BuildWithOptions(cfg config.Config, opts Options) (*App, error) {
	cfg = config.Normalize(cfg)
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := opts.Store
	if store == nil {
		store, err = buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	backend := opts.Backend
	if backend == nil {
		backend = tailor.NewClient(cfg.TailorAPIURL)
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   store,
		Backend: backend,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		Sessions:       app.Sessions,
		SessionHandler: app.SessionHandler,
		WizardHandler:  app.WizardHandler,
		WebHandler:     app.WebHandler,
		Health:         app.Health,
		RateLimiter:    middleware.NewRateLimiter(nil),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Printf("bootstrap: DATABASE_URL empty; sessions kept in memory")
		return nil, nil
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; sessions kept in memory: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.SessionStore = &session.PGStore{DB: app.DB}
	} else {
		app.SessionStore = session.NewMemoryStore()
	}

	cfg := app.Config
	app.Sessions = session.NewService(app.SessionStore, cfg.LoginDelay)
	app.Wizards = wizard.NewRegistry(app.Store, app.Backend)
	app.Health = health.NewService(app.DB)

	app.SessionHandler = session.NewHandler(app.Sessions, cfg.CookieSecure, app.Wizards.Drop)
	app.WizardHandler = wizard.NewHandler(app.Wizards, cfg.MaxUploadBytes)
	app.WebHandler = web.NewHandler(app.Sessions, app.Wizards, cfg.CookieSecure, cfg.MaxUploadBytes)
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
