package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	auth "github.com/goliatone/go-auth-oauth2"
	"github.com/goliatone/go-auth-oauth2/cmd/oauth2-provisioner/config"
	"github.com/goliatone/go-auth-oauth2/middleware/oauth2ware"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config      *gconfig.Container[*config.BaseConfig]
	bunDB       *bun.DB
	repo        auth.RepositoryManager
	provisioner *auth.Provisioner
	srv         router.Server[*fiber.App]
	logger      *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) SetDB(db *bun.DB) {
	a.bunDB = db
}

func (a *App) SetRepository(repo auth.RepositoryManager) {
	a.repo = repo
}

func (a *App) SetProvisioner(p *auth.Provisioner) {
	a.provisioner = p
}

func (a *App) SetHTTPServer(srv router.Server[*fiber.App]) {
	a.srv = srv
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("oauth2-provisioner"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}
	defer app.bunDB.Close()

	WithProvisioner(app)

	if err := WithHTTPServer(app); err != nil {
		panic(err)
	}

	addr := app.Config().GetServer().GetAddress()
	app.GetLogger("app").Info("serving oauth2 provisioner", "address", addr)
	app.srv.Serve(addr)

	sig := WaitExitSignal()
	app.GetLogger("app").Info("shutting down", "signal", sig.String())
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := OpenDatabase(ctx, app.Config().GetPersistence(), app.GetLogger("persistence"))
	if err != nil {
		return err
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	app.SetDB(db)
	app.SetRepository(repo)

	return nil
}

// OpenDatabase connects to sqlite through go-persistence-bun and applies
// the embedded migrations.
func OpenDatabase(ctx context.Context, cfg config.Persistence, logger glog.Logger) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to open database")
	}

	// sqlite allows a single writer
	sqldb.SetMaxOpenConns(1)

	client, err := persistence.New(cfg, sqldb, sqlitedialect.New())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to create persistence client")
	}

	client.SetLogger(logger)

	migrationsFS, err := fs.Sub(auth.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to open migrations directory")
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
	)

	if err := client.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to run migrations")
	}

	return client.DB(), nil
}

func WithProvisioner(app *App) {
	app.SetProvisioner(auth.NewProvisionerFromManager(
		app.repo,
		auth.WithConfig(app.Config().GetProvisioner()),
		auth.WithLogger(app.GetLogger("provisioner")),
		auth.WithActivitySink(AuditSink(app.GetLogger("audit"))),
	))
}

// AuditSink logs provisioning events
func AuditSink(logger auth.Logger) auth.ActivitySink {
	return auth.ActivitySinkFunc(func(ctx context.Context, event auth.ActivityEvent) error {
		logger.Info("oauth2 provisioning event",
			"event", string(event.EventType),
			"email", event.Email,
			"org", event.Org,
			"role", event.Role.String(),
			"occurred_at", event.OccurredAt,
		)
		return nil
	})
}

func WithHTTPServer(app *App) error {
	ocfg := app.Config().GetOAuth2()

	validator, err := oauth2ware.NewJWTValidator(oauth2ware.JWTValidatorConfig{
		SigningKey:       signingKey(ocfg),
		JWKSetURLs:       ocfg.GetJWKSetURLs(),
		Issuer:           ocfg.GetIssuer(),
		Audience:         ocfg.GetAudience(),
		AccountClaim:     ocfg.GetAccountClaim(),
		TenantClaim:      ocfg.GetTenantClaim(),
		DisplayNameClaim: ocfg.GetDisplayNameClaim(),
		Logger:           app.GetLogger("oauth2.validator"),
	})
	if err != nil {
		return err
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	srv.Router().Get("/health", func(ctx router.Context) error {
		if err := app.repo.Validate(); err != nil {
			return ctx.JSON(500, map[string]any{"status": false})
		}
		return ctx.JSON(router.StatusOK, map[string]any{"status": true})
	})

	provision := oauth2ware.New(oauth2ware.Config{
		Validator:   validator,
		Resolver:    app.provisioner,
		TokenLookup: ocfg.GetTokenLookup(),
		Logger:      app.GetLogger("oauth2"),
	})

	controller := auth.NewHTTPController(auth.HTTPConfig{
		PathPrefix: app.Config().GetServer().GetPathPrefix(),
	}, app.GetLogger("auth.http"))

	controller.RegisterRoutes(srv.Router(), provision)

	app.SetHTTPServer(srv)

	return nil
}

func signingKey(cfg config.OAuth2) oauth2ware.SigningKey {
	key := strings.TrimSpace(cfg.GetSigningKey())
	if key == "" {
		return oauth2ware.SigningKey{}
	}
	return oauth2ware.SigningKey{
		JWTAlg: cfg.GetSigningAlg(),
		Key:    []byte(key),
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
