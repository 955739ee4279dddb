// Package appcontext wires one client session: persistence, the API client and the
// stores built on top of it.
package appcontext

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fjod/go_storefront/internal/account"
	"github.com/fjod/go_storefront/internal/api"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/config"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/fjod/go_storefront/internal/transport"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type ApplicationContext struct {
	Cf     *config.Client
	Logger *zap.Logger

	SessionRepo *session.Repository
	Session     *session.Store
	API         *api.Client
	Feed        *notify.Feed
	Notifier    notify.Notifier

	Cart     *cart.Store
	Orders   *order.Store
	Catalog  *catalog.Catalog
	Checkout *checkout.Checkout
	Account  *account.Manager

	roundTripper http.RoundTripper
}

type Option func(*ApplicationContext)

// WithRoundTripper replaces the default instrumented transport, e.g. with an
// httptest server's client transport.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(app *ApplicationContext) {
		app.roundTripper = rt
	}
}

func NewApplicationContext(ctx context.Context, cf *config.Client, logger *zap.Logger, opts ...Option) (*ApplicationContext, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &ApplicationContext{Cf: cf, Logger: logger}
	for _, opt := range opts {
		opt(app)
	}
	if err := app.Init(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (app *ApplicationContext) Init(ctx context.Context) error {
	if err := app.setUpSession(ctx); err != nil {
		return err
	}
	app.setUpAPIClient()
	app.setUpNotifier()
	app.setUpStores()

	// cart is loaded at start only for a remembered session
	if app.Session.IsAuthenticated() {
		if err := app.Cart.Fetch(ctx); err != nil {
			app.Logger.Warn("initial cart fetch failed", zap.Error(err))
		}
	}
	return nil
}

func (app *ApplicationContext) setUpSession(ctx context.Context) error {
	app.Logger.Debug("setting up session store", zap.String("path", app.Cf.SessionDBPath))
	repo, err := session.NewRepository(app.Cf.SessionDBPath)
	if err != nil {
		return fmt.Errorf("session storage: %w", err)
	}
	app.SessionRepo = repo
	if err := repo.RunMigrations(); err != nil {
		return fmt.Errorf("session storage: %w", err)
	}

	app.Session = session.NewStore(repo, app.Logger.Named("session"))
	if err := app.Session.Load(ctx); err != nil {
		// a broken session file means signed out, not a failed start
		app.Logger.Warn("could not restore session", zap.Error(err))
	}
	return nil
}

func (app *ApplicationContext) setUpAPIClient() {
	rt := app.roundTripper
	if rt == nil {
		rt = otelhttp.NewTransport(http.DefaultTransport)
	}
	if app.Cf.BreakerEnabled {
		rt = transport.NewBreakerRoundTripper(rt, transport.BreakerSettings{
			Name:        "storefront-api",
			MaxFailures: app.Cf.BreakerMaxFailures,
			OpenTimeout: app.Cf.BreakerOpenTimeout,
		})
	}

	opts := []transport.Option{transport.WithRoundTripper(rt)}
	if app.Cf.RequestTimeout > 0 {
		opts = append(opts, transport.WithTimeout(app.Cf.RequestTimeout))
	}
	app.API = api.New(app.Cf.APIBaseURL, opts...)
	app.Logger.Debug("api client ready", zap.String("base_url", app.Cf.APIBaseURL))
}

func (app *ApplicationContext) setUpNotifier() {
	app.Feed = notify.NewFeed(32)
	app.Notifier = notify.Multi(app.Feed, notify.NewLogNotifier(app.Logger.Named("notify")))
}

func (app *ApplicationContext) setUpStores() {
	app.Cart = cart.NewStore(app.API, app.Session, app.Notifier, app.Logger.Named("cart"))
	app.Orders = order.NewStore(app.API, app.Session, app.Notifier, app.Logger.Named("order"))
	app.Catalog = catalog.New(app.API, app.Logger.Named("catalog"))
	app.Checkout = checkout.New(app.Cart, app.Orders, app.Logger.Named("checkout"))
	app.Account = account.NewManager(app.API, app.Session, app.Cart, app.Notifier, app.Logger.Named("account"))
}

func (app *ApplicationContext) Close() {
	if app.SessionRepo != nil {
		if err := app.SessionRepo.Close(); err != nil {
			app.Logger.Warn("closing session storage", zap.Error(err))
		}
	}
	_ = app.Logger.Sync()
}
