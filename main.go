package main

// GET  /                      - Home: current user and cart size
// GET  /shop                  - Full product listing
// POST /products              - Create a new product in the catalog
// GET  /products/{id}         - Single product
// GET  /cart                  - Cart lines, total and count
// POST /cart/add/{id}         - Add a product to the session cart
// POST /cart/remove/{id}      - Remove a product line from the cart
// POST /cart/checkout         - Empty the cart
// POST /register, /login      - Accounts
// GET  /logout

import (
	"context"
	_ "embed"
	"net/http"
	"os"
	"os/signal"
	"storefront/config"
	"storefront/handler"
	"storefront/service"
	"storefront/store"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// --- EMBED MIGRATIONS ---
//
//go:embed migrations.sql
var migrationSQL string

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	// --- Stores ---
	var (
		catalog store.Catalog
		users   store.UserStore
	)
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := pg.Migrate(ctx, migrationSQL); err != nil {
			return err
		}
		log.Info("database migrations executed")
		if cfg.SeedProducts {
			n, err := pg.Seed(ctx, store.SampleProducts())
			if err != nil {
				return err
			}
			log.WithField("inserted", n).Info("product catalog seeded")
		}
		catalog, users = pg, pg.Users()
	} else {
		log.Warn("DATABASE_URL not set, using in-memory catalog and users")
		var seed = store.SampleProducts()
		if !cfg.SeedProducts {
			seed = nil
		}
		catalog, users = store.NewMemoryCatalog(seed), store.NewMemoryUserStore()
	}

	cached, err := store.NewCachedCatalog(catalog, cfg.CatalogCacheSize)
	if err != nil {
		return err
	}

	var sessions store.SessionStore
	if cfg.UseRedis() {
		rdb, err := store.NewRedisClient(ctx, store.RedisOptions{
			Addr:          cfg.RedisAddr,
			DB:            cfg.RedisDB,
			SentinelAddrs: cfg.RedisSentinelAddrs,
			MasterName:    cfg.RedisMasterName,
			MaxRetries:    10,
		}, log)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = store.NewRedisSessionStore(rdb, cfg.SessionTTL)
	} else {
		sessions = store.NewMemorySessionStore(cfg.SessionTTL)
	}

	// --- Service ---
	svc := service.NewService(cached, sessions, users)
	var serviceInterface service.ServiceInterface = svc

	// --- Handlers ---
	cookie := handler.DefaultCookie()
	cookie.MaxAge = cfg.SessionTTL
	h := handler.NewHandler(serviceInterface, log,
		handler.WithCartAuth(cfg.CartRequireAuth),
		handler.WithCookie(cookie),
	)

	// --- Router ---
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	// --- Server ---
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.WithCORS(r, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("server running on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
