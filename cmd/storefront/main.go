package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/gallery"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/order"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	backend, gdb, err := openStorage(initCtx, cfg)
	cancel()
	if err != nil {
		logger.Error("storage init error", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka init error", "error", err)
			os.Exit(1)
		}
		publisher = producer
		logger.Info("kafka producer ready", "brokers", producer.String())
	}

	cat, err := catalog.Load()
	if err != nil {
		logger.Error("catalog load error", "error", err)
		os.Exit(1)
	}

	var searcher gallery.Searcher = cat
	if cfg.ES_URL != "" {
		esCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		searcher, err = openSearch(esCtx, cfg, cat)
		cancel()
		if err != nil {
			logger.Error("elasticsearch init error", "error", err)
			os.Exit(1)
		}
	}

	rates := checkout.Rates{TaxRate: cfg.TaxRate, Shipping: cfg.ShippingFee}
	submitter := order.EventSubmitter{
		Publisher: publisher,
		Topic:     events.TopicOrder,
		Next:      order.StubSubmitter{Delay: cfg.OrderDelay},
	}
	sessions := session.NewManager(backend, auth.NewStubIdentity(cfg.JWTSecret), submitter, rates)
	sessions.ChatDelay = cfg.ChatDelay
	sessions.Publisher = publisher
	sessions.MaxSessions = cfg.SessionCacheSize
	sessions.IdleTTL = cfg.SessionTTL

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := &httpserver.Deps{
		Products: httpserver.NewProductHTTP(cat, searcher),
		Cart:     &httpserver.CartHTTP{Sessions: sessions, Catalog: cat},
		Auth:     &httpserver.AuthHTTP{Sessions: sessions, Publisher: publisher},
		Checkout: &httpserver.CheckoutHTTP{Sessions: sessions},
		Chat:     &httpserver.ChatHTTP{Sessions: sessions},
	}
	if gdb != nil {
		deps.Ready = func(ctx context.Context) error { return db.Ping(ctx, gdb) }
	}
	httpserver.Register(e, deps)

	addr := ":" + strconv.Itoa(cfg.ServerPort)
	go func() {
		logger.Info("starting storefront", "addr", addr, "storage", cfg.StorageDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if gdb != nil {
		if err := db.Close(gdb); err != nil {
			logger.Error("db close error", "error", err)
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Backend, *gorm.DB, error) {
	switch cfg.StorageDriver {
	case "memory":
		return storage.NewMemory(), nil, nil
	case "sqlite":
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewGormStorage(gdb), gdb, nil
	case "postgres":
		gdb, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewGormStorage(gdb), gdb, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// openSearch connects to Elasticsearch and (re)indexes the catalog so the
// index always matches the embedded fixture.
func openSearch(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) (*search.Index, error) {
	client, err := search.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ix := search.NewIndex(client, cfg.ES_INDEX)
	if err := ix.Put(ctx, cat.All()); err != nil {
		return nil, err
	}
	return ix, nil
}
