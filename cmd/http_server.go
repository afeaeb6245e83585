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

	"github.com/mondido/hosted-checkout/internal"
	"github.com/mondido/hosted-checkout/internal/cart"
	cartPostgres "github.com/mondido/hosted-checkout/internal/cart/postgres"
	"github.com/mondido/hosted-checkout/internal/checkout"
	"github.com/mondido/hosted-checkout/internal/core/events"
	"github.com/mondido/hosted-checkout/internal/mondido"
	"github.com/mondido/hosted-checkout/internal/order"
	orderPostgres "github.com/mondido/hosted-checkout/internal/order/postgres"
	"github.com/mondido/hosted-checkout/internal/product"
	productPostgres "github.com/mondido/hosted-checkout/internal/product/postgres"
	"github.com/mondido/hosted-checkout/internal/storefront"
	"github.com/mondido/hosted-checkout/internal/transport"
	"github.com/mondido/hosted-checkout/internal/transport/rest"
	"github.com/mondido/hosted-checkout/internal/transport/swagger"
	"github.com/mondido/hosted-checkout/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server for storefront pages, checkout and gateway callbacks`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config            *internal.Config
	DB                *sqlx.DB
	Router            *chi.Mux
	StorefrontHandler *storefront.Handler
	CheckoutHandler   *checkout.Handler
	Logger            *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Config, deps.StorefrontHandler, deps.CheckoutHandler, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.LoggerWrapper()

	if _, err := swagger.LoadSpec(context.Background(), "./api/openapi.yml"); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	renderer, err := storefront.NewRenderer()
	if err != nil {
		return nil, err
	}
	selector := storefront.NewSelector(config.Gateway)

	eventBus := events.NewEventBus(appLogger)

	orderRepo := orderPostgres.NewOrderRepository(gormDB)
	cartRepo := cartPostgres.NewCartRepository(gormDB)
	productRepo := productPostgres.NewProductRepository(gormDB)

	orderService := order.NewService(orderRepo, config.Server.BaseURL, appLogger)
	productService := product.NewService(productRepo, appLogger)
	cartService := cart.NewService(cartRepo, productService, config.Gateway.Currency, appLogger)

	callbackURL := config.Server.BaseURL + "/gateway/callback"
	builder := checkout.NewBuilder(config.Gateway, callbackURL)
	if config.Gateway.Secret != "" {
		builder.Use(checkout.HashTransform(config.Gateway.Secret))
	}

	mondidoClient := mondido.NewClient(config.Gateway, appLogger)
	checkoutService := checkout.NewService(builder, mondidoClient, orderService, cartService, eventBus, appLogger)

	checkoutEventHandler := checkout.NewEventHandler(orderService, appLogger)
	checkoutEventHandler.RegisterEventHandlers(eventBus)

	baseHandler := transport.NewBaseHandler(appLogger)
	notifier := checkout.NewWebhookNotifier(baseHandler, orderService, eventBus, appLogger)
	checkoutHandler := checkout.NewHandler(baseHandler, checkoutService, renderer, selector, notifier)
	storefrontHandler := storefront.NewHandler(baseHandler, config.Gateway, renderer, selector, productService, cartService, orderService)

	return &Dependencies{
		Config:            config,
		Logger:            appLogger,
		DB:                db,
		Router:            chi.NewRouter(),
		StorefrontHandler: storefrontHandler,
		CheckoutHandler:   checkoutHandler,
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

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
