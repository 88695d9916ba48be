package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"journal-backend/internal/auth"
	"journal-backend/internal/config"
	delivery "journal-backend/internal/delivery/http"
	"journal-backend/internal/delivery/websocket"
	"journal-backend/internal/domain"
	"journal-backend/internal/infrastructure/db"
	"journal-backend/internal/infrastructure/fcm"
	"journal-backend/internal/repository"
	"journal-backend/internal/usecase"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, app.Config, app.Logger)
		},
	}
}

type stores struct {
	trades domain.TradeRepository
	users  domain.UserRepository
	ping   delivery.Pinger
	close  func()
}

func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (stores, error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "memory":
		logger.Warn("using in-memory storage, data is lost on restart")
		users := repository.NewInMemoryUserRepository()
		return stores{
			trades: repository.NewInMemoryTradeRepository(),
			users:  users,
			ping:   users,
			close:  func() {},
		}, nil
	case "postgres", "":
		if cfg.DB.URL == "" {
			return stores{}, errors.New("db.url is required for the postgres driver")
		}
		pool, err := db.NewPool(ctx, cfg.DB.URL, db.PoolConfigFrom(cfg.DB))
		if err != nil {
			return stores{}, err
		}
		users := repository.NewPostgresUserRepository(pool)
		return stores{
			trades: repository.NewPostgresTradeRepository(pool),
			users:  users,
			ping:   users,
			close:  pool.Close,
		}, nil
	default:
		return stores{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	tokens := auth.JWT{
		Secret:     []byte(cfg.Auth.JWTSecret),
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}

	pushClient, err := fcm.NewClient(ctx, cfg.FCM, logger.Named("fcm"))
	if err != nil {
		return err
	}
	devices := repository.NewTokenRepository()
	notifier := usecase.NewNotificationService(pushClient, devices, logger.Named("notify"))

	stream := websocket.NewHandler(tokens, originChecker(cfg.Server.AllowedOrigins), logger.Named("ws"))

	loc := cfg.Analytics.Location()
	trades := usecase.NewTradeService(st.trades, st.users, loc, logger.Named("trades"), stream, notifier)
	analytics := usecase.NewAnalyticsService(st.trades, st.users, usecase.AnalyticsOptions{
		Location:     loc,
		WeeklyWindow: cfg.Analytics.WeeklyWindow,
	}, logger.Named("analytics"))
	accounts := usecase.NewAccountService(st.users, tokens, logger.Named("accounts"))

	router := delivery.NewRouter(delivery.RouterDeps{
		Debug:          cfg.App.Env == "dev",
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger.Named("http"),
		Verifier:       tokens,
		Store:          st.ping,
		Accounts:       accounts,
		Trades:         trades,
		Analytics:      analytics,
		Tokens:         devices,
		Stream:         stream.Handle,
	})

	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notifier.Wait()
	return nil
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
