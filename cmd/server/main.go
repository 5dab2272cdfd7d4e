package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/lab_scheduler/internal/app"
	"github.com/Freeeeeet/lab_scheduler/internal/auth"
	"github.com/Freeeeeet/lab_scheduler/internal/config"
	"github.com/Freeeeeet/lab_scheduler/internal/controller"
	"github.com/Freeeeeet/lab_scheduler/internal/controller/rest"
	"github.com/Freeeeeet/lab_scheduler/internal/repository"
	"github.com/Freeeeeet/lab_scheduler/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting lab scheduler",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Ints("rooms", cfg.Rooms),
		zap.String("timezone", cfg.Timezone),
		zap.Bool("bot_enabled", cfg.BotEnabled()),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Scheduler stopped with error", zap.Error(err))
	}
	logger.Info("Scheduler stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	migrator.Close()

	// Хранилище
	reservationRepo := repository.NewReservationRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// Сервисы
	opts := service.OptionsFromConfig(cfg)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	accountService := service.NewAccountService(userRepo, tokens, opts, logger)
	occupancyService := service.NewOccupancyService(reservationRepo, accountService, opts, logger)
	availabilityService := service.NewAvailabilityService(availabilityRepo, accountService, opts, logger)
	reservationService := service.NewReservationService(reservationRepo, accountService, availabilityService, occupancyService, opts, logger)

	if cfg.AdminStudentID != "" {
		admin, err := accountService.EnsureAdmin(ctx, cfg.AdminStudentID, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		logger.Info("Admin account ready", zap.Int64("user_id", admin.ID), zap.String("student_id", admin.StudentID))
	}

	scheduler, err := app.NewScheduler(occupancyService, cfg.Location, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	api := rest.NewAPI(reservationService, accountService, availabilityService, occupancyService, rest.Options{
		RateLimitPerMin: cfg.RateLimitPerMin,
		TrustProxy:      cfg.TrustProxy,
	}, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	})

	if cfg.BotEnabled() {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}

		botController := controller.NewBotController(b, accountService, reservationService, occupancyService, cfg.Location, logger)
		if err := botController.RegisterHandlers(gctx); err != nil {
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}

		g.Go(func() error {
			return botController.Start(gctx)
		})
	}

	return g.Wait()
}
