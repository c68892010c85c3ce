package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Freeeeeet/examreg/internal/api"
	"github.com/Freeeeeet/examreg/internal/app"
	"github.com/Freeeeeet/examreg/internal/cache"
	"github.com/Freeeeeet/examreg/internal/config"
	"github.com/Freeeeeet/examreg/internal/repository"
	"github.com/Freeeeeet/examreg/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	reconcile := flag.String("reconcile", "", "reconcile occupancy of an exam slot id (or 'all') and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	schemaVersion, err := migrator.Version(ctx)
	if err != nil {
		logger.Fatal("Failed to read schema version", zap.Error(err))
	}
	logger.Info("Database schema ready", zap.Int64("version", schemaVersion))

	// Репозитории
	courseRepo := repository.NewCourseRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	timeSlotRepo := repository.NewTimeSlotRepository(pool)
	examSlotRepo := repository.NewExamSlotRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	courseUserRepo := repository.NewCourseUserRepository(pool)

	// Кэш остатков мест опционален: без Redis всё считается из БД
	var seatsCache *cache.SeatsCache
	if cfg.RedisAddr != "" {
		seatsCache = cache.New(cfg.RedisAddr, cfg.SeatsCacheTTL)
		defer seatsCache.Close()
		if err := seatsCache.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, seats cache disabled", zap.Error(err))
			seatsCache = nil
		}
	}

	// Сервисы
	rosterService := service.NewRosterService(courseRepo, courseUserRepo, logger)
	scheduleService := service.NewScheduleService(examRepo, roomRepo, timeSlotRepo, logger)
	slotService := service.NewSlotService(pool, examSlotRepo, timeSlotRepo, regRepo, seatsCache, logger)
	registrationService := service.NewRegistrationService(regRepo, examRepo, courseUserRepo, logger)
	allocationService := service.NewAllocationService(pool, regRepo, examSlotRepo, timeSlotRepo, examRepo, courseUserRepo, seatsCache, logger)

	// Режим разовой сверки счётчика: выполняем и выходим
	if *reconcile != "" {
		if *reconcile == "all" {
			repaired, err := slotService.ReconcileAll(ctx)
			if err != nil {
				logger.Fatal("Reconcile failed", zap.Error(err))
			}
			logger.Info("Reconcile done", zap.Int("repaired", repaired))
			os.Exit(0)
		}

		slotID, err := strconv.ParseInt(*reconcile, 10, 64)
		if err != nil {
			logger.Fatal("Invalid -reconcile value, expected slot id or 'all'", zap.String("value", *reconcile))
		}

		old, actual, err := slotService.ReconcileOccupancy(ctx, slotID)
		if err != nil {
			logger.Fatal("Reconcile failed", zap.Int64("exam_slot_id", slotID), zap.Error(err))
		}
		logger.Info("Reconcile done",
			zap.Int64("exam_slot_id", slotID),
			zap.Int("old", old),
			zap.Int("actual", actual),
		)
		os.Exit(0)
	}

	server := api.NewServer(rosterService, scheduleService, slotService, registrationService, allocationService, seatsCache, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("Stopped")
}
