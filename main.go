package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/clients"
	"github.com/joy095/settlement/config"
	"github.com/joy095/settlement/config/db"
	redisdb "github.com/joy095/settlement/config/redis"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/middlewares/cors"
	ginlogger "github.com/joy095/settlement/middlewares/logger"
	"github.com/joy095/settlement/repository/postgres"
	"github.com/joy095/settlement/routes"
	"github.com/joy095/settlement/services/escrow_service"
	"github.com/joy095/settlement/services/fee_service"
	"github.com/joy095/settlement/services/payout_service"
	"github.com/joy095/settlement/services/refund_service"
	"github.com/joy095/settlement/services/settlement_service"
	"github.com/joy095/settlement/services/transaction_service"
	"github.com/joy095/settlement/services/transfer_service"
	"github.com/joy095/settlement/services/wallet_service"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	settings := config.Load()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 5*time.Second)
	if _, err := db.Connect(connectCtx, settings.DatabaseURL); err != nil {
		cancelConnect()
		logger.ErrorLogger.Fatalf("Database connection failed: %v", err)
	}
	cancelConnect()
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx, db.DB); err != nil {
		cancelMigrate()
		logger.ErrorLogger.Fatalf("Migration failed: %v", err)
	}
	cancelMigrate()

	var nameCache transfer_service.NameCache
	if rdb, err := redisdb.GetRedisClient(context.Background()); err != nil {
		logger.WarnLogger.Warnf("Running without Redis: %v", err)
	} else {
		nameCache = transfer_service.NewRedisNameCache(rdb)
		defer redisdb.CloseRedis()
	}

	provider, err := clients.NewTransferClient(settings.TransferBaseURL, settings.TransferSecretKey, settings.TransferTimeout)
	if err != nil {
		logger.ErrorLogger.Fatalf("Transfer provider not configured: %v", err)
	}

	store := postgres.NewStore(db.DB)
	fees := fee_service.NewCalculator(settings.PlatformFeeRate, settings.PayoutFeeRate)
	transfers := transfer_service.NewService(provider, nameCache, transfer_service.Options{
		MaxAttempts:  settings.TransferMaxAttempts,
		RetryBackoff: settings.TransferRetryBackoff,
		NameCacheTTL: settings.NameCacheTTL,
	})
	settlements := settlement_service.NewService(store, settings.SettlementCreditTarget, time.Now)
	escrow := escrow_service.NewService(store, fees, settlements, time.Now)

	services := routes.Services{
		Wallets:         wallet_service.NewService(store),
		Transactions:    transaction_service.NewService(store),
		Settlements:     settlements,
		Payouts: payout_service.NewService(store, transfers, fees, settlements, time.Now).
			WithDeadlines(settings.TransferDeadline, settings.TransferNotFoundGrace),
		Transfers:       transfers,
		Escrow:          escrow,
		Refunds:         refund_service.NewService(store, escrow, settings.RefundWindow, time.Now),
		TransferSigning: clients.NewSignatureVerifier(settings.TransferWebhookSecret),
		PaymentSigning:  clients.NewSignatureVerifier(settings.PaymentWebhookSecret),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware(settings.CORSOrigins))
	r.Use(ginlogger.GinLogger())

	routes.RegisterAll(r, services)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok from settlement service"})
	})

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoLogger.Infof("Settlement service listening on :%s", settings.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorLogger.Fatalf("Server failed to listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down settlement service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.InfoLogger.Info("Settlement service exited gracefully.")
}
