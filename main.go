package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"leetgym/api/app"
	"leetgym/api/config"
	"leetgym/api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router, d, err := app.NewRouter(ctx)
	if err != nil {
		panic(err)
	}

	// Reset links live for an hour, sweeping at the same pace is plenty
	cleanup, err := service.TokenCleanup(time.Hour, d.DB)
	if err != nil {
		panic(err)
	}
	defer cleanup.Stop()

	if d.Exporter != nil {
		service.ExportCleanup(ctx, 6*time.Hour, 24*time.Hour, d.Exporter)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server stopped unexpectedly", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Failed to shut down cleanly", zap.Error(err))
	}

	if d.Redis != nil {
		d.Redis.Close()
	}
}
