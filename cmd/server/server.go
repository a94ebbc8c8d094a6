package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/rpg-action/internal/config"
	"github.com/KirkDiggler/rpg-action/internal/handlers/admin"
	"github.com/KirkDiggler/rpg-action/internal/handlers/ws"
	"github.com/KirkDiggler/rpg-action/internal/orchestrators/session"
	"github.com/KirkDiggler/rpg-action/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-action/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-action/internal/redis"
	"github.com/KirkDiggler/rpg-action/internal/repositories/runs"
)

const shutdownTimeout = 30 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the game server",
	Long: `Start the websocket game server and the gRPC admin service.
Sessions run until their player leaves for the idle timeout or an admin
ends them.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().String("http-addr", "", "websocket/HTTP listen address (RPG_HTTP_ADDR)")
	serverCmd.Flags().Int("grpc-port", 0, "gRPC admin port (RPG_GRPC_PORT)")
	serverCmd.Flags().String("redis-addr", "", "redis address for run records; empty keeps them in memory (RPG_REDIS_ADDR)")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, catalog, err := loadData(cfg, log)
	if err != nil {
		return err
	}

	runRepo, err := newRunRepository(cfg, log)
	if err != nil {
		return err
	}

	sessions, err := session.NewService(&session.Config{
		Data:          data,
		Runs:          runRepo,
		IDGenerator:   idgen.NewUUID("session"),
		Clock:         clock.New(),
		Logger:        log,
		Catalog:       catalog,
		DefaultLocale: cfg.Locale,
		Bindings:      cfg.Bindings,
		TickHz:        cfg.TickHz,
		BroadcastHz:   cfg.BroadcastHz,
		MaxSessions:   cfg.MaxSessions,
	})
	if err != nil {
		return fmt.Errorf("failed to create session service: %w", err)
	}

	wsHandler, err := ws.NewHandler(&ws.Config{Service: sessions, Logger: log})
	if err != nil {
		return fmt.Errorf("failed to create websocket handler: %w", err)
	}
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           wsHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	adminHandler, err := admin.NewHandler(&admin.HandlerConfig{Service: sessions, Logger: log})
	if err != nil {
		return fmt.Errorf("failed to create admin handler: %w", err)
	}
	grpcSrv := newGRPCServer(log)
	admin.RegisterAdminServer(grpcSrv, adminHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcSrv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(admin.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcSrv)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	errChan := make(chan error, 2)
	go func() {
		log.WithField("port", cfg.GRPCPort).Info("gRPC admin server starting")
		if err := grpcSrv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve grpc: %w", err)
		}
	}()
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("websocket server starting")
		if err := httpSrv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to serve http: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal, gracefully stopping")
	case serveErr = <-errChan:
		log.WithError(serveErr).Error("server failed, stopping")
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sessions.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("sessions did not stop cleanly")
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server did not stop cleanly")
	}

	stopped := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-shutdownCtx.Done():
		log.Warn("graceful shutdown timeout exceeded, forcing stop")
		grpcSrv.Stop()
	case <-stopped:
		log.Info("server stopped gracefully")
	}

	return serveErr
}

func newRunRepository(cfg *config.Config, log logrus.FieldLogger) (runs.Repository, error) {
	if cfg.RedisAddr == "" {
		log.Info("no redis address configured, keeping run records in memory")
		return runs.NewInMemory(cfg.RunHistory), nil
	}

	client, err := redisclient.NewFromAddr(cfg.RedisAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return runs.NewRedis(&runs.RedisConfig{Client: client, History: cfg.RunHistory})
}

func newGRPCServer(log logrus.FieldLogger) *grpc.Server {
	grpcLog := interceptorLogger(log.WithField("component", "grpc"))
	recovery := grpc_recovery.WithRecoveryHandler(func(p any) error {
		log.WithField("panic", p).Error("recovered from panic in grpc handler")
		return status.Error(codes.Internal, "internal error")
	})

	return grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpcLog),
			grpc_recovery.UnaryServerInterceptor(recovery),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpcLog),
			grpc_recovery.StreamServerInterceptor(recovery),
		),
	)
}

// interceptorLogger adapts logrus to the grpc middleware logger
func interceptorLogger(l logrus.FieldLogger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(_ context.Context, lvl grpc_logging.Level, msg string, fields ...any) {
		f := make(logrus.Fields, len(fields)/2)
		it := grpc_logging.Fields(fields).Iterator()
		for it.Next() {
			k, v := it.At()
			f[k] = v
		}
		entry := l.WithFields(f)

		switch lvl {
		case grpc_logging.LevelDebug:
			entry.Debug(msg)
		case grpc_logging.LevelInfo:
			entry.Info(msg)
		case grpc_logging.LevelWarn:
			entry.Warn(msg)
		case grpc_logging.LevelError:
			entry.Error(msg)
		default:
			entry.WithField("level", lvl).Info(msg)
		}
	})
}
