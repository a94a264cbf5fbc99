package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fekuna/omnipos-assistant-service/config"
	"github.com/fekuna/omnipos-assistant-service/internal/app"
	"github.com/fekuna/omnipos-assistant-service/internal/auth"
	"github.com/fekuna/omnipos-assistant-service/internal/broker"
	chatH "github.com/fekuna/omnipos-assistant-service/internal/chat/handler"
	chatListenerPkg "github.com/fekuna/omnipos-assistant-service/internal/chat/listener"
	"github.com/fekuna/omnipos-assistant-service/internal/platform/timeouts"
	"github.com/fekuna/omnipos-assistant-service/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. Initialize Logger
	appLogger := app.NewLogger(cfg)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing
	shutdownTracing, err := telemetry.Setup(ctx, &cfg.Telemetry)
	if err != nil {
		appLogger.Warn("Tracing disabled", zap.Error(err))
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer scancel()
		_ = shutdownTracing(sctx)
	}()

	// 4. Database, cache, usecases and agents
	assistant, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not initialize assistant", zap.Error(err))
	}
	defer assistant.Close()

	// 5. Command listener
	if cfg.Kafka.Enabled {
		consumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.CommandsTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.CommandsTopic))

		go chatListenerPkg.NewCommandListener(consumer, assistant.Dispatcher, appLogger).Start(ctx)
	}

	// 6. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	opts := []grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}
	if cfg.JWT.Enabled {
		opts = append(opts, grpc.UnaryInterceptor(auth.UnaryServerInterceptor(auth.NewVerifier(cfg.JWT.SecretKey))))
	}
	grpcServer := grpc.NewServer(opts...)

	// Register Services
	chatH.RegisterAssistantServer(grpcServer, chatH.NewAssistantHandler(assistant.Dispatcher, appLogger))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port), zap.Bool("auth", cfg.JWT.Enabled))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
