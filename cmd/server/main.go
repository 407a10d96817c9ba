package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vogiaan1904/spotqueue/config"
	grpcSvc "github.com/vogiaan1904/spotqueue/internal/delivery/grpc"
	httpSvc "github.com/vogiaan1904/spotqueue/internal/delivery/http"
	"github.com/vogiaan1904/spotqueue/internal/delivery/kafka/consumer"
	"github.com/vogiaan1904/spotqueue/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/spotqueue/internal/delivery/rabbitmq"
	"github.com/vogiaan1904/spotqueue/internal/directory"
	"github.com/vogiaan1904/spotqueue/internal/infra/redis"
	"github.com/vogiaan1904/spotqueue/internal/ledger"
	repo "github.com/vogiaan1904/spotqueue/internal/repository/redis"
	"github.com/vogiaan1904/spotqueue/internal/service"
	pkgKafka "github.com/vogiaan1904/spotqueue/pkg/kafka"
	pkgLog "github.com/vogiaan1904/spotqueue/pkg/logger"
	pkgRabbit "github.com/vogiaan1904/spotqueue/pkg/rabbitmq"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	// Center directory
	var feed directory.Feed
	switch cfg.Directory.Feed {
	case config.FeedRedis:
		redisCli, err := redis.Connect(ctx, cfg.Redis, l)
		if err != nil {
			l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
		}
		defer redis.Disconnect(context.Background(), redisCli, l)

		feed = repo.NewRedisCenterFeed(redisCli, cfg.Directory.RedisKey, l)
	default:
		feed = directory.NewStaticFeed(directory.DefaultCenters()...)
	}

	dir := directory.New(feed, cfg.Directory, l)
	if err := dir.Refresh(ctx); err != nil {
		l.Warnf(ctx, "Initial directory refresh failed, serving empty directory until next refresh: %v", err)
	}

	lg := ledger.New(dir, cfg.Queue, l)

	// Event publisher
	prod, err := newPublisher(cfg, l)
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize %s publisher: %v", cfg.Events.Broker, err)
	}
	if prod != nil {
		defer func() {
			if err := prod.Close(); err != nil {
				l.Warnf(context.Background(), "Failed to close publisher: %v", err)
			}
		}()
	}

	// Initialize services
	pass := service.NewPassSigner(cfg.Pass)
	qSvc := service.NewQueueService(dir, lg, pass, prod, l)

	var refresher service.DirectoryRefresher
	if cfg.Directory.RefreshInterval > 0 {
		refresher = service.NewDirectoryRefresher(dir, l, service.RefresherConfig{
			Interval: cfg.Directory.RefreshInterval,
		})
		if err := refresher.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start directory refresher: %v", err)
		}
		defer refresher.Stop()
	}

	// Center signal consumer
	if cfg.Kafka.Enabled {
		kafkaConsGr, err := pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroupID,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
		}

		cons := consumer.NewConsumer(kafkaConsGr, qSvc, l)
		if err := cons.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start Kafka consumer: %v", err)
		}
		defer cons.Close()
	}

	// gRPC server
	lnr, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRpcPort))
	if err != nil {
		l.Fatalf(ctx, "gRPC server failed to listen: %v", err)
	}

	gRpcSrv := grpc.NewServer()
	grpcSvc.RegisterSpotQueueServer(gRpcSrv, grpcSvc.NewGrpcService(qSvc, l))

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(grpcSvc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gRpcSrv, healthSrv)

	// HTTP server
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      httpSvc.NewRouter(httpSvc.NewHTTPHandler(qSvc, refresher, l), cfg.Server.WriteTimeout),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Infof(ctx, "gRPC server is listening on port: %d", cfg.Server.GRpcPort)
		return gRpcSrv.Serve(lnr)
	})

	g.Go(func() error {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		l.Info(context.Background(), "Server shutting down...")
		healthSrv.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := httpSrv.Shutdown(shutdownCtx)
		gRpcSrv.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil {
		l.Errorf(context.Background(), "Server stopped with error: %v", err)
	}

	l.Info(context.Background(), "Server exited")
}

func newPublisher(cfg *config.Config, l pkgLog.Logger) (service.EventPublisher, error) {
	switch cfg.Events.Broker {
	case config.BrokerKafka:
		kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RetryMax:     cfg.Kafka.ProducerRetryMax,
			RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
		})
		if err != nil {
			return nil, err
		}
		return producer.NewProducer(kafkaSyncProd, l), nil

	case config.BrokerRabbitMQ:
		conn, ch, err := pkgRabbit.Connect(pkgRabbit.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
		})
		if err != nil {
			return nil, err
		}
		return rabbitmq.NewPublisher(ch, conn, cfg.RabbitMQ.Exchange, l), nil
	}

	return nil, nil
}
