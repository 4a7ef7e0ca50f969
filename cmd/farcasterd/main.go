package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"farcasterd/internal/config"
	"farcasterd/internal/farcasterd"
	"farcasterd/internal/metrics"
	"farcasterd/internal/walletrpc"
)

func main() {
	_ = godotenv.Load(".env")

	dataDir := os.Getenv("DATA_DIR")
	cfg, err := config.Load(dataDir)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	lvl, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := os.MkdirAll(cfg.Network.DataDir, 0o700); err != nil {
		logrus.WithError(err).Fatal("create data dir")
	}

	rt, err := farcasterd.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("build runtime")
	}
	if err := rt.Boot(); err != nil {
		logrus.WithError(err).Fatal("boot orchestrator")
	}
	defer rt.Shutdown()

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	gw := walletrpc.NewGatewayServer(rt.Registry())
	grpcServer := grpc.NewServer()
	walletrpc.Register(grpcServer, gw)

	lis, err := net.Listen("tcp", ":9090")
	if err != nil {
		logrus.WithError(err).Fatal("bind gateway grpc listener")
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logrus.WithError(err).Warn("gateway grpc server stopped")
		}
	}()

	restServer := walletrpc.NewServer(rt.Registry(), rt.Progress())
	mux := http.NewServeMux()
	mux.Handle("/", restServer)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	httpServer := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Warn("gateway rest server stopped")
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logrus.Info("farcasterd booted")
	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		logrus.WithError(err).Warn("orchestrator loop stopped")
	}

	grpcServer.GracefulStop()
	_ = httpServer.Close()
	logrus.Info("farcasterd shut down")
}
