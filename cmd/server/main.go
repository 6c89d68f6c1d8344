package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/napolitain/lob-optimizer/internal/loader"
	"github.com/napolitain/lob-optimizer/internal/logging"
	"github.com/napolitain/lob-optimizer/internal/solver"
)

var (
	port     = flag.Int("port", 50051, "The server port")
	dataDir  = flag.String("data", "data", "Path to data directory")
	logLevel = flag.String("log-level", "info", "Log level")
	pretty   = flag.Bool("pretty", false, "Human-readable logs")
)

func main() {
	flag.Parse()

	logger, err := logging.New(*logLevel, *pretty)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cat, err := loader.LoadCatalog(*dataDir)
	if err != nil {
		logger.Fatal().Err(err).Str("data", *dataDir).Msg("failed to load unit catalog")
	}
	logger.Info().Int("units", cat.Len()).Strs("damage_sources", cat.DamageSources()).Msg("catalog loaded")

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		logger.Fatal().Err(err).Int("port", *port).Msg("failed to listen")
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger)))
	registerOptimizerServer(s, newServer(cat, solver.WithLogger(logger)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		s.GracefulStop()
	}()

	logger.Info().Int("port", *port).Msg("gRPC server listening")
	if err := s.Serve(lis); err != nil {
		logger.Fatal().Err(err).Msg("failed to serve")
	}
}
