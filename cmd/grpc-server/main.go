package main

import (
	"context"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"

	"eventhub/internal/events"
	"eventhub/internal/grpcserver"
	"eventhub/internal/refresh"
	"eventhub/internal/venues"
	"eventhub/pkg/database"
	"eventhub/pkg/utils"
)

func main() {
	utils.LoadDotEnv()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	grpcCfg := utils.LoadGrpcConfig()
	listener, err := net.Listen("tcp", grpcCfg.GrpcAddr)
	if err != nil {
		log.Fatalf("grpc listen failed: %v", err)
	}

	refreshCfg := utils.LoadRefreshConfig()
	loader := venues.NewLoader(venues.NewRepo(db), log.Default())
	refresher := refresh.NewClient(refreshCfg.FunctionsURL, refreshCfg.ScrapeURL, refreshCfg.Platform)
	discovery := events.NewService(loader, refresher, nil, log.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := discovery.Reload(ctx); err != nil {
		log.Printf("initial load degraded, serving baseline venues: %v", err)
	}
	cancel()

	grpcServer := grpc.NewServer()
	grpcserver.RegisterDiscoveryServer(grpcServer, grpcserver.NewServer(discovery, loader))

	// the discovery set is reloaded periodically since this process does
	// not see writes made through the HTTP API
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = discovery.Reload(ctx)
			cancel()
		}
	}()

	log.Printf("gRPC server listening on %s", grpcCfg.GrpcAddr)
	if err := grpcServer.Serve(listener); err != nil {
		log.Fatalf("grpc server stopped: %v", err)
	}
}
