package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"eventhub/internal/ai"
	"eventhub/internal/auth"
	"eventhub/internal/events"
	"eventhub/internal/functions"
	"eventhub/internal/grpcserver"
	"eventhub/internal/ratings"
	"eventhub/internal/refresh"
	synchub "eventhub/internal/sync"
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

	srvCfg := utils.LoadServerConfig()
	refreshCfg := utils.LoadRefreshConfig()

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub(0)
	router.GET("/ws", synchub.WSHandler(hub))
	router.GET("/updates", synchub.HistoryHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.String()})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.WSClients,
			"buffered":   stats.Buffered,
		})
	})

	// Store adapter and discovery state
	venueRepo := venues.NewRepo(db)
	loader := venues.NewLoader(venueRepo, log.Default())
	refresher := refresh.NewClient(refreshCfg.FunctionsURL, refreshCfg.ScrapeURL, refreshCfg.Platform)
	discovery := events.NewService(loader, refresher, hub, log.Default())

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	if err := discovery.Reload(startCtx); err != nil {
		log.Printf("initial load degraded, serving baseline venues: %v", err)
	}
	cancelStart()

	events.NewHandler(discovery).RegisterRoutes(router.Group("/events"))

	// Backend functions used by the refresh client
	pipeline := ai.NewPipeline(ai.NewGateway(refreshCfg), nil)
	functions.NewHandler(functions.FetchPage, pipeline).RegisterRoutes(router.Group("/functions"))

	// Auth
	tokenSvc := auth.NewTokenService(utils.LoadAuthConfig())
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))
	authHandler.RegisterUserRoutes(router.Group("/users", authHandler.Middleware()))

	public := router.Group("")
	protected := router.Group("", authHandler.Middleware())

	venueHandler := venues.NewHandler(venueRepo, loader, discovery, hub)
	venueHandler.RegisterPublicRoutes(public)
	venueHandler.RegisterProtectedRoutes(protected)

	ratingHandler := ratings.NewHandler(ratings.NewRepo(db), discovery, hub)
	ratingHandler.RegisterPublicRoutes(public)
	ratingHandler.RegisterProtectedRoutes(protected)

	httpSrv := &http.Server{
		Addr:    srvCfg.HTTPAddr,
		Handler: router,
	}

	grpcSrv := grpc.NewServer()
	grpcserver.RegisterDiscoveryServer(grpcSrv, grpcserver.NewServer(discovery, loader))
	grpcLis, err := net.Listen("tcp", srvCfg.GrpcAddr)
	if err != nil {
		log.Fatalf("grpc listen failed: %v", err)
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("gRPC server listening on %s", srvCfg.GrpcAddr)
		if err := grpcSrv.Serve(grpcLis); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", srvCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	grpcSrv.GracefulStop()

	wg.Wait()
	log.Println("servers stopped")
}
