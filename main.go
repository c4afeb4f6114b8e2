package main

import (
	"log"

	"github.com/bmt-labs/checkout-bridge/config"
	"github.com/bmt-labs/checkout-bridge/controllers"
	"github.com/bmt-labs/checkout-bridge/gateway"
	"github.com/bmt-labs/checkout-bridge/reconcile"
	"github.com/bmt-labs/checkout-bridge/routes"
	"github.com/bmt-labs/checkout-bridge/store"
	"github.com/bmt-labs/checkout-bridge/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables. Missing gateway credentials are fatal
	// here; reconciliation must never run without the shared secret.
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB(cfg)

	// Wire collaborators
	gatewayClient := gateway.NewClient(gateway.Options{
		Endpoint: cfg.PixelEndpoint,
		KeyID:    cfg.PixelKeyID,
		Secret:   cfg.PixelSecret,
		Env:      cfg.PixelEnv,
		Timeout:  cfg.GatewayTimeout,
	})
	orderStore := store.NewGormStore(config.DB)
	orchestrator := reconcile.NewOrchestrator(orderStore, gatewayClient, cfg.GatewayTimeout)
	controllers.Setup(orderStore, gatewayClient, orchestrator)

	// Set up router
	router := routes.SetupRouter(cfg)

	// Add middleware
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	utils.LogInfo("Server starting on port %s", cfg.Port)
	// Start server
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
