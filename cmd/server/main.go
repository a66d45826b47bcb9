package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pulsecs/backend/internal/application/services"
	"github.com/pulsecs/backend/internal/bootstrap"
	"github.com/pulsecs/backend/internal/infrastructure/database"
	"github.com/pulsecs/backend/internal/infrastructure/dataprovider"
	"github.com/pulsecs/backend/internal/interfaces/middleware"
	"github.com/pulsecs/backend/internal/interfaces/rest"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("📦 Loaded environment from .env")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	// Database connection
	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	if err := bootstrap.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Customer/company system of record
	providerURL := os.Getenv("CONTEXT_PROVIDER_URL")
	if providerURL == "" {
		providerURL = "http://localhost:3002"
	}
	provider := dataprovider.NewHTTPProvider(providerURL, os.Getenv("CONTEXT_PROVIDER_TOKEN"))

	// Service graph
	svcMgr := services.NewServiceManager(db.DB(), provider)
	log.Println("🔧 Service manager initialized")

	if err := bootstrap.SeedTemplates(svcMgr); err != nil {
		log.Printf("⚠️  Warning: Failed to seed starter templates: %v", err)
	}

	// Optional renewal sweep scheduler
	var sweep *services.SweepService
	if schedule := os.Getenv("SWEEP_SCHEDULE"); schedule != "" {
		withinDays := 45
		if v, err := strconv.Atoi(os.Getenv("SWEEP_WITHIN_DAYS")); err == nil && v > 0 {
			withinDays = v
		}
		sweepTemplate := os.Getenv("SWEEP_TEMPLATE")
		if sweepTemplate == "" {
			sweepTemplate = "renewal_base"
		}
		sweep = services.NewSweepService(svcMgr.Compile, provider, sweepTemplate, withinDays)
		if err := sweep.Start(schedule); err != nil {
			log.Fatalf("Failed to start renewal sweep: %v", err)
		}
	}

	// Router
	router := gin.Default()
	router.Use(middleware.Cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	workflowHandler := rest.NewWorkflowHandler(svcMgr)
	executionHandler := rest.NewExecutionHandler(svcMgr)

	api := router.Group("/api", middleware.RequireAuth())
	{
		api.POST("/workflows/compile", workflowHandler.Compile)
		api.GET("/workflows/templates", workflowHandler.ListTemplates)
		api.GET("/workflows/templates/:name", workflowHandler.GetTemplate)
		api.GET("/workflows/templates/:name/modifications", workflowHandler.ListModifications)
		api.POST("/workflows/templates/:name/preview", workflowHandler.Preview)

		api.GET("/workflows/executions", executionHandler.ListExecutions)
		api.GET("/workflows/executions/:executionId", executionHandler.GetExecution)
		api.PATCH("/workflows/executions/:executionId/status", executionHandler.UpdateStatus)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 Workflow compiler listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	if sweep != nil {
		sweep.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}
	_ = db.Close()
	log.Println("✅ Server stopped")
}
