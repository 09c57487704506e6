package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cartagent/internal/agent"
	"cartagent/internal/config"
	"cartagent/internal/handler"
	"cartagent/internal/repository"
	"cartagent/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Amazon Cart Agent")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize task store: postgres when a DSN is configured, otherwise in-memory
	var store repository.TaskStore
	if cfg.Store.DSN != "" {
		pgStore, err := repository.NewPostgresStore(
			cfg.Store.DSN,
			cfg.Store.MaxConnections,
			cfg.Store.MaxIdleConnections,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		store = pgStore
		log.Println("✅ Connected to PostgreSQL task store")
	} else {
		store = repository.NewMemoryStore()
		log.Println("⚠️  No DATABASE_URL set - using in-memory task store (tasks are lost on restart)")
	}
	defer store.Close()

	// Initialize OpenAI client
	var openaiClient *service.OpenAIClient
	if cfg.OpenAI.Enabled {
		openaiClient = service.NewOpenAIClient(&cfg.OpenAI)
		log.Printf("✅ OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
	} else {
		log.Println("⚠️  OpenAI is disabled - intent parsing falls back to pattern extraction")
		log.Println("   Set OPENAI_API_KEY environment variable to enable AI parsing")
	}

	// Initialize browser agent runtime client
	runner := agent.NewBrowserUseClient(&cfg.Agent)
	if !runner.IsEnabled() {
		log.Println("⚠️  BROWSER_USE_API_KEY is not set - agent runs will fail")
	}

	// Initialize services
	intentParser := service.NewIntentParser(openaiClient)
	prompts := service.NewPromptCompiler(cfg.Amazon.BaseURL)
	recovery := service.NewRecoveryPipeline(cfg.Amazon.BaseURL)
	ranker := service.NewDefaultRanker()
	shopper := service.NewShopper(runner, prompts, recovery, ranker, intentParser)
	tasks := service.NewTaskManager(store, shopper)

	log.Println("✅ Services initialized")

	// Initialize handlers
	agentHandler := handler.NewAgentHandler(tasks, cfg.Listing.DefaultMaxProducts, cfg.Listing.MaxProducts)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Routes
	router.GET("/health", agentHandler.Health)
	router.POST("/run-agent", agentHandler.RunAgent)
	router.POST("/run-agent/list", agentHandler.RunAgentList)
	router.GET("/task/:id", agentHandler.GetTask)
	router.DELETE("/task/:id", agentHandler.DeleteTask)
	router.GET("/tasks", agentHandler.ListTasks)

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
