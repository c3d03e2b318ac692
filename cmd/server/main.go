package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/pharmacare/backend/internal/application/identity"
	inventoryapp "github.com/pharmacare/backend/internal/application/inventory"
	"github.com/pharmacare/backend/internal/domain/identity"
	"github.com/pharmacare/backend/internal/infrastructure/auth"
	"github.com/pharmacare/backend/internal/infrastructure/config"
	"github.com/pharmacare/backend/internal/infrastructure/logger"
	"github.com/pharmacare/backend/internal/infrastructure/persistence"
	"github.com/pharmacare/backend/internal/interfaces/http/handler"
	"github.com/pharmacare/backend/internal/interfaces/http/middleware"
	"github.com/pharmacare/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting pharmacy backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with GORM logging routed through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	medicineRepo := persistence.NewGormMedicineRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	logRepo := persistence.NewGormInventoryLogRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Application services
	txScope := persistence.NewGormTransactionScope(db.DB)

	stockService := inventoryapp.NewStockService(medicineRepo, batchRepo, logRepo)
	stockService.SetTransactionScope(txScope)
	stockService.SetStrictAtomicity(cfg.Inventory.StrictAtomicity)
	stockService.SetLogger(log)

	reconciliationService := inventoryapp.NewReconciliationService(medicineRepo, batchRepo, logRepo)
	reconciliationService.SetTransactionScope(txScope)
	reconciliationService.SetStrictAtomicity(cfg.Inventory.StrictAtomicity)
	reconciliationService.SetLogger(log)

	medicineService := inventoryapp.NewMedicineService(medicineRepo, batchRepo)
	medicineService.SetLogger(log)

	ledgerService := inventoryapp.NewLedgerService(logRepo, medicineRepo, batchRepo)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	userService := identityapp.NewUserService(userRepo, log)

	if cfg.Inventory.StrictAtomicity {
		log.Info("Strict atomicity enabled: dispenses and events run all-or-nothing")
	}

	// HTTP handlers
	medicineHandler := handler.NewMedicineHandler(medicineService, stockService)
	inventoryHandler := handler.NewInventoryHandler(stockService, reconciliationService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging,
	// security headers, CORS
	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Public identity routes
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)

	// Medicine catalog
	medicineRoutes := router.NewDomainGroup("medicines", "/medicines")
	medicineRoutes.POST("", middleware.RequireCapability(identity.CapMedicineWrite), medicineHandler.Create)
	medicineRoutes.GET("", middleware.RequireCapability(identity.CapMedicineRead), medicineHandler.List)
	medicineRoutes.GET("/low-stock", middleware.RequireCapability(identity.CapInventoryRead), medicineHandler.LowStock)
	medicineRoutes.GET("/barcode/:barcode", middleware.RequireCapability(identity.CapMedicineRead), medicineHandler.GetByBarcode)
	medicineRoutes.GET("/:id", middleware.RequireCapability(identity.CapMedicineRead), medicineHandler.GetByID)
	medicineRoutes.PUT("/:id", middleware.RequireCapability(identity.CapMedicineWrite), medicineHandler.Update)
	medicineRoutes.DELETE("/:id", middleware.RequireCapability(identity.CapMedicineDelete), medicineHandler.Delete)
	medicineRoutes.GET("/:id/batches", middleware.RequireCapability(identity.CapInventoryRead), medicineHandler.Batches)
	medicineRoutes.GET("/:id/stock", middleware.RequireCapability(identity.CapInventoryRead), medicineHandler.Stock)
	medicineRoutes.GET("/:id/ledger", middleware.RequireCapability(identity.CapLedgerRead), ledgerHandler.ForMedicine)

	// Stock accounting and reconciliation
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.POST("/receive", middleware.RequireCapability(identity.CapInventoryWrite), inventoryHandler.Receive)
	inventoryRoutes.POST("/dispense", middleware.RequireCapability(identity.CapInventoryWrite), inventoryHandler.Dispense)
	inventoryRoutes.POST("/dispense/exact", middleware.RequireCapability(identity.CapInventoryWrite), inventoryHandler.DispenseExact)
	inventoryRoutes.POST("/events", middleware.RequireCapability(identity.CapInventoryWrite), inventoryHandler.ApplyEvent)
	inventoryRoutes.GET("/expiring", middleware.RequireCapability(identity.CapInventoryRead), inventoryHandler.ExpiringBatches)
	inventoryRoutes.PUT("/batches/:id/adjust", middleware.RequireCapability(identity.CapInventoryWrite), inventoryHandler.Adjust)
	inventoryRoutes.POST("/batches/:id/expire", middleware.RequireCapability(identity.CapInventoryWrite), inventoryHandler.ExpireBatch)
	inventoryRoutes.GET("/batches/:id/ledger", middleware.RequireCapability(identity.CapLedgerRead), ledgerHandler.ForBatch)

	// Ledger queries
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.Use(middleware.RequireCapability(identity.CapLedgerRead))
	ledgerRoutes.GET("", ledgerHandler.List)

	// Staff account management
	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.Use(middleware.RequireCapability(identity.CapUserManage))
	userRoutes.POST("", userHandler.Create)
	userRoutes.GET("/:id", userHandler.GetByID)
	userRoutes.POST("/:id/activate", userHandler.Activate)
	userRoutes.POST("/:id/deactivate", userHandler.Deactivate)
	userRoutes.PUT("/:id/role", userHandler.ChangeRole)

	r.Register(authRoutes).
		Register(medicineRoutes).
		Register(inventoryRoutes).
		Register(ledgerRoutes).
		Register(userRoutes)

	r.Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness of the process and its database
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
