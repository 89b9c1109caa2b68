package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vayhout/notesphere/internal/config"
	"github.com/vayhout/notesphere/internal/database"
	"github.com/vayhout/notesphere/internal/handlers"
	"github.com/vayhout/notesphere/internal/middleware"
	"github.com/vayhout/notesphere/internal/repository"
	"github.com/vayhout/notesphere/internal/service"
	"github.com/vayhout/notesphere/pkg/auth"
	"github.com/vayhout/notesphere/pkg/blacklist"
	"github.com/vayhout/notesphere/pkg/email"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.NewMySQLConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DBName); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	revoked := blacklist.New(blacklist.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer revoked.Close()

	emailService := email.NewEmailService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		AppName:  cfg.AppName,
		AppURL:   cfg.AppURL,
	})

	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	noteService := service.NewNoteService(noteRepo, auditRepo)
	sweeper := service.NewRetentionSweeper(noteRepo, cfg.RetentionDays, cfg.SweepInterval, cfg.SweepGrace)

	authHandler := handlers.NewAuthHandler(userRepo, jwtManager, revoked, emailService)
	noteHandler := handlers.NewNoteHandler(noteService)

	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "notesphere",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	authRate := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	authRoutes := api.Group("/auth")
	authRoutes.Use(middleware.RateLimit(authRate))
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager, revoked))
	{
		protected.POST("/auth/logout", authHandler.Logout)

		user := protected.Group("/user")
		{
			user.GET("/profile", authHandler.GetProfile)
			user.PUT("/profile", authHandler.UpdateProfile)
			user.POST("/change-password", authHandler.ChangePassword)
		}

		notes := protected.Group("/notes")
		{
			notes.GET("", noteHandler.Search)
			notes.POST("", noteHandler.Create)
			notes.GET("/trash", noteHandler.Trash)
			notes.GET("/stats", noteHandler.Stats)
			notes.GET("/:id", noteHandler.Get)
			notes.PUT("/:id", noteHandler.Update)
			notes.DELETE("/:id", noteHandler.Delete)
			notes.POST("/:id/restore", noteHandler.Restore)
			notes.DELETE("/:id/purge", noteHandler.Purge)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	wg.Wait()
}
