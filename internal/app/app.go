package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "whatsclone/docs"
	"whatsclone/internal/config"
	"whatsclone/internal/database"
	"whatsclone/internal/handlers"
	"whatsclone/internal/middleware"
	"whatsclone/internal/pdf"
	"whatsclone/internal/realtime"
	"whatsclone/internal/repositories"
	"whatsclone/internal/routes"
	"whatsclone/internal/services"
)

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("[app] config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === DB ===
	db, err := database.Open(ctx, cfg.Database.DSN, database.PoolOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		ConnLifetime: cfg.Database.ConnLifetime,
	})
	if err != nil {
		log.Fatalf("[app] database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[app] close database: %v", err)
		}
	}()
	if err := database.RunMigrations(ctx, db); err != nil {
		log.Fatalf("[app] migrations: %v", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	messageRepo := repositories.NewMessageRepository(db)

	// === Realtime ===
	hub := realtime.NewHub(realtime.HubOptions{
		SendBuffer:     cfg.Realtime.SendBuffer,
		PingInterval:   cfg.Realtime.PingInterval,
		AllowedOrigins: cfg.Realtime.AllowedOrigins,
	})

	// === Services ===
	var mailer services.MailNotifier
	if cfg.Mail.Enabled {
		mailer = services.NewEmailService(
			cfg.Mail.SMTPHost,
			cfg.Mail.SMTPPort,
			cfg.Mail.SMTPUser,
			cfg.Mail.SMTPPassword,
			cfg.Mail.FromEmail,
		)
	}
	notifier := services.NewNotificationService(hub, userRepo, mailer)
	files := services.NewFileService(cfg.Files.RootDir)

	userService := services.NewUserService(userRepo)
	chatService := services.NewChatService(chatRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, chatRepo, files, notifier)
	transcriptService := services.NewTranscriptService(chatRepo, messageRepo, pdf.NewTranscriptGenerator(cfg.Files.TranscriptTTF))

	// === Auth ===
	verifier, err := middleware.NewVerifier(cfg.Auth)
	if err != nil {
		log.Fatalf("[app] auth: %v", err)
	}
	userSync := middleware.UserSync(userService)
	role := middleware.RequireRole(cfg.Auth.ClientID, cfg.Auth.RequiredRole)
	auth := routes.Auth{
		API: []gin.HandlerFunc{middleware.AuthMiddleware(verifier), userSync, role},
		WS:  []gin.HandlerFunc{middleware.WSAuthMiddleware(verifier), userSync, role},
	}

	// === Gin ===
	router := gin.New()
	router.Use(middleware.AccessLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	router.MaxMultipartMemory = (cfg.Files.MaxUploadMB + 1) << 20

	routes.SetupRoutes(router, routes.Handlers{
		Chat:    handlers.NewChatHandler(chatService, transcriptService),
		Message: handlers.NewMessageHandler(messageService, cfg.Files.MaxUploadMB),
		User:    handlers.NewUserHandler(userService),
		WS:      handlers.NewWSHandler(hub),
		Health:  handlers.NewHealthHandler(db),
	}, auth)

	// === Run ===
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[app] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[app] server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[app] shutdown: %v", err)
	}
}

func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowOrigin(allowed, origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func allowOrigin(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
