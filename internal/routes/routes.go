package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"whatsclone/internal/handlers"
)

type Handlers struct {
	Chat    *handlers.ChatHandler
	Message *handlers.MessageHandler
	User    *handlers.UserHandler
	WS      *handlers.WSHandler
	Health  *handlers.HealthHandler
}

// Auth holds the ordered middleware chains: token check, user sync, role guard.
// Only the WS chain may read the token from the query string.
type Auth struct {
	API []gin.HandlerFunc
	WS  []gin.HandlerFunc
}

// SetupRoutes mounts the public endpoints and then everything behind auth.
func SetupRoutes(r *gin.Engine, h Handlers, auth Auth) *gin.Engine {
	// ---- public
	r.GET("/healthz", h.Health.Healthz)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ---- protected
	wsChain := append(append([]gin.HandlerFunc{}, auth.WS...), h.WS.Connect)
	r.GET("/ws", wsChain...)

	api := r.Group("/api/v1", auth.API...)

	chats := api.Group("/chats")
	{
		chats.POST("", h.Chat.CreateChat)
		chats.GET("", h.Chat.ListChats)
		chats.GET("/:id/transcript", h.Chat.Transcript)
	}

	messages := api.Group("/messages")
	{
		messages.POST("", h.Message.SendMessage)
		messages.POST("/upload-media", h.Message.UploadMedia)
		messages.PATCH("", h.Message.MarkSeen)
		messages.GET("/chat/:id", h.Message.ListMessages)
	}

	users := api.Group("/users")
	{
		users.GET("", h.User.ListUsers)
	}

	return r
}
