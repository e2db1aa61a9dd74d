package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mkaradima/support-chat-backend/internal/api/handlers"
	"github.com/mkaradima/support-chat-backend/internal/api/middleware"
	"github.com/mkaradima/support-chat-backend/internal/config"
	"github.com/mkaradima/support-chat-backend/internal/service"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, cfg)
	chatHandler := handlers.NewChatHandler(services.Chat)

	r.Route("/api", func(r chi.Router) {
		// The session middleware only decodes identity; every route decides
		// for itself whether an anonymous caller is acceptable.
		r.Use(middleware.Session(services.Auth))

		r.Route("/user_auth", func(r chi.Router) {
			r.Get("/", authHandler.ListUsers)
			r.Post("/", authHandler.Register)
			r.Patch("/", authHandler.ChangePassword)
			r.Delete("/", authHandler.DeleteAccount)
		})

		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/check_session", authHandler.CheckSession)

		r.Post("/chat_messages", chatHandler.PostMessage)
		r.Get("/continue_last_conversation", chatHandler.ContinueLastConversation)
	})

	return r
}
