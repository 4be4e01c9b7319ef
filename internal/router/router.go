package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"homehelper-backend/internal/handlers"
	"homehelper-backend/internal/middleware"
)

func New(
	indexHandler *handlers.IndexHandler,
	chatHandler *handlers.ChatHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))
	r.Use(middleware.Session)

	// Completion rate limiter (30 req/min per IP)
	chatLimiter := middleware.NewRateLimiter(30, time.Minute)

	r.Get("/", indexHandler.Index)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chatLimiter.Middleware)
			r.Post("/chat", chatHandler.Chat)
		})

		r.Get("/models", chatHandler.Models)
		r.Post("/clear-chat", chatHandler.ClearChat)
		r.Get("/health", chatHandler.Health)

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", chatHandler.ListChats)
			r.Post("/", chatHandler.CreateChat)
			r.Get("/{id}", chatHandler.GetChat)
			r.Put("/{id}", chatHandler.RenameChat)
			r.Delete("/{id}", chatHandler.DeleteChat)
		})
	})

	return r
}
