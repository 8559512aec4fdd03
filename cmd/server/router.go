package main

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/kiasamouie/loopy/internal/handlers"
	"github.com/kiasamouie/loopy/internal/middleware"
)

// SetupRouter configures and returns the HTTP router with all routes and middleware
func SetupRouter(
	addStampsHandler *handlers.AddStampsHandler,
	listCardsHandler *handlers.ListCardsHandler,
	sendMessageHandler *handlers.SendMessageHandler,
	logger *zap.Logger,
) *mux.Router {
	router := mux.NewRouter()

	// Add CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Add logging middleware
	router.Use(middleware.LoggingMiddleware(logger))

	// The handlers enforce POST themselves so non-POST requests get the
	// JSON 405 body; routes stay method-open here.
	router.HandleFunc("/add-stamps", addStampsHandler.HandleAddStamps)
	router.HandleFunc("/list-cards", listCardsHandler.HandleListCards).Methods("GET", "POST", "OPTIONS")
	router.HandleFunc("/send-message", sendMessageHandler.HandleSendMessage)

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Swagger documentation
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	return router
}
