package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	uiHandler *UIHandler,
	apiHandler *APIHandler,
	sessionMiddleware func(http.Handler) http.Handler,
	loggingMiddleware func(http.Handler) http.Handler,
	metricsHandler http.Handler,
	allowedOrigins []string,
) http.Handler {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	// Health check endpoint (no session required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"research-assistant"}`))
	}).Methods("GET")

	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler).Methods("GET")
	}

	// JSON API
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(sessionMiddleware)

	api.HandleFunc("/document", apiHandler.UploadDocument).Methods("POST")
	api.HandleFunc("/document", apiHandler.GetDocument).Methods("GET")
	api.HandleFunc("/document", apiHandler.ClearDocument).Methods("DELETE")
	api.HandleFunc("/mode", apiHandler.SetMode).Methods("POST")
	api.HandleFunc("/ask", apiHandler.Ask).Methods("POST")
	api.HandleFunc("/history", apiHandler.GetHistory).Methods("GET")
	api.HandleFunc("/challenge", apiHandler.NewChallenge).Methods("POST")
	api.HandleFunc("/challenge", apiHandler.GetChallenge).Methods("GET")
	api.HandleFunc("/challenge/answer", apiHandler.SubmitAnswer).Methods("POST")
	api.HandleFunc("/challenge/skip", apiHandler.SkipQuestion).Methods("POST")
	api.HandleFunc("/challenge/next", apiHandler.NextQuestion).Methods("POST")

	// HTML interface
	ui := router.PathPrefix("/").Subrouter()
	ui.Use(sessionMiddleware)

	ui.HandleFunc("/", uiHandler.Index).Methods("GET")
	ui.HandleFunc("/document", uiHandler.UploadDocument).Methods("POST")
	ui.HandleFunc("/document/clear", uiHandler.ClearDocument).Methods("POST")
	ui.HandleFunc("/mode", uiHandler.SetMode).Methods("POST")
	ui.HandleFunc("/ask", uiHandler.Ask).Methods("POST")
	ui.HandleFunc("/challenge/answer", uiHandler.SubmitAnswer).Methods("POST")
	ui.HandleFunc("/challenge/skip", uiHandler.SkipQuestion).Methods("POST")
	ui.HandleFunc("/challenge/next", uiHandler.NextQuestion).Methods("POST")
	ui.HandleFunc("/challenge/new", uiHandler.NewQuestions).Methods("POST")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
