package main

import (
	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes for the API
func setupRoutes(router *mux.Router) {
	// Request path
	router.HandleFunc("/analyze", analyze)
	router.HandleFunc("/result/{id}", getResult)

	// Reporting surfaces
	router.HandleFunc("/metrics", getMetrics)
	router.HandleFunc("/stats", getStats)

	// Health and help
	router.HandleFunc("/health", getHealthStatus)
	router.HandleFunc("/", helpHandler)
}
