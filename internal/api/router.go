package api

import (
	"net/http"

	"dispatch-route-engine/internal/api/handlers"
	"dispatch-route-engine/internal/ports"
	"dispatch-route-engine/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(resolver *services.Resolver, provider ports.RouteProvider) http.Handler {
	mux := http.NewServeMux()

	resolveHandler := &handlers.ResolveHandler{Resolver: resolver}
	sequenceHandler := &handlers.SequenceHandler{Resolver: resolver}
	routeHandler := &handlers.RouteHandler{Provider: provider}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/resolve", resolveHandler.Resolve)
	mux.HandleFunc("/sequence", sequenceHandler.Sequence)
	mux.HandleFunc("/route", routeHandler.Route)

	return loggingMiddleware(mux)
}
