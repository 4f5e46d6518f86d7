package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mcdev12/auction/go/internal/draft/gateway"
	"github.com/mcdev12/auction/go/internal/mcpserver"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(cfg ServerConfig, services *Services) *http.Server {
	mux := http.NewServeMux()

	registerServices(mux, services)
	setupHealthCheck(mux, services)

	handler := gateway.NewCORS(cfg.AllowedOrigins).Handler(mux)

	// HTTP/2 without TLS for clients that speak it; WebSocket upgrades stay on HTTP/1.1.
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	services.Gateway.RegisterRoutes(mux)

	if services.MCP != nil {
		mux.Handle("/mcp", mcpserver.Handler(services.MCP))
		log.Info().Msg("MCP tools served at /mcp")
	}
}

type healthResponse struct {
	Status      string                  `json:"status"`
	SessionID   string                  `json:"session_id"`
	Connections gateway.ConnectionStats `json:"connections"`
}

func setupHealthCheck(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(healthResponse{
			Status:      "ok",
			SessionID:   services.Draft.SessionID(),
			Connections: services.Gateway.GetStats(),
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
	mux.Handle("GET /health/outbox", services.Health)
}
