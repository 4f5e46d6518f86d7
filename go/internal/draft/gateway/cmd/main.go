package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcdev12/auction/go/internal/draft"
	"github.com/mcdev12/auction/go/internal/draft/gateway"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// upstream answers snapshot requests from the auction server's HTTP API
type upstream struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func (u *upstream) SessionID() string {
	return u.sessionID
}

func (u *upstream) RoundSummary() draft.RoundSummary {
	var summary draft.RoundSummary
	resp, err := u.client.Get(u.baseURL + "/api/draft/round")
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch round snapshot")
		return summary
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("unexpected round snapshot status")
		return summary
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		log.Warn().Err(err).Msg("failed to decode round snapshot")
	}
	return summary
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	port := getEnv("GATEWAY_PORT", "8081")
	apiURL := strings.TrimRight(getEnv("AUCTION_API_URL", "http://localhost:8080"), "/")

	consumerConfig := gateway.DefaultJetStreamConsumerConfig()
	consumerConfig.URL = getEnv("NATS_URL", consumerConfig.URL)
	consumerConfig.StreamName = getEnv("NATS_STREAM", consumerConfig.StreamName)
	consumerConfig.SessionID = os.Getenv("AUCTION_SESSION_ID")

	log.Info().
		Str("nats_url", consumerConfig.URL).
		Str("api_url", apiURL).
		Str("port", port).
		Msg("starting draft gateway")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &upstream{
		baseURL:   apiURL,
		sessionID: consumerConfig.SessionID,
		client:    &http.Client{Timeout: 5 * time.Second},
	}

	auth := gateway.NewAuthenticator(os.Getenv("AUTH_JWT_SECRET"))
	connectionManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	wsHandler := gateway.NewWebSocketHandler(connectionManager, source, auth)

	consumer, err := gateway.NewEventConsumer(ctx, connectionManager, consumerConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event consumer")
	}
	defer consumer.Stop()

	mux := http.NewServeMux()
	wsHandler.RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", port),
		Handler:     gateway.NewCORS(nil).Handler(mux),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go connectionManager.Start(ctx)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
			cancel()
		}
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	cancel()

	log.Info().Msg("draft gateway shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
