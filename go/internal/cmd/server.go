package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/planningpoker/go/internal/api/pokerv1"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/config"
)

func setupServer(port string, services *Services, settings config.Settings, healthy func() error) *http.Server {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{apperr.ReasonHeader},
	})

	registerServices(mux, services)
	setupSettings(mux, settings)
	setupHealthCheck(mux, healthy)

	return &http.Server{
		Addr:              ":" + port,
		Handler:           h2c.NewHandler(c.Handler(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	mux.Handle(pokerv1.NewGameServiceHandler(services.Games))
	mux.Handle(pokerv1.NewPlayerServiceHandler(services.Players))
	mux.Handle(pokerv1.NewIssueServiceHandler(services.Issues))
	mux.Handle(pokerv1.NewVoteServiceHandler(services.Votes))
	mux.Handle(pokerv1.NewConfidenceServiceHandler(services.Confidence))
}

// setupSettings serves the catalogues clients render: the deck, the avatar choices and the
// reveal memes.
func setupSettings(mux *http.ServeMux, settings config.Settings) {
	mux.HandleFunc("GET /settings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"deck":     settings.Deck,
			"defaults": settings.Defaults,
			"avatars":  settings.Avatars,
			"memes":    settings.Memes,
		}); err != nil {
			log.Error().Err(err).Msg("failed to write settings response")
		}
	})
}

func setupHealthCheck(mux *http.ServeMux, healthy func() error) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := healthy(); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
