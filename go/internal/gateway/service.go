// Package gateway pushes change events from the JetStream change stream to websocket clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
}

func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
	}
}

// Service ties the stream consumer to the websocket connections.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
}

// NewService connects to JetStream. presence may be nil.
func NewService(ctx context.Context, config Config, clock clockwork.Clock, presence Presence) (*Service, error) {
	cm := NewConnectionManager(config.ConnectionConfig, clock, presence)
	consumer, err := NewEventConsumer(ctx, cm, config.JetStreamConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}
	return &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm),
		eventConsumer:     consumer,
	}, nil
}

// Start runs until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting poker gateway service")

	go s.connectionManager.Start(ctx)
	go func() {
		if err := s.eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("poker gateway service shutting down")
	return s.eventConsumer.Stop()
}

func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
}

func (s *Service) Stats() Stats {
	return s.connectionManager.Stats()
}

// Healthy reports whether the stream connection is up.
func (s *Service) Healthy() bool {
	return s.eventConsumer.Connected()
}
