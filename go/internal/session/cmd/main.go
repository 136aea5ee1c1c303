package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/api/pokerv1"
	"github.com/mcdev12/planningpoker/go/internal/config"
	"github.com/mcdev12/planningpoker/go/internal/feed"
	"github.com/mcdev12/planningpoker/go/internal/identity"
	"github.com/mcdev12/planningpoker/go/internal/session"
)

// clientConfig drives a headless participant: it mounts one game, joins when it has no
// identity yet and optionally plays a card.
type clientConfig struct {
	APIURL         string        `env:"POKER_API_URL" envDefault:"http://localhost:8080"`
	GatewayURL     string        `env:"POKER_GATEWAY_URL" envDefault:"http://localhost:8081"`
	GameID         string        `env:"POKER_GAME_ID"`
	GameName       string        `env:"POKER_GAME_NAME"`
	PlayerName     string        `env:"POKER_PLAYER_NAME"`
	Spectator      bool          `env:"POKER_SPECTATOR" envDefault:"false"`
	Vote           string        `env:"POKER_VOTE"`
	IdentityPath   string        `env:"POKER_IDENTITY_DB" envDefault:"poker-client.db"`
	GuardDelay     time.Duration `env:"POKER_GUARD_DELAY" envDefault:"100ms"`
	ResyncDelay    time.Duration `env:"POKER_RESYNC_DELAY" envDefault:"2s"`
	StatusInterval time.Duration `env:"POKER_STATUS_INTERVAL" envDefault:"10s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}
	var cfg clientConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("parse env")
	}
	config.SetupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	ids, err := identity.OpenSQLite(cfg.IdentityPath, clock)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.IdentityPath).Msg("failed to open identity store")
	}
	defer ids.Close()

	api := pokerv1.NewClient(&http.Client{Timeout: 15 * time.Second}, cfg.APIURL)

	gameID := cfg.GameID
	if gameID == "" {
		if cfg.GameName == "" {
			log.Fatal().Msg("POKER_GAME_ID or POKER_GAME_NAME is required")
		}
		resp, err := api.CreateGame(ctx, &pokerv1.CreateGameRequest{Name: cfg.GameName})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create game")
		}
		gameID = resp.Game.ID
		log.Info().Str("game_id", gameID).Str("name", resp.Game.Name).Msg("game created")
	}

	playerID, err := ids.Get(ctx, gameID)
	if err != nil {
		log.Warn().Err(err).Str("game_id", gameID).Msg("failed to read local identity")
	}
	changes := feed.NewWebSocketFeed(cfg.GatewayURL, playerID)
	view := session.NewView(api, changes, ids, clock, session.OrchestratorConfig{
		GuardDelay:  cfg.GuardDelay,
		ResyncDelay: cfg.ResyncDelay,
	})
	defer view.Unmount()

	if err := view.Mount(ctx, gameID); err != nil {
		if errors.Is(err, session.ErrGameNotFound) {
			log.Fatal().Str("game_id", gameID).Msg("game does not exist")
		}
		log.Fatal().Err(err).Str("game_id", gameID).Msg("failed to mount game")
	}

	switch _, state := view.Orchestrator().Identity(); state {
	case session.IdentityRemoved:
		log.Fatal().Str("game_id", gameID).Msg("removed from this game")
	case session.IdentityNeedsJoin:
		if cfg.PlayerName == "" {
			log.Fatal().Msg("POKER_PLAYER_NAME is required to join")
		}
		p, err := view.Join(ctx, cfg.PlayerName, nil, cfg.Spectator)
		if err != nil {
			log.Fatal().Err(err).Str("game_id", gameID).Msg("failed to join game")
		}
		log.Info().Str("game_id", gameID).Str("player_id", p.ID).Msg("joined game")
		// the gateway learns who we are on the next subscription
		changes.SetPlayerID(p.ID)
		if err := view.Mount(ctx, gameID); err != nil {
			log.Fatal().Err(err).Str("game_id", gameID).Msg("failed to remount game")
		}
	}

	if cfg.Vote != "" {
		vote, err := view.SelectCard(ctx, cfg.Vote)
		if err != nil {
			log.Error().Err(err).Str("value", cfg.Vote).Msg("failed to vote")
		} else {
			log.Info().Str("issue_id", vote.IssueID).Str("value", vote.Value).Msg("vote submitted")
		}
	}

	ticker := clock.NewTicker(cfg.StatusInterval)
	defer ticker.Stop()
	logStatus(view)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("received shutdown signal")
			return
		case <-ticker.Chan():
			logStatus(view)
		}
	}
}

func logStatus(view *session.View) {
	store := view.Store()
	stats := view.Orchestrator().Stats()
	ev := log.Info().
		Str("phase", string(stats.Phase)).
		Uint64("applied", stats.Applied).
		Uint64("dropped", stats.Dropped).
		Uint64("stale", stats.Stale).
		Int("players", len(store.Players())).
		Bool("admin", view.IsAdmin())

	if g := store.Game(); g != nil {
		ev = ev.Str("game", g.Name).Str("status", string(g.Status))
	}
	if cur := store.CurrentIssue(); cur != nil {
		ev = ev.Str("issue", cur.Title).Int("votes", len(store.Votes()))
		if store.IsRevealed() {
			if avg := store.VoteAverage(); avg != nil {
				ev = ev.Float64("average", *avg)
			}
			ev = ev.Bool("consensus", store.Consensus())
		}
	}
	ev.Msg("game status")
}
