package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/planningpoker/go/internal/config"
	"github.com/mcdev12/planningpoker/go/internal/confidence"
	"github.com/mcdev12/planningpoker/go/internal/games"
	"github.com/mcdev12/planningpoker/go/internal/issues"
	"github.com/mcdev12/planningpoker/go/internal/players"
	"github.com/mcdev12/planningpoker/go/internal/votes"
)

type Services struct {
	Games      *games.Service
	Players    *players.Service
	Issues     *issues.Service
	Votes      *votes.Service
	Confidence *confidence.Service
}

func setupServices(pool *pgxpool.Pool, settings config.Settings, clock clockwork.Clock) *Services {
	// Repository layer → App layer → Service layer

	gamesApp := games.NewApp(games.NewRepository(pool), settings.Defaults)
	playersApp := players.NewApp(players.NewRepository(pool), clock)
	issuesApp := issues.NewApp(issues.NewRepository(pool))
	votesApp := votes.NewApp(votes.NewRepository(pool), settings.Deck)
	confidenceApp := confidence.NewApp(confidence.NewRepository(pool))

	return &Services{
		Games:      games.NewService(gamesApp),
		Players:    players.NewService(playersApp),
		Issues:     issues.NewService(issuesApp),
		Votes:      votes.NewService(votesApp),
		Confidence: confidence.NewService(confidenceApp),
	}
}
