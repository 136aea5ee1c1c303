package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/api/pokerv1"
	"github.com/mcdev12/planningpoker/go/internal/feed"
	"github.com/mcdev12/planningpoker/go/internal/identity"
	"github.com/mcdev12/planningpoker/go/internal/session"
)

func TestClientConfigDefaults(t *testing.T) {
	t.Setenv("POKER_GAME_ID", "g1")
	t.Setenv("POKER_RESYNC_DELAY", "5s")

	var cfg clientConfig
	require.NoError(t, env.Parse(&cfg))
	assert.Equal(t, "g1", cfg.GameID)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, "http://localhost:8081", cfg.GatewayURL)
	assert.Equal(t, 5*time.Second, cfg.ResyncDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.GuardDelay)
}

func TestLogStatusBeforeMount(t *testing.T) {
	ids, err := identity.OpenSQLite(":memory:", clockwork.NewFakeClock())
	require.NoError(t, err)
	defer ids.Close()

	api := pokerv1.NewClient(http.DefaultClient, "http://localhost:1")
	view := session.NewView(api, feed.NewWebSocketFeed("http://localhost:1", ""), ids, clockwork.NewFakeClock(), session.OrchestratorConfig{})
	assert.NotPanics(t, func() { logStatus(view) })
	assert.Equal(t, session.PhaseDetached, view.Orchestrator().Stats().Phase)
}
