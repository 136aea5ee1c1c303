package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/config"
)

func TestSettingsEndpoint(t *testing.T) {
	server := setupServer("0", &Services{}, config.DefaultSettings(), func() error { return nil })
	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/settings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Deck struct {
			Cards []struct {
				Value string `json:"value"`
			} `json:"cards"`
		} `json:"deck"`
		Avatars []string `json:"avatars"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Deck.Cards, 13)
	assert.Len(t, body.Avatars, 8)
}

func TestHealthReflectsDatabase(t *testing.T) {
	var down atomic.Bool
	server := setupServer("0", &Services{}, config.DefaultSettings(), func() error {
		if down.Load() {
			return errors.New("connection refused")
		}
		return nil
	})
	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down.Store(true)
	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
