package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/models"
)

// WebSocketFeed subscribes through the gateway's /ws/game endpoint.
type WebSocketFeed struct {
	baseURL string
	dialer  *websocket.Dialer

	mu       sync.RWMutex
	playerID string
}

// NewWebSocketFeed targets the gateway at baseURL (ws:// or http://). playerID is reported for
// presence and may be empty.
func NewWebSocketFeed(baseURL, playerID string) *WebSocketFeed {
	base := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	}
	return &WebSocketFeed{
		baseURL:  base,
		playerID: playerID,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// SetPlayerID changes the player reported for presence. It applies to later subscriptions.
func (f *WebSocketFeed) SetPlayerID(playerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playerID = playerID
}

func (f *WebSocketFeed) endpoint(filter Filter) string {
	q := url.Values{}
	q.Set("game_id", filter.GameID)
	f.mu.RLock()
	playerID := f.playerID
	f.mu.RUnlock()
	if playerID != "" {
		q.Set("player_id", playerID)
	}
	if len(filter.Tables) > 0 {
		names := make([]string, len(filter.Tables))
		for i, t := range filter.Tables {
			names[i] = string(t)
		}
		q.Set("tables", strings.Join(names, ","))
	}
	return f.baseURL + "/ws/game?" + q.Encode()
}

func (f *WebSocketFeed) Subscribe(ctx context.Context, filter Filter, handler Handler, lost LostFunc) (Cancel, error) {
	if filter.GameID == "" {
		return nil, errors.New("game id is required")
	}
	conn, _, err := f.dialer.DialContext(ctx, f.endpoint(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("dial change feed: %w", err)
	}

	var (
		mu       sync.Mutex
		canceled bool
	)
	done := make(chan struct{})
	go func() {
		var lostErr error
		defer func() {
			// after done, so lost may call Cancel
			close(done)
			if lostErr != nil && lost != nil {
				lost(lostErr)
			}
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				mu.Lock()
				wasCanceled := canceled
				mu.Unlock()
				if wasCanceled {
					return
				}
				log.Warn().Err(err).Str("game_id", filter.GameID).Msg("change feed closed")
				lostErr = err
				return
			}
			var event models.ChangeEvent
			if err := json.Unmarshal(data, &event); err != nil {
				log.Warn().Err(err).Str("game_id", filter.GameID).Msg("dropping undecodable change event")
				continue
			}
			handler(event)
		}
	}()

	return once(func() {
		mu.Lock()
		canceled = true
		mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
		<-done
	}), nil
}
