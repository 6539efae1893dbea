package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rentproof_backend/internal/models"
	"rentproof_backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	Type string               `json:"type"`
	Data services.StatusEvent `json:"data"`
}

func startHub(t *testing.T) (*WebSocketManager, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	manager := NewWebSocketManager()
	go manager.Run(ctx)

	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(manager, upgrader, w, r, r.URL.Query().Get("party"), r.URL.Query().Get("rental"))
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return manager, srv
}

func dial(t *testing.T, manager *WebSocketManager, srv *httptest.Server, party, rental string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?party=" + party + "&rental=" + rental
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return manager.IsPartyConnected(party) }, time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg received
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func event(rentalID, owner, renter string) services.StatusEvent {
	return services.StatusEvent{
		RentalID: rentalID,
		OwnerID:  owner,
		RenterID: renter,
		Phase:    models.PhaseStart,
		From:     models.RentalStatusConfirmed,
		To:       models.RentalStatusAwaitingStartRenter,
		Version:  1,
		At:       time.Now(),
	}
}

func TestPublishStatus_ReachesBothParties(t *testing.T) {
	manager, srv := startHub(t)
	owner := dial(t, manager, srv, "owner-1", "")
	renter := dial(t, manager, srv, "renter-1", "")

	manager.PublishStatus(context.Background(), event("rental-1", "owner-1", "renter-1"))

	for _, conn := range []*websocket.Conn{owner, renter} {
		msg := readEvent(t, conn)
		assert.Equal(t, MessageRentalStatusChanged, msg.Type)
		assert.Equal(t, "rental-1", msg.Data.RentalID)
		assert.Equal(t, models.RentalStatusAwaitingStartRenter, msg.Data.To)
	}
}

func TestPublishStatus_RespectsRentalFilter(t *testing.T) {
	manager, srv := startHub(t)
	conn := dial(t, manager, srv, "owner-1", "rental-2")

	manager.PublishStatus(context.Background(), event("rental-1", "owner-1", "renter-1"))
	manager.PublishStatus(context.Background(), event("rental-2", "owner-1", "renter-1"))

	msg := readEvent(t, conn)
	assert.Equal(t, "rental-2", msg.Data.RentalID)
}

func TestPublishStatus_SeveralConnectionsPerParty(t *testing.T) {
	manager, srv := startHub(t)
	first := dial(t, manager, srv, "owner-1", "")
	second := dial(t, manager, srv, "owner-1", "")
	require.Eventually(t, func() bool { return manager.GetClientCount() == 2 }, time.Second, 10*time.Millisecond)

	manager.PublishStatus(context.Background(), event("rental-1", "owner-1", "owner-1"))

	assert.Equal(t, "rental-1", readEvent(t, first).Data.RentalID)
	assert.Equal(t, "rental-1", readEvent(t, second).Data.RentalID)
}

func TestPing_Pong(t *testing.T) {
	manager, srv := startHub(t)
	conn := dial(t, manager, srv, "renter-1", "")

	require.NoError(t, conn.WriteJSON(IncomingWSMessage{Action: "ping"}))
	assert.Equal(t, "pong", readEvent(t, conn).Type)
}

func TestDisconnect_Unregisters(t *testing.T) {
	manager, srv := startHub(t)
	conn := dial(t, manager, srv, "renter-1", "")

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return !manager.IsPartyConnected("renter-1") }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishStatus_NeverBlocksWithoutRun(t *testing.T) {
	manager := NewWebSocketManager()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			manager.PublishStatus(context.Background(), event("rental-1", "owner-1", "renter-1"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PublishStatus blocked on a full queue")
	}
}

func TestUpgrader_CheckOrigin(t *testing.T) {
	upgrader := NewUpgrader([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/ws", nil)
	assert.True(t, upgrader.CheckOrigin(req), "native clients send no Origin")

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, upgrader.CheckOrigin(req))
}
