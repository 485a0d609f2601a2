package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/middleware"
)

func testApplication() *models.Application {
	return &models.Application{ID: 11, FirstName: "Ama", LastName: "Mensah", CourseName: "Diploma in Data Science", Status: models.StatusPending}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestNewApplicationEvent(t *testing.T) {
	event := NewApplicationEvent(EventApplicationSubmitted, testApplication())

	assert.Equal(t, EventApplicationSubmitted, event.Type)
	assert.Equal(t, int64(11), event.ApplicationID)
	assert.Equal(t, "Ama Mensah", event.Applicant)
	assert.Equal(t, "Diploma in Data Science", event.Course)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Second)
}

func TestHub_BroadcastToRegisteredClients(t *testing.T) {
	hub, _ := startHub(t)
	a := NewClient(hub, nil, 1, zerolog.Nop())
	b := NewClient(hub, nil, 2, zerolog.Nop())
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))
	require.Eventually(t, func() bool { return hub.ClientsCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Publish(NewApplicationEvent(EventApplicationDeleted, testApplication()))

	for _, c := range []*Client{a, b} {
		select {
		case data := <-c.send:
			var event Event
			require.NoError(t, json.Unmarshal(data, &event))
			assert.Equal(t, EventApplicationDeleted, event.Type)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	hub.Unregister(a)
	require.Eventually(t, func() bool { return hub.ClientsCount() == 1 }, time.Second, 5*time.Millisecond)
	_, open := <-a.send
	assert.False(t, open, "unregistering closes the send channel")
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, cancel := startHub(t)
	c := NewClient(hub, nil, 1, zerolog.Nop())
	require.True(t, hub.Register(c))

	cancel()
	select {
	case _, open := <-c.send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("client not closed on shutdown")
	}

	assert.False(t, hub.Register(NewClient(hub, nil, 2, zerolog.Nop())))
	hub.Unregister(c)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.Publish(NewApplicationEvent(EventApplicationSubmitted, testApplication()))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no hub running")
	}
	assert.Len(t, hub.broadcast, broadcastBuffer)
}

func TestNewUpgrader_CheckOrigin(t *testing.T) {
	upgrader := NewUpgrader(" http://localhost:3000/ ", "https://apply.eston.edu.gh")

	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "http://localhost:3000", want: true},
		{origin: "https://apply.eston.edu.gh", want: true},
		{origin: "https://evil.example.com", want: false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/events", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, upgrader.CheckOrigin(req), tt.origin)
	}
}

func TestHandler_StreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub, _ := startHub(t)
	handler := NewHandler(hub, NewUpgrader(), zerolog.Nop())

	r := gin.New()
	r.GET("/api/admin/events", func(c *gin.Context) {
		c.Set(middleware.AuthUserKey, &models.AuthUser{ID: 1, Role: models.RoleAdmin})
		c.Next()
	}, handler.HandleConnection)
	server := httptest.NewServer(r)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/admin/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.ClientsCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(NewApplicationEvent(EventApplicationStatusChanged, testApplication()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(strings.Split(string(data), "\n")[0]), &event))
	assert.Equal(t, EventApplicationStatusChanged, event.Type)
	assert.Equal(t, int64(11), event.ApplicationID)
}

func TestHandler_RequiresCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewHub(zerolog.Nop()), NewUpgrader(), zerolog.Nop())
	r := gin.New()
	r.GET("/api/admin/events", handler.HandleConnection)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/events", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
