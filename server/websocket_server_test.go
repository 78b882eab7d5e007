package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/room4-2/aurashield/config"
	"github.com/room4-2/aurashield/conversation"
	"github.com/room4-2/aurashield/messages"
	"github.com/room4-2/aurashield/session"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubChat struct{}

func (stubChat) SendMessage(_ context.Context, message string) (*conversation.StructuredReply, error) {
	return &conversation.StructuredReply{
		ResponseText: "Here is what I found about " + message,
		Suggestions:  []string{"Compare plans", "Contact support"},
		ContentType:  conversation.ContentInsuranceList,
		ContentData: conversation.ContentData{Products: []conversation.Product{
			{ID: "auto-1", Name: "Momentum Auto Policy", Category: conversation.CategoryAuto},
		}},
	}, nil
}

type stubAssistant struct{}

func (stubAssistant) StartChat(context.Context) (conversation.Chat, error) { return stubChat{}, nil }

func (stubAssistant) GenerateSpeech(context.Context, string) (string, error) { return "", nil }

func newTestServer(t *testing.T, cfg *config.Config, assistant conversation.Assistant) *httptest.Server {
	t.Helper()
	mgr := session.NewManager(cfg, assistant, zap.NewNop())
	srv := NewServerWebsocket(cfg, mgr, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		mgr.Shutdown()
		ts.Close()
	})
	return ts
}

func testConfig() *config.Config {
	return &config.Config{
		MaxSessions:    1,
		SessionTimeout: time.Minute,
		AllowedOrigins: []string{"*"},
		PlaybackGain:   1,
	}
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

type frame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Payload   json.RawMessage `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f frame
	require.NoError(t, sonic.Unmarshal(data, &f))
	return f
}

func readState(t *testing.T, conn *websocket.Conn, pred func(conversation.Snapshot) bool) conversation.Snapshot {
	t.Helper()
	for {
		f := readFrame(t, conn)
		if f.Type != messages.TypeState {
			continue
		}
		var snap conversation.Snapshot
		require.NoError(t, sonic.Unmarshal(f.Payload, &snap))
		if pred(snap) {
			return snap
		}
	}
}

func TestWebSocketConversation(t *testing.T) {
	ts := newTestServer(t, testConfig(), stubAssistant{})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer conn.Close()

	connected := readFrame(t, conn)
	assert.Equal(t, messages.TypeStatus, connected.Type)
	assert.NotEmpty(t, connected.SessionID)

	welcome := readState(t, conn, func(s conversation.Snapshot) bool { return !s.IsLoading })
	require.Len(t, welcome.Messages, 1)
	assert.Equal(t, conversation.SenderAI, welcome.Messages[0].Sender)
	assert.Len(t, welcome.Suggestions, 4)
	assert.Equal(t, conversation.ContentWelcome, welcome.Content.Type)

	data, err := sonic.Marshal(map[string]any{
		"type":    messages.TypeSuggestion,
		"payload": messages.TextPayload{Text: welcome.Suggestions[1]},
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))

	reply := readState(t, conn, func(s conversation.Snapshot) bool { return !s.IsLoading && len(s.Messages) == 3 })
	assert.Equal(t, welcome.Suggestions[1], reply.Messages[1].Text)
	assert.Equal(t, conversation.SenderUser, reply.Messages[1].Sender)
	assert.Equal(t, conversation.ContentInsuranceList, reply.Content.Type)
	assert.Equal(t, []string{"Compare plans", "Contact support"}, reply.Suggestions)
	assert.Greater(t, reply.Seq, welcome.Seq)
}

func TestWebSocketRejectsWhenFull(t *testing.T) {
	ts := newTestServer(t, testConfig(), stubAssistant{})

	first, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer first.Close()
	readFrame(t, first)

	second, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer second.Close()

	f := readFrame(t, second)
	assert.Equal(t, messages.TypeError, f.Type)
	assert.Contains(t, string(f.Payload), messages.ErrCodeSessionFailed)
}

func TestWebSocketChecksOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://app.example"}
	ts := newTestServer(t, cfg, stubAssistant{})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), http.Header{"Origin": {"https://app.example"}})
	require.NoError(t, err)
	conn.Close()
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, testConfig(), conversation.Unavailable{Err: assert.AnError})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, string(body))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "aurashield_active_sessions")
}

func TestWebSocketInitFailure(t *testing.T) {
	ts := newTestServer(t, testConfig(), conversation.Unavailable{Err: assert.AnError})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer conn.Close()

	snap := readState(t, conn, func(s conversation.Snapshot) bool { return !s.IsLoading })
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, conversation.InitFailureText, snap.Messages[0].Text)
	assert.Equal(t, conversation.ContentSupport, snap.Content.Type)
	assert.Equal(t, "Initialization Failed", snap.Content.Data.Title)
}
