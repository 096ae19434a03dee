package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer speaks the recognition protocol: a config message first, then
// one scripted JSON reply per audio chunk, and a final reply for eof.
type fakeServer struct {
	replies []string
	t       *testing.T
}

func (s *fakeServer) handler(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.t.Errorf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	idx := 0
	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if msgType == websocket.TextMessage {
			var probe map[string]json.RawMessage
			if json.Unmarshal(message, &probe) == nil {
				if _, ok := probe["config"]; ok {
					continue
				}
				if _, ok := probe["eof"]; ok {
					reply := `{"text": ""}`
					if idx < len(s.replies) {
						reply = s.replies[idx]
						idx++
					}
					conn.WriteMessage(websocket.TextMessage, []byte(reply))
					continue
				}
			}
		}

		reply := `{"partial": ""}`
		if idx < len(s.replies) {
			reply = s.replies[idx]
			idx++
		}
		conn.WriteMessage(websocket.TextMessage, []byte(reply))
	}
}

func newTestEngine(t *testing.T, replies []string) (*Engine, func()) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc((&fakeServer{replies: replies, t: t}).handler))
	cfg := DefaultConfig()
	cfg.ServerURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	cfg.ReadTimeout = 2 * time.Second

	engine := NewEngine(zerolog.Nop(), cfg)
	require.NoError(t, engine.Connect(context.Background()))

	return engine, func() {
		engine.Close()
		srv.Close()
	}
}

func TestEngine_PartialsSignalSpeech(t *testing.T) {
	engine, done := newTestEngine(t, []string{
		`{"partial": ""}`,
		`{"partial": "what"}`,
		`{"partial": "what time"}`,
	})
	defer done()

	chunk := make([]byte, 320)

	sig, err := engine.Feed(context.Background(), chunk)
	require.NoError(t, err)
	assert.False(t, sig.Speech)

	sig, err = engine.Feed(context.Background(), chunk)
	require.NoError(t, err)
	assert.True(t, sig.Speech)
	assert.Equal(t, "what", sig.Partial)

	sig, err = engine.Feed(context.Background(), chunk)
	require.NoError(t, err)
	assert.Equal(t, "what time", sig.Partial)
}

func TestEngine_FinalizeJoinsSegments(t *testing.T) {
	engine, done := newTestEngine(t, []string{
		`{"text": "what time"}`,
		`{"partial": "is it"}`,
		`{"text": "is it"}`,
	})
	defer done()

	chunk := make([]byte, 320)

	sig, err := engine.Feed(context.Background(), chunk)
	require.NoError(t, err)
	assert.True(t, sig.Speech, "a completed segment still counts as speech")

	_, err = engine.Feed(context.Background(), chunk)
	require.NoError(t, err)

	text, err := engine.Finalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "what time is it", text)
}

func TestEngine_FinalizeClearsSegments(t *testing.T) {
	engine, done := newTestEngine(t, []string{
		`{"text": "first utterance"}`,
		`{"text": ""}`,
		`{"text": ""}`,
	})
	defer done()

	_, err := engine.Feed(context.Background(), make([]byte, 320))
	require.NoError(t, err)

	text, err := engine.Finalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first utterance", text)

	// A second flush starts empty.
	text, err = engine.Finalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestEngine_FeedBeforeConnect(t *testing.T) {
	engine := NewEngine(zerolog.Nop(), DefaultConfig())

	_, err := engine.Feed(context.Background(), make([]byte, 320))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestEngine_ConnectUnreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServerURL = "ws://127.0.0.1:1"
	cfg.DialTimeout = 500 * time.Millisecond

	engine := NewEngine(zerolog.Nop(), cfg)
	err := engine.Connect(context.Background())
	assert.ErrorIs(t, err, ErrServerUnavailable)
}
