package health

import (
	"context"
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

func TestChecker_ModelServerUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := NewChecker(zerolog.Nop(), &Config{
		AIBaseURL: srv.URL,
		Timeout:   time.Second,
	})

	report := checker.checkModelServer(context.Background())
	assert.Equal(t, StatusOK, report.Status)
	assert.Greater(t, report.Latency, time.Duration(0))
}

func TestChecker_ModelServerDown(t *testing.T) {
	checker := NewChecker(zerolog.Nop(), &Config{
		AIBaseURL: "http://127.0.0.1:1",
		Timeout:   500 * time.Millisecond,
	})

	report := checker.checkModelServer(context.Background())
	assert.Equal(t, StatusDown, report.Status)
}

func TestChecker_SpeechServerUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	checker := NewChecker(zerolog.Nop(), &Config{
		SpeechServerURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
		Timeout:         time.Second,
	})

	report := checker.checkSpeechServer(context.Background())
	assert.Equal(t, StatusOK, report.Status)
}

func TestChecker_SpeechServerDown(t *testing.T) {
	checker := NewChecker(zerolog.Nop(), &Config{
		SpeechServerURL: "ws://127.0.0.1:1",
		Timeout:         500 * time.Millisecond,
	})

	report := checker.checkSpeechServer(context.Background())
	assert.Equal(t, StatusDown, report.Status)
}

func TestChecker_ReportsInFixedOrder(t *testing.T) {
	checker := NewChecker(zerolog.Nop(), &Config{
		SpeechServerURL: "ws://127.0.0.1:1",
		AIBaseURL:       "http://127.0.0.1:1",
		Timeout:         500 * time.Millisecond,
	})

	reports := checker.Check(context.Background())
	require.Len(t, reports, 4)
	assert.Equal(t, "recognition server", reports[0].Name)
	assert.Equal(t, "model server", reports[1].Name)
	assert.Equal(t, "audio capture", reports[2].Name)
	assert.Equal(t, "speech synthesis", reports[3].Name)
}
