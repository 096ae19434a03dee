package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/normanking/ziggy/internal/audio"
)

// Engine streams raw PCM frames to a Kaldi-style recognition server over a
// websocket and turns its replies into per-frame signals. The server answers
// every audio chunk with either a partial hypothesis or, after a pause, a
// final segment; Finalize flushes the stream and joins the segments.
//
// A mutex serializes every method, so the recorder and the wake listener can
// share one Engine and hand it between phases of the session without extra
// coordination. Interleaving frames from two feeders would still garble the
// transcript; callers keep a single feeder active at a time.
type Engine struct {
	config *Config
	logger zerolog.Logger

	conn        *websocket.Conn
	connMu      sync.Mutex
	isConnected bool

	segments []string
}

// NewEngine creates a recognition client for the given server.
func NewEngine(logger zerolog.Logger, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config: config,
		logger: logger.With().Str("component", "speech").Logger(),
	}
}

type serverResult struct {
	Partial string `json:"partial"`
	Text    string `json:"text"`
}

// Connect dials the recognition server and sends the stream configuration.
func (e *Engine) Connect(ctx context.Context) error {
	e.connMu.Lock()
	defer e.connMu.Unlock()

	if e.isConnected && e.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: e.config.DialTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, e.config.ServerURL, nil)
	if err != nil {
		if resp != nil {
			e.logger.Error().
				Int("status", resp.StatusCode).
				Err(err).
				Msg("Recognition server handshake failed")
		}
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}

	cfgMsg := fmt.Sprintf(`{"config": {"sample_rate": %d}}`, e.config.SampleRate)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(cfgMsg)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to configure recognition stream: %w", err)
	}

	e.conn = conn
	e.isConnected = true
	e.logger.Info().Str("url", e.config.ServerURL).Msg("Connected to recognition server")

	return nil
}

// Feed sends one audio frame and returns the server's verdict for it. A
// non-empty partial means speech is in progress; a final segment is
// accumulated for Finalize.
func (e *Engine) Feed(ctx context.Context, frame []byte) (audio.Signal, error) {
	e.connMu.Lock()
	defer e.connMu.Unlock()

	if !e.isConnected || e.conn == nil {
		return audio.Signal{}, ErrNotConnected
	}

	if err := e.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		e.drop()
		return audio.Signal{}, fmt.Errorf("failed to send audio frame: %w", err)
	}

	result, err := e.readResult(ctx)
	if err != nil {
		e.drop()
		return audio.Signal{}, err
	}

	if result.Text != "" {
		e.segments = append(e.segments, result.Text)
		e.logger.Debug().Str("text", result.Text).Msg("Final segment")
		// A completed segment means speech was just heard, even though
		// the partial buffer has been flushed.
		return audio.Signal{Speech: true}, nil
	}

	return audio.Signal{Speech: result.Partial != "", Partial: result.Partial}, nil
}

// Finalize flushes the stream and returns the full transcript of everything
// heard since the last Finalize or Reset.
func (e *Engine) Finalize(ctx context.Context) (string, error) {
	e.connMu.Lock()
	defer e.connMu.Unlock()

	if !e.isConnected || e.conn == nil {
		return "", ErrNotConnected
	}

	if err := e.conn.WriteMessage(websocket.TextMessage, []byte(`{"eof" : 1}`)); err != nil {
		e.drop()
		return "", fmt.Errorf("failed to flush recognition stream: %w", err)
	}

	result, err := e.readResult(ctx)
	if err != nil {
		e.drop()
		return "", err
	}

	if result.Text != "" {
		e.segments = append(e.segments, result.Text)
	}

	transcript := strings.TrimSpace(strings.Join(e.segments, " "))
	e.segments = nil

	return transcript, nil
}

// Reset discards any accumulated speech so the next Feed starts a fresh
// utterance. The server side is flushed the same way Finalize does.
func (e *Engine) Reset(ctx context.Context) error {
	_, err := e.Finalize(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset recognition stream: %w", err)
	}
	return nil
}

func (e *Engine) readResult(ctx context.Context) (*serverResult, error) {
	deadline := time.Now().Add(e.config.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := e.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	_, message, err := e.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, fmt.Errorf("%w: connection closed", ErrServerUnavailable)
		}
		return nil, fmt.Errorf("failed to read recognition result: %w", err)
	}

	var result serverResult
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("malformed recognition result %q: %w", string(message), err)
	}

	return &result, nil
}

// drop marks the connection dead so the next Connect re-dials.
func (e *Engine) drop() {
	if e.conn != nil {
		e.conn.Close()
	}
	e.conn = nil
	e.isConnected = false
	e.segments = nil
}

// Close shuts the connection down.
func (e *Engine) Close() error {
	e.connMu.Lock()
	defer e.connMu.Unlock()

	if e.conn == nil {
		return nil
	}

	err := e.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	if err != nil {
		e.logger.Debug().Err(err).Msg("Close handshake failed")
	}

	closeErr := e.conn.Close()
	e.conn = nil
	e.isConnected = false
	e.segments = nil

	return closeErr
}
