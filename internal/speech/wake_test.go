package speech

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/ziggy/internal/audio"
)

type fakeSource struct {
	count int
}

func (s *fakeSource) ReadFrame(ctx context.Context) (audio.Frame, error) {
	if err := ctx.Err(); err != nil {
		return audio.Frame{}, err
	}
	s.count++
	return audio.Frame{Data: make([]byte, 320), Duration: 100 * time.Millisecond, Timestamp: time.Now()}, nil
}

func (s *fakeSource) Close() error { return nil }

type fakeRecognizer struct {
	signals []audio.Signal
	idx     int
	final   string
	resets  int
}

func (r *fakeRecognizer) Feed(ctx context.Context, frame []byte) (audio.Signal, error) {
	if r.idx < len(r.signals) {
		s := r.signals[r.idx]
		r.idx++
		return s, nil
	}
	return audio.Signal{}, nil
}

func (r *fakeRecognizer) Finalize(ctx context.Context) (string, error) {
	return r.final, nil
}

func (r *fakeRecognizer) Reset(ctx context.Context) error {
	r.resets++
	return nil
}

func TestWakeListener_MatchesPartial(t *testing.T) {
	rec := &fakeRecognizer{signals: []audio.Signal{
		{},
		{Speech: true, Partial: "hey"},
		{Speech: true, Partial: "hey ziggy"},
	}}
	listener := NewWakeListener(&fakeSource{}, rec, zerolog.Nop())

	match, err := listener.Listen(context.Background(), "ziggy")
	require.NoError(t, err)
	assert.Equal(t, "ziggy", match.Phrase)
	assert.Equal(t, "hey ziggy", match.Heard)
	assert.Equal(t, 1, rec.resets, "recognizer must be reset on exit")
}

func TestWakeListener_MatchIsCaseInsensitive(t *testing.T) {
	rec := &fakeRecognizer{signals: []audio.Signal{
		{Speech: true, Partial: "ZIGGY are you there"},
	}}
	listener := NewWakeListener(&fakeSource{}, rec, zerolog.Nop())

	match, err := listener.Listen(context.Background(), "Ziggy")
	require.NoError(t, err)
	assert.Equal(t, "ziggy", match.Phrase)
}

func TestWakeListener_MatchesCompletedSegment(t *testing.T) {
	// The phrase only shows up in the finalized text, not in any partial.
	rec := &fakeRecognizer{
		signals: []audio.Signal{{Speech: true}},
		final:   "okay ziggy",
	}
	listener := NewWakeListener(&fakeSource{}, rec, zerolog.Nop())

	match, err := listener.Listen(context.Background(), "ziggy")
	require.NoError(t, err)
	assert.Equal(t, "okay ziggy", match.Heard)
}

func TestWakeListener_ReportsFirstOfSeveralPhrases(t *testing.T) {
	rec := &fakeRecognizer{signals: []audio.Signal{
		{Speech: true, Partial: "take a break"},
	}}
	listener := NewWakeListener(&fakeSource{}, rec, zerolog.Nop())

	match, err := listener.Listen(context.Background(), "ziggy", "take a break")
	require.NoError(t, err)
	assert.Equal(t, "take a break", match.Phrase)
}

func TestWakeListener_Cancellation(t *testing.T) {
	rec := &fakeRecognizer{}
	listener := NewWakeListener(&fakeSource{}, rec, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := listener.Listen(ctx, "ziggy")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after cancellation")
	}
	assert.Equal(t, 1, rec.resets)
}
