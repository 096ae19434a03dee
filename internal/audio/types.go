// Package audio provides frame capture plumbing, utterance segmentation,
// and the recording controller for Ziggy.
package audio

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrNoUtterance   = errors.New("no utterance detected")
	ErrCaptureFailed = errors.New("audio capture failed")
	ErrSourceClosed  = errors.New("audio source closed")
)

// Frame represents one chunk of captured audio
type Frame struct {
	Data      []byte
	Duration  time.Duration
	Timestamp time.Time
}

// Signal is the partial-recognition signal the speech engine reports for a
// frame: whether it likely contains speech, plus any partial transcript.
type Signal struct {
	Speech  bool
	Partial string
}

// Source delivers captured audio frames. ReadFrame blocks until a frame is
// available or ctx is done.
type Source interface {
	ReadFrame(ctx context.Context) (Frame, error)
	Close() error
}

// Recognizer is the slice of the speech engine the recorder needs: per-frame
// partial signals and a final transcript for the accumulated utterance.
type Recognizer interface {
	Feed(ctx context.Context, frame []byte) (Signal, error)
	Finalize(ctx context.Context) (string, error)
}

// Mode selects which profile thresholds a recording session uses
type Mode string

const (
	ModeCommand        Mode = "command"
	ModeConversational Mode = "conversational"
)

// StopReason reports why a recording session ended
type StopReason string

const (
	// StopEndOfUtterance means silence followed detected speech
	StopEndOfUtterance StopReason = "end_of_utterance"
	// StopForced means the absolute duration cap was hit
	StopForced StopReason = "forced_stop"
)

// Limits are the timing bounds for one recording session, resolved from the
// active profile at session creation
type Limits struct {
	SilenceTimeout time.Duration
	MaxDuration    time.Duration
}

// Result is a finalized recording session
type Result struct {
	Transcript string
	Reason     StopReason
	Elapsed    time.Duration
}
