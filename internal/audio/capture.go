package audio

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CaptureConfig configures the arecord capture source
type CaptureConfig struct {
	Device     string        // ALSA device name ("default")
	SampleRate int           // Hz, 16000 for the speech engine
	FrameDur   time.Duration // duration of one frame (100ms)
}

// DefaultCaptureConfig returns sensible defaults
func DefaultCaptureConfig() *CaptureConfig {
	return &CaptureConfig{
		Device:     "default",
		SampleRate: 16000,
		FrameDur:   100 * time.Millisecond,
	}
}

// ArecordSource captures 16-bit mono PCM frames from an arecord pipe.
// It is the thin transport adapter behind the Source interface; everything
// above it is device-agnostic.
type ArecordSource struct {
	cfg    *CaptureConfig
	logger zerolog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc
	closed bool

	// A read abandoned by a cancelled ReadFrame finishes in the background
	// and is handed to the next caller, so cancellation never discards audio.
	pending chan readResult
}

type readResult struct {
	buf []byte
	err error
}

// NewArecordSource creates a capture source; the pipe is opened lazily on
// first ReadFrame.
func NewArecordSource(cfg *CaptureConfig, logger zerolog.Logger) *ArecordSource {
	if cfg == nil {
		cfg = DefaultCaptureConfig()
	}
	return &ArecordSource{
		cfg:    cfg,
		logger: logger.With().Str("component", "capture").Logger(),
	}
}

func (s *ArecordSource) frameBytes() int {
	samples := int(float64(s.cfg.SampleRate) * s.cfg.FrameDur.Seconds())
	return samples * 2 // 16-bit mono
}

func (s *ArecordSource) ensureStarted() error {
	if s.cmd != nil {
		return nil
	}
	if s.closed {
		return ErrSourceClosed
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, "arecord",
		"-D", s.cfg.Device,
		"-f", "S16_LE",
		"-r", fmt.Sprintf("%d", s.cfg.SampleRate),
		"-c", "1",
		"-t", "raw",
		"-q")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	s.cmd = cmd
	s.stdout = stdout
	s.cancel = cancel
	s.logger.Debug().Str("device", s.cfg.Device).Int("rate", s.cfg.SampleRate).Msg("Capture pipe opened")
	return nil
}

// ReadFrame blocks until one full frame is captured or ctx is done
func (s *ArecordSource) ReadFrame(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	if err := s.ensureStarted(); err != nil {
		s.mu.Unlock()
		return Frame{}, err
	}
	stdout := s.stdout
	done := s.pending
	if done == nil {
		done = make(chan readResult, 1)
		go func() {
			buf := make([]byte, s.frameBytes())
			_, err := io.ReadFull(stdout, buf)
			done <- readResult{buf, err}
		}()
	}
	s.pending = done
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case res := <-done:
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		if res.err != nil {
			return Frame{}, fmt.Errorf("%w: %v", ErrCaptureFailed, res.err)
		}
		return Frame{
			Data:      res.buf,
			Duration:  s.cfg.FrameDur,
			Timestamp: time.Now(),
		}, nil
	}
}

// Close terminates the capture pipe and releases the device
func (s *ArecordSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	if s.cmd != nil {
		err := s.cmd.Wait()
		s.cmd = nil
		s.stdout = nil
		// arecord exits non-zero when killed; that is the expected path.
		if err != nil {
			s.logger.Debug().Err(err).Msg("Capture pipe closed")
		}
	}
	return nil
}
