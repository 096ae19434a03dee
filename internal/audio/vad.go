package audio

import "time"

// FrameClass is the per-frame classification produced by the Detector
type FrameClass int

const (
	// FrameInconclusive covers leading frames before any speech was heard;
	// they never count toward the silence timeout.
	FrameInconclusive FrameClass = iota
	FrameSpeech
	FrameSilence
)

// Event is a segmentation event emitted by the Detector
type Event int

const (
	EventNone Event = iota
	// EventEndOfUtterance fires when accumulated silence after speech
	// exceeds the silence timeout.
	EventEndOfUtterance
	// EventForcedStop fires when total elapsed time exceeds the max
	// duration, regardless of speech state. Reported separately so callers
	// can still attempt recognition on the partial audio.
	EventForcedStop
)

// Detector turns frames plus partial-recognition signals into utterance
// boundaries. It is deliberately not an energy detector: the speech engine's
// partial signal is the only evidence used, so the detector works with any
// audio front end.
//
// Time advances by frame durations, not the wall clock, which keeps the
// detector deterministic under test.
type Detector struct {
	limits Limits

	elapsed   time.Duration
	silence   time.Duration
	sawSpeech bool
}

// NewDetector creates a Detector for one recording session
func NewDetector(limits Limits) *Detector {
	return &Detector{limits: limits}
}

// Observe classifies one frame and reports any segmentation event.
// The forced-stop cap is checked first so a session cannot outlive its
// absolute limit even under continuous speech.
func (d *Detector) Observe(frame Frame, sig Signal) (FrameClass, Event) {
	d.elapsed += frame.Duration

	class := FrameInconclusive
	if sig.Speech || sig.Partial != "" {
		class = FrameSpeech
		d.sawSpeech = true
		d.silence = 0
	} else if d.sawSpeech {
		class = FrameSilence
		d.silence += frame.Duration
	}

	if d.elapsed > d.limits.MaxDuration {
		return class, EventForcedStop
	}

	if d.sawSpeech && d.silence > d.limits.SilenceTimeout {
		return class, EventEndOfUtterance
	}

	return class, EventNone
}

// SawSpeech reports whether any speech frame was observed this session
func (d *Detector) SawSpeech() bool {
	return d.sawSpeech
}

// Elapsed returns the total observed frame time
func (d *Detector) Elapsed() time.Duration {
	return d.elapsed
}

// Reset clears detector state for reuse
func (d *Detector) Reset() {
	d.elapsed = 0
	d.silence = 0
	d.sawSpeech = false
}
