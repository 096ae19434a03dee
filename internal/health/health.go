// Package health probes the local services the assistant depends on so a
// broken setup can be diagnosed before anything is spoken.
package health

import (
	"context"
	"net/http"
	"os/exec"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Status of one dependency.
type Status string

const (
	StatusOK      Status = "ok"
	StatusDown    Status = "down"
	StatusMissing Status = "missing"
)

// Report is the result of probing one dependency.
type Report struct {
	Name    string
	Status  Status
	Latency time.Duration
	Detail  string
}

// Config names the endpoints and binaries to probe.
type Config struct {
	SpeechServerURL string
	AIBaseURL       string
	Timeout         time.Duration
}

// DefaultConfig probes the standard local setup.
func DefaultConfig() *Config {
	return &Config{
		SpeechServerURL: "ws://localhost:2700",
		AIBaseURL:       "http://localhost:11434",
		Timeout:         2 * time.Second,
	}
}

// Checker runs the dependency probes.
type Checker struct {
	cfg        *Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewChecker creates a Checker.
func NewChecker(logger zerolog.Logger, cfg *Config) *Checker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Checker{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "health").Logger(),
	}
}

// Check probes every dependency concurrently and returns the reports in a
// fixed order: recognition server, model server, capture, synthesis.
func (c *Checker) Check(ctx context.Context) []Report {
	probes := []func(context.Context) Report{
		c.checkSpeechServer,
		c.checkModelServer,
		c.checkCapture,
		c.checkSynthesis,
	}

	reports := make([]Report, len(probes))
	var wg sync.WaitGroup
	for i, probe := range probes {
		wg.Add(1)
		go func(i int, probe func(context.Context) Report) {
			defer wg.Done()
			reports[i] = probe(ctx)
		}(i, probe)
	}
	wg.Wait()

	for _, r := range reports {
		c.logger.Info().
			Str("dependency", r.Name).
			Str("status", string(r.Status)).
			Dur("latency", r.Latency).
			Msg("Dependency checked")
	}
	return reports
}

func (c *Checker) checkSpeechServer(ctx context.Context) Report {
	report := Report{Name: "recognition server", Detail: c.cfg.SpeechServerURL}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.Timeout}
	start := time.Now()
	conn, _, err := dialer.DialContext(ctx, c.cfg.SpeechServerURL, nil)
	if err != nil {
		report.Status = StatusDown
		report.Detail = err.Error()
		return report
	}
	conn.Close()

	report.Status = StatusOK
	report.Latency = time.Since(start)
	return report
}

func (c *Checker) checkModelServer(ctx context.Context) Report {
	report := Report{Name: "model server", Detail: c.cfg.AIBaseURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.AIBaseURL+"/api/tags", nil)
	if err != nil {
		report.Status = StatusDown
		report.Detail = err.Error()
		return report
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		report.Status = StatusDown
		report.Detail = err.Error()
		return report
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		report.Status = StatusDown
		report.Detail = resp.Status
		return report
	}

	report.Status = StatusOK
	report.Latency = time.Since(start)
	return report
}

func (c *Checker) checkCapture(ctx context.Context) Report {
	return checkBinary("audio capture", "arecord")
}

func (c *Checker) checkSynthesis(ctx context.Context) Report {
	// Either engine is enough; the speaker falls back on its own.
	if report := checkBinary("speech synthesis", "piper"); report.Status == StatusOK {
		return report
	}
	return checkBinary("speech synthesis", "espeak")
}

func checkBinary(name, binary string) Report {
	path, err := exec.LookPath(binary)
	if err != nil {
		return Report{Name: name, Status: StatusMissing, Detail: binary + " not found in PATH"}
	}
	return Report{Name: name, Status: StatusOK, Detail: path}
}
