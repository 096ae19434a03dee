// Package hw probes the machine for enough hardware information to pick a
// sensible default resource profile.
package hw

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/ziggy/internal/profile"
)

// fallbackMemoryMB is assumed when no probe succeeds.
const fallbackMemoryMB = 4096

// DetectMemoryMB estimates the memory available for model inference, in MB.
// It prefers the GPU's total memory via nvidia-smi, falls back to a fraction
// of system RAM for CPU-only inference, and finally to a conservative
// constant.
func DetectMemoryMB(ctx context.Context, logger zerolog.Logger) int {
	log := logger.With().Str("component", "hw").Logger()

	if mb, ok := gpuMemoryMB(ctx); ok {
		log.Info().Int("memoryMB", mb).Msg("GPU memory detected")
		return mb
	}

	if mb, ok := systemMemoryMB(); ok {
		// CPU inference can realistically use only a slice of system RAM.
		est := mb / 8
		log.Info().Int("systemMB", mb).Int("memoryMB", est).Msg("No GPU, estimating from system memory")
		return est
	}

	log.Warn().Int("memoryMB", fallbackMemoryMB).Msg("Memory probe failed, assuming fallback")
	return fallbackMemoryMB
}

// SuggestProfile maps available memory onto a resource profile.
func SuggestProfile(memoryMB int) profile.ID {
	switch {
	case memoryMB < 8192:
		return profile.Minimal
	case memoryMB < 16384:
		return profile.Standard
	default:
		return profile.Performance
	}
}

func gpuMemoryMB(ctx context.Context) (int, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=memory.total",
		"--format=csv,noheader,nounits",
	).Output()
	if err != nil {
		return 0, false
	}

	// One line per GPU; the first one is what the model server will use.
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	mb, err := strconv.Atoi(line)
	if err != nil || mb <= 0 {
		return 0, false
	}
	return mb, true
}

func systemMemoryMB() (int, bool) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, false
		}
		kb, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, false
		}
		return kb / 1024, true
	}
	return 0, false
}
