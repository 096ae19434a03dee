package audio

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Device describes one ALSA capture device.
type Device struct {
	ID   string // ALSA identifier usable as CaptureConfig.Device ("hw:1,0")
	Name string
}

var devicePattern = regexp.MustCompile(`^card (\d+): ([^\[]+)\[([^\]]+)\], device (\d+): ([^\[]+)\[([^\]]+)\]`)

// ListCaptureDevices enumerates the machine's capture devices via arecord.
func ListCaptureDevices(ctx context.Context) ([]Device, error) {
	out, err := exec.CommandContext(ctx, "arecord", "-l").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list capture devices: %w", err)
	}
	return parseCaptureDevices(string(out)), nil
}

func parseCaptureDevices(out string) []Device {
	var devices []Device
	for _, line := range strings.Split(out, "\n") {
		m := devicePattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		devices = append(devices, Device{
			ID:   fmt.Sprintf("hw:%s,%s", m[1], m[4]),
			Name: fmt.Sprintf("%s: %s", strings.TrimSpace(m[3]), strings.TrimSpace(m[6])),
		})
	}
	return devices
}
