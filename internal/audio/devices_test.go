package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arecordListOutput = `**** List of CAPTURE Hardware Devices ****
card 0: PCH [HDA Intel PCH], device 0: ALC892 Analog [ALC892 Analog]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
card 1: Microphone [USB Microphone], device 0: USB Audio [USB Audio]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
`

func TestParseCaptureDevices(t *testing.T) {
	devices := parseCaptureDevices(arecordListOutput)
	require.Len(t, devices, 2)

	assert.Equal(t, "hw:0,0", devices[0].ID)
	assert.Equal(t, "HDA Intel PCH: ALC892 Analog", devices[0].Name)

	assert.Equal(t, "hw:1,0", devices[1].ID)
	assert.Equal(t, "USB Microphone: USB Audio", devices[1].Name)
}

func TestParseCaptureDevices_Empty(t *testing.T) {
	assert.Empty(t, parseCaptureDevices("arecord: device_list:274: no soundcards found...\n"))
}
