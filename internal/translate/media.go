package translate

import "github.com/blewig/blewig/internal/hid"

// Media application codes accepted on the media characteristic.
const (
	MediaPlayPause byte = 0x01
	MediaNext      byte = 0x02
	MediaPrev      byte = 0x03
	MediaStop      byte = 0x04
	MediaMute      byte = 0x05
	MediaVolUp     byte = 0x06
	MediaVolDown   byte = 0x07
)

// mediaUsages maps application codes to consumer page usages.
var mediaUsages = map[byte]uint16{
	MediaPlayPause: hid.UsagePlayPause,
	MediaNext:      hid.UsageScanNext,
	MediaPrev:      hid.UsageScanPrev,
	MediaStop:      hid.UsageStop,
	MediaMute:      hid.UsageMute,
	MediaVolUp:     hid.UsageVolumeUp,
	MediaVolDown:   hid.UsageVolumeDown,
}

// Media translates a media characteristic payload: a single 1-byte
// application code mapped to one consumer-control pulse. Unknown codes
// and malformed payloads are a silent no-op.
func Media(payload []byte) []hid.Action {
	if len(payload) != 1 {
		return nil
	}
	usage, ok := mediaUsages[payload[0]]
	if !ok {
		return nil
	}
	return []hid.Action{hid.ConsumerTap{Usage: usage}}
}
