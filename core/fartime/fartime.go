// Package fartime converts between Unix time and Farcaster time, the
// unsigned seconds-since-epoch scale every message timestamp uses.
package fartime

import (
	"fmt"
	"math"
	"time"
)

// FarcasterEpochMs - 2021-01-01T00:00:00Z in Unix milliseconds.
const FarcasterEpochMs int64 = 1609459200000

// ToFarcasterTime converts a Unix millisecond timestamp to Farcaster seconds.
func ToFarcasterTime(unixMs int64) (uint32, error) {
	if unixMs < FarcasterEpochMs {
		return 0, fmt.Errorf("time %d is before the farcaster epoch", unixMs)
	}
	secs := (unixMs - FarcasterEpochMs) / 1000
	if secs > math.MaxUint32 {
		return 0, fmt.Errorf("time %d does not fit in 32 bits of farcaster time", unixMs)
	}
	return uint32(secs), nil
}

// FromFarcasterTime converts Farcaster seconds back to Unix milliseconds.
func FromFarcasterTime(t uint32) int64 {
	return FarcasterEpochMs + int64(t)*1000
}

// FarcasterTime returns the current time on the Farcaster scale.
func FarcasterTime() (uint32, error) {
	return ToFarcasterTime(time.Now().UnixNano() / int64(time.Millisecond))
}
