package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Millis32 returns NowMs truncated to a wrapping 32-bit counter, the
// width the heartbeat wire format carries for its clock sample.
func Millis32() uint32 { return uint32(NowMs()) }
