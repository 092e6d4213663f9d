package abif

import (
	"encoding/binary"
	"os"
	"time"
)

func rangesOverlap(a0, a1, b0, b1 uint64) bool {
	// half-open ranges [a0,a1) and [b0,b1)
	return a0 < b1 && b0 < a1
}

func writeFull(f *os.File, p []byte) error {
	for len(p) > 0 {
		n, err := f.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// PackDate encodes a calendar date as the 4-byte ABIF date payload:
// big-endian uint16 year, uint8 month, uint8 day.
func PackDate(t time.Time) [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint16(b[0:2], uint16(t.Year()))
	b[2] = byte(t.Month())
	b[3] = byte(t.Day())
	return b
}

// UnpackDate decodes a 4-byte ABIF date payload.
func UnpackDate(b []byte) (year int, month time.Month, day int, ok bool) {
	if len(b) < 4 {
		return 0, 0, 0, false
	}
	return int(binary.BigEndian.Uint16(b[0:2])), time.Month(b[2]), int(b[3]), true
}

// PackTime encodes a wall-clock time as the 4-byte ABIF time payload:
// uint8 hour, minute, second, one zero pad byte.
func PackTime(t time.Time) [4]byte {
	var b [4]byte
	b[0] = byte(t.Hour())
	b[1] = byte(t.Minute())
	b[2] = byte(t.Second())
	return b
}

// UnpackTime decodes a 4-byte ABIF time payload.
func UnpackTime(b []byte) (hour, minute, second int, ok bool) {
	if len(b) < 4 {
		return 0, 0, 0, false
	}
	return int(b[0]), int(b[1]), int(b[2]), true
}
