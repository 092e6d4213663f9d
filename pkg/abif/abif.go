// Package abif implements the ABIF tagged-directory container format
// used by capillary-electrophoresis trace files (.fsa).
//
// An ABIF file is a fixed 128-byte header, a directory of fixed-width
// tag entries, and a heap of tag payloads. The header carries the file
// magic, a format version, the absolute offset of the directory and the
// number of entries in it. Each directory entry names one payload and
// records its element type, element width, element count, total byte
// size and absolute offset. All multi-byte fields are big-endian.
package abif

import (
	"encoding/binary"
	"fmt"
)

// ABIF global constants must never change.
const (
	// Magic is the file signature for all ABIF containers.
	Magic = "ABIF"

	// FormatVersion is encoded as major<<8|minor. Version 1.1 is what
	// shipping instruments write and what genotyping readers expect.
	FormatVersion uint16 = 0x0101

	// HeaderSize is the fixed header length; bytes past the populated
	// fields are reserved and zero.
	HeaderSize = 128

	// EntrySize is the fixed width of one directory entry: the 4-byte
	// name followed by five big-endian uint32 fields.
	EntrySize = 24

	// NameSize is the tag name width. Shorter names are zero padded,
	// longer names are truncated.
	NameSize = 4
)

// ElemType is a directory entry's element type code.
type ElemType uint32

// Element type registry for every tag kind this package emits.
// ElemShortArray shares the code of ElemLong but is written with a
// 2-byte element width, matching what instrument software emits for
// DATA tags.
const (
	ElemDate       ElemType = 2  // packed date, 4 bytes
	ElemTime       ElemType = 3  // packed time, 4 bytes
	ElemLong       ElemType = 4  // uint32, 4 bytes
	ElemShort      ElemType = 5  // uint16, 2 bytes
	ElemChar       ElemType = 19 // ASCII, 1 byte, no terminator
	ElemShortArray ElemType = 4  // int16 array, 2 bytes per element
)

func (t ElemType) String() string {
	switch t {
	case ElemDate:
		return "date"
	case ElemTime:
		return "time"
	case ElemLong:
		return "long"
	case ElemShort:
		return "short"
	case ElemChar:
		return "char"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

// Header is the decoded fixed file header.
type Header struct {
	Magic     [4]byte
	Version   uint16
	DirOffset uint32
	DirCount  uint32
}

func (h *Header) Valid() bool {
	if string(h.Magic[:]) != Magic {
		return false
	}
	if h.DirOffset < HeaderSize {
		return false
	}
	return true
}

// Compatible reports whether the major version matches what this
// package writes. Minor revisions only add tags.
func (h *Header) Compatible() bool {
	return h.Version>>8 == FormatVersion>>8
}

// Entry is one decoded directory record.
//
// Occurrence distinguishes repeated uses of the same tag name (one DyeN
// and one DATA entry per channel). It is not stored in the on-disk
// record: both writer and reader assign occurrence indices per distinct
// name in directory order, so the numbering is deterministic.
type Entry struct {
	Name       string
	Occurrence int
	Type       ElemType
	ElemWidth  uint32
	ElemCount  uint32
	Size       uint32
	Offset     uint32
}

// End returns the first byte past the entry's payload.
func (e *Entry) End() uint32 {
	return e.Offset + e.Size
}

func encodeHeader(dst []byte, h Header) bool {
	if len(dst) < HeaderSize {
		return false
	}
	clear(dst[:HeaderSize])
	copy(dst[0:4], h.Magic[:])
	binary.BigEndian.PutUint16(dst[4:6], h.Version)
	binary.BigEndian.PutUint32(dst[6:10], h.DirOffset)
	binary.BigEndian.PutUint32(dst[10:14], h.DirCount)
	return true
}

func decodeHeader(src []byte) (Header, bool) {
	var h Header
	if len(src) < HeaderSize {
		return h, false
	}
	copy(h.Magic[:], src[0:4])
	h.Version = binary.BigEndian.Uint16(src[4:6])
	h.DirOffset = binary.BigEndian.Uint32(src[6:10])
	h.DirCount = binary.BigEndian.Uint32(src[10:14])
	return h, true
}

func encodeEntry(dst []byte, e Entry) bool {
	if len(dst) < EntrySize {
		return false
	}
	var name [NameSize]byte
	copy(name[:], e.Name)
	copy(dst[0:4], name[:])
	binary.BigEndian.PutUint32(dst[4:8], uint32(e.Type))
	binary.BigEndian.PutUint32(dst[8:12], e.ElemWidth)
	binary.BigEndian.PutUint32(dst[12:16], e.ElemCount)
	binary.BigEndian.PutUint32(dst[16:20], e.Size)
	binary.BigEndian.PutUint32(dst[20:24], e.Offset)
	return true
}

func decodeEntry(src []byte) (Entry, bool) {
	var e Entry
	if len(src) < EntrySize {
		return e, false
	}
	e.Name = trimName(src[0:4])
	e.Type = ElemType(binary.BigEndian.Uint32(src[4:8]))
	e.ElemWidth = binary.BigEndian.Uint32(src[8:12])
	e.ElemCount = binary.BigEndian.Uint32(src[12:16])
	e.Size = binary.BigEndian.Uint32(src[16:20])
	e.Offset = binary.BigEndian.Uint32(src[20:24])
	return e, true
}

func trimName(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}
