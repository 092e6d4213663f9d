package abif

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const writerPadBufSize = 4096

// Writer builds an ABIF file in a single forward pass.
//
// NewWriter reserves the header and an exactly-sized directory region up
// front; tag payloads are appended past the directory while the entries
// accumulate in memory, and Finalise patches both regions once every
// payload offset is known. The directory capacity is fixed at
// construction, so a plan that under-counts its tags fails loudly with
// ErrDirectoryFull instead of overrunning the payload heap.
type Writer struct {
	f       *os.File
	planned int
	entries []Entry
	occ     map[string]int
	closed  bool

	padBuf []byte

	mu sync.Mutex
}

// NewWriter creates an ABIF writer targeting the given file.
// It truncates the file and reserves the header plus a directory region
// sized for exactly plannedTags entries.
func NewWriter(f *os.File, plannedTags int) (*Writer, error) {
	if f == nil {
		return nil, fmt.Errorf("abif: nil file")
	}
	if plannedTags <= 0 {
		return nil, fmt.Errorf("abif: planned tag count must be positive, got %d", plannedTags)
	}

	if err := f.Truncate(0); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	w := &Writer{
		f:       f,
		planned: plannedTags,
		occ:     make(map[string]int),
		padBuf:  make([]byte, writerPadBufSize),
	}

	// Reserve actual zero bytes for header and directory, not a seek hole.
	if err := w.writeZeros(HeaderSize + plannedTags*EntrySize); err != nil {
		return nil, err
	}
	return w, nil
}

// DirOffset returns the absolute offset of the directory region.
func (w *Writer) DirOffset() uint32 { return HeaderSize }

// WriteString appends an ASCII string payload (no terminator).
func (w *Writer) WriteString(name, s string) error {
	return w.writeTag(name, ElemChar, 1, uint32(len(s)), []byte(s))
}

// WriteDate appends a packed calendar date payload.
func (w *Writer) WriteDate(name string, t time.Time) error {
	b := PackDate(t)
	return w.writeTag(name, ElemDate, 4, 1, b[:])
}

// WriteTime appends a packed wall-clock time payload.
func (w *Writer) WriteTime(name string, t time.Time) error {
	b := PackTime(t)
	return w.writeTag(name, ElemTime, 4, 1, b[:])
}

// WriteLong appends a big-endian uint32 payload.
func (w *Writer) WriteLong(name string, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return w.writeTag(name, ElemLong, 4, 1, b[:])
}

// WriteShort appends a big-endian uint16 payload.
func (w *Writer) WriteShort(name string, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return w.writeTag(name, ElemShort, 2, 1, b[:])
}

// WriteShortArray appends a big-endian int16 array payload, the
// encoding used for per-channel trace data.
func (w *Writer) WriteShortArray(name string, vals []int16) error {
	buf := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint16(buf[2*i:], uint16(v))
	}
	return w.writeTag(name, ElemShortArray, 2, uint32(len(vals)), buf)
}

func (w *Writer) writeTag(name string, typ ElemType, width, count uint32, payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrFinalised
	}
	if len(w.entries) >= w.planned {
		return fmt.Errorf("%w: planned %d tags", ErrDirectoryFull, w.planned)
	}
	if len(name) == 0 || len(name) > NameSize {
		return fmt.Errorf("%w: %q", ErrBadTagName, name)
	}
	if uint32(len(payload)) != width*count {
		return fmt.Errorf("abif: tag %s payload is %d bytes, declared %d", name, len(payload), width*count)
	}

	offset, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := writeFull(w.f, payload); err != nil {
		return err
	}

	occ := w.occ[name]
	w.occ[name] = occ + 1
	w.entries = append(w.entries, Entry{
		Name:       name,
		Occurrence: occ,
		Type:       typ,
		ElemWidth:  width,
		ElemCount:  count,
		Size:       uint32(len(payload)),
		Offset:     uint32(offset),
	})
	return nil
}

// Finalise writes the directory entries in emission order and patches
// the header. After Finalise the writer must not be used again. The
// caller owns the file handle and closes it.
func (w *Writer) Finalise() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrFinalised
	}
	w.closed = true

	fileSize, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := w.f.Truncate(fileSize); err != nil {
		return err
	}

	if _, err := w.f.Seek(HeaderSize, io.SeekStart); err != nil {
		return err
	}
	var entryBuf [EntrySize]byte
	for i := range w.entries {
		if !encodeEntry(entryBuf[:], w.entries[i]) {
			return fmt.Errorf("abif: encode entry %d failed", i)
		}
		if err := writeFull(w.f, entryBuf[:]); err != nil {
			return err
		}
	}

	var header Header
	copy(header.Magic[:], Magic)
	header.Version = FormatVersion
	header.DirOffset = HeaderSize
	header.DirCount = uint32(len(w.entries))

	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	var hdrBuf [HeaderSize]byte
	if !encodeHeader(hdrBuf[:], header) {
		return fmt.Errorf("abif: encode header failed")
	}
	if err := writeFull(w.f, hdrBuf[:]); err != nil {
		return err
	}

	return w.f.Sync()
}

// Entries returns the directory entries accumulated so far, in emission
// order. The slice is shared; callers must not mutate it.
func (w *Writer) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries
}

func (w *Writer) writeZeros(n int) error {
	if n <= 0 {
		return nil
	}
	buf := w.padBuf
	if len(buf) == 0 {
		buf = make([]byte, 4096)
	}
	for n > 0 {
		toWrite := min(n, len(buf))
		if err := writeFull(w.f, buf[:toWrite]); err != nil {
			return err
		}
		n -= toWrite
	}
	return nil
}
