package abif

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// File is a validated, read-only view of an ABIF container.
type File struct {
	Data    []byte
	Header  *Header
	Entries []Entry
	mmapped bool
}

// Open maps an ABIF file read-only and validates its structure.
// If mmap is unavailable, it falls back to ReadAt-based loading.
// The returned file must be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	size := int(size64)
	if size < HeaderSize {
		return nil, ErrCorruptFile
	}

	// Prefer mmap where available for zero-copy payload slices.
	data, err := unix.Mmap(
		int(f.Fd()),
		0,
		size,
		unix.PROT_READ,
		unix.MAP_SHARED,
	)
	if err == nil {
		af, parseErr := parseFileData(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return af, nil
	}

	// Fallback path that does not require mmap support.
	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// OpenReaderAt loads and validates an ABIF container from a
// random-access reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrCorruptFile
	}
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parseFileData(data []byte, mmapped bool) (*File, error) {
	if len(data) < HeaderSize {
		return nil, ErrCorruptFile
	}
	hdr, ok := decodeHeader(data[:HeaderSize])
	if !ok {
		return nil, ErrCorruptFile
	}
	if string(hdr.Magic[:]) != Magic {
		return nil, ErrInvalidMagic
	}
	if !hdr.Compatible() {
		return nil, ErrUnsupportedVersion
	}
	if !hdr.Valid() {
		return nil, ErrCorruptFile
	}

	// Directory bounds check.
	dirStart := uint64(hdr.DirOffset)
	dirEnd := dirStart + uint64(hdr.DirCount)*EntrySize
	if dirEnd < dirStart || dirEnd > uint64(len(data)) {
		return nil, ErrCorruptFile
	}

	// Decode the directory and assign occurrence indices per distinct
	// name in directory order, mirroring the writer's numbering.
	entries := make([]Entry, hdr.DirCount)
	occ := make(map[string]int)
	for i := range entries {
		start := int(dirStart) + i*EntrySize
		e, ok := decodeEntry(data[start : start+EntrySize])
		if !ok {
			return nil, ErrCorruptFile
		}
		e.Occurrence = occ[e.Name]
		occ[e.Name] = e.Occurrence + 1
		entries[i] = e
	}

	// Validate payload ranges: declared size consistent with element
	// width and count, in bounds, and disjoint from the header, the
	// directory and every other payload.
	for i := range entries {
		e := &entries[i]

		if e.Size != e.ElemWidth*e.ElemCount {
			return nil, fmt.Errorf("%w: entry %d (%s) size %d does not match %d x %d elements",
				ErrCorruptFile, i, e.Name, e.Size, e.ElemWidth, e.ElemCount)
		}
		start := uint64(e.Offset)
		end := start + uint64(e.Size)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: entry %d (%s) out of bounds", ErrCorruptFile, i, e.Name)
		}
		if start < HeaderSize {
			return nil, fmt.Errorf("%w: entry %d (%s) overlaps header", ErrCorruptFile, i, e.Name)
		}
		if rangesOverlap(start, end, dirStart, dirEnd) {
			return nil, fmt.Errorf("%w: entry %d (%s) overlaps directory", ErrCorruptFile, i, e.Name)
		}
		for j := range entries[:i] {
			o := &entries[j]
			if rangesOverlap(start, end, uint64(o.Offset), uint64(o.End())) {
				return nil, fmt.Errorf("%w: entries %d (%s) and %d (%s) overlap",
					ErrCorruptFile, j, o.Name, i, e.Name)
			}
		}
	}

	return &File{
		Data:    data,
		Header:  &hdr,
		Entries: entries,
		mmapped: mmapped,
	}, nil
}

// Close releases file resources and any mmap backing.
func (f *File) Close() error {
	if f == nil {
		return nil
	}
	var err error
	if f.Data != nil && f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.Header = nil
	f.Entries = nil
	f.mmapped = false
	return err
}

// Find returns the entry with the given name and occurrence index.
func (f *File) Find(name string, occurrence int) (Entry, bool) {
	for i := range f.Entries {
		e := &f.Entries[i]
		if e.Name == name && e.Occurrence == occurrence {
			return *e, true
		}
	}
	return Entry{}, false
}

// Occurrences returns every entry with the given name, in directory
// order. Repeated tag names are legitimate (one DyeN and one DATA per
// channel), so readers must enumerate rather than stop at the first.
func (f *File) Occurrences(name string) []Entry {
	var out []Entry
	for i := range f.Entries {
		if f.Entries[i].Name == name {
			out = append(out, f.Entries[i])
		}
	}
	return out
}

// TagData returns a zero-copy slice covering the entry's payload.
// The caller must not retain this slice after File.Close().
func (f *File) TagData(e Entry) []byte {
	if f == nil || f.Data == nil {
		return nil
	}
	start := uint64(e.Offset)
	end := start + uint64(e.Size)
	if end < start || end > uint64(len(f.Data)) {
		return nil
	}
	return f.Data[int(start):int(end)]
}

// TagString decodes a char entry's payload.
func (f *File) TagString(e Entry) (string, error) {
	if e.Type != ElemChar {
		return "", fmt.Errorf("abif: tag %s is %s, not char", e.Name, e.Type)
	}
	return string(f.TagData(e)), nil
}

// TagLong decodes a single-element long entry's payload.
func (f *File) TagLong(e Entry) (uint32, error) {
	if e.Type != ElemLong || e.ElemWidth != 4 || e.ElemCount != 1 {
		return 0, fmt.Errorf("abif: tag %s is not a single long", e.Name)
	}
	return binary.BigEndian.Uint32(f.TagData(e)), nil
}

// TagShort decodes a single-element short entry's payload.
func (f *File) TagShort(e Entry) (uint16, error) {
	if e.Type != ElemShort || e.ElemCount != 1 {
		return 0, fmt.Errorf("abif: tag %s is not a single short", e.Name)
	}
	return binary.BigEndian.Uint16(f.TagData(e)), nil
}

// TagShortArray decodes an int16-array entry's payload.
func (f *File) TagShortArray(e Entry) ([]int16, error) {
	if e.ElemWidth != 2 {
		return nil, fmt.Errorf("abif: tag %s is not a short array", e.Name)
	}
	raw := f.TagData(e)
	out := make([]int16, e.ElemCount)
	for i := range out {
		out[i] = int16(binary.BigEndian.Uint16(raw[2*i:]))
	}
	return out, nil
}

// TagDate decodes a packed date entry's payload.
func (f *File) TagDate(e Entry) (year int, month time.Month, day int, err error) {
	if e.Type != ElemDate {
		return 0, 0, 0, fmt.Errorf("abif: tag %s is %s, not date", e.Name, e.Type)
	}
	y, m, d, ok := UnpackDate(f.TagData(e))
	if !ok {
		return 0, 0, 0, fmt.Errorf("abif: tag %s: short date payload", e.Name)
	}
	return y, m, d, nil
}

// TagTime decodes a packed time entry's payload.
func (f *File) TagTime(e Entry) (hour, minute, second int, err error) {
	if e.Type != ElemTime {
		return 0, 0, 0, fmt.Errorf("abif: tag %s is %s, not time", e.Name, e.Type)
	}
	h, m, s, ok := UnpackTime(f.TagData(e))
	if !ok {
		return 0, 0, 0, fmt.Errorf("abif: tag %s: short time payload", e.Name)
	}
	return h, m, s, nil
}
