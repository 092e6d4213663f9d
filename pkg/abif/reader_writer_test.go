package abif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSampleFile(t *testing.T, path string) []int16 {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}

	w, err := NewWriter(f, 6)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	trace := []int16{0, 50, 500, 50, 0, 32767}
	when := time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)

	if err := w.WriteString("SMPL", "SAMPLE001"); err != nil {
		t.Fatalf("write SMPL: %v", err)
	}
	if err := w.WriteDate("RUND", when); err != nil {
		t.Fatalf("write RUND: %v", err)
	}
	if err := w.WriteTime("RUNT", when); err != nil {
		t.Fatalf("write RUNT: %v", err)
	}
	if err := w.WriteLong("SCAN", uint32(len(trace))); err != nil {
		t.Fatalf("write SCAN: %v", err)
	}
	if err := w.WriteShort("LANE", 1); err != nil {
		t.Fatalf("write LANE: %v", err)
	}
	if err := w.WriteShortArray("DATA", trace); err != nil {
		t.Fatalf("write DATA: %v", err)
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close writer file: %v", err)
	}
	return trace
}

func TestWriteOpenRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample.fsa")
	trace := writeSampleFile(t, path)

	af, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		if cerr := af.Close(); cerr != nil {
			t.Fatalf("close: %v", cerr)
		}
	}()

	if af.Header.Version != FormatVersion {
		t.Fatalf("version: got %#04x want %#04x", af.Header.Version, FormatVersion)
	}
	if af.Header.DirOffset != HeaderSize {
		t.Fatalf("dir offset: got %d want %d", af.Header.DirOffset, HeaderSize)
	}
	if af.Header.DirCount != 6 {
		t.Fatalf("dir count: got %d want 6", af.Header.DirCount)
	}

	smpl, ok := af.Find("SMPL", 0)
	if !ok {
		t.Fatalf("missing SMPL tag")
	}
	name, err := af.TagString(smpl)
	if err != nil {
		t.Fatalf("decode SMPL: %v", err)
	}
	if name != "SAMPLE001" {
		t.Fatalf("SMPL payload: got %q", name)
	}

	rund, ok := af.Find("RUND", 0)
	if !ok {
		t.Fatalf("missing RUND tag")
	}
	year, month, day, err := af.TagDate(rund)
	if err != nil {
		t.Fatalf("decode RUND: %v", err)
	}
	if year != 2026 || month != time.March || day != 14 {
		t.Fatalf("RUND payload: got %d-%d-%d", year, month, day)
	}

	runt, ok := af.Find("RUNT", 0)
	if !ok {
		t.Fatalf("missing RUNT tag")
	}
	hour, minute, second, err := af.TagTime(runt)
	if err != nil {
		t.Fatalf("decode RUNT: %v", err)
	}
	if hour != 15 || minute != 9 || second != 26 {
		t.Fatalf("RUNT payload: got %d:%d:%d", hour, minute, second)
	}

	scan, ok := af.Find("SCAN", 0)
	if !ok {
		t.Fatalf("missing SCAN tag")
	}
	n, err := af.TagLong(scan)
	if err != nil {
		t.Fatalf("decode SCAN: %v", err)
	}
	if n != uint32(len(trace)) {
		t.Fatalf("SCAN payload: got %d want %d", n, len(trace))
	}

	lane, ok := af.Find("LANE", 0)
	if !ok {
		t.Fatalf("missing LANE tag")
	}
	laneNo, err := af.TagShort(lane)
	if err != nil {
		t.Fatalf("decode LANE: %v", err)
	}
	if laneNo != 1 {
		t.Fatalf("LANE payload: got %d", laneNo)
	}

	data, ok := af.Find("DATA", 0)
	if !ok {
		t.Fatalf("missing DATA tag")
	}
	got, err := af.TagShortArray(data)
	if err != nil {
		t.Fatalf("decode DATA: %v", err)
	}
	if len(got) != len(trace) {
		t.Fatalf("DATA length: got %d want %d", len(got), len(trace))
	}
	for i := range got {
		if got[i] != trace[i] {
			t.Fatalf("DATA[%d]: got %d want %d", i, got[i], trace[i])
		}
	}
}

func TestRepeatedTagOccurrences(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dyes.fsa")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}

	dyes := []string{"FAM", "VIC", "NED", "PET", "LIZ"}
	w, err := NewWriter(f, len(dyes))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for _, d := range dyes {
		if err := w.WriteString("DyeN", d); err != nil {
			t.Fatalf("write DyeN %s: %v", d, err)
		}
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	af, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = af.Close() }()

	all := af.Occurrences("DyeN")
	if len(all) != len(dyes) {
		t.Fatalf("occurrences: got %d want %d", len(all), len(dyes))
	}
	for i, e := range all {
		if e.Occurrence != i {
			t.Fatalf("occurrence %d numbered %d", i, e.Occurrence)
		}
		s, err := af.TagString(e)
		if err != nil {
			t.Fatalf("decode DyeN %d: %v", i, err)
		}
		if s != dyes[i] {
			t.Fatalf("DyeN %d: got %q want %q", i, s, dyes[i])
		}
	}

	if _, ok := af.Find("DyeN", len(dyes)); ok {
		t.Fatalf("found occurrence past the last entry")
	}
}

func TestOpenReaderAtMatchesOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample.fsa")
	writeSampleFile(t, path)

	rf, err := os.Open(path)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer func() { _ = rf.Close() }()
	st, err := rf.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	af, err := OpenReaderAt(rf, st.Size())
	if err != nil {
		t.Fatalf("open readerat: %v", err)
	}
	defer func() { _ = af.Close() }()

	if af.mmapped {
		t.Fatalf("OpenReaderAt should not mmap")
	}
	if af.Header.DirCount != 6 {
		t.Fatalf("dir count: got %d want 6", af.Header.DirCount)
	}
}

func TestDirectoryCapacityIsEnforced(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "full.fsa"))
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer func() { _ = f.Close() }()

	w, err := NewWriter(f, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WriteString("SMPL", "A"); err != nil {
		t.Fatalf("first tag: %v", err)
	}
	if err := w.WriteString("MCHN", "B"); !errors.Is(err, ErrDirectoryFull) {
		t.Fatalf("second tag: got %v want ErrDirectoryFull", err)
	}
}

func TestWriterRejectsUseAfterFinalise(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "done.fsa"))
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer func() { _ = f.Close() }()

	w, err := NewWriter(f, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WriteString("SMPL", "A"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	if err := w.WriteString("MCHN", "B"); !errors.Is(err, ErrFinalised) {
		t.Fatalf("write after finalise: got %v want ErrFinalised", err)
	}
	if err := w.Finalise(); !errors.Is(err, ErrFinalised) {
		t.Fatalf("double finalise: got %v want ErrFinalised", err)
	}
}

func TestHeaderAndEntryEncodingBigEndian(t *testing.T) {
	t.Parallel()

	h := Header{
		Magic:     [4]byte{'A', 'B', 'I', 'F'},
		Version:   0x0101,
		DirOffset: 0x01020304,
		DirCount:  0x11121314,
	}
	var hdrRaw [HeaderSize]byte
	if !encodeHeader(hdrRaw[:], h) {
		t.Fatalf("encode header failed")
	}
	if !bytes.Equal(hdrRaw[0:4], []byte("ABIF")) {
		t.Fatalf("magic bytes: %x", hdrRaw[0:4])
	}
	if hdrRaw[4] != 0x01 || hdrRaw[5] != 0x01 {
		t.Fatalf("version is not big-endian: %x", hdrRaw[4:6])
	}
	if hdrRaw[6] != 0x01 || hdrRaw[9] != 0x04 {
		t.Fatalf("dir offset is not big-endian: %x", hdrRaw[6:10])
	}
	for _, b := range hdrRaw[14:] {
		if b != 0 {
			t.Fatalf("header padding not zero")
		}
	}
	decodedH, ok := decodeHeader(hdrRaw[:])
	if !ok {
		t.Fatalf("decode header failed")
	}
	if decodedH != h {
		t.Fatalf("header round-trip mismatch: got %+v want %+v", decodedH, h)
	}

	e := Entry{
		Name:      "DATA",
		Type:      ElemShortArray,
		ElemWidth: 2,
		ElemCount: 0x0A0B0C0D,
		Size:      0x1A1B1C1D,
		Offset:    0x2A2B2C2D,
	}
	var entryRaw [EntrySize]byte
	if !encodeEntry(entryRaw[:], e) {
		t.Fatalf("encode entry failed")
	}
	if !bytes.Equal(entryRaw[0:4], []byte("DATA")) {
		t.Fatalf("entry name bytes: %x", entryRaw[0:4])
	}
	if binary.BigEndian.Uint32(entryRaw[4:8]) != uint32(ElemShortArray) {
		t.Fatalf("entry type not big-endian: %x", entryRaw[4:8])
	}
	if entryRaw[12] != 0x0A || entryRaw[15] != 0x0D {
		t.Fatalf("element count is not big-endian: %x", entryRaw[12:16])
	}
	decodedE, ok := decodeEntry(entryRaw[:])
	if !ok {
		t.Fatalf("decode entry failed")
	}
	if decodedE != e {
		t.Fatalf("entry round-trip mismatch: got %+v want %+v", decodedE, e)
	}
}

// The directory is a dense array of 24-byte records: 4 name bytes plus
// five uint32 fields, with no padding between records. A reader walking
// the directory at that stride must land on every entry's name.
func TestDirectoryEntryStride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stride.fsa")
	writeSampleFile(t, path)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	wantNames := []string{"SMPL", "RUND", "RUNT", "SCAN", "LANE", "DATA"}
	for i, want := range wantNames {
		at := HeaderSize + i*EntrySize
		got := trimName(raw[at : at+NameSize])
		if got != want {
			t.Fatalf("entry %d at offset %d: got name %q want %q", i, at, got, want)
		}
	}

	// First payload begins immediately after the last entry.
	heapStart := HeaderSize + len(wantNames)*EntrySize
	if string(raw[heapStart:heapStart+9]) != "SAMPLE001" {
		t.Fatalf("payload heap start: got %q", raw[heapStart:heapStart+9])
	}
}

func TestShortNameIsZeroPadded(t *testing.T) {
	t.Parallel()

	e := Entry{Name: "pH", Type: ElemChar, ElemWidth: 1, ElemCount: 1, Size: 1, Offset: HeaderSize}
	var raw [EntrySize]byte
	if !encodeEntry(raw[:], e) {
		t.Fatalf("encode entry failed")
	}
	if raw[0] != 'p' || raw[1] != 'H' || raw[2] != 0 || raw[3] != 0 {
		t.Fatalf("name bytes: %x", raw[0:4])
	}
	decoded, ok := decodeEntry(raw[:])
	if !ok {
		t.Fatalf("decode entry failed")
	}
	if decoded.Name != "pH" {
		t.Fatalf("decoded name: %q", decoded.Name)
	}
}

func TestOpenRejectsCorruptFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	good := filepath.Join(dir, "good.fsa")
	writeSampleFile(t, good)
	raw, err := os.ReadFile(good)
	if err != nil {
		t.Fatalf("read good file: %v", err)
	}

	write := func(name string, b []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, b, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	badMagic := bytes.Clone(raw)
	copy(badMagic[0:4], "RIFF")
	if _, err := Open(write("magic.fsa", badMagic)); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("bad magic: got %v want ErrInvalidMagic", err)
	}

	badVersion := bytes.Clone(raw)
	badVersion[4] = 0x02
	if _, err := Open(write("version.fsa", badVersion)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("bad version: got %v want ErrUnsupportedVersion", err)
	}

	truncated := raw[:HeaderSize-1]
	if _, err := Open(write("short.fsa", truncated)); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("truncated: got %v want ErrCorruptFile", err)
	}

	// Directory count pointing past the end of the file.
	badCount := bytes.Clone(raw)
	binary.BigEndian.PutUint32(badCount[10:14], 100000)
	if _, err := Open(write("count.fsa", badCount)); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("bad count: got %v want ErrCorruptFile", err)
	}

	// First entry's payload redirected onto the second entry's range.
	overlap := bytes.Clone(raw)
	secondOff := binary.BigEndian.Uint32(overlap[HeaderSize+EntrySize+20 : HeaderSize+EntrySize+24])
	binary.BigEndian.PutUint32(overlap[HeaderSize+20:HeaderSize+24], secondOff)
	if _, err := Open(write("overlap.fsa", overlap)); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("overlapping entries: got %v want ErrCorruptFile", err)
	}
}
