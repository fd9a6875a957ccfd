// Package rangelog persists, per download destination, the list of
// outstanding byte ranges so an interrupted download can resume where
// it left off. See SPEC_FULL.md §6 for the on-disk record layout this
// package commits to.
package rangelog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Suffixes appended to a download's destination path for its two
// on-disk artifacts.
const (
	TempSuffix = ".ftxtmp"
	LogSuffix  = ".ftxlog"
)

const recordSize = 16 // two big-endian int64s: Begin, End

// Range is a half-open byte range [Begin, End). A valid Range always
// has Begin < End.
type Range struct {
	Begin int64
	End   int64
}

// Valid reports whether the range is non-empty and well-formed.
func (r Range) Valid() bool {
	return r.Begin < r.End
}

// LogPath returns the range-log path for a download destination.
func LogPath(destPath string) string {
	return destPath + LogSuffix
}

// TempPath returns the temp-file path for a download destination.
func TempPath(destPath string) string {
	return destPath + TempSuffix
}

// Load returns the persisted range list for destPath, or an empty
// slice if the log file is absent or unreadable. Records with
// Begin >= End are discarded silently, matching the original engine's
// Load behavior.
func Load(fs afero.Fs, destPath string) []Range {
	f, err := fs.Open(LogPath(destPath))
	if err != nil {
		return nil
	}
	defer f.Close()

	var countBuf [8]byte
	if _, err := io.ReadFull(f, countBuf[:]); err != nil {
		return nil
	}
	count := binary.BigEndian.Uint64(countBuf[:])

	ranges := make([]Range, 0, count)
	var rec [recordSize]byte
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(f, rec[:]); err != nil {
			break
		}
		r := Range{
			Begin: int64(binary.BigEndian.Uint64(rec[0:8])),
			End:   int64(binary.BigEndian.Uint64(rec[8:16])),
		}
		if !r.Valid() {
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// Write truncates the log file for destPath and writes the full range
// list. Write(Load(...)) is idempotent: Load(Write(ranges)) == ranges
// for any list of valid ranges.
func Write(fs afero.Fs, destPath string, ranges []Range) error {
	f, err := fs.OpenFile(LogPath(destPath), os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("rangelog: open for write: %w", err)
	}
	defer f.Close()
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("rangelog: truncate: %w", err)
	}

	buf := make([]byte, 8+len(ranges)*recordSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(len(ranges)))
	off := 8
	for _, r := range ranges {
		binary.BigEndian.PutUint64(buf[off:off+8], uint64(r.Begin))
		binary.BigEndian.PutUint64(buf[off+8:off+16], uint64(r.End))
		off += recordSize
	}
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("rangelog: write: %w", err)
	}
	return nil
}

// ErrIndexOutOfRange is returned by Update when index does not address
// an existing record in the log file.
var ErrIndexOutOfRange = errors.New("rangelog: index out of range")

// Update rewrites only the Begin field of the record at index, leaving
// every other byte of the file untouched. This is the hot path called
// from the chunk write sink on every inbound block, so it must stay
// cheap: one seek, one 8-byte write.
func Update(fs afero.Fs, destPath string, index int, newBegin int64) error {
	f, err := fs.OpenFile(LogPath(destPath), os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("rangelog: open for update: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("rangelog: stat: %w", err)
	}
	recordOffset := int64(8 + index*recordSize)
	if index < 0 || recordOffset+8 > info.Size() {
		return ErrIndexOutOfRange
	}

	if _, err := f.Seek(recordOffset, io.SeekStart); err != nil {
		return fmt.Errorf("rangelog: seek: %w", err)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(newBegin))
	if _, err := f.Write(buf[:]); err != nil {
		return fmt.Errorf("rangelog: update write: %w", err)
	}
	return nil
}

// Delete removes the log file for destPath. Absence of the file is not
// an error.
func Delete(fs afero.Fs, destPath string) error {
	err := fs.Remove(LogPath(destPath))
	if err != nil && !errors.Is(err, afero.ErrFileNotFound) && !os.IsNotExist(err) {
		return fmt.Errorf("rangelog: delete: %w", err)
	}
	return nil
}
