// Package dashboard keeps the in-memory, per-file, per-chunk progress
// table the host loop queries while the worker goroutine writes it.
// Writers must not tear reads; readers tolerate a snapshot that mixes
// slightly stale chunk entries, exactly as SPEC_FULL.md §4.8 allows.
package dashboard

import (
	"sync"

	"github.com/dustin/go-humanize"
)

// chunkInfo is one chunk's most recent snapshot: instantaneous speed
// in bytes/sec and cumulative bytes downloaded.
type chunkInfo struct {
	speed int64
	bytes int64
}

// Dashboard is a thread-safe path -> chunk-index -> chunkInfo table.
type Dashboard struct {
	mu    sync.RWMutex
	files map[string]map[int]chunkInfo
}

// New returns an empty Dashboard.
func New() *Dashboard {
	return &Dashboard{files: make(map[string]map[int]chunkInfo)}
}

// UpdateInfo upserts one chunk's snapshot for path.
func (d *Dashboard) UpdateInfo(path string, index int, speed, bytes int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	chunks, ok := d.files[path]
	if !ok {
		chunks = make(map[int]chunkInfo)
		d.files[path] = chunks
	}
	chunks[index] = chunkInfo{speed: speed, bytes: bytes}
}

// Speed returns the sum of every chunk's instantaneous speed for path.
func (d *Dashboard) Speed(path string) int64 {
	speed, _ := d.SpeedAndSize(path)
	return speed
}

// Size returns the sum of every chunk's downloaded bytes for path.
func (d *Dashboard) Size(path string) int64 {
	_, size := d.SpeedAndSize(path)
	return size
}

// SpeedAndSize returns both aggregates for path in a single pass over
// the same chunk snapshot, so the two numbers are always mutually
// consistent even if a concurrent write lands between two separate
// calls.
func (d *Dashboard) SpeedAndSize(path string) (speed, size int64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.files[path] {
		speed += c.speed
		size += c.bytes
	}
	return
}

// AllSpeed returns the sum of every chunk's instantaneous speed across
// every tracked path.
func (d *Dashboard) AllSpeed() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var total int64
	for _, chunks := range d.files {
		for _, c := range chunks {
			total += c.speed
		}
	}
	return total
}

// Remove erases the whole entry for path. Called on a job's terminal
// verdict.
func (d *Dashboard) Remove(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, path)
}

// HumanSpeed formats bytes/sec the way a progress UI would display it,
// e.g. "4.3 MB/s".
func HumanSpeed(bytesPerSec int64) string {
	if bytesPerSec < 0 {
		bytesPerSec = 0
	}
	return humanize.Bytes(uint64(bytesPerSec)) + "/s"
}

// HumanSize formats a byte count, e.g. "52 MB".
func HumanSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}
