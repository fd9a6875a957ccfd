// Package planner implements the Download Planner: given a URL and a
// block size, it produces the initial byte-range list for a download,
// either by resuming a persisted range log or by probing the resource's
// size and partitioning it into fixed-size blocks.
package planner

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/warpdl/ftxengine/rangelog"
)

// Prober is the subset of the Transfer Primitive the planner needs: a
// HEAD-like size probe.
type Prober interface {
	Probe(ctx context.Context, rawURL string) (contentLength int64, err error)
}

// Plan implements SPEC_FULL.md §4.3. When resume is requested and a
// non-empty range log already exists for destPath, that log is reused
// verbatim and no probe is made (scenario S2). Otherwise the resource's
// size is probed and partitioned into consecutive
// [i*B, min((i+1)*B, size)) blocks, B = blockSizeMB*1024*1024 bytes,
// with the last block absorbing the remainder. When resume is
// requested the freshly computed list is persisted to the log so a
// future restart can pick it up.
func Plan(ctx context.Context, p Prober, fs afero.Fs, rawURL, destPath string, blockSizeMB int, resume bool) ([]rangelog.Range, error) {
	if resume {
		if existing := rangelog.Load(fs, destPath); len(existing) > 0 {
			return existing, nil
		}
	}

	size, err := p.Probe(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("planner: size probe failed: %w", err)
	}
	if size < 0 {
		return nil, fmt.Errorf("planner: resource has unknown size, cannot plan ranges")
	}

	ranges := partition(size, int64(blockSizeMB)*1024*1024)

	if resume && len(ranges) > 0 {
		if err := rangelog.Write(fs, destPath, ranges); err != nil {
			return nil, fmt.Errorf("planner: persist range log: %w", err)
		}
	}
	return ranges, nil
}

// partition splits [0, size) into consecutive blocks of length
// blockSize, with the final block absorbing whatever remainder is
// shorter than a full block. blockSize is applied in bytes, not
// elements, matching SPEC_FULL.md §4.3's tie-break rule.
func partition(size, blockSize int64) []rangelog.Range {
	if size <= 0 || blockSize <= 0 {
		return nil
	}
	var ranges []rangelog.Range
	for begin := int64(0); begin < size; begin += blockSize {
		end := begin + blockSize
		if end > size {
			end = size
		}
		ranges = append(ranges, rangelog.Range{Begin: begin, End: end})
	}
	return ranges
}
