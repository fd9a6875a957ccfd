package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warpdl/ftxengine/rangelog"
)

type fakeProber struct {
	size int64
	err  error
}

func (f fakeProber) Probe(ctx context.Context, rawURL string) (int64, error) {
	return f.size, f.err
}

func TestFreshDownloadPartitionsIntoBlocks(t *testing.T) {
	// 52 MB resource, 20 MB blocks -> 3 ranges, last one short.
	const mb = 1024 * 1024
	fs := afero.NewMemMapFs()
	ranges, err := Plan(context.Background(), fakeProber{size: 52 * mb}, fs, "https://example.com/f", "/tmp/f", 20, true)
	require.NoError(t, err)
	require.Equal(t, []rangelog.Range{
		{Begin: 0, End: 20971520},
		{Begin: 20971520, End: 41943040},
		{Begin: 41943040, End: 54525952},
	}, ranges)

	// the plan was persisted for next run.
	persisted := rangelog.Load(fs, "/tmp/f")
	assert.Equal(t, ranges, persisted)
}

func TestResumeReusesPersistedRangesWithoutProbing(t *testing.T) {
	fs := afero.NewMemMapFs()
	existing := []rangelog.Range{
		{Begin: 10000, End: 20000},
		{Begin: 30000, End: 40000},
	}
	require.NoError(t, rangelog.Write(fs, "/tmp/f", existing))

	prober := fakeProber{err: errors.New("should never be called")}
	ranges, err := Plan(context.Background(), prober, fs, "https://example.com/f", "/tmp/f", 20, true)
	require.NoError(t, err)
	assert.Equal(t, existing, ranges)
}

func TestProbeFailurePropagates(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Plan(context.Background(), fakeProber{err: errors.New("boom")}, fs, "https://example.com/f", "/tmp/f", 20, true)
	assert.Error(t, err)
}

func TestNoResumeAlwaysProbes(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, rangelog.Write(fs, "/tmp/f", []rangelog.Range{{Begin: 0, End: 10}}))

	const mb = 1024 * 1024
	ranges, err := Plan(context.Background(), fakeProber{size: 10 * mb}, fs, "https://example.com/f", "/tmp/f", 20, false)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, int64(10*mb), ranges[0].End)
}

func TestLastChunkIsShort(t *testing.T) {
	ranges := partition(25, 10)
	require.Equal(t, []rangelog.Range{
		{Begin: 0, End: 10},
		{Begin: 10, End: 20},
		{Begin: 20, End: 25},
	}, ranges)
}

func TestExactMultipleHasNoShortTail(t *testing.T) {
	ranges := partition(20, 10)
	require.Equal(t, []rangelog.Range{
		{Begin: 0, End: 10},
		{Begin: 10, End: 20},
	}, ranges)
}
