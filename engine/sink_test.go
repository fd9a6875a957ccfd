package engine

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/warpdl/ftxengine/dashboard"
	"github.com/warpdl/ftxengine/rangelog"
)

func TestChunkWriteSinkAdvancesCursorAndDashboard(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, rangelog.Write(fs, "/tmp/f", []rangelog.Range{{Begin: 0, End: 100}}))

	file, err := fs.OpenFile(rangelog.TempPath("/tmp/f"), os.O_WRONLY|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer file.Close()

	dash := dashboard.New()
	sink := newChunkWriteSink(fs, dash, file, "/tmp/f", 0, 0, true)

	n, err := sink.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.EqualValues(t, 5, sink.cursor)
	require.EqualValues(t, 5, dash.Size("/tmp/f"))

	n, err = sink.Write([]byte(" world"))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.EqualValues(t, 11, sink.cursor)
	require.EqualValues(t, 11, dash.Size("/tmp/f"))

	// the range log's Begin field for chunk 0 tracks the cursor.
	persisted := rangelog.Load(fs, "/tmp/f")
	require.Len(t, persisted, 1)
	require.EqualValues(t, 11, persisted[0].Begin)
	require.EqualValues(t, 100, persisted[0].End)
}

func TestChunkWriteSinkSkipsLogUpdateWhenNotResumable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, rangelog.Write(fs, "/tmp/f", []rangelog.Range{{Begin: 0, End: 100}}))

	file, err := fs.OpenFile(rangelog.TempPath("/tmp/f"), os.O_WRONLY|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer file.Close()

	dash := dashboard.New()
	sink := newChunkWriteSink(fs, dash, file, "/tmp/f", 0, 0, false)

	_, err = sink.Write([]byte("hello"))
	require.NoError(t, err)

	persisted := rangelog.Load(fs, "/tmp/f")
	require.Len(t, persisted, 1)
	require.EqualValues(t, 0, persisted[0].Begin, "log untouched when job is not resumable")
}

func TestRequestWriteSinkBuffersBody(t *testing.T) {
	sink := &requestWriteSink{}
	_, err := sink.Write([]byte("part one "))
	require.NoError(t, err)
	_, err = sink.Write([]byte("part two"))
	require.NoError(t, err)
	require.Equal(t, "part one part two", sink.buf.String())
}
