package dlt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeLog writes frames into a temp log file and returns its path and
// the frame offsets.
func writeLog(t *testing.T, name string, specs ...FrameSpec) (string, []int64) {
	t.Helper()
	var data []byte
	var offsets []int64
	for _, s := range specs {
		offsets = append(offsets, int64(len(data)))
		data = AppendFrame(data, s)
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, offsets
}

func TestFile_OpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.dlt"))
	assert.Error(t, err)
}

func TestFile_GlobalIndexAcrossFiles(t *testing.T) {
	// Given: two files of two frames each
	pathA, offsetsA := writeLog(t, "a.dlt",
		FrameSpec{EcuID: "ECU1", AppID: "AAAA", Payload: []byte("a0")},
		FrameSpec{EcuID: "ECU1", AppID: "AAAA", Payload: []byte("a1")},
	)
	pathB, offsetsB := writeLog(t, "b.dlt",
		FrameSpec{EcuID: "ECU2", AppID: "BBBB", Payload: []byte("b0")},
		FrameSpec{EcuID: "ECU2", AppID: "BBBB", Payload: []byte("b1")},
	)

	file, err := Open(pathA, pathB)
	require.NoError(t, err)
	defer file.Close()

	file.SetIndex(offsetsA, 0)
	file.SetIndex(offsetsB, 1)

	// Then: the handle spans both files in order
	assert.Equal(t, 2, file.NumberOfFiles())
	assert.Equal(t, int64(4), file.Size())

	msg, ok := file.GetMsg(0)
	require.True(t, ok)
	assert.Equal(t, []byte("a0"), msg.Payload)

	msg, ok = file.GetMsg(3)
	require.True(t, ok)
	assert.Equal(t, "ECU2", msg.EcuID)
	assert.Equal(t, []byte("b1"), msg.Payload)
}

func TestFile_GetMsg_OutOfRange(t *testing.T) {
	path, offsets := writeLog(t, "a.dlt", FrameSpec{EcuID: "ECU1"})
	file, err := Open(path)
	require.NoError(t, err)
	defer file.Close()
	file.SetIndex(offsets, 0)

	_, ok := file.GetMsg(-1)
	assert.False(t, ok)
	_, ok = file.GetMsg(1)
	assert.False(t, ok)
}

func TestFile_GetMsg_BrokenFrame(t *testing.T) {
	// Given: an index entry pointing at garbage
	path, _ := writeLog(t, "a.dlt", FrameSpec{EcuID: "ECU1", Payload: []byte("payload")})
	file, err := Open(path)
	require.NoError(t, err)
	defer file.Close()

	file.SetIndex([]int64{7}, 0)

	// Then: the broken message is reported, not returned
	_, ok := file.GetMsg(0)
	assert.False(t, ok)
}

func TestFile_FileSizeTotals(t *testing.T) {
	pathA, _ := writeLog(t, "a.dlt", FrameSpec{EcuID: "ECU1"})
	pathB, _ := writeLog(t, "b.dlt", FrameSpec{EcuID: "ECU1"}, FrameSpec{EcuID: "ECU1"})

	file, err := Open(pathA, pathB)
	require.NoError(t, err)
	defer file.Close()

	infoA, err := os.Stat(pathA)
	require.NoError(t, err)
	infoB, err := os.Stat(pathB)
	require.NoError(t, err)

	assert.Equal(t, infoA.Size()+infoB.Size(), file.FileSize())
}

func TestFile_FilterIndexPublication(t *testing.T) {
	path, offsets := writeLog(t, "a.dlt", FrameSpec{EcuID: "ECU1"})
	file, err := Open(path)
	require.NoError(t, err)
	defer file.Close()
	file.SetIndex(offsets, 0)

	file.SetFilterIndex([]int64{0})
	assert.Equal(t, []int64{0}, file.FilterIndex())

	// A nil filter list is normalized to an empty one
	file.SetFilterList(nil)
	require.NotNil(t, file.FilterList())
	assert.True(t, file.FilterList().Matches(&Message{}))
}

func TestDefaultFilterStore(t *testing.T) {
	var store DefaultFilterStore
	store.Add(&FilterList{})
	store.Add(&FilterList{})
	require.Equal(t, 2, store.Len())

	store.Indexes[0].Index = []int64{1, 2}
	store.Indexes[0].SetFileName("trace.dlt")
	store.Indexes[0].SetAllIndexSize(10)

	assert.True(t, store.Indexes[0].Plausible("trace.dlt", 10))
	assert.False(t, store.Indexes[0].Plausible("trace.dlt", 11))

	store.ClearFilterIndex()
	assert.Empty(t, store.Indexes[0].Index)
	assert.False(t, store.Indexes[0].Plausible("trace.dlt", 10))
}
