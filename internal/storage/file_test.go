// internal/storage/file_test.go
package storage

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFile_NewFileReadsZero(t *testing.T) {
	fs := afero.NewMemMapFs()

	s, err := OpenFile(fs, "/data/archive.bin", 128)
	require.NoError(t, err)
	assert.Equal(t, 128, s.Size())

	buf := make([]byte, 128)
	require.NoError(t, s.ReadAt(0, buf))
	for i, b := range buf {
		require.Zero(t, b, "byte %d of a fresh block", i)
	}
}

func TestWriteAt_SurvivesReopenAfterCommit(t *testing.T) {
	fs := afero.NewMemMapFs()

	s, err := OpenFile(fs, "/data/archive.bin", 64)
	require.NoError(t, err)
	require.NoError(t, s.WriteAt(10, []byte("hello")))
	require.NoError(t, s.Commit())
	require.NoError(t, s.Close())

	s2, err := OpenFile(fs, "/data/archive.bin", 64)
	require.NoError(t, err)
	buf := make([]byte, 5)
	require.NoError(t, s2.ReadAt(10, buf))
	assert.Equal(t, "hello", string(buf))
}

func TestRange_OutsideBlockRejected(t *testing.T) {
	fs := afero.NewMemMapFs()

	s, err := OpenFile(fs, "/data/archive.bin", 32)
	require.NoError(t, err)

	assert.Error(t, s.ReadAt(30, make([]byte, 4)))
	assert.Error(t, s.WriteAt(-1, make([]byte, 1)))
	assert.NoError(t, s.WriteAt(28, make([]byte, 4)))
}

func TestOpenFile_BadSize(t *testing.T) {
	_, err := OpenFile(afero.NewMemMapFs(), "/x", 0)
	assert.Error(t, err)
}
