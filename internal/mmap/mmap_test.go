package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/shadercache/datasource"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.img")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestMmap_OpenReadClose(t *testing.T) {
	content := []byte("Hello, Mmap!")
	m, err := Open(writeTemp(t, content))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Len())
	assert.Equal(t, content, m.Bytes())

	assert.Equal(t, byte('M'), m.ByteAt(7))
	assert.Equal(t, []byte("Mmap!"), m.SpanAt(7, 10))
}

func TestMmap_EmptyFile(t *testing.T) {
	m, err := Open(writeTemp(t, nil))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Len())
	require.NoError(t, m.Advise(AccessRandom))
}

func TestMmap_CloseIdempotent(t *testing.T) {
	m, err := Open(writeTemp(t, []byte("abc")))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.Equal(t, ErrClosed, m.Advise(AccessSequential))
}

func TestMmap_ReadAfterClose(t *testing.T) {
	m, err := Open(writeTemp(t, []byte("\x00vertex")))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	size, bounded := m.Size()
	assert.True(t, bounded)
	assert.Zero(t, size)
	assert.Nil(t, m.SpanAt(1, 6))
	assert.PanicsWithValue(t, ErrClosed, func() { m.ByteAt(1) })

	src := datasource.FromMemory(m, 1)
	assert.False(t, datasource.Readable(src, 1), "closed mapping has no readable bytes")
	_, err = datasource.Copy(m, 1, 6)
	assert.ErrorIs(t, err, datasource.ErrOutOfRange)
}

func TestMmap_AsMemory(t *testing.T) {
	m, err := Open(writeTemp(t, []byte("\x00\x00ABCDEFGH")))
	require.NoError(t, err)
	defer m.Close()

	size, bounded := m.Size()
	assert.True(t, bounded)
	assert.Equal(t, uint64(10), size)

	src := datasource.FromMemory(m, 2)
	n, known := src.Len()
	assert.True(t, known)
	assert.Equal(t, 8, n)

	prefix, scratch := datasource.Prefix(src, 4, nil)
	assert.Equal(t, "ABCD", string(prefix))
	assert.Nil(t, scratch, "mapping is read without copying")

	assert.Equal(t, []byte("GH"), m.SpanAt(8, 10))
	assert.Nil(t, m.SpanAt(10, 1))
}

func TestAccessPattern_String(t *testing.T) {
	assert.Equal(t, "random", AccessRandom.String())
	assert.Equal(t, "default", AccessDefault.String())
	assert.Equal(t, "unknown", AccessPattern(99).String())
}
