package arena

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_New(t *testing.T) {
	t.Run("default chunk size", func(t *testing.T) {
		a := New(0)
		if a.ChunkSize() != DefaultChunkSize {
			t.Errorf("expected chunkSize=%d, got %d", DefaultChunkSize, a.ChunkSize())
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		a := New(128)
		if a.ChunkSize() != 128 {
			t.Errorf("expected chunkSize=128, got %d", a.ChunkSize())
		}
	})
}

func TestArena_StoreCopies(t *testing.T) {
	a := New(64)
	src := []byte("ABCDEFGH")
	ref := a.Store(src)

	src[0] = 'Z'
	assert.Equal(t, []byte("ABCDEFGH"), a.Bytes(ref))
	assert.Equal(t, uint32(8), ref.Len)
}

func TestArena_RefsStayStableAcrossChunks(t *testing.T) {
	a := New(16)

	var refs []Ref
	var want [][]byte
	for i := 0; i < 20; i++ {
		data := bytes.Repeat([]byte{byte('a' + i)}, 1+i%7)
		refs = append(refs, a.Store(data))
		want = append(want, data)
	}

	for i, ref := range refs {
		assert.Equal(t, want[i], a.Bytes(ref), "ref %d", i)
	}
	assert.Greater(t, a.Stats().Chunks, uint64(1))
}

func TestArena_Oversize(t *testing.T) {
	a := New(8)
	small := a.Store([]byte("abc"))
	big := a.Store(bytes.Repeat([]byte{0xEE}, 100))
	after := a.Store([]byte("de"))

	assert.Len(t, a.Bytes(big), 100)
	assert.Equal(t, []byte("abc"), a.Bytes(small))
	assert.Equal(t, []byte("de"), a.Bytes(after))
	// The small keys share the regular chunk.
	assert.Equal(t, small.Chunk, after.Chunk)

	st := a.Stats()
	assert.Equal(t, uint64(2), st.Chunks)
	assert.Equal(t, uint64(105), st.BytesUsed)
	assert.Equal(t, uint64(108), st.BytesReserved)
	assert.Equal(t, uint64(3), st.Stores)
}

func TestArena_BytesIsCapped(t *testing.T) {
	a := New(64)
	r1 := a.Store([]byte("abcd"))
	r2 := a.Store([]byte("efgh"))

	b := a.Bytes(r1)
	require.Equal(t, 4, cap(b))
	_ = append(b, 'X')
	assert.Equal(t, []byte("efgh"), a.Bytes(r2))
}

func TestRef_Prefix(t *testing.T) {
	a := New(64)
	ref := a.Store([]byte("ABCDEFGH"))

	p := ref.Prefix(4)
	assert.Equal(t, []byte("ABCD"), a.Bytes(p))
	assert.True(t, Ref{}.IsZero())
	assert.Nil(t, a.Bytes(Ref{}))
	assert.Panics(t, func() { ref.Prefix(9) })
}

func TestArena_StoreEmptyPanics(t *testing.T) {
	a := New(64)
	assert.Panics(t, func() { a.Store(nil) })
}
