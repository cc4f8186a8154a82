package lthread

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleTable_AllocateLookupDeallocate(t *testing.T) {
	tbl := newHandleTable()
	d := &descriptor{}
	h := tbl.allocate(d)

	got, err := tbl.lookup(h)
	require.NoError(t, err)
	assert.Same(t, d, got)

	require.NoError(t, tbl.deallocate(h))
	_, err = tbl.lookup(h)
	assert.True(t, errors.Is(err, ErrAlreadyJoined), "looking up a freed, not-yet-reused handle reports already-reaped")
}

func TestHandleTable_StaleHandleRejectedAfterReuse(t *testing.T) {
	tbl := newHandleTable()
	d1 := &descriptor{}
	h1 := tbl.allocate(d1)
	require.NoError(t, tbl.deallocate(h1))

	d2 := &descriptor{}
	h2 := tbl.allocate(d2)
	assert.Equal(t, h1.index, h2.index, "freed slot should be reused")
	assert.NotEqual(t, h1.generation, h2.generation, "reused slot must bump its generation")

	_, err := tbl.lookup(h1)
	assert.True(t, errors.Is(err, ErrInvalidHandle), "stale handle from before reuse must be rejected")

	got, err := tbl.lookup(h2)
	require.NoError(t, err)
	assert.Same(t, d2, got)
}

func TestHandleTable_DoublingGrowth(t *testing.T) {
	tbl := newHandleTable()
	handles := make([]Handle, 0, 64)
	for i := 0; i < 64; i++ {
		handles = append(handles, tbl.allocate(&descriptor{}))
	}
	assert.GreaterOrEqual(t, cap(tbl.slots), 64)
	for _, h := range handles {
		_, err := tbl.lookup(h)
		assert.NoError(t, err)
	}
}

func TestHandleTable_InvalidIndexOutOfRange(t *testing.T) {
	tbl := newHandleTable()
	_, err := tbl.lookup(Handle{index: 999, generation: 1})
	assert.True(t, errors.Is(err, ErrInvalidHandle))
}
