package lthread

import "fmt"

// handleTable is a dense, doubling slab of descriptor slots addressed by
// index, enhanced with a per-slot generation counter (the generational
// index map the original's DESIGN NOTES recommend in place of a bare
// array of nullable pointers). Every allocation — first use of a slot or
// reuse of a freed one — is stamped with a table-wide monotonically
// increasing generation, so a Handle names exactly one "life" of a slot:
// a stale Handle captured before the slot was freed and reused is
// rejected by lookup instead of silently aliasing the new occupant, and
// a Handle whose life has ended but whose slot has not yet been reused
// is distinguishable from one that was never issued (see slotFor).
type handleTable struct {
	slots   []slot
	free    []uint32 // indices available for reuse, most-recently-freed last
	nextGen uint32
}

type slot struct {
	desc       *descriptor
	generation uint32
	occupied   bool
}

const initialHandleCapacity = 4

func newHandleTable() *handleTable {
	return newHandleTableWithCapacity(initialHandleCapacity)
}

func newHandleTableWithCapacity(capacity int) *handleTable {
	if capacity < 1 {
		capacity = initialHandleCapacity
	}
	return &handleTable{
		slots:   make([]slot, 0, capacity),
		nextGen: 1, // 0 is reserved: it is the zero Handle's generation, which never names a live thread
	}
}

// allocate reserves a slot for d, assigns it a Handle, and returns it. d's
// handle field is populated as a side effect.
func (t *handleTable) allocate(d *descriptor) Handle {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.grow()
	}
	s := &t.slots[idx]
	s.desc = d
	s.occupied = true
	s.generation = t.nextGen
	t.nextGen++
	h := Handle{index: idx, generation: s.generation}
	d.handle = h
	return h
}

// grow appends one slot, doubling backing capacity when the slice grows
// past its current capacity (mirrors allocate_lthread's realloc-doubling
// behavior).
func (t *handleTable) grow() {
	if len(t.slots) == cap(t.slots) {
		next := make([]slot, len(t.slots), max(initialHandleCapacity, cap(t.slots)*2))
		copy(next, t.slots)
		t.slots = next
	}
	t.slots = append(t.slots, slot{})
}

// deallocate frees the slot named by h. The slot keeps its generation
// until the slot is reused by a future allocate, so a lookup of h after
// deallocate (and before reuse) resolves to ErrAlreadyJoined rather than
// the generic ErrInvalidHandle reused-slot case.
func (t *handleTable) deallocate(h Handle) error {
	s, err := t.slotFor(h)
	if err != nil {
		return err
	}
	s.desc = nil
	s.occupied = false
	t.free = append(t.free, h.index)
	return nil
}

// lookup resolves h to its live descriptor, or an error if h is stale,
// already reaped, or was never issued by this table.
func (t *handleTable) lookup(h Handle) (*descriptor, error) {
	s, err := t.slotFor(h)
	if err != nil {
		return nil, err
	}
	return s.desc, nil
}

// slotFor resolves h to its slot, distinguishing three failure cases:
//   - the index is out of range, or h is the zero Handle: never issued
//     by this table at all (ErrInvalidHandle).
//   - the slot's current generation does not match h's: h named an
//     earlier life of this slot that has since been freed and reused by
//     a different descriptor (ErrInvalidHandle).
//   - the generation matches but the slot is not occupied: h named
//     exactly this life of the slot, and that life has already ended —
//     the thread was already joined or destroyed (ErrAlreadyJoined).
func (t *handleTable) slotFor(h Handle) (*slot, error) {
	if h.generation == 0 {
		return nil, fmt.Errorf("%w: zero handle names no thread", ErrInvalidHandle)
	}
	if int(h.index) >= len(t.slots) {
		return nil, fmt.Errorf("%w: handle index %d out of range", ErrInvalidHandle, h.index)
	}
	s := &t.slots[h.index]
	if s.generation != h.generation {
		return nil, fmt.Errorf("%w: handle %d/%d is stale", ErrInvalidHandle, h.index, h.generation)
	}
	if !s.occupied {
		return nil, fmt.Errorf("%w: handle %d/%d already reaped", ErrAlreadyJoined, h.index, h.generation)
	}
	return s, nil
}
