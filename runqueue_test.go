package lthread

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func names(start *descriptor, n int) []*descriptor {
	out := make([]*descriptor, 0, n)
	d := start
	for i := 0; i < n; i++ {
		out = append(out, d)
		d = d.link
	}
	return out
}

func TestRunQueue_InitWithSingleElementRing(t *testing.T) {
	var q runQueue
	a := &descriptor{}
	q.initWith(a)
	assert.Same(t, a, q.current)
	assert.Same(t, a, q.tail)
	assert.Same(t, a, a.link, "a one-element ring links to itself")
}

func TestRunQueue_PushTailAndAdvance(t *testing.T) {
	var q runQueue
	a, b, c := &descriptor{}, &descriptor{}, &descriptor{}
	q.pushTail(a)
	q.pushTail(b)
	q.pushTail(c)

	got := names(q.current, 3)
	assert.Equal(t, []*descriptor{a, b, c}, got)
	assert.Same(t, a.link, b)
	assert.Same(t, b.link, c)
	assert.Same(t, c.link, a)

	ok := q.advance(false)
	assert.True(t, ok)
	assert.Same(t, b, q.current)
}

func TestRunQueue_AdvanceWithRemoveSplicesOut(t *testing.T) {
	var q runQueue
	a, b, c := &descriptor{}, &descriptor{}, &descriptor{}
	q.pushTail(a)
	q.pushTail(b)
	q.pushTail(c)

	ok := q.advance(true) // removes a
	assert.True(t, ok)
	assert.Same(t, b, q.current)
	assert.Nil(t, a.link)
	got := names(q.current, 2)
	assert.Equal(t, []*descriptor{b, c}, got)
	assert.Same(t, c.link, b)
}

func TestRunQueue_AdvanceRemovingSoleElementEmptiesRing(t *testing.T) {
	var q runQueue
	a := &descriptor{}
	q.initWith(a)
	ok := q.advance(true)
	assert.False(t, ok)
	assert.True(t, q.empty())
}

func TestRunQueue_Remove(t *testing.T) {
	var q runQueue
	a, b, c := &descriptor{}, &descriptor{}, &descriptor{}
	q.pushTail(a)
	q.pushTail(b)
	q.pushTail(c)

	assert.True(t, q.remove(b))
	got := names(q.current, 2)
	assert.Equal(t, []*descriptor{a, c}, got)
	assert.Same(t, q.tail, c)
}
