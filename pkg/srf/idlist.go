package srf

import (
	"fmt"
	"sort"
)

// HCurve is a handle to an SCurve within a Shell.
type HCurve uint32

// HSurface is a handle to a Surface within a Shell.
type HSurface uint32

// IdList is a collection of elements addressed by handle. Elements are kept
// sorted by handle so lookup is a binary search; removing an element never
// renumbers the others. The zero value is an empty list whose first handle
// is 1.
type IdList[H ~uint32, T any] struct {
	handles []H
	elems   []T
	next    H
}

// Add stores v under a freshly allocated handle and returns it.
func (l *IdList[H, T]) Add(v T) H {
	if l.next == 0 {
		l.next = 1
	}
	h := l.next
	l.next++
	l.handles = append(l.handles, h)
	l.elems = append(l.elems, v)
	return h
}

// AddWithHandle stores v under h, which must not already be in use. Later
// calls to Add allocate handles above h.
func (l *IdList[H, T]) AddWithHandle(h H, v T) {
	if h == 0 {
		panic("srf: IdList.AddWithHandle: zero handle")
	}
	i := l.search(h)
	if i < len(l.handles) && l.handles[i] == h {
		panic(fmt.Sprintf("srf: IdList.AddWithHandle: duplicate handle %d", h))
	}
	l.handles = append(l.handles, 0)
	copy(l.handles[i+1:], l.handles[i:])
	l.handles[i] = h
	var zero T
	l.elems = append(l.elems, zero)
	copy(l.elems[i+1:], l.elems[i:])
	l.elems[i] = v
	if h >= l.next {
		l.next = h + 1
	}
}

func (l *IdList[H, T]) search(h H) int {
	return sort.Search(len(l.handles), func(i int) bool { return l.handles[i] >= h })
}

// Find returns a pointer to the element with handle h, or nil.
func (l *IdList[H, T]) Find(h H) *T {
	i := l.search(h)
	if i < len(l.handles) && l.handles[i] == h {
		return &l.elems[i]
	}
	return nil
}

// MustFind is Find for handles that are known to exist; a missing handle is
// a programming error.
func (l *IdList[H, T]) MustFind(h H) *T {
	p := l.Find(h)
	if p == nil {
		panic(fmt.Sprintf("srf: IdList.MustFind: no element with handle %d", h))
	}
	return p
}

// Remove deletes the element with handle h, reporting whether it existed.
func (l *IdList[H, T]) Remove(h H) bool {
	i := l.search(h)
	if i >= len(l.handles) || l.handles[i] != h {
		return false
	}
	l.handles = append(l.handles[:i], l.handles[i+1:]...)
	l.elems = append(l.elems[:i], l.elems[i+1:]...)
	return true
}

// Len returns the number of elements.
func (l *IdList[H, T]) Len() int { return len(l.elems) }

// At returns the i-th element in handle order.
func (l *IdList[H, T]) At(i int) *T { return &l.elems[i] }

// Handles returns a copy of the handles in ascending order.
func (l *IdList[H, T]) Handles() []H {
	return append([]H(nil), l.handles...)
}

// Each calls f on every element in handle order.
func (l *IdList[H, T]) Each(f func(h H, v *T)) {
	for i := range l.elems {
		f(l.handles[i], &l.elems[i])
	}
}

// Clone returns a copy of the list. Elements are copied by value, so any
// slices they hold are shared with the original.
func (l *IdList[H, T]) Clone() IdList[H, T] {
	return IdList[H, T]{
		handles: append([]H(nil), l.handles...),
		elems:   append([]T(nil), l.elems...),
		next:    l.next,
	}
}
