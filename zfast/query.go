package zfast

import "github.com/succinct-go/zfasttrie/bitvec"

// Contains reports whether key is stored in the trie.
//
// Ported from the teacher's ContainsBitString: locate the exit node, then
// check its extent matches key exactly.
func (t *Trie[V]) Contains(key bitvec.Vector) bool {
	_, ok := t.Get(key)
	return ok
}

// Get returns the value stored under key, if any.
func (t *Trie[V]) Get(key bitvec.Vector) (V, bool) {
	var zero V
	if t.size == 0 {
		return zero, false
	}
	st := t.hasher.Preprocess(key)
	exit := exitSearch[V](t.dict, st, key, t.root, true)
	if exit.isLeaf() && exit.key.Equal(key) {
		return exit.value, true
	}
	return zero, false
}

// Pred returns the greatest stored key less than or equal to key, and its
// value. ok is false if the trie is empty or every stored key is greater
// than key.
//
// Ported from spec.md's predecessor walk: find the exit node, then either
// it already matches (key itself is stored), or its divergence bit tells
// us which side of the trie key falls on; following jumpLeft/jumpRight
// down to a leaf reaches the subtree's extreme leaf on that side, and at
// most one step along the leaf list finds the true predecessor.
func (t *Trie[V]) Pred(key bitvec.Vector) (bitvec.Vector, V, bool) {
	var zero V
	if t.size == 0 {
		return bitvec.Vector{}, zero, false
	}
	st := t.hasher.Preprocess(key)
	exit := exitSearch[V](t.dict, st, key, t.root, true)

	if exit.isLeaf() {
		if key.Compare(exit.key) >= 0 {
			return exit.key, exit.value, true
		}
		p := exit.prev
		if p == &t.leaves.head {
			return bitvec.Vector{}, zero, false
		}
		return p.key, p.value, true
	}

	lcp := key.LCP(exit.extent())
	var near *node[V]
	if lcp < exit.extentLength && key.At(lcp) {
		for near = exit.jumpRight; !near.isLeaf(); near = near.jumpRight {
		}
	} else {
		for near = exit.jumpLeft; !near.isLeaf(); near = near.jumpLeft {
		}
	}
	if near.key.Compare(key) <= 0 {
		return near.key, near.value, true
	}
	p := near.prev
	if p == &t.leaves.head {
		return bitvec.Vector{}, zero, false
	}
	return p.key, p.value, true
}

// Succ returns the smallest stored key greater than or equal to key, and
// its value. ok is false if the trie is empty or every stored key is less
// than key.
func (t *Trie[V]) Succ(key bitvec.Vector) (bitvec.Vector, V, bool) {
	var zero V
	if t.size == 0 {
		return bitvec.Vector{}, zero, false
	}
	st := t.hasher.Preprocess(key)
	exit := exitSearch[V](t.dict, st, key, t.root, true)

	if exit.isLeaf() {
		if key.Compare(exit.key) <= 0 {
			return exit.key, exit.value, true
		}
		n := exit.next
		if n == &t.leaves.tail {
			return bitvec.Vector{}, zero, false
		}
		return n.key, n.value, true
	}

	lcp := key.LCP(exit.extent())
	var near *node[V]
	if lcp < exit.extentLength && key.At(lcp) {
		for near = exit.jumpRight; !near.isLeaf(); near = near.jumpRight {
		}
	} else {
		for near = exit.jumpLeft; !near.isLeaf(); near = near.jumpLeft {
		}
	}
	if near.key.Compare(key) >= 0 {
		return near.key, near.value, true
	}
	n := near.next
	if n == &t.leaves.tail {
		return bitvec.Vector{}, zero, false
	}
	return n.key, n.value, true
}
