package zfast

import (
	"github.com/succinct-go/zfasttrie/bitvec"
	"github.com/succinct-go/zfasttrie/internal/errutil"
)

// sigFor computes the handle dictionary signature of an internal node's own
// handle, against one of its descendant leaves' keys (any of them agree on
// the node's handle bits).
func (t *Trie[V]) sigFor(n *node[V]) uint64 {
	st := t.hasher.Preprocess(n.reference.key)
	return st.Prefix(n.handleLength())
}

// Add inserts key with the given value. It reports whether the key was
// newly inserted (false if key already existed, in which case its value is
// overwritten).
//
// Ported from the teacher's InsertBitString (zfasttrie/z_fast_trie.go):
// same bootstrap/exact-match/split three-way branch, generalized to a
// prefix-free key domain (no key is ever a strict prefix of another, so
// every stored value lives on a leaf, never on an internal node) and to
// maintain jump pointers and the leaf doubly-linked list the teacher's
// variant has no concept of.
func (t *Trie[V]) Add(key bitvec.Vector, value V) bool {
	if t.size == 0 {
		leaf := &node[V]{key: key, value: value, parentExtentLength: 0, extentLength: key.Size()}
		leaf.reference = leaf
		leaf.jumpLeft, leaf.jumpRight = leaf, leaf
		t.root = leaf
		t.leaves.addAfter(&t.leaves.head, leaf)
		t.size = 1
		return true
	}

	st := t.hasher.Preprocess(key)
	exit := exitSearch[V](t.dict, st, key, t.root, true)
	lcp := key.LCP(exit.extent())

	if lcp == exit.extentLength {
		errutil.BugOn(lcp != key.Size() || !exit.isLeaf(), "key violates prefix-free invariant against %v", exit.extent())
		if lcp == key.Size() && exit.isLeaf() {
			exit.value = value
			return false
		}
		// Precondition violation in a non-debug build (key is a strict
		// prefix, or strict extension, of an existing key): ignore rather
		// than corrupt the structure.
		return false
	}

	t.split(exit, key, value, lcp)
	t.size++
	return true
}

// split handles every insertion where the new key diverges from the exit
// node strictly inside its extent (lcp < exit.extentLength()). exit is
// reused in place as the new internal splitter; a second node ("other")
// takes over exit's former identity (its old extent, children and, if it
// was itself a leaf, its key/value).
func (t *Trie[V]) split(exit *node[V], key bitvec.Vector, value V, lcp uint32) {
	ancestors := realAncestors[V](t.root, exit, key)

	oldExtentLength := exit.extentLength
	wasInternal := !exit.isLeaf()

	var other *node[V]
	if wasInternal {
		oldSig := t.sigFor(exit)
		t.dict.Remove(oldSig, exit.reference.key, exit.handleLength())

		other = &node[V]{
			reference:          exit.reference,
			parentExtentLength: lcp,
			extentLength:       oldExtentLength,
			left:               exit.left,
			right:              exit.right,
		}
		other.setJumps()
		t.dict.AddNew(t.sigFor(other), other)
	} else {
		other = &node[V]{
			key:                exit.key,
			value:              exit.value,
			parentExtentLength: lcp,
			extentLength:       oldExtentLength,
		}
		other.reference = other
		other.jumpLeft, other.jumpRight = other, other
		t.leaves.addBefore(exit, other)
		t.leaves.unlink(exit)

		// exit is about to stop being a leaf (it gains children below), so
		// its own self-reference, and any ancestor's reference to it, no
		// longer names a leaf: point them at the leaf that now carries its
		// old key forward instead.
		exit.reference = other
		for _, a := range ancestors {
			if a.reference == exit {
				a.reference = other
			}
		}
	}

	leaf := &node[V]{key: key, value: value, parentExtentLength: lcp, extentLength: key.Size()}
	leaf.reference = leaf
	leaf.jumpLeft, leaf.jumpRight = leaf, leaf

	// exit.parentExtentLength is left untouched: the splitter keeps exit's
	// old position in the tree, only its extent shrinks to the split point.
	exit.extentLength = lcp

	dir := key.At(lcp)
	if dir {
		exit.left, exit.right = other, leaf
	} else {
		exit.left, exit.right = leaf, other
	}

	if dir {
		rightmost := other
		for !rightmost.isLeaf() {
			rightmost = rightmost.jumpRight
		}
		t.leaves.addAfter(rightmost, leaf)
	} else {
		leftmost := other
		for !leftmost.isLeaf() {
			leftmost = leftmost.jumpLeft
		}
		t.leaves.addBefore(leftmost, leaf)
	}

	exit.setJumps()
	t.dict.AddNew(t.sigFor(exit), exit)

	for i := len(ancestors) - 1; i >= 0; i-- {
		ancestors[i].setJumps()
	}
}
