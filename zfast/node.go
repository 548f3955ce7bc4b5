// Package zfast implements the z-fast trie: a compacted binary trie over
// prefix-free bit strings, augmented with a signature-indexed handle
// dictionary (package handledict) and jump pointers so that predecessor,
// successor and membership queries run in O(log log U) expected time
// instead of O(log U).
package zfast

import (
	"math/bits"

	"github.com/succinct-go/zfasttrie/bitvec"
)

// node is one vertex of the compacted trie. A node is a leaf iff
// left == nil && right == nil; only leaves carry a key/value (the key set is
// prefix-free, so no internal node's extent ever coincides with a stored
// key). Internal nodes instead keep a reference to one descendant leaf,
// letting extent() reconstruct the node's bits without storing them twice.
//
// spec.md §3.2 describes reference as a two-way link: an internal node
// points down at its chosen reference leaf, and that leaf points back up at
// the unique internal node that chose it. This implementation keeps only
// the downward half — every leaf's own reference field points at itself —
// because every consumer of reference in this package (extent, handle,
// HandleLength/Key for the handle dictionary, sigFor) only ever reads it
// going from an internal node down to a leaf's key; nothing here ever walks
// from a leaf back up to "the" internal node that named it. A single leaf
// can legitimately be the chosen reference of several internal nodes at
// once (an internal node's reference is inherited from whichever child
// produced it, so it is shared up a whole ancestor chain, not reassigned
// fresh at every split) — a leaf-side back-pointer would have to pick just
// one of those internal nodes and so cannot, in general, satisfy "the
// unique internal node whose reference points to it" for every such
// ancestor simultaneously. Self-reference sidesteps that by not attempting
// to name one: see TestReferenceLeavesAreDescendants for the structural
// property this package actually relies on and enforces instead (every
// internal node's reference is one of its own descendant leaves), and
// DESIGN.md's node-graph entry for the full reasoning.
type node[V any] struct {
	reference *node[V]
	key       bitvec.Vector
	value     V

	parentExtentLength uint32
	extentLength       uint32

	left, right *node[V]

	// jumpLeft/jumpRight point at the descendant on this node's left/right
	// spine that intercepts jumpLength() (see setJumps); a leaf points at
	// itself. Following them repeatedly reaches the leftmost/rightmost leaf
	// of the subtree without re-descending the compacted trie one edge at a
	// time.
	jumpLeft, jumpRight *node[V]

	// prev/next thread the leaf doubly-linked list in key order; nil on
	// internal nodes.
	prev, next *node[V]
}

func (n *node[V]) isLeaf() bool { return n.left == nil && n.right == nil }

// extent returns the bit string this node represents: the full key for a
// leaf, or the handle-length-extending prefix of the reference leaf's key
// for an internal node.
func (n *node[V]) extent() bitvec.Vector {
	if n.isLeaf() {
		return n.key
	}
	return n.reference.key.Prefix(n.extentLength)
}

// twoFattest returns the largest integer in (l, r] divisible by the
// largest power of two — the handle-length formula every succinct z-fast
// trie construction is built on. Ported verbatim from the teacher's
// Fast::twoFattest: (-1 << msb(l^r)) & r.
func twoFattest(l, r uint32) uint32 {
	if l >= r {
		return 0
	}
	msb := 31 - uint32(bits.LeadingZeros32(l^r))
	return (^uint32(0) << msb) & r
}

// handleLength is the length, in bits, of n's handle: the 2-fattest number
// in (parentExtentLength, extentLength].
func (n *node[V]) handleLength() uint32 {
	return twoFattest(n.parentExtentLength, n.extentLength)
}

// handle returns n's handle: the handleLength-bit prefix of its extent.
// Only meaningful for internal nodes — leaves are never entered in the
// handle dictionary.
func (n *node[V]) handle() bitvec.Vector {
	return n.extent().Prefix(n.handleLength())
}

// HandleLength and Key satisfy handledict.Handle.
func (n *node[V]) HandleLength() uint32 { return n.handleLength() }
func (n *node[V]) Key() bitvec.Vector   { return n.extent() }

// jumpLength is handleLength plus its own lowest set bit: the shortest
// length past the handle at which a jump pointer is guaranteed to find a
// descendant that intercepts it, since every length strictly between
// handleLength and jumpLength shares handleLength's top bit pattern and so
// cannot itself be any node's handle length.
func (n *node[V]) jumpLength() uint32 {
	h := n.handleLength()
	return h + (h & -h)
}

// intercepts reports whether a 2-fattest candidate of length h falls inside
// n's (parentExtentLength, extentLength] range, i.e. whether n is the fat
// ancestor the fat-binary search is probing for at this step. Leaves have
// no upper bound: a leaf's key stands in for every one of its (unstored)
// extensions, so it intercepts any h past its parent's extent (spec.md
// §3.2).
func (n *node[V]) intercepts(h uint32) bool {
	if n.isLeaf() {
		return n.parentExtentLength < h
	}
	return n.parentExtentLength < h && h <= n.extentLength
}

// setJumps recomputes n's jump pointers from its children (which must
// already carry correct jump pointers of their own), then returns them so a
// caller repairing an ancestor chain can propagate without a second pair of
// field reads.
//
// Ported from the teacher's spirit of InternalNode.setJumps (the underlying
// dsiutils ZFastTrie this thesis is itself based on): descend from n.left
// (resp. n.right) by repeatedly following the current node's own jumpLeft
// (resp. jumpRight) — never its plain left/right child — for as long as it
// is internal and its extentLength is still short of n's jumpLength, so the
// node reached is the one on that spine that intercepts n's jumpLength,
// doubling the distance covered at each hop so the walk takes O(log log U)
// steps rather than O(log U).
func (n *node[V]) setJumps() (left, right *node[V]) {
	if n.isLeaf() {
		n.jumpLeft, n.jumpRight = n, n
		return n, n
	}
	jlen := n.jumpLength()

	jl := n.left
	for !jl.isLeaf() && jl.extentLength < jlen {
		jl = jl.jumpLeft
	}
	jr := n.right
	for !jr.isLeaf() && jr.extentLength < jlen {
		jr = jr.jumpRight
	}

	n.jumpLeft, n.jumpRight = jl, jr
	return jl, jr
}

// leafList is the sentinel-headed doubly-linked list threading every leaf
// in ascending key order, giving Pred/Succ O(1) neighbor access once the
// fat-binary search and jump pointers have located a nearby leaf.
type leafList[V any] struct {
	head, tail node[V] // sentinels; never leaves themselves
}

func newLeafList[V any]() *leafList[V] {
	l := &leafList[V]{}
	l.head.next = &l.tail
	l.tail.prev = &l.head
	return l
}

func (l *leafList[V]) empty() bool { return l.head.next == &l.tail }

func (l *leafList[V]) first() *node[V] {
	if l.empty() {
		return nil
	}
	return l.head.next
}

func (l *leafList[V]) last() *node[V] {
	if l.empty() {
		return nil
	}
	return l.tail.prev
}

// addAfter splices leaf in immediately after at.
func (l *leafList[V]) addAfter(at, leaf *node[V]) {
	next := at.next
	leaf.prev, leaf.next = at, next
	at.next = leaf
	next.prev = leaf
}

// addBefore splices leaf in immediately before at.
func (l *leafList[V]) addBefore(at, leaf *node[V]) {
	l.addAfter(at.prev, leaf)
}

// unlink removes leaf from the list. leaf's own prev/next are left
// dangling; callers that still need them (Remove is unsupported, so
// currently none do) must read them first.
func (l *leafList[V]) unlink(leaf *node[V]) {
	leaf.prev.next = leaf.next
	leaf.next.prev = leaf.prev
}
