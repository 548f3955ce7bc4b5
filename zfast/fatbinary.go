package zfast

import (
	"github.com/succinct-go/zfasttrie/bitvec"
	"github.com/succinct-go/zfasttrie/handledict"
	"github.com/succinct-go/zfasttrie/signature"
)

// exitSearch locates the exit node for v: the node at which a plain
// descent of the trie on v's bits would stop, found in O(log log U)
// expected handle dictionary probes via fat-binary search over candidate
// 2-fattest lengths instead of a bit-by-bit walk.
//
// Ported from the teacher's getExistingPrefix/getExitNode
// (zfasttrie/z_fast_trie.go), generalized to take an exact flag selecting
// exact-vs-fast handle dictionary lookup.
func exitSearch[V any](dict *handledict.Dict[*node[V]], st *signature.State, v bitvec.Vector, root *node[V], exact bool) *node[V] {
	a, b := uint32(0), v.Size()
	deepest := root

	for b > a {
		f := twoFattest(a, b)
		sig := st.Prefix(f)
		n, ok := dict.Get(sig, v, f, exact)
		if ok {
			a = n.extentLength
			deepest = n
		} else {
			b = f - 1
		}
	}

	exit := deepest
	lcp := v.LCP(deepest.extent())
	if lcp == deepest.extentLength && lcp < v.Size() {
		var next *node[V]
		if v.At(lcp) {
			next = deepest.right
		} else {
			next = deepest.left
		}
		if next != nil {
			exit = next
		}
	}
	return exit
}

// realAncestors walks the trie from root down to (but not including) target
// by following v's bits, collecting every node visited along the way. Used
// by Add to repair jump-pointer caches after a split: unlike the fat
// ancestors the search above touches, this is the complete tree path, so
// every cache that could have gone stale is found.
func realAncestors[V any](root, target *node[V], v bitvec.Vector) []*node[V] {
	var path []*node[V]
	cur := root
	for cur != target {
		path = append(path, cur)
		if v.At(cur.extentLength) {
			cur = cur.right
		} else {
			cur = cur.left
		}
	}
	return path
}
