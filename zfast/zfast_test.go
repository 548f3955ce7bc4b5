package zfast

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/succinct-go/zfasttrie/bitvec"
)

// intCodec encodes a uint32 value as 4 big-endian bytes, for Write/Read
// round-trip tests.
type intCodec struct{}

func (intCodec) Encode(v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return buf[:]
}

func (intCodec) Decode(b []byte) (uint32, error) {
	return binary.BigEndian.Uint32(b), nil
}

func randomBits10(rng *rand.Rand) bitvec.Vector {
	return bitvec.FromUint64(uint64(rng.Intn(1<<10)), 10)
}

func TestEmptyTrie(t *testing.T) {
	tr := New[int]()
	if tr.Size() != 0 || !tr.IsEmpty() {
		t.Fatal("new trie should be empty")
	}
	if tr.Contains(bitvec.FromUint64(0, 4)) {
		t.Fatal("empty trie must not contain anything")
	}
	if _, _, ok := tr.Pred(bitvec.FromUint64(0, 4)); ok {
		t.Fatal("Pred on empty trie must report not found")
	}
	if _, _, ok := tr.Succ(bitvec.FromUint64(0, 4)); ok {
		t.Fatal("Succ on empty trie must report not found")
	}
}

func TestSingletonTrie(t *testing.T) {
	tr := New[int]()
	key := bitvec.FromUint64(0b1010, 4)
	tr.Add(key, 1)

	if !tr.Contains(key) {
		t.Fatal("expected stored key to be contained")
	}

	if k, v, ok := tr.Pred(key); !ok || !k.Equal(key) || v != 1 {
		t.Fatalf("Pred(key) = %v, %v, %v; want key, 1, true", k, v, ok)
	}
	if k, v, ok := tr.Succ(key); !ok || !k.Equal(key) || v != 1 {
		t.Fatalf("Succ(key) = %v, %v, %v; want key, 1, true", k, v, ok)
	}

	other := bitvec.FromUint64(0b0000, 4)
	if k, _, ok := tr.Succ(other); !ok || !k.Equal(key) {
		t.Fatal("Succ of a lesser probe should locate the sole leaf")
	}
	if _, _, ok := tr.Pred(other); ok {
		t.Fatal("Pred of a lesser probe on a singleton should miss")
	}
}

func TestAddIdempotent(t *testing.T) {
	tr := New[int]()
	key := bitvec.FromUint64(0b110011, 6)

	if ok := tr.Add(key, 1); !ok {
		t.Fatal("first Add should report newly inserted")
	}
	if ok := tr.Add(key, 2); ok {
		t.Fatal("second Add of the same key should report already present")
	}
	if tr.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", tr.Size())
	}
	if v, ok := tr.Get(key); !ok || v != 2 {
		t.Fatalf("Get(key) = %v, %v; want 2, true (value overwritten)", v, ok)
	}
	checkInvariants(t, tr)
}

func TestContainsAndOrderOnRandomSet(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	tr := New[int]()
	present := make(map[uint64]bool)

	for len(present) < 1000 {
		v := randomBits10(rng)
		key := v.Data()
		k := uint64(key[0]) | uint64(key[1])<<8
		if present[k] {
			continue
		}
		present[k] = true
		tr.Add(v, int(k))
	}

	require.Equal(t, 1000, tr.Size())

	for k := range present {
		v := bitvec.FromUint64(k, 10)
		require.Truef(t, tr.Contains(v), "expected Contains(%010b) to be true", k)
	}

	missCount := 0
	for i := 0; i < 1 << 10; i++ {
		if !present[uint64(i)] {
			missCount++
			v := bitvec.FromUint64(uint64(i), 10)
			if tr.Contains(v) {
				t.Fatalf("unexpected Contains(%010b) = true for un-inserted key", i)
			}
		}
	}
	if missCount == 0 {
		t.Fatal("test setup error: expected at least one un-inserted 10-bit string")
	}

	checkInvariants(t, tr)
}

func TestPredSuccAgainstSortedList(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	tr := New[int]()
	var keys []uint64
	seen := make(map[uint64]bool)
	for len(keys) < 300 {
		k := uint64(rng.Intn(1 << 10))
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
		tr.Add(bitvec.FromUint64(k, 10), int(k))
	}
	sort.Slice(keys, func(i, j int) bool { return compareKeys(keys[i], keys[j]) < 0 })

	for probe := 0; probe < 1<<10; probe++ {
		wantPredIdx := -1
		for i, k := range keys {
			if compareKeys(k, uint64(probe)) <= 0 {
				wantPredIdx = i
			} else {
				break
			}
		}
		wantSuccIdx := -1
		for i := len(keys) - 1; i >= 0; i-- {
			if compareKeys(keys[i], uint64(probe)) >= 0 {
				wantSuccIdx = i
			}
		}

		pv := bitvec.FromUint64(uint64(probe), 10)
		predKey, _, predOk := tr.Pred(pv)
		if wantPredIdx == -1 {
			if predOk {
				t.Fatalf("probe %d: expected no predecessor, got one", probe)
			}
		} else {
			wantBits, _ := bitsOf(keys[wantPredIdx])
			if !predOk || !equalBits(predKey, wantBits) {
				t.Fatalf("probe %d: Pred mismatch, got %v want key %d", probe, predKey, keys[wantPredIdx])
			}
		}

		succKey, _, succOk := tr.Succ(pv)
		if wantSuccIdx == -1 {
			if succOk {
				t.Fatalf("probe %d: expected no successor, got one", probe)
			}
		} else {
			wantBits, _ := bitsOf(keys[wantSuccIdx])
			if !succOk || !equalBits(succKey, wantBits) {
				t.Fatalf("probe %d: Succ mismatch, got %v want key %d", probe, succKey, keys[wantSuccIdx])
			}
		}
	}
}

// compareKeys orders two 10-bit keys the way the trie does: by their bit
// vectors, compared from bit 0 (the integer's least significant bit) up,
// not by numeric value.
func compareKeys(a, b uint64) int {
	return bitvec.FromUint64(a, 10).Compare(bitvec.FromUint64(b, 10))
}

func bitsOf(k uint64) (bitvec.Vector, uint64) {
	return bitvec.FromUint64(k, 10), k
}

func equalBits(a, b bitvec.Vector) bool { return a.Equal(b) }

func TestSerializationRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	tr := New[uint32]()
	seen := make(map[uint64]bool)
	for len(seen) < 1000 {
		k := uint64(rng.Intn(1 << 10))
		if seen[k] {
			continue
		}
		seen[k] = true
		tr.Add(bitvec.FromUint64(k, 10), uint32(k))
	}

	var buf bytes.Buffer
	require.NoError(t, tr.Write(&buf, intCodec{}))

	restored := New[uint32]()
	require.NoError(t, restored.Read(&buf, intCodec{}))

	require.Equal(t, tr.Size(), restored.Size())

	for i := 0; i < 1000; i++ {
		probe := bitvec.FromUint64(uint64(rng.Intn(1<<10)), 10)
		require.Equalf(t, tr.Contains(probe), restored.Contains(probe),
			"probe %v: Contains disagreement", probe)
	}

	for k := range seen {
		v, ok := restored.Get(bitvec.FromUint64(k, 10))
		if !ok || uint64(v) != k {
			t.Fatalf("restored value for key %d: got %d, ok=%v", k, v, ok)
		}
	}

	checkInvariants(t, restored)
}

// checkInvariants re-checks the structural invariants spec.md §8 requires
// after any sequence of Add calls: leaf-list ascending order, handle
// dictionary size == internal node count, and every internal node's jump
// pointers intercepting jumpLength.
func checkInvariants[V any](t *testing.T, tr *Trie[V]) {
	t.Helper()

	// Leaf list ascending order.
	var prevKey *bitvec.Vector
	count := 0
	for n := tr.leaves.first(); n != nil && n != &tr.leaves.tail; n = n.next {
		count++
		if prevKey != nil && prevKey.Compare(n.key) >= 0 {
			t.Fatalf("leaf list out of order: %v then %v", *prevKey, n.key)
		}
		k := n.key
		prevKey = &k
	}
	if count != tr.Size() {
		t.Fatalf("leaf list length = %d, want %d", count, tr.Size())
	}

	// Handle dictionary size == internal node count.
	wantInternal := 0
	if tr.Size() > 1 {
		wantInternal = tr.Size() - 1
	}
	if tr.dict.Len() != wantInternal {
		t.Fatalf("handle dict size = %d, want %d", tr.dict.Len(), wantInternal)
	}

	if tr.Size() >= 1 {
		walkJumps(t, tr.root)
	}
}

func walkJumps[V any](t *testing.T, n *node[V]) {
	t.Helper()
	if n.isLeaf() {
		return
	}
	jl, jr := n.jumpLeft, n.jumpRight
	jlen := n.jumpLength()
	if jlen == 0 {
		// A root with extentLength 0 has an empty handle and jumpLength 0,
		// which no node intercepts; its jump pointers are its children.
		if jl != n.left || jr != n.right {
			t.Fatalf("zero-jumpLength node's jump pointers are not its children")
		}
	} else {
		if !jl.intercepts(jlen) {
			t.Fatalf("jumpLeft does not intercept jumpLength %d", jlen)
		}
		if !jr.intercepts(jlen) {
			t.Fatalf("jumpRight does not intercept jumpLength %d", jlen)
		}
	}
	walkJumps[V](t, n.left)
	walkJumps[V](t, n.right)
}

// TestReferenceLeavesAreDescendants checks the structural property this
// package relies on in place of spec.md §3.2's leaf-side back-pointer
// (see node.go's doc comment on the reference field): every internal
// node's reference is a leaf, and that leaf is reachable by descending
// from the internal node along real left/right edges. This is exactly
// the property extent()/handle() depend on for correctness, so a bug
// that left a reference dangling or pointing outside the subtree would
// be caught here even though no leaf->internal back-pointer exists to
// check directly.
func TestReferenceLeavesAreDescendants(t *testing.T) {
	rng := rand.New(rand.NewSource(777))
	tr := New[int]()
	for i := 0; i < 400; i++ {
		tr.Add(randomBits10(rng), i)
	}
	if tr.Size() > 1 {
		checkReferences(t, tr.root)
	}
}

func checkReferences[V any](t *testing.T, n *node[V]) {
	t.Helper()
	if n.isLeaf() {
		return
	}
	if !n.reference.isLeaf() {
		t.Fatalf("internal node's reference is not a leaf")
	}
	if !isDescendant(n, n.reference) {
		t.Fatalf("internal node's reference leaf %v is not one of its descendants", n.reference.key)
	}
	checkReferences(t, n.left)
	checkReferences(t, n.right)
}

func isDescendant[V any](ancestor, leaf *node[V]) bool {
	if ancestor == leaf {
		return true
	}
	if ancestor.isLeaf() {
		return false
	}
	return isDescendant(ancestor.left, leaf) || isDescendant(ancestor.right, leaf)
}
