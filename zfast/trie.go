package zfast

import (
	"errors"
	"os"

	"github.com/succinct-go/zfasttrie/bitvec"
	"github.com/succinct-go/zfasttrie/handledict"
	"github.com/succinct-go/zfasttrie/internal/errutil"
	"github.com/succinct-go/zfasttrie/signature"
)

// init populates errutil.Debug from ZFAST_DEBUG, the same
// environment-variable-at-init() pattern the teacher's own zfasttrie
// package uses for its DEBUG flag.
func init() {
	if os.Getenv("ZFAST_DEBUG") == "1" {
		errutil.Debug = true
	}
}

// ErrUnsupported is returned by Remove: the structure only ever grows.
// Supporting deletion would mean repairing jump-pointer caches and leaf-list
// splicing symmetrically to Add while also shrinking the handle dictionary,
// which no caller of this package currently needs.
var ErrUnsupported = errors.New("zfast: operation not supported")

const defaultSeed = 0x9747b28c

// Trie is a z-fast trie: a predecessor/successor dictionary over a
// prefix-free set of bit-vector keys. The zero value is not usable; use
// New.
type Trie[V any] struct {
	size   int
	root   *node[V]
	dict   *handledict.Dict[*node[V]]
	hasher signature.Hasher
	leaves *leafList[V]
}

// New returns an empty trie using a fixed default signature seed.
func New[V any]() *Trie[V] {
	return NewSeeded[V](defaultSeed)
}

// NewSeeded returns an empty trie whose handle signatures are computed
// under the given seed. Two tries built with different seeds over the
// same keys are not required to produce identical serialized bytes.
func NewSeeded[V any](seed uint64) *Trie[V] {
	return &Trie[V]{
		dict:   handledict.New[*node[V]](),
		hasher: signature.New(seed),
		leaves: newLeafList[V](),
	}
}

// Size returns the number of keys stored.
func (t *Trie[V]) Size() int { return t.size }

// IsEmpty reports whether the trie holds no keys.
func (t *Trie[V]) IsEmpty() bool { return t.size == 0 }

// Remove is not supported; see ErrUnsupported.
func (t *Trie[V]) Remove(bitvec.Vector) error { return ErrUnsupported }

// Stats reports the sizes of the trie's internal structures, for
// diagnostics and the CLI's -stats flag.
type Stats struct {
	Keys            int
	InternalNodes   int
	HandleDictLen   int
	HandleDictCap   int
	ApproxNodeBytes uint64
}

func (t *Trie[V]) Stats() Stats {
	internal := 0
	if t.size > 1 {
		internal = t.size - 1
	}
	const approxNodeSize = 96 // rough struct size, for humanize.Bytes reporting only
	return Stats{
		Keys:            t.size,
		InternalNodes:   internal,
		HandleDictLen:   t.dict.Len(),
		HandleDictCap:   t.dict.Cap(),
		ApproxNodeBytes: uint64(t.size+internal) * approxNodeSize,
	}
}
