// Package handledict implements the signature-indexed handle dictionary
// spec.md §4.1 describes: an open-addressed, linear-probed table mapping a
// node's 64-bit handle signature to the node itself, with a per-slot "dup"
// flag that lets most lookups skip the expensive prefix-verification step.
package handledict

import "github.com/succinct-go/zfasttrie/bitvec"

// Handle is the contract a dictionary entry must satisfy so findPos/findExactPos
// can verify a probabilistic signature match against the real handle.
type Handle interface {
	// HandleLength returns the entry's handle length in bits.
	HandleLength() uint32
	// Key returns a vector of which the entry's handle is a prefix (the
	// node's extent, or equivalently its reference leaf's key).
	Key() bitvec.Vector
}

type slot[E Handle] struct {
	sig    uint64
	entry  E
	filled bool
	dup    bool
}

// Dict is the handle dictionary. The zero value is not usable; use New.
type Dict[E Handle] struct {
	slots []slot[E]
	mask  uint64
	size  int
}

const initialCapacity = 64

// New returns an empty dictionary with the spec's initial capacity of 64.
func New[E Handle]() *Dict[E] {
	return &Dict[E]{
		slots: make([]slot[E], initialCapacity),
		mask:  uint64(initialCapacity - 1),
	}
}

// Len returns the number of entries.
func (d *Dict[E]) Len() int { return d.size }

// Cap returns the current slot-array capacity.
func (d *Dict[E]) Cap() int { return len(d.slots) }

// findFreePos probes from sig's home slot until it finds an empty slot,
// marking dup=true on any occupied slot it passes whose signature equals
// sig exactly (spec.md §4.1's findFreePos).
func (d *Dict[E]) findFreePos(sig uint64) int {
	idx := sig & d.mask
	for d.slots[idx].filled {
		if d.slots[idx].sig == sig {
			d.slots[idx].dup = true
		}
		idx = (idx + 1) & d.mask
	}
	return int(idx)
}

// verify checks whether the entry at pos is the true owner of v's
// prefixLen-bit prefix: its handle length must equal prefixLen, and v must
// share at least prefixLen bits with the entry's key.
func (d *Dict[E]) verify(pos int, v bitvec.Vector, prefixLen uint32) bool {
	e := d.slots[pos].entry
	return e.HandleLength() == prefixLen && v.LCP(e.Key()) >= prefixLen
}

// findPos is the fast lookup: it trusts the dup flag, only paying for
// verify on slots known to have collided. Returns the index of either a
// matching slot or the terminating empty slot — callers distinguish the
// two via Filled.
func (d *Dict[E]) findPos(v bitvec.Vector, prefixLen uint32, sig uint64) int {
	idx := sig & d.mask
	for {
		s := &d.slots[idx]
		if !s.filled {
			return int(idx)
		}
		if s.sig == sig && (!s.dup || d.verify(int(idx), v, prefixLen)) {
			return int(idx)
		}
		idx = (idx + 1) & d.mask
	}
}

// findExactPos is like findPos but always performs the length+lcp
// verification, never trusting the dup shortcut — used for the exact
// lookup mode.
func (d *Dict[E]) findExactPos(v bitvec.Vector, prefixLen uint32, sig uint64) int {
	idx := sig & d.mask
	for {
		s := &d.slots[idx]
		if !s.filled {
			return int(idx)
		}
		if s.sig == sig && d.verify(int(idx), v, prefixLen) {
			return int(idx)
		}
		idx = (idx + 1) & d.mask
	}
}

// Filled reports whether the slot at idx (as returned by findPos/findExactPos)
// holds an entry.
func (d *Dict[E]) Filled(idx int) bool { return d.slots[idx].filled }

// At returns the entry stored at idx; only valid when Filled(idx).
func (d *Dict[E]) At(idx int) E { return d.slots[idx].entry }

// Get returns the entry whose handle matches v's prefixLen-bit prefix
// under signature sig, using exact or fast verification per exact.
func (d *Dict[E]) Get(sig uint64, v bitvec.Vector, prefixLen uint32, exact bool) (E, bool) {
	var idx int
	if exact {
		idx = d.findExactPos(v, prefixLen, sig)
	} else {
		idx = d.findPos(v, prefixLen, sig)
	}
	if !d.slots[idx].filled {
		var zero E
		return zero, false
	}
	return d.slots[idx].entry, true
}

// AddNew inserts entry under signature sig, growing the table first if the
// load factor would exceed 3/4.
func (d *Dict[E]) AddNew(sig uint64, entry E) {
	if (d.size+1)*4 > len(d.slots)*3 {
		d.grow()
	}
	pos := d.findFreePos(sig)
	d.slots[pos] = slot[E]{sig: sig, entry: entry, filled: true}
	d.size++
}

// Remove erases the entry whose handle matches v's prefixLen-bit prefix
// under signature sig, using backward-shift deletion so later lookups along
// the same probe chain are unaffected. A no-op if no such entry exists.
func (d *Dict[E]) Remove(sig uint64, v bitvec.Vector, prefixLen uint32) {
	idx := d.findExactPos(v, prefixLen, sig)
	if !d.slots[idx].filled {
		return
	}
	d.deleteAt(idx)
}

// deleteAt implements the standard backward-shift deletion algorithm for
// linear-probed open addressing: clear the slot, then pull later entries
// back to fill the gap whenever their home position no longer requires
// them to sit past it.
func (d *Dict[E]) deleteAt(idx int) {
	m := len(d.slots)
	d.slots[idx] = slot[E]{}
	d.size--

	i := idx
	j := i
	for {
		j = int((uint64(j) + 1) & d.mask)
		if !d.slots[j].filled {
			return
		}
		k := int(d.slots[j].sig & d.mask)
		if i <= j {
			if i < k && k <= j {
				continue
			}
		} else {
			if i < k || k <= j {
				continue
			}
		}
		d.slots[i] = d.slots[j]
		d.slots[j] = slot[E]{}
		i = j
		_ = m
	}
}

// grow doubles capacity and rehashes every entry into a fresh array,
// recomputing dup flags under the new (larger) mask exactly as a fresh
// sequence of insertions would.
func (d *Dict[E]) grow() {
	old := d.slots
	newCap := len(old) * 2
	d.slots = make([]slot[E], newCap)
	d.mask = uint64(newCap - 1)
	for _, s := range old {
		if !s.filled {
			continue
		}
		pos := d.findFreePos(s.sig)
		d.slots[pos] = slot[E]{sig: s.sig, entry: s.entry, filled: true}
	}
}
