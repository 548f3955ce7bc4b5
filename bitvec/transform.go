package bitvec

import "unicode/utf16"

// FromISO8859_1 encodes s as a prefix-free Vector: one byte per rune (low 8
// bits, matching the ISO-8859-1/Latin-1 code point), each preceded by a
// single flag bit set to 1, with one 0 flag bit closing the encoding.
// Fixed-width bytes alone are not prefix-free (one short string's bytes can
// equal another's leading bytes); the flag bit breaks that because it
// differs (0 vs 1) at the exact bit position where the shorter string ends.
// The empty string encodes as the single bit 0. The CLI's
// "-encoding=iso8859-1" flag selects this transform.
func FromISO8859_1(s string) Vector {
	v := New(0)
	for _, r := range []rune(s) {
		v = appendUnit(v, uint16(byte(r)), 8)
	}
	return v.appendBit(false)
}

// FromUTF16 encodes s the same way as FromISO8859_1 but over UTF-16 code
// units (16 bits each), selected by the CLI's "-encoding=utf16" flag.
func FromUTF16(s string) Vector {
	v := New(0)
	for _, u := range utf16.Encode([]rune(s)) {
		v = appendUnit(v, u, 16)
	}
	return v.appendBit(false)
}

func appendUnit(v Vector, unit uint16, width uint32) Vector {
	v = v.appendBit(true)
	for b := uint32(0); b < width; b++ {
		v = v.appendBit(unit&(1<<b) != 0)
	}
	return v
}

// appendBit returns a new Vector with bit appended at the end. Used only by
// the transforms above; the core trie never grows a Vector incrementally.
func (v Vector) appendBit(bit bool) Vector {
	newSize := v.size + 1
	words := make([]uint64, numWords(newSize))
	copy(words, v.words)
	if bit {
		words[v.size/64] |= uint64(1) << (v.size % 64)
	}
	return Vector{words: words, size: newSize}
}
