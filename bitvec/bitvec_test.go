package bitvec

import (
	"math/rand"
	"testing"
)

func TestFromUint64RoundTrip(t *testing.T) {
	v := FromUint64(0b1011, 4)
	if v.Size() != 4 {
		t.Fatalf("size = %d, want 4", v.Size())
	}
	want := []bool{true, true, false, true} // LSB first
	for i, w := range want {
		if got := v.At(uint32(i)); got != w {
			t.Errorf("At(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestPrefixAndEqual(t *testing.T) {
	v := FromUint64(0b110101, 6)
	p := v.Prefix(3)
	if p.Size() != 3 {
		t.Fatalf("prefix size = %d, want 3", p.Size())
	}
	want := FromUint64(0b101, 3)
	if !p.Equal(want) {
		t.Fatalf("Prefix(3) = %v, want %v", p, want)
	}
	if !v.Equal(v.Prefix(6)) {
		t.Fatal("Prefix(size) should equal self")
	}
}

func TestLCP(t *testing.T) {
	a := FromUint64(0b10110, 5)
	b := FromUint64(0b11110, 5)
	if lcp := a.LCP(b); lcp != 3 {
		t.Fatalf("LCP = %d, want 3", lcp)
	}
	if lcp := a.LCP(a); lcp != 5 {
		t.Fatalf("LCP(self) = %d, want 5", lcp)
	}
	shorter := FromUint64(0b110, 3)
	if lcp := a.LCP(shorter); lcp != 3 {
		t.Fatalf("LCP with shorter prefix-match = %d, want 3", lcp)
	}
}

func TestHasPrefix(t *testing.T) {
	v := FromUint64(0b10110, 5)
	if !v.HasPrefix(FromUint64(0b110, 3)) {
		t.Fatal("expected v to have the given prefix")
	}
	if v.HasPrefix(FromUint64(0b111, 3)) {
		t.Fatal("expected v not to have a mismatched prefix")
	}
}

func TestEqualRange(t *testing.T) {
	a := FromUint64(0b111101010, 9)
	b := FromUint64(0b101101011, 9)
	// bits 1..4 of a: 0101 ; of b: 0101 -- equal
	if !EqualRange(a, b, 1, 5) {
		t.Fatal("expected [1,5) to match")
	}
	if EqualRange(a, b, 0, 9) {
		t.Fatal("did not expect the whole vectors to match")
	}
	if !EqualRange(a, b, 3, 3) {
		t.Fatal("empty range should always match")
	}
}

func TestEqualRangeSpansMultipleWords(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, 20)
	rng.Read(data)
	a := FromBytes(data, 160)
	b := a // copy by value; Vector holds a slice, but EqualRange must not mutate
	if !EqualRange(a, b, 10, 150) {
		t.Fatal("expected ranges to match for identical data")
	}
}

func TestCompareOrdering(t *testing.T) {
	cases := []struct {
		a, b Vector
		want int
	}{
		{FromUint64(0b0, 1), FromUint64(0b1, 1), -1},
		{FromUint64(0b1, 1), FromUint64(0b0, 1), 1},
		{FromUint64(0b10, 2), FromUint64(0b10, 2), 0},
		{FromUint64(0b1, 1), FromUint64(0b11, 2), -1}, // shorter prefix-match is less
	}
	for _, c := range cases {
		if got := c.a.Compare(c.b); sign(got) != sign(c.want) {
			t.Errorf("Compare(%v, %v) = %d, want sign %d", c.a, c.b, got, c.want)
		}
	}
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}

func TestFromBytesDataRoundTrip(t *testing.T) {
	data := []byte{0xAB, 0xCD, 0x0F}
	v := FromBytes(data, 24)
	if got := v.Data(); string(got) != string(data) {
		t.Fatalf("Data() = %x, want %x", got, data)
	}
}

func TestFromISO8859_1IsPrefixFree(t *testing.T) {
	words := []string{"a", "ab", "abc", "b", ""}
	vecs := make([]Vector, len(words))
	for i, w := range words {
		vecs[i] = FromISO8859_1(w)
	}
	for i := range vecs {
		for j := range vecs {
			if i == j {
				continue
			}
			if vecs[i].Size() < vecs[j].Size() && vecs[j].HasPrefix(vecs[i]) {
				t.Fatalf("%q is a prefix of %q, violating prefix-freeness", words[i], words[j])
			}
		}
	}
}

func TestFromUTF16IsPrefixFree(t *testing.T) {
	words := []string{"hi", "hiya", "hz", "日本語"}
	vecs := make([]Vector, len(words))
	for i, w := range words {
		vecs[i] = FromUTF16(w)
	}
	for i := range vecs {
		for j := range vecs {
			if i == j {
				continue
			}
			if vecs[i].Size() < vecs[j].Size() && vecs[j].HasPrefix(vecs[i]) {
				t.Fatalf("%q is a prefix of %q, violating prefix-freeness", words[i], words[j])
			}
		}
	}
}
