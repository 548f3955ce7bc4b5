// Command zfasttrie builds a z-fast trie from newline-separated strings and
// writes it out in the package zfast serialized form. It is the CLI
// front-end spec.md §6 describes without specifying: the core (bitvec,
// signature, handledict, zfast, gf2) has no dependency on it.
//
// Flag handling follows the teacher's own CLI
// (mmph/paramselect/cmd/psig_study/main.go): plain stdlib flag, no
// cobra/viper.
package main

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/succinct-go/zfasttrie/bitvec"
	"github.com/succinct-go/zfasttrie/zfast"
)

// lineCodec encodes the 1-based position, counted over non-blank input
// lines, of the last line that produced a key, so a deserialized trie can
// still report where in the input a given key came from.
type lineCodec struct{}

func (lineCodec) Encode(v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return buf[:]
}

func (lineCodec) Decode(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("zfasttrie: malformed line-number record (%d bytes)", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}

func main() {
	var (
		inPath   = flag.String("in", "", "input file of newline-separated strings (default: stdin)")
		outPath  = flag.String("out", "", "output file for the serialized trie (required)")
		gz       = flag.Bool("gzip", false, "treat the input as gzip-compressed")
		encoding = flag.String("encoding", "iso8859-1", "prefix-free string transform: iso8859-1 or utf16 (ignored with -raw)")
		raw      = flag.Bool("raw", false, "treat each input line as a raw bit string of '0'/'1' characters instead of applying a string transform")
		stats    = flag.Bool("stats", false, "print trie size statistics to stderr after building")
	)
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "zfasttrie: -out is required")
		flag.Usage()
		os.Exit(2)
	}

	transform, err := selectTransform(*encoding, *raw)
	if err != nil {
		log.Fatalf("zfasttrie: %v", err)
	}

	in, closeIn, err := openInput(*inPath, *gz)
	if err != nil {
		log.Fatalf("zfasttrie: %v", err)
	}
	defer closeIn()

	trie, built, err := build(in, transform)
	if err != nil {
		log.Fatalf("zfasttrie: %v", err)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("zfasttrie: creating %s: %v", *outPath, err)
	}
	defer out.Close()

	if err := trie.Write(out, lineCodec{}); err != nil {
		log.Fatalf("zfasttrie: writing %s: %v", *outPath, err)
	}

	if *stats {
		s := trie.Stats()
		fmt.Fprintf(os.Stderr, "lines read: %d, keys stored: %d (%d duplicate/skipped)\n",
			built, s.Keys, built-s.Keys)
		fmt.Fprintf(os.Stderr, "internal nodes: %d, handle dict: %d/%d slots\n",
			s.InternalNodes, s.HandleDictLen, s.HandleDictCap)
		fmt.Fprintf(os.Stderr, "approx node-arena size: %s\n", humanize.Bytes(s.ApproxNodeBytes))
	}
}

// selectTransform returns the string -> bit-vector function the CLI flags
// select: a prefix-free byte/rune encoding, or (under -raw) a direct '0'/'1'
// character parse with no transform at all.
func selectTransform(encoding string, raw bool) (func(string) (bitvec.Vector, error), error) {
	if raw {
		return parseRawBits, nil
	}
	switch encoding {
	case "iso8859-1":
		return func(s string) (bitvec.Vector, error) { return bitvec.FromISO8859_1(s), nil }, nil
	case "utf16":
		return func(s string) (bitvec.Vector, error) { return bitvec.FromUTF16(s), nil }, nil
	default:
		return nil, fmt.Errorf("unknown -encoding %q (want iso8859-1 or utf16)", encoding)
	}
}

func parseRawBits(s string) (bitvec.Vector, error) {
	v := bitvec.New(uint32(len(s)))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			v = setBit(v, uint32(i))
		default:
			return bitvec.Vector{}, fmt.Errorf("raw line %q: byte %d is not '0' or '1'", s, i)
		}
	}
	return v, nil
}

// setBit returns a copy of v with bit i set; -raw inputs are typically
// short (one token per header/leaf), so rebuilding via Data/FromBytes is
// not worth the complexity a mutable bit-vector constructor would add.
func setBit(v bitvec.Vector, i uint32) bitvec.Vector {
	data := v.Data()
	data[i/8] |= 1 << (i % 8)
	return bitvec.FromBytes(data, v.Size())
}

func openInput(path string, gz bool) (io.Reader, func() error, error) {
	var f *os.File
	var err error
	if path == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s: %w", path, err)
		}
	}
	closer := func() error {
		if f == os.Stdin {
			return nil
		}
		return f.Close()
	}
	if !gz {
		return f, closer, nil
	}
	gr, err := gzip.NewReader(f)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	return gr, func() error {
		gr.Close()
		return closer()
	}, nil
}

// build streams lines from r, transforming and inserting each into a fresh
// trie; it returns the trie and the number of non-blank lines read
// (including duplicates the trie silently collapses).
func build(r io.Reader, transform func(string) (bitvec.Vector, error)) (*zfast.Trie[uint32], int, error) {
	trie := zfast.New[uint32]()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	bar := progressbar.Default(-1, "building trie")
	lineNo := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lineNo++
		v, err := transform(line)
		if err != nil {
			return nil, lineNo, fmt.Errorf("line %d: %w", lineNo, err)
		}
		trie.Add(v, uint32(lineNo))
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	if err := scanner.Err(); err != nil {
		return nil, lineNo, fmt.Errorf("reading input: %w", err)
	}
	return trie, lineNo, nil
}
