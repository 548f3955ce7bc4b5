package zfast

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/succinct-go/zfasttrie/bitvec"
	"github.com/succinct-go/zfasttrie/handledict"
)

// ValueCodec lets Write/Read serialize an arbitrary value type alongside
// each leaf's key.
type ValueCodec[V any] interface {
	Encode(V) []byte
	Decode([]byte) (V, error)
}

// Write serializes the trie as a preorder traversal of the compacted trie:
// one record per node (a 1-byte leaf/internal flag, the node's pathLength =
// extentLength - parentExtentLength, and, for leaves, the key bytes and
// codec-encoded value), left child before right child. Internal nodes
// carry no key bytes of their own — their extent is reconstructed from the
// first leaf encountered beneath them during Read.
//
// pathLength, not the absolute extentLength, is spec.md §4.6/§6's stable
// wire field: encoding the parent-relative delta is what makes the format
// independent of where in the overall key space a subtree happens to sit.
//
// This is spec.md's serialized form; reconstruction there is described as
// four parallel stacks (leafStack, jumpStack+depthStack, segmentStack+
// dirStack) walking the flat record stream back into a node graph. Read
// below achieves the same result with ordinary recursion — ordinary Go
// call-stack frames standing in for those four parallel arrays — since the
// record stream it consumes is produced by (and only ever needs to match)
// this package's own Write.
func (t *Trie[V]) Write(w io.Writer, codec ValueCodec[V]) error {
	if err := binary.Write(w, binary.BigEndian, uint64(t.size)); err != nil {
		return err
	}
	if t.size == 0 {
		return nil
	}
	return writeNode(w, t.root, 0, codec)
}

func writeNode[V any](w io.Writer, n *node[V], parentExtentLength uint32, codec ValueCodec[V]) error {
	flag := byte(0)
	if !n.isLeaf() {
		flag = 1
	}
	if _, err := w.Write([]byte{flag}); err != nil {
		return err
	}
	pathLength := n.extentLength - parentExtentLength
	if err := binary.Write(w, binary.BigEndian, uint64(pathLength)); err != nil {
		return err
	}
	if n.isLeaf() {
		data := n.key.Data()
		if err := binary.Write(w, binary.BigEndian, uint64(len(data))); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		enc := codec.Encode(n.value)
		if err := binary.Write(w, binary.BigEndian, uint64(len(enc))); err != nil {
			return err
		}
		if _, err := w.Write(enc); err != nil {
			return err
		}
		return nil
	}
	if err := writeNode(w, n.left, n.extentLength, codec); err != nil {
		return err
	}
	return writeNode(w, n.right, n.extentLength, codec)
}

// Read replaces t's contents with the trie encoded by a prior Write.
func (t *Trie[V]) Read(r io.Reader, codec ValueCodec[V]) error {
	var count uint64
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return err
	}
	t.dict = handledict.New[*node[V]]()
	t.leaves = newLeafList[V]()
	t.root = nil
	t.size = int(count)
	if count == 0 {
		return nil
	}
	root, err := readNode[V](r, codec, t, 0)
	if err != nil {
		return err
	}
	t.root = root
	return nil
}

func readNode[V any](r io.Reader, codec ValueCodec[V], t *Trie[V], parentExtentLength uint32) (*node[V], error) {
	var flagBuf [1]byte
	if _, err := io.ReadFull(r, flagBuf[:]); err != nil {
		return nil, err
	}
	var pathLength64 uint64
	if err := binary.Read(r, binary.BigEndian, &pathLength64); err != nil {
		return nil, err
	}
	extentLength := parentExtentLength + uint32(pathLength64)

	if flagBuf[0] == 0 {
		var dataLen uint64
		if err := binary.Read(r, binary.BigEndian, &dataLen); err != nil {
			return nil, err
		}
		data := make([]byte, dataLen)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		var valLen uint64
		if err := binary.Read(r, binary.BigEndian, &valLen); err != nil {
			return nil, err
		}
		valBytes := make([]byte, valLen)
		if _, err := io.ReadFull(r, valBytes); err != nil {
			return nil, err
		}
		value, err := codec.Decode(valBytes)
		if err != nil {
			return nil, fmt.Errorf("zfast: decode leaf value: %w", err)
		}
		leaf := &node[V]{
			key:                bitvec.FromBytes(data, extentLength),
			value:              value,
			parentExtentLength: parentExtentLength,
			extentLength:       extentLength,
		}
		leaf.reference = leaf
		leaf.jumpLeft, leaf.jumpRight = leaf, leaf
		t.leaves.addAfter(t.leaves.tail.prev, leaf)
		return leaf, nil
	}

	n := &node[V]{parentExtentLength: parentExtentLength, extentLength: extentLength}
	left, err := readNode[V](r, codec, t, extentLength)
	if err != nil {
		return nil, err
	}
	right, err := readNode[V](r, codec, t, extentLength)
	if err != nil {
		return nil, err
	}
	n.left, n.right = left, right
	if left.isLeaf() {
		n.reference = left
	} else {
		n.reference = left.reference
	}
	n.setJumps()
	t.dict.AddNew(t.sigFor(n), n)
	return n, nil
}
