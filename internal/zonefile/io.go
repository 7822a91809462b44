package zonefile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pepbut/nsd/internal/name"
)

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// poolBuilder interns Name labels during a write pass, assigning each
// distinct label an index in first-seen order.
type poolBuilder struct {
	index  map[string]uint32
	labels [][]byte
}

func newPoolBuilder() *poolBuilder {
	return &poolBuilder{index: make(map[string]uint32)}
}

func (b *poolBuilder) intern(l name.Label) uint32 {
	key := string(l.Bytes())
	if idx, ok := b.index[key]; ok {
		return idx
	}
	idx := uint32(len(b.labels))
	raw := make([]byte, len(l.Bytes()))
	copy(raw, l.Bytes())
	b.labels = append(b.labels, raw)
	b.index[key] = idx
	return idx
}

// writeNameIndices encodes n as a count-prefixed array of label-pool
// indices, interning any labels not already in the pool.
func writeNameIndices(buf *bytes.Buffer, pool *poolBuilder, n name.Name) {
	labels := n.Labels()
	writeUint16(buf, uint16(len(labels)))
	for _, l := range labels {
		writeUint32(buf, pool.intern(l))
	}
}

// readNameIndices reads a count-prefixed array of label-pool indices.
func readNameIndices(r io.Reader) ([]uint32, error) {
	count, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	idxs := make([]uint32, count)
	for i := range idxs {
		v, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		idxs[i] = v
	}
	return idxs, nil
}

// resolveName maps a slice of pool indices to a Name using the given
// resolved label-pool slice.
func resolveName(idxs []uint32, pool []name.Label) (name.Name, error) {
	labels := make([]name.Label, len(idxs))
	for i, idx := range idxs {
		if int(idx) >= len(pool) {
			return name.Name{}, ErrLabelIndexOutOfRange
		}
		labels[i] = pool[idx]
	}
	return name.FromLabels(labels)
}

// readLabels reads count sequential length-prefixed labels starting at
// the reader's current position.
func readLabels(r io.Reader, count uint32) ([]name.Label, error) {
	labels := make([]name.Label, count)
	for i := range labels {
		var lenByte [1]byte
		if _, err := io.ReadFull(r, lenByte[:]); err != nil {
			return nil, err
		}
		length := int(lenByte[0])
		if length > 63 {
			return nil, ErrLabelTooLong
		}
		raw := make([]byte, length)
		if length > 0 {
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, err
			}
		}
		l, err := name.LabelFromWire(raw)
		if err != nil {
			return nil, fmt.Errorf("zonefile: %w", err)
		}
		labels[i] = l
	}
	return labels, nil
}

// writeLabelPool encodes pool's interned labels as a count-prefixed array
// of length-prefixed byte strings.
func writeLabelPool(buf *bytes.Buffer, pool *poolBuilder) error {
	writeUint32(buf, uint32(len(pool.labels)))
	for _, l := range pool.labels {
		if len(l) > 63 {
			return ErrLabelTooLong
		}
		buf.WriteByte(byte(len(l)))
		buf.Write(l)
	}
	return nil
}
