package wire

import (
	"encoding/binary"

	"github.com/pepbut/nsd/internal/name"
)

// Query is a decoded DNS query message: the header ID, the first
// question's name and type. Further questions (if QDCOUNT > 1) and any
// answer/authority/additional records present in the datagram are never
// examined — this server only ever receives queries it generates answers
// for, not messages it forwards.
type Query struct {
	ID   uint16
	Name name.Name
	Type uint16
}

// DecodeQuery decodes a query message from the start of a datagram or
// TCP frame. It rejects anything whose header or first question isn't a
// well-formed IN-class query per RFC 1035 §4.1.1/§4.1.2; only the first
// question is decoded.
func DecodeQuery(msg []byte) (*Query, error) {
	if len(msg) < headerSize {
		return nil, ErrMessageTooShort
	}

	id := binary.BigEndian.Uint16(msg[0:2])

	// QR, OPCODE, and TC must all be zero; mask 0b1111_1010 isolates them
	// within the third byte of the message (RFC 1035 §4.1.1).
	if msg[2]&0b1111_1010 != 0 {
		return nil, ErrUnacceptableHeader
	}
	// AA and RD in the third byte, and the whole fourth byte (RA/Z/RCODE),
	// are ignored for an inbound query.

	qdcount := binary.BigEndian.Uint16(msg[4:6])
	if qdcount < 1 {
		return nil, ErrNoQuestions
	}
	// ANCOUNT, NSCOUNT, ARCOUNT (6 bytes) are not consulted; only the
	// first question is decoded.

	qname, offset, err := decodeName(msg, headerSize)
	if err != nil {
		return nil, err
	}

	if offset+4 > len(msg) {
		return nil, ErrMessageTooShort
	}
	qtype := binary.BigEndian.Uint16(msg[offset : offset+2])
	qclass := binary.BigEndian.Uint16(msg[offset+2 : offset+4])
	if qclass != 1 {
		return nil, ErrUnacceptableClass
	}

	return &Query{ID: id, Name: qname, Type: qtype}, nil
}

// decodeName reads a domain name starting at start, following compression
// pointers, and returns the decoded name along with the offset of the
// first byte past the name as encountered linearly in the message (i.e.
// immediately past the first pointer, if one was followed). Decoded
// labels preserve the case found on the wire.
func decodeName(msg []byte, start int) (name.Name, int, error) {
	var labels [][]byte
	visited := make(map[int]bool)
	depth := 0
	offset := start
	origOffset := start
	jumped := false
	endOffset := start

	for {
		if depth > maxCompressionDepth {
			return name.Name{}, 0, ErrCompressionLimit
		}
		if offset >= len(msg) {
			return name.Name{}, 0, ErrMessageTooShort
		}

		length := int(msg[offset])

		if length&compressionPtrMask == compressionPtrMask {
			if offset+1 >= len(msg) {
				return name.Name{}, 0, ErrMessageTooShort
			}
			ptr := int(binary.BigEndian.Uint16(msg[offset:offset+2]) & compressionOffsetMax)
			if visited[ptr] {
				return name.Name{}, 0, ErrCompressionLimit
			}
			visited[ptr] = true
			if ptr >= len(msg) || ptr >= origOffset {
				return name.Name{}, 0, ErrInvalidPointer
			}
			if !jumped {
				endOffset = offset + 2
				jumped = true
			}
			offset = ptr
			depth++
			continue
		}

		if length&compressionPtrMask != 0 {
			// Top two bits 01 or 10 are reserved.
			return name.Name{}, 0, ErrReservedLabelLength
		}

		if length == 0 {
			if !jumped {
				endOffset = offset + 1
			}
			break
		}

		if length > maxLabelLength {
			return name.Name{}, 0, name.ErrLabelTooLong
		}

		offset++
		if offset+length > len(msg) {
			return name.Name{}, 0, ErrMessageTooShort
		}

		label := make([]byte, length)
		copy(label, msg[offset:offset+length])
		labels = append(labels, label)
		offset += length
	}

	n, err := name.FromWireLabels(labels)
	if err != nil {
		return name.Name{}, 0, err
	}
	return n, endOffset, nil
}
