package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/pepbut/nsd/internal/name"
	"github.com/pepbut/nsd/internal/rdata"
)

// Question is the decoded question section, echoed verbatim into a
// response.
type Question struct {
	Name name.Name
	Type uint16
}

// Response describes everything needed to encode one DNS response
// message. The answer/authority/additional sections are built by the
// authority layer from a zone lookup outcome; this package only knows how
// to serialize them.
type Response struct {
	ID            uint16
	Authoritative bool
	RCode         uint8
	Question      Question

	Answers     []rdata.Record
	Authorities []rdata.Record
	Additional  []rdata.Record

	// SOAOwner/SOA, when SOA is non-nil, append a synthetic SOA record to
	// the authority section (counted in NSCOUNT) after Authorities. Its
	// TTL is the SOA's MINIMUM field, per the conventional negative-
	// caching TTL rule.
	SOAOwner name.Name
	SOA      *rdata.SOA
}

// encoder accumulates response bytes and a message-scope name-compression
// table mapping a case-folded name suffix to its first write position.
type encoder struct {
	buf   bytes.Buffer
	table map[string]uint16
}

func newEncoder() *encoder {
	return &encoder{table: make(map[string]uint16)}
}

func suffixKey(labels []name.Label) string {
	var b bytes.Buffer
	for _, l := range labels {
		folded := l.Folded()
		b.WriteByte(byte(len(folded)))
		b.Write(folded)
	}
	return b.String()
}

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

// writeName emits n, replacing the longest already-seen suffix with a
// 2-byte compression pointer, and records every new suffix it emits
// (while the buffer position still fits in 14 bits) against its write
// position.
func (e *encoder) writeName(n name.Name) {
	labels := n.Labels()

	matchIdx := -1
	var matchOff uint16
	for i := 0; i < len(labels); i++ {
		key := suffixKey(labels[i:])
		if off, ok := e.table[key]; ok {
			matchIdx = i
			matchOff = off
			break
		}
	}

	end := len(labels)
	if matchIdx >= 0 {
		end = matchIdx
	}

	for i := 0; i < end; i++ {
		pos := e.buf.Len()
		if pos <= compressionOffsetMax {
			e.table[suffixKey(labels[i:])] = uint16(pos)
		}
		l := labels[i]
		e.buf.WriteByte(byte(len(l.Bytes())))
		e.buf.Write(l.Bytes())
	}

	if matchIdx >= 0 {
		e.buf.WriteByte(0xC0 | byte(matchOff>>8))
		e.buf.WriteByte(byte(matchOff))
	} else {
		e.buf.WriteByte(0)
	}
}

func writeTXT(buf *bytes.Buffer, s string) {
	b := []byte(s)
	if len(b) == 0 {
		buf.WriteByte(0)
		return
	}
	for len(b) > 0 {
		n := len(b)
		if n > 255 {
			n = 255
		}
		buf.WriteByte(byte(n))
		buf.Write(b[:n])
		b = b[n:]
	}
}

// writeRecord emits one resource record: owner (compressed), type, class,
// TTL, RDLENGTH, then RDATA with the RDLENGTH patched in after the fact.
func (e *encoder) writeRecord(rec rdata.Record) error {
	e.writeName(rec.Owner)
	writeUint16(&e.buf, uint16(rec.RData.Type))
	writeUint16(&e.buf, rdata.ClassIN)
	writeUint32(&e.buf, rec.TTL)

	lenPos := e.buf.Len()
	e.buf.Write([]byte{0, 0})
	start := e.buf.Len()

	switch rec.RData.Type {
	case rdata.TypeA:
		e.buf.Write(rec.RData.A[:])
	case rdata.TypeAAAA:
		e.buf.Write(rec.RData.AAAA[:])
	case rdata.TypeNS, rdata.TypeCNAME, rdata.TypePTR:
		e.writeName(rec.RData.Name)
	case rdata.TypeMX:
		writeUint16(&e.buf, rec.RData.MXPreference)
		e.writeName(rec.RData.MXExchange)
	case rdata.TypeTXT:
		writeTXT(&e.buf, rec.RData.TXT)
	case rdata.TypeSRV:
		writeUint16(&e.buf, rec.RData.SRVPriority)
		writeUint16(&e.buf, rec.RData.SRVWeight)
		writeUint16(&e.buf, rec.RData.SRVPort)
		e.writeName(rec.RData.SRVTarget)
	}

	rdlen := e.buf.Len() - start
	out := e.buf.Bytes()
	binary.BigEndian.PutUint16(out[lenPos:lenPos+2], uint16(rdlen))
	return nil
}

// writeSOA emits the synthetic SOA pseudo-record for owner, using ttl as
// its TTL (conventionally the SOA MINIMUM field).
func (e *encoder) writeSOA(owner name.Name, ttl uint32, soa rdata.SOA) {
	e.writeName(owner)
	writeUint16(&e.buf, uint16(rdata.TypeSOA))
	writeUint16(&e.buf, rdata.ClassIN)
	writeUint32(&e.buf, ttl)

	lenPos := e.buf.Len()
	e.buf.Write([]byte{0, 0})
	start := e.buf.Len()

	e.writeName(soa.MName)
	e.writeName(soa.RName)
	writeUint32(&e.buf, soa.Serial)
	writeUint32(&e.buf, soa.Refresh)
	writeUint32(&e.buf, soa.Retry)
	writeUint32(&e.buf, soa.Expire)
	writeUint32(&e.buf, soa.Minimum)

	rdlen := e.buf.Len() - start
	out := e.buf.Bytes()
	binary.BigEndian.PutUint16(out[lenPos:lenPos+2], uint16(rdlen))
}

// EncodeResponse serializes r into a complete DNS response message. It
// returns ErrMessageTooLarge if the result would exceed 65535 bytes; the
// authority layer turns that into a SERVFAIL reply via EncodeErr.
func EncodeResponse(r *Response) ([]byte, error) {
	e := newEncoder()

	writeUint16(&e.buf, r.ID)

	flags1 := byte(0b1000_0000)
	if r.Authoritative {
		flags1 |= 0b0000_0100
	}
	e.buf.WriteByte(flags1)
	e.buf.WriteByte(r.RCode & 0x0F)

	nscount := len(r.Authorities)
	if r.SOA != nil {
		nscount++
	}

	writeUint16(&e.buf, 1) // QDCOUNT
	writeUint16(&e.buf, uint16(len(r.Answers)))
	writeUint16(&e.buf, uint16(nscount))
	writeUint16(&e.buf, uint16(len(r.Additional)))

	e.writeName(r.Question.Name)
	writeUint16(&e.buf, r.Question.Type)
	writeUint16(&e.buf, rdata.ClassIN)

	for _, rec := range r.Answers {
		if err := e.writeRecord(rec); err != nil {
			return nil, err
		}
	}
	for _, rec := range r.Authorities {
		if err := e.writeRecord(rec); err != nil {
			return nil, err
		}
	}
	if r.SOA != nil {
		e.writeSOA(r.SOAOwner, r.SOA.Minimum, *r.SOA)
	}
	for _, rec := range r.Additional {
		if err := e.writeRecord(rec); err != nil {
			return nil, err
		}
	}

	if e.buf.Len() > maxMessageSize {
		return nil, ErrMessageTooLarge
	}
	return e.buf.Bytes(), nil
}
