package zonefile

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pepbut/nsd/internal/name"
	"github.com/pepbut/nsd/internal/rdata"
)

// Write serializes a zone (origin, serial, and records) in the binary
// zone-file format. Labels are interned once into a pool written after
// the record section; the origin is always interned first, so its N
// distinct labels always take the contiguous pool indices 0..N-1.
func Write(w io.Writer, origin name.Name, serial uint32, records []rdata.Record) error {
	pool := newPoolBuilder()

	var body bytes.Buffer
	writeNameIndices(&body, pool, origin)
	writeUint32(&body, serial)

	writeUint32(&body, uint32(len(records)))
	for _, rec := range records {
		writeNameIndices(&body, pool, rec.Owner)
		writeUint32(&body, rec.TTL)
		if err := writeRData(&body, pool, rec.RData); err != nil {
			return err
		}
	}

	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}

	var poolBuf bytes.Buffer
	if err := writeLabelPool(&poolBuf, pool); err != nil {
		return err
	}
	if _, err := w.Write(poolBuf.Bytes()); err != nil {
		return err
	}

	backOffset := uint64(poolBuf.Len() + backOffsetSize)
	var tail bytes.Buffer
	writeUint64(&tail, backOffset)
	_, err := w.Write(tail.Bytes())
	return err
}

// writeRData encodes a single RData value as a 1-byte type tag followed
// by its type-specific payload.
func writeRData(buf *bytes.Buffer, pool *poolBuilder, rd rdata.RData) error {
	buf.WriteByte(byte(rd.Type))
	switch rd.Type {
	case rdata.TypeA:
		buf.Write(rd.A[:])
	case rdata.TypeAAAA:
		buf.Write(rd.AAAA[:])
	case rdata.TypeNS, rdata.TypeCNAME, rdata.TypePTR:
		writeNameIndices(buf, pool, rd.Name)
	case rdata.TypeMX:
		writeUint16(buf, rd.MXPreference)
		writeNameIndices(buf, pool, rd.MXExchange)
	case rdata.TypeTXT:
		writeUint32(buf, uint32(len(rd.TXT)))
		buf.WriteString(rd.TXT)
	case rdata.TypeSRV:
		writeUint16(buf, rd.SRVPriority)
		writeUint16(buf, rd.SRVWeight)
		writeUint16(buf, rd.SRVPort)
		writeNameIndices(buf, pool, rd.SRVTarget)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, rd.Type)
	}
	return nil
}
