package zonefile

import (
	"fmt"
	"io"

	"github.com/pepbut/nsd/internal/name"
	"github.com/pepbut/nsd/internal/rdata"
)

// PartialZone is the result of ReadPhase1: the origin and serial, resolved
// without touching the record section, plus the bookkeeping ReadPhase2
// needs to finish the job.
type PartialZone struct {
	Origin name.Name
	Serial uint32

	recordsOffset   int64
	poolPrefix      []name.Label
	poolCount       uint32
	poolResumeOffset int64
}

// ReadPhase1 reads just enough of r to resolve the zone's origin and
// serial: the origin-indices array and serial at the front of the file,
// then the label pool's tail to resolve those particular indices. It
// never reads the (potentially large) record section.
func ReadPhase1(r io.ReadSeeker) (*PartialZone, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	originIdxs, err := readNameIndices(r)
	if err != nil {
		return nil, fmt.Errorf("zonefile: reading origin: %w", err)
	}
	serial, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("zonefile: reading serial: %w", err)
	}
	recordsOffset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if end < backOffsetSize {
		return nil, ErrMalformed
	}
	if _, err := r.Seek(end-backOffsetSize, io.SeekStart); err != nil {
		return nil, err
	}
	backOffset, err := readUint64(r)
	if err != nil {
		return nil, fmt.Errorf("zonefile: reading back-offset: %w", err)
	}
	poolHeaderOffset := end - int64(backOffset)
	if poolHeaderOffset < 0 || poolHeaderOffset > end {
		return nil, ErrMalformed
	}
	if _, err := r.Seek(poolHeaderOffset, io.SeekStart); err != nil {
		return nil, err
	}
	poolCount, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("zonefile: reading pool count: %w", err)
	}

	// The origin's labels are always interned first during the write
	// pass, so their distinct pool indices are always the contiguous
	// range 0..N-1: read exactly N labels off the front of the pool, N
	// being one more than the largest origin index.
	var n uint32
	for _, idx := range originIdxs {
		if idx >= n {
			n = idx + 1
		}
	}
	if n > poolCount {
		return nil, ErrLabelIndexOutOfRange
	}
	prefix, err := readLabels(r, n)
	if err != nil {
		return nil, err
	}
	poolResumeOffset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	origin, err := resolveName(originIdxs, prefix)
	if err != nil {
		return nil, err
	}

	return &PartialZone{
		Origin:           origin,
		Serial:           serial,
		recordsOffset:    recordsOffset,
		poolPrefix:       prefix,
		poolCount:        poolCount,
		poolResumeOffset: poolResumeOffset,
	}, nil
}

// ReadPhase2 finishes loading the zone: resolving the rest of the label
// pool and decoding every record in the record section.
func (pz *PartialZone) ReadPhase2(r io.ReadSeeker) ([]rdata.Record, error) {
	if _, err := r.Seek(pz.poolResumeOffset, io.SeekStart); err != nil {
		return nil, err
	}
	rest, err := readLabels(r, pz.poolCount-uint32(len(pz.poolPrefix)))
	if err != nil {
		return nil, err
	}
	pool := make([]name.Label, 0, pz.poolCount)
	pool = append(pool, pz.poolPrefix...)
	pool = append(pool, rest...)

	if _, err := r.Seek(pz.recordsOffset, io.SeekStart); err != nil {
		return nil, err
	}
	count, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("zonefile: reading record count: %w", err)
	}

	records := make([]rdata.Record, count)
	for i := range records {
		ownerIdxs, err := readNameIndices(r)
		if err != nil {
			return nil, fmt.Errorf("zonefile: reading record %d owner: %w", i, err)
		}
		owner, err := resolveName(ownerIdxs, pool)
		if err != nil {
			return nil, err
		}
		ttl, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("zonefile: reading record %d ttl: %w", i, err)
		}
		rd, err := readRData(r, pool)
		if err != nil {
			return nil, fmt.Errorf("zonefile: reading record %d rdata: %w", i, err)
		}
		records[i] = rdata.Record{Owner: owner, TTL: ttl, RData: rd}
	}
	return records, nil
}

// readRData decodes a single RData value, dispatching on its leading
// 1-byte type tag.
func readRData(r io.Reader, pool []name.Label) (rdata.RData, error) {
	var tagByte [1]byte
	if _, err := io.ReadFull(r, tagByte[:]); err != nil {
		return rdata.RData{}, err
	}
	switch rdata.Type(tagByte[0]) {
	case rdata.TypeA:
		var a [4]byte
		if _, err := io.ReadFull(r, a[:]); err != nil {
			return rdata.RData{}, err
		}
		return rdata.NewA(a), nil
	case rdata.TypeAAAA:
		var a [16]byte
		if _, err := io.ReadFull(r, a[:]); err != nil {
			return rdata.RData{}, err
		}
		return rdata.NewAAAA(a), nil
	case rdata.TypeNS, rdata.TypeCNAME, rdata.TypePTR:
		idxs, err := readNameIndices(r)
		if err != nil {
			return rdata.RData{}, err
		}
		target, err := resolveName(idxs, pool)
		if err != nil {
			return rdata.RData{}, err
		}
		switch rdata.Type(tagByte[0]) {
		case rdata.TypeNS:
			return rdata.NewNS(target), nil
		case rdata.TypeCNAME:
			return rdata.NewCNAME(target), nil
		default:
			return rdata.NewPTR(target), nil
		}
	case rdata.TypeMX:
		pref, err := readUint16(r)
		if err != nil {
			return rdata.RData{}, err
		}
		idxs, err := readNameIndices(r)
		if err != nil {
			return rdata.RData{}, err
		}
		exchange, err := resolveName(idxs, pool)
		if err != nil {
			return rdata.RData{}, err
		}
		return rdata.NewMX(pref, exchange), nil
	case rdata.TypeTXT:
		length, err := readUint32(r)
		if err != nil {
			return rdata.RData{}, err
		}
		buf := make([]byte, length)
		if length > 0 {
			if _, err := io.ReadFull(r, buf); err != nil {
				return rdata.RData{}, err
			}
		}
		return rdata.NewTXT(string(buf)), nil
	case rdata.TypeSRV:
		priority, err := readUint16(r)
		if err != nil {
			return rdata.RData{}, err
		}
		weight, err := readUint16(r)
		if err != nil {
			return rdata.RData{}, err
		}
		port, err := readUint16(r)
		if err != nil {
			return rdata.RData{}, err
		}
		idxs, err := readNameIndices(r)
		if err != nil {
			return rdata.RData{}, err
		}
		target, err := resolveName(idxs, pool)
		if err != nil {
			return rdata.RData{}, err
		}
		return rdata.NewSRV(priority, weight, port, target), nil
	default:
		return rdata.RData{}, fmt.Errorf("%w: tag %d", ErrUnsupportedType, tagByte[0])
	}
}
