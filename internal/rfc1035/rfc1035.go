// Package rfc1035 imports conventional RFC 1035 master-file zone text
// into this server's Zone type, delegating all master-file syntax
// (directives, $TTL, $ORIGIN, parenthesized multi-line records, comments)
// to miekg/dns's zone parser rather than re-implementing an
// already-solved parsing problem.
package rfc1035

import (
	"fmt"
	"io"

	"github.com/miekg/dns"

	"github.com/pepbut/nsd/internal/name"
	"github.com/pepbut/nsd/internal/rdata"
	"github.com/pepbut/nsd/internal/zone"
)

// ErrUnsupportedType is returned when the master file contains a record
// type outside this server's closed set (A, NS, CNAME, PTR, MX, TXT,
// SRV, AAAA; SOA is consumed to seed the zone itself).
var ErrUnsupportedType = fmt.Errorf("rfc1035: unsupported record type")

// Import reads a master-file zone from r and builds a *zone.Zone from
// it. origin is the zone's apex name, used for relative-name expansion
// during parsing; the resulting Zone's origin is the owner name of the
// file's SOA record. fileName is used only in error messages.
func Import(r io.Reader, origin string, fileName string) (*zone.Zone, error) {
	zp := dns.NewZoneParser(r, dns.Fqdn(origin), fileName)

	var z *zone.Zone
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		if err := zp.Err(); err != nil {
			return nil, fmt.Errorf("rfc1035: %w", err)
		}

		if soa, isSOA := rr.(*dns.SOA); isSOA {
			originName, err := name.Parse(soa.Hdr.Name)
			if err != nil {
				return nil, fmt.Errorf("rfc1035: SOA owner: %w", err)
			}
			mname, err := name.Parse(soa.Ns)
			if err != nil {
				return nil, fmt.Errorf("rfc1035: SOA MNAME: %w", err)
			}
			rname, err := name.Parse(soa.Mbox)
			if err != nil {
				return nil, fmt.Errorf("rfc1035: SOA RNAME: %w", err)
			}
			z = zone.New(originName, soa.Serial, mname, rname)
			continue
		}

		rec, err := convertRR(rr)
		if err != nil {
			return nil, err
		}
		if z == nil {
			return nil, fmt.Errorf("rfc1035: %s: zone has no SOA record", fileName)
		}
		z.AddRecord(rec)
	}
	if err := zp.Err(); err != nil {
		return nil, fmt.Errorf("rfc1035: %w", err)
	}
	if z == nil {
		return nil, fmt.Errorf("rfc1035: %s: zone has no SOA record", fileName)
	}
	return z, nil
}

// convertRR maps a parsed dns.RR onto this server's closed RData type
// set, rejecting anything outside it.
func convertRR(rr dns.RR) (rdata.Record, error) {
	owner, err := name.Parse(rr.Header().Name)
	if err != nil {
		return rdata.Record{}, fmt.Errorf("rfc1035: owner name: %w", err)
	}
	ttl := rr.Header().Ttl

	switch v := rr.(type) {
	case *dns.A:
		var a [4]byte
		ip := v.A.To4()
		if ip == nil {
			return rdata.Record{}, fmt.Errorf("rfc1035: %s: not an IPv4 address", v.A)
		}
		copy(a[:], ip)
		return rdata.Record{Owner: owner, TTL: ttl, RData: rdata.NewA(a)}, nil

	case *dns.AAAA:
		var a [16]byte
		ip := v.AAAA.To16()
		if ip == nil {
			return rdata.Record{}, fmt.Errorf("rfc1035: %s: not an IPv6 address", v.AAAA)
		}
		copy(a[:], ip)
		return rdata.Record{Owner: owner, TTL: ttl, RData: rdata.NewAAAA(a)}, nil

	case *dns.NS:
		target, err := name.Parse(v.Ns)
		if err != nil {
			return rdata.Record{}, fmt.Errorf("rfc1035: NS target: %w", err)
		}
		return rdata.Record{Owner: owner, TTL: ttl, RData: rdata.NewNS(target)}, nil

	case *dns.CNAME:
		target, err := name.Parse(v.Target)
		if err != nil {
			return rdata.Record{}, fmt.Errorf("rfc1035: CNAME target: %w", err)
		}
		return rdata.Record{Owner: owner, TTL: ttl, RData: rdata.NewCNAME(target)}, nil

	case *dns.PTR:
		target, err := name.Parse(v.Ptr)
		if err != nil {
			return rdata.Record{}, fmt.Errorf("rfc1035: PTR target: %w", err)
		}
		return rdata.Record{Owner: owner, TTL: ttl, RData: rdata.NewPTR(target)}, nil

	case *dns.MX:
		exchange, err := name.Parse(v.Mx)
		if err != nil {
			return rdata.Record{}, fmt.Errorf("rfc1035: MX exchange: %w", err)
		}
		return rdata.Record{Owner: owner, TTL: ttl, RData: rdata.NewMX(v.Preference, exchange)}, nil

	case *dns.TXT:
		joined := ""
		for _, chunk := range v.Txt {
			joined += chunk
		}
		return rdata.Record{Owner: owner, TTL: ttl, RData: rdata.NewTXT(joined)}, nil

	case *dns.SRV:
		target, err := name.Parse(v.Target)
		if err != nil {
			return rdata.Record{}, fmt.Errorf("rfc1035: SRV target: %w", err)
		}
		return rdata.Record{
			Owner: owner, TTL: ttl,
			RData: rdata.NewSRV(v.Priority, v.Weight, v.Port, target),
		}, nil

	default:
		return rdata.Record{}, fmt.Errorf("%w: %s", ErrUnsupportedType, dns.TypeToString[rr.Header().Rrtype])
	}
}
