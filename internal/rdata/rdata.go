// Package rdata defines the resource-record-data tagged variant and the
// Record and synthetic SOA types built on top of it. Class is always IN;
// the type set is the closed set this server supports.
package rdata

import (
	"fmt"
	"net"

	"github.com/pepbut/nsd/internal/name"
)

// Type is a DNS RR wire type number, restricted to the closed set this
// server understands.
type Type uint16

// The supported wire type numbers (RFC 1035/3596/2782).
const (
	TypeA     Type = 1
	TypeNS    Type = 2
	TypeCNAME Type = 5
	TypePTR   Type = 12
	TypeMX    Type = 15
	TypeTXT   Type = 16
	TypeAAAA  Type = 28
	TypeSRV   Type = 33

	// TypeSOA never appears in RData; it tags the synthetic SOA emitted
	// in authority sections.
	TypeSOA Type = 6
)

func (t Type) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypeNS:
		return "NS"
	case TypeCNAME:
		return "CNAME"
	case TypePTR:
		return "PTR"
	case TypeMX:
		return "MX"
	case TypeTXT:
		return "TXT"
	case TypeAAAA:
		return "AAAA"
	case TypeSRV:
		return "SRV"
	case TypeSOA:
		return "SOA"
	default:
		return fmt.Sprintf("TYPE%d", uint16(t))
	}
}

// ClassIN is the only supported record class.
const ClassIN uint16 = 1

// RData is a tagged union over the supported record-data shapes. Exactly
// one of the fields is meaningful for a given Type, selected by the Type
// field.
type RData struct {
	Type Type

	A    [4]byte  // TypeA
	AAAA [16]byte // TypeAAAA

	Name name.Name // TypeNS, TypeCNAME, TypePTR: target Name

	MXPreference uint16    // TypeMX
	MXExchange   name.Name // TypeMX

	TXT string // TypeTXT

	SRVPriority uint16    // TypeSRV
	SRVWeight   uint16    // TypeSRV
	SRVPort     uint16    // TypeSRV
	SRVTarget   name.Name // TypeSRV
}

// NewA builds an A record's RData.
func NewA(addr [4]byte) RData { return RData{Type: TypeA, A: addr} }

// NewAAAA builds an AAAA record's RData.
func NewAAAA(addr [16]byte) RData { return RData{Type: TypeAAAA, AAAA: addr} }

// NewNS builds an NS record's RData.
func NewNS(target name.Name) RData { return RData{Type: TypeNS, Name: target} }

// NewCNAME builds a CNAME record's RData.
func NewCNAME(target name.Name) RData { return RData{Type: TypeCNAME, Name: target} }

// NewPTR builds a PTR record's RData.
func NewPTR(target name.Name) RData { return RData{Type: TypePTR, Name: target} }

// NewMX builds an MX record's RData.
func NewMX(preference uint16, exchange name.Name) RData {
	return RData{Type: TypeMX, MXPreference: preference, MXExchange: exchange}
}

// NewTXT builds a TXT record's RData from a single UTF-8 string; wire
// chunking into 255-byte segments happens at encode time.
func NewTXT(s string) RData { return RData{Type: TypeTXT, TXT: s} }

// NewSRV builds an SRV record's RData.
func NewSRV(priority, weight, port uint16, target name.Name) RData {
	return RData{Type: TypeSRV, SRVPriority: priority, SRVWeight: weight, SRVPort: port, SRVTarget: target}
}

// NewAFromIP builds an A or AAAA RData from a net.IP, choosing the variant
// by address family.
func NewAFromIP(ip net.IP) (RData, error) {
	if v4 := ip.To4(); v4 != nil {
		var a [4]byte
		copy(a[:], v4)
		return NewA(a), nil
	}
	if v6 := ip.To16(); v6 != nil {
		var a [16]byte
		copy(a[:], v6)
		return NewAAAA(a), nil
	}
	return RData{}, fmt.Errorf("rdata: invalid IP address %v", ip)
}

// Record is the (owner, ttl, rdata) triple stored in a Zone. Class is
// always IN.
type Record struct {
	Owner name.Name
	TTL   uint32
	RData RData
}

// SOA deployment constants. These are fixed properties of this running
// instance, not derived from the zone file: the on-disk binary zone
// format deliberately omits them, carrying only origin and serial.
const (
	SOARefresh uint32 = 10000
	SOARetry   uint32 = 2400
	SOAExpire  uint32 = 604800
	SOAMinimum uint32 = 3600
)

// SOA is the synthetic start-of-authority pseudo-record. It is never
// stored; it is materialized on demand from a zone's origin and serial,
// combined with the fixed deployment constants above and the configured
// MNAME/RNAME.
type SOA struct {
	Origin  name.Name
	Serial  uint32
	MName   name.Name
	RName   name.Name
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

// NewSOA materializes the synthetic SOA for a zone's origin and serial
// using the deployment-wide constants and the given MNAME/RNAME.
func NewSOA(origin name.Name, serial uint32, mname, rname name.Name) SOA {
	return SOA{
		Origin:  origin,
		Serial:  serial,
		MName:   mname,
		RName:   rname,
		Refresh: SOARefresh,
		Retry:   SOARetry,
		Expire:  SOAExpire,
		Minimum: SOAMinimum,
	}
}
