// Package zone implements the in-memory record store for a single zone:
// a two-level owner-name -> record-type -> record-list map, with the
// Lookup outcomes the authority layer dispatches on.
package zone

import (
	"github.com/pepbut/nsd/internal/name"
	"github.com/pepbut/nsd/internal/rdata"
)

// Outcome is the closed set of results a Lookup can produce.
type Outcome int

// The seven LookupResult variants. Delegated is carried for completeness
// with the wire encoder's section layout but is never produced by Lookup:
// this store has no notion of an NS cut partway through a zone's own
// records, only the zone-to-zone boundary Authority's find_zone already
// resolves, so a subzone is always a distinct Zone rather than a
// delegation point inside this one.
const (
	OutcomeRecords Outcome = iota
	OutcomeCNAME
	OutcomeCNAMELookup
	OutcomeDelegated
	OutcomeNameExists
	OutcomeNoName
	OutcomeNoZone
)

// LookupResult carries everything the wire encoder needs to build a
// response for one of the seven outcomes: which records go in which
// section, and (for NameExists/NoName) the synthetic SOA to emit in the
// authority section instead.
type LookupResult struct {
	Outcome Outcome

	Answer     []rdata.Record
	Authority  []rdata.Record
	Additional []rdata.Record

	SOAOwner name.Name
	SOA      *rdata.SOA
}

// RCode returns the DNS response code this outcome maps to.
func (r LookupResult) RCode() uint8 {
	switch r.Outcome {
	case OutcomeNoName:
		return 3 // NXDOMAIN
	case OutcomeNoZone:
		return 5 // REFUSED
	default:
		return 0 // NOERROR
	}
}

// Authoritative reports whether AA should be set on the response.
func (r LookupResult) Authoritative() bool {
	return r.Outcome != OutcomeNoZone
}

// ownerRecords holds every record at one owner name, keyed by type.
type ownerRecords struct {
	owner  name.Name
	byType map[rdata.Type][]rdata.Record
}

// Zone is a single zone's record store: an origin, a serial, the MNAME
// and RNAME used to materialize its synthetic SOA, and the owner/type
// record map.
type Zone struct {
	Origin name.Name
	Serial uint32
	MName  name.Name
	RName  name.Name

	records map[string]*ownerRecords
}

// New creates an empty zone with the given origin, serial, and SOA
// MNAME/RNAME.
func New(origin name.Name, serial uint32, mname, rname name.Name) *Zone {
	return &Zone{
		Origin:  origin,
		Serial:  serial,
		MName:   mname,
		RName:   rname,
		records: make(map[string]*ownerRecords),
	}
}

// SOA materializes this zone's synthetic start-of-authority record.
func (z *Zone) SOA() rdata.SOA {
	return rdata.NewSOA(z.Origin, z.Serial, z.MName, z.RName)
}

// AddRecord inserts rec into the store, appending to any existing
// (owner, type) record list.
func (z *Zone) AddRecord(rec rdata.Record) {
	k := rec.Owner.Key()
	or, ok := z.records[k]
	if !ok {
		or = &ownerRecords{owner: rec.Owner, byType: make(map[rdata.Type][]rdata.Record)}
		z.records[k] = or
	}
	or.byType[rec.RData.Type] = append(or.byType[rec.RData.Type], rec)
}

// RemoveRecord removes the first byte-equal occurrence of rec, pruning
// the owner's type map and the owner entry itself if they become empty.
// Reports whether a record was found and removed.
func (z *Zone) RemoveRecord(rec rdata.Record) bool {
	k := rec.Owner.Key()
	or, ok := z.records[k]
	if !ok {
		return false
	}
	list := or.byType[rec.RData.Type]
	for i, r := range list {
		if !recordEqual(r, rec) {
			continue
		}
		list = append(list[:i], list[i+1:]...)
		if len(list) == 0 {
			delete(or.byType, rec.RData.Type)
		} else {
			or.byType[rec.RData.Type] = list
		}
		if len(or.byType) == 0 {
			delete(z.records, k)
		}
		return true
	}
	return false
}

// Lookup resolves (name, type) to one of four LookupResult outcomes:
// Records, CNAMELookup, NameExists, or NoName. NoZone is Authority's to
// produce, not Zone's; CNAME is Authority's elevation of a CNAMELookup
// it was able to chase locally; Delegated is never produced.
func (z *Zone) Lookup(n name.Name, qtype rdata.Type) LookupResult {
	or, ok := z.records[n.Key()]
	if !ok {
		soa := z.SOA()
		return LookupResult{Outcome: OutcomeNoName, SOAOwner: z.Origin, SOA: &soa}
	}
	if recs, ok := or.byType[qtype]; ok {
		return LookupResult{Outcome: OutcomeRecords, Answer: recs}
	}
	if cnames, ok := or.byType[rdata.TypeCNAME]; ok && len(cnames) > 0 {
		return LookupResult{Outcome: OutcomeCNAMELookup, Answer: []rdata.Record{cnames[0]}}
	}
	soa := z.SOA()
	return LookupResult{Outcome: OutcomeNameExists, SOAOwner: z.Origin, SOA: &soa}
}

// recordEqual reports whether a and b are the same record: same owner,
// TTL, and RData, compared by value rather than by Go's == (Record
// embeds Name, which holds a slice and so is not comparable with ==).
func recordEqual(a, b rdata.Record) bool {
	if a.TTL != b.TTL {
		return false
	}
	if !name.Equal(a.Owner, b.Owner) {
		return false
	}
	return rdataEqual(a.RData, b.RData)
}

func rdataEqual(a, b rdata.RData) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case rdata.TypeA:
		return a.A == b.A
	case rdata.TypeAAAA:
		return a.AAAA == b.AAAA
	case rdata.TypeNS, rdata.TypeCNAME, rdata.TypePTR:
		return name.Equal(a.Name, b.Name)
	case rdata.TypeMX:
		return a.MXPreference == b.MXPreference && name.Equal(a.MXExchange, b.MXExchange)
	case rdata.TypeTXT:
		return a.TXT == b.TXT
	case rdata.TypeSRV:
		return a.SRVPriority == b.SRVPriority &&
			a.SRVWeight == b.SRVWeight &&
			a.SRVPort == b.SRVPort &&
			name.Equal(a.SRVTarget, b.SRVTarget)
	default:
		return false
	}
}
