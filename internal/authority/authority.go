// Package authority ties the zone store to the wire codec: it holds the
// set of loaded zones, resolves a query to its authoritative zone by
// longest-suffix match, and drives the decode -> lookup -> encode
// pipeline that turns a raw query datagram into a raw response.
package authority

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pepbut/nsd/internal/name"
	"github.com/pepbut/nsd/internal/rdata"
	"github.com/pepbut/nsd/internal/wire"
	"github.com/pepbut/nsd/internal/zone"
)

// Authority holds every zone this server is authoritative for, keyed by
// origin. It is safe for concurrent use: reads (serving queries) take
// the read lock, zone loads/removals take the write lock.
type Authority struct {
	mu    sync.RWMutex
	zones map[string]*zone.Zone
}

// New creates an empty Authority.
func New() *Authority {
	return &Authority{zones: make(map[string]*zone.Zone)}
}

// LoadZone installs z under its own origin, replacing any existing zone
// with the same origin, unless z's serial is strictly lower than the
// zone already loaded there, in which case the stale reload is ignored.
// Reports whether z was installed.
func (a *Authority) LoadZone(z *zone.Zone) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := z.Origin.Key()
	if existing, ok := a.zones[k]; ok && z.Serial < existing.Serial {
		return false
	}
	a.zones[k] = z
	return true
}

// RemoveZone drops the zone with the given origin, if any. Reports
// whether a zone was removed.
func (a *Authority) RemoveZone(origin name.Name) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := origin.Key()
	if _, ok := a.zones[k]; !ok {
		return false
	}
	delete(a.zones, k)
	return true
}

// Zone returns the zone loaded under the given origin, if any.
func (a *Authority) Zone(origin name.Name) (*zone.Zone, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	z, ok := a.zones[origin.Key()]
	return z, ok
}

// ZoneOrigins returns the origin of every loaded zone, for the
// control-plane list-zones operation.
func (a *Authority) ZoneOrigins() []name.Name {
	a.mu.RLock()
	defer a.mu.RUnlock()
	origins := make([]name.Name, 0, len(a.zones))
	for _, z := range a.zones {
		origins = append(origins, z.Origin)
	}
	return origins
}

// findZone performs longest-suffix search for n: try n, then n with its
// leftmost label popped, and so on up to the root, returning the first
// zone whose origin matches exactly. Caller must hold a.mu.
func (a *Authority) findZone(n name.Name) (*zone.Zone, bool) {
	for {
		if z, ok := a.zones[n.Key()]; ok {
			return z, true
		}
		if n.IsEmpty() {
			return nil, false
		}
		n = n.Pop()
	}
}

// FindZone is the exported, locked form of findZone.
func (a *Authority) FindZone(n name.Name) (*zone.Zone, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.findZone(n)
}

// ProcessMessage is the top-level request handler: decode, find the
// authoritative zone, look up, chase a same-authority CNAME one hop,
// encode. It never panics and never returns an empty slice; encode and
// decode failures degrade to the canonical error replies spec.md
// mandates rather than propagating an error to the caller.
func (a *Authority) ProcessMessage(logger *slog.Logger, msg []byte) []byte {
	query, err := wire.DecodeQuery(msg)
	if err != nil {
		id := queryIDOrZero(msg)
		logger.Debug("decode failed", "error", err)
		return wire.EncodeErr(id, wire.RCodeFormErr)
	}

	result := a.lookup(query.Name, rdata.Type(query.Type))

	resp := &wire.Response{
		ID:            query.ID,
		Authoritative: result.Authoritative(),
		RCode:         result.RCode(),
		Question:      wire.Question{Name: query.Name, Type: query.Type},
		Answers:       result.Answer,
		Authorities:   result.Authority,
		Additional:    result.Additional,
		SOAOwner:      result.SOAOwner,
		SOA:           result.SOA,
	}

	out, err := wire.EncodeResponse(resp)
	if err != nil {
		logger.Error("encode failed", "error", err, "id", query.ID)
		return wire.EncodeErr(query.ID, wire.RCodeServFail)
	}
	return out
}

// lookup finds the authoritative zone for name and resolves the query,
// elevating a CNAMELookup to a full CNAME outcome when the target is
// also locally held.
func (a *Authority) lookup(n name.Name, qtype rdata.Type) zone.LookupResult {
	a.mu.RLock()
	defer a.mu.RUnlock()

	z, ok := a.findZone(n)
	if !ok {
		return zone.LookupResult{Outcome: zone.OutcomeNoZone}
	}

	result := z.Lookup(n, qtype)
	if result.Outcome != zone.OutcomeCNAMELookup {
		return result
	}

	cname := result.Answer[0]
	target := cname.RData.Name
	targetZone, ok := a.findZone(target)
	if !ok {
		return result
	}

	found := targetZone.Lookup(target, qtype)
	auths := targetZone.Lookup(targetZone.Origin, rdata.TypeNS)

	return zone.LookupResult{
		Outcome:   zone.OutcomeCNAME,
		Answer:    append([]rdata.Record{cname}, found.Answer...),
		Authority: auths.Answer,
	}
}

func queryIDOrZero(msg []byte) uint16 {
	if len(msg) < 2 {
		return 0
	}
	return uint16(msg[0])<<8 | uint16(msg[1])
}

// String renders a human-readable summary, used in control-plane and
// log output.
func (a *Authority) String() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return fmt.Sprintf("authority with %d zones loaded", len(a.zones))
}
