package authority

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepbut/nsd/internal/name"
	"github.com/pepbut/nsd/internal/rdata"
	"github.com/pepbut/nsd/internal/wire"
	"github.com/pepbut/nsd/internal/zone"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newExampleZone() *zone.Zone {
	origin := name.MustParse("example.invalid")
	mname := name.MustParse("ns1.example.invalid")
	rname := name.MustParse("hostmaster.example.invalid")
	z := zone.New(origin, 1, mname, rname)
	z.AddRecord(rdata.Record{Owner: origin, TTL: 3600, RData: rdata.NewNS(mname)})
	z.AddRecord(rdata.Record{Owner: mname, TTL: 3600, RData: rdata.NewA([4]byte{192, 0, 2, 53})})
	z.AddRecord(rdata.Record{
		Owner: name.MustParse("www.example.invalid"), TTL: 300,
		RData: rdata.NewA([4]byte{192, 0, 2, 1}),
	})
	return z
}

func TestFindZoneLongestSuffix(t *testing.T) {
	a := New()
	a.LoadZone(newExampleZone())

	z, ok := a.FindZone(name.MustParse("www.example.invalid"))
	require.True(t, ok)
	assert.True(t, name.Equal(name.MustParse("example.invalid"), z.Origin))

	_, ok = a.FindZone(name.MustParse("nosuch.invalid"))
	assert.False(t, ok)
}

func TestProcessMessageNoZoneRefused(t *testing.T) {
	a := New()
	msg := []byte{
		0x86, 0x2a, 0x01, 0x20, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x06, 0x67,
		0x6f, 0x6f, 0x67, 0x6c, 0x65, 0x03, 0x63, 0x6f, 0x6d, 0x00, 0x00, 0x01, 0x00, 0x01,
	}
	out := a.ProcessMessage(discardLogger(), msg)
	require.NotEmpty(t, out)
	assert.Equal(t, byte(wire.RCodeRefused), out[3]&0x0F)
	assert.Equal(t, byte(0), out[2]&0b0000_0100)
}

func TestLoadZoneRejectsStaleSerial(t *testing.T) {
	a := New()
	origin := name.MustParse("example.invalid")
	mname := name.MustParse("ns1.example.invalid")
	rname := name.MustParse("hostmaster.example.invalid")

	newer := zone.New(origin, 5, mname, rname)
	assert.True(t, a.LoadZone(newer))

	stale := zone.New(origin, 3, mname, rname)
	assert.False(t, a.LoadZone(stale))

	z, ok := a.Zone(origin)
	require.True(t, ok)
	assert.Equal(t, uint32(5), z.Serial, "stale reload must not replace the newer in-memory zone")
}

func TestLoadZoneAcceptsEqualOrHigherSerial(t *testing.T) {
	a := New()
	origin := name.MustParse("example.invalid")
	mname := name.MustParse("ns1.example.invalid")
	rname := name.MustParse("hostmaster.example.invalid")

	a.LoadZone(zone.New(origin, 5, mname, rname))
	assert.True(t, a.LoadZone(zone.New(origin, 5, mname, rname)))
	assert.True(t, a.LoadZone(zone.New(origin, 6, mname, rname)))

	z, ok := a.Zone(origin)
	require.True(t, ok)
	assert.Equal(t, uint32(6), z.Serial)
}

func TestProcessMessageAnswerFound(t *testing.T) {
	a := New()
	a.LoadZone(newExampleZone())

	msg := buildQuery(t, 0x1234, name.MustParse("www.example.invalid"), 1)
	out := a.ProcessMessage(discardLogger(), msg)
	require.NotEmpty(t, out)
	assert.Equal(t, byte(wire.RCodeNoError), out[3]&0x0F)
	assert.Equal(t, byte(0b0000_0100), out[2]&0b0000_0100)
}

func TestProcessMessageNXDomainWithSOA(t *testing.T) {
	a := New()
	a.LoadZone(newExampleZone())

	msg := buildQuery(t, 0x1, name.MustParse("nosuch.example.invalid"), 1)
	out := a.ProcessMessage(discardLogger(), msg)
	require.NotEmpty(t, out)
	assert.Equal(t, byte(wire.RCodeNXDomain), out[3]&0x0F)
	// NSCOUNT (bytes 8-9) should be 1: the synthetic SOA.
	assert.Equal(t, byte(0x00), out[8])
	assert.Equal(t, byte(0x01), out[9])
}

func TestProcessMessageCNAMEChaseSameAuthority(t *testing.T) {
	a := New()
	z := newExampleZone()
	alias := name.MustParse("alias.example.invalid")
	z.AddRecord(rdata.Record{Owner: alias, TTL: 300, RData: rdata.NewCNAME(name.MustParse("www.example.invalid"))})
	a.LoadZone(z)

	msg := buildQuery(t, 0x2, alias, 1)
	out := a.ProcessMessage(discardLogger(), msg)
	require.NotEmpty(t, out)
	assert.Equal(t, byte(wire.RCodeNoError), out[3]&0x0F)
	// ANCOUNT should be 2: the CNAME plus the resolved A record.
	assert.Equal(t, byte(0x00), out[6])
	assert.Equal(t, byte(0x02), out[7])
}

func TestProcessMessageDecodeFailureFormErr(t *testing.T) {
	a := New()
	out := a.ProcessMessage(discardLogger(), []byte{0x00, 0x01})
	require.Len(t, out, 8)
	assert.Equal(t, byte(wire.RCodeFormErr), out[3])
}

// buildQuery constructs a minimal, valid query message for a single
// question, for use as ProcessMessage input in tests.
func buildQuery(t *testing.T, id uint16, qname name.Name, qtype uint16) []byte {
	t.Helper()
	var buf []byte
	buf = append(buf, byte(id>>8), byte(id))
	buf = append(buf, 0x01, 0x20) // RD=1
	buf = append(buf, 0x00, 0x01) // QDCOUNT=1
	buf = append(buf, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	for _, l := range qname.Labels() {
		buf = append(buf, byte(len(l.Bytes())))
		buf = append(buf, l.Bytes()...)
	}
	buf = append(buf, 0x00)
	buf = append(buf, byte(qtype>>8), byte(qtype))
	buf = append(buf, 0x00, 0x01) // QCLASS=IN
	return buf
}
