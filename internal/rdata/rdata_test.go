package rdata

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pepbut/nsd/internal/name"
)

func TestTypeNumbers(t *testing.T) {
	assert.Equal(t, Type(1), TypeA)
	assert.Equal(t, Type(2), TypeNS)
	assert.Equal(t, Type(5), TypeCNAME)
	assert.Equal(t, Type(12), TypePTR)
	assert.Equal(t, Type(15), TypeMX)
	assert.Equal(t, Type(16), TypeTXT)
	assert.Equal(t, Type(28), TypeAAAA)
	assert.Equal(t, Type(33), TypeSRV)
}

func TestNewAFromIPDispatch(t *testing.T) {
	v4, err := NewAFromIP(net.IPv4(192, 0, 2, 1))
	assert.NoError(t, err)
	assert.Equal(t, TypeA, v4.Type)

	v6, err := NewAFromIP(net.ParseIP("2001:db8::1"))
	assert.NoError(t, err)
	assert.Equal(t, TypeAAAA, v6.Type)
}

func TestNewSOAConstants(t *testing.T) {
	origin := name.MustParse("example.invalid")
	mname := name.MustParse("ns1.example.invalid")
	rname := name.MustParse("hostmaster.example.invalid")
	soa := NewSOA(origin, 42, mname, rname)

	assert.Equal(t, uint32(42), soa.Serial)
	assert.Equal(t, SOARefresh, soa.Refresh)
	assert.Equal(t, SOARetry, soa.Retry)
	assert.Equal(t, SOAExpire, soa.Expire)
	assert.Equal(t, SOAMinimum, soa.Minimum)
	assert.Equal(t, uint32(10000), soa.Refresh)
	assert.Equal(t, uint32(3600), soa.Minimum)
}

func TestRecordConstruction(t *testing.T) {
	owner := name.MustParse("www.example.invalid")
	r := Record{Owner: owner, TTL: 300, RData: NewA([4]byte{192, 0, 2, 1})}
	assert.Equal(t, TypeA, r.RData.Type)
	assert.Equal(t, uint32(300), r.TTL)
}
