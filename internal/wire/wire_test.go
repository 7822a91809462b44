package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepbut/nsd/internal/name"
	"github.com/pepbut/nsd/internal/rdata"
)

func TestDecodeQueryGoogleComA(t *testing.T) {
	msg := []byte{
		0x86, 0x2a, 0x01, 0x20, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x06, 0x67,
		0x6f, 0x6f, 0x67, 0x6c, 0x65, 0x03, 0x63, 0x6f, 0x6d, 0x00, 0x00, 0x01, 0x00, 0x01,
	}
	q, err := DecodeQuery(msg)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x862a), q.ID)
	assert.Equal(t, uint16(1), q.Type)
	assert.True(t, name.Equal(name.MustParse("google.com"), q.Name))
}

func TestEncodeResponseGoogleComA(t *testing.T) {
	owner := name.MustParse("google.com")
	resp := &Response{
		ID:            0x862a,
		Authoritative: true,
		RCode:         RCodeNoError,
		Question:      Question{Name: owner, Type: 1},
		Answers: []rdata.Record{
			{Owner: owner, TTL: 293, RData: rdata.NewA([4]byte{216, 58, 211, 142})},
		},
	}
	out, err := EncodeResponse(resp)
	require.NoError(t, err)

	expect := []byte{
		0x86, 0x2a, 0x84, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x06, 0x67,
		0x6f, 0x6f, 0x67, 0x6c, 0x65, 0x03, 0x63, 0x6f, 0x6d, 0x00, 0x00, 0x01, 0x00, 0x01,
		0xc0, 0x0c, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x01, 0x25, 0x00, 0x04, 0xd8, 0x3a,
		0xd3, 0x8e,
	}
	assert.Equal(t, expect, out)
}

func TestDecodeRejectsQR(t *testing.T) {
	msg := []byte{
		0x00, 0x01, 0x80, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x01, 0x00, 0x01,
	}
	_, err := DecodeQuery(msg)
	assert.ErrorIs(t, err, ErrUnacceptableHeader)
}

func TestDecodeRejectsNoQuestions(t *testing.T) {
	msg := make([]byte, 12)
	msg[0], msg[1] = 0x00, 0x01
	_, err := DecodeQuery(msg)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestDecodeRejectsUnacceptableClass(t *testing.T) {
	msg := []byte{
		0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x03, 0x77, 0x77, 0x77, 0x00, 0x00, 0x01, 0x00, 0x02, // QCLASS=2 (CS)
	}
	_, err := DecodeQuery(msg)
	assert.ErrorIs(t, err, ErrUnacceptableClass)
}

func TestDecodeCompressionPointerLoop(t *testing.T) {
	msg := make([]byte, 14)
	msg[0], msg[1] = 0x00, 0x01
	msg[5] = 0x01 // QDCOUNT=1
	// name at offset 12 is a pointer to itself
	msg[12] = 0xC0
	msg[13] = 0x0C
	_, err := DecodeQuery(msg)
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestDecodeReservedLabelLength(t *testing.T) {
	msg := []byte{
		0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x40, // reserved length prefix (top bits 01)
	}
	_, err := DecodeQuery(msg)
	assert.ErrorIs(t, err, ErrReservedLabelLength)
}

func TestDecodePreservesWireCase(t *testing.T) {
	msg := []byte{
		0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x03, 0x57, 0x57, 0x57, 0x00, 0x00, 0x01, 0x00, 0x01, // "WWW."
	}
	q, err := DecodeQuery(msg)
	require.NoError(t, err)
	assert.Equal(t, []byte("WWW"), q.Name.Labels()[0].Bytes())
}

func TestCompressionAcrossMultipleRecords(t *testing.T) {
	owner := name.MustParse("www.example.invalid")
	ns1 := name.MustParse("ns1.example.invalid")
	resp := &Response{
		ID:            1,
		Authoritative: true,
		Question:      Question{Name: owner, Type: 1},
		Answers: []rdata.Record{
			{Owner: owner, TTL: 300, RData: rdata.NewA([4]byte{192, 0, 2, 1})},
			{Owner: owner, TTL: 300, RData: rdata.NewNS(ns1)},
		},
	}
	out, err := EncodeResponse(resp)
	require.NoError(t, err)
	// second record's owner name should compress to a pointer (2 bytes)
	// rather than re-encoding "www.example.invalid" in full.
	count := bytes.Count(out, []byte{0xc0})
	assert.GreaterOrEqual(t, count, 2)
}

func TestEncodeErrShape(t *testing.T) {
	out := EncodeErr(0x1234, RCodeFormErr)
	require.Len(t, out, 8)
	assert.Equal(t, byte(0x12), out[0])
	assert.Equal(t, byte(0x34), out[1])
	assert.Equal(t, byte(0b1000_0100), out[2])
	assert.Equal(t, byte(RCodeFormErr), out[3])
}

func TestTCPFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	require.NoError(t, WriteTCPFrame(&buf, payload))
	assert.Equal(t, []byte{0x00, 0x04, 0xde, 0xad, 0xbe, 0xef}, buf.Bytes())

	got, err := ReadTCPFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestTCPFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTCPFrame(&buf, make([]byte, 70000))
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestTXTChunking(t *testing.T) {
	owner := name.MustParse("txt.example.invalid")
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	resp := &Response{
		ID:       1,
		Question: Question{Name: owner, Type: uint16(rdata.TypeTXT)},
		Answers: []rdata.Record{
			{Owner: owner, TTL: 60, RData: rdata.NewTXT(string(long))},
		},
	}
	out, err := EncodeResponse(resp)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestTXTEmptyChunk(t *testing.T) {
	owner := name.MustParse("txt.example.invalid")
	resp := &Response{
		ID:       1,
		Question: Question{Name: owner, Type: uint16(rdata.TypeTXT)},
		Answers: []rdata.Record{
			{Owner: owner, TTL: 60, RData: rdata.NewTXT("")},
		},
	}
	out, err := EncodeResponse(resp)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestNXDomainWithSOA(t *testing.T) {
	owner := name.MustParse("nosuch.example.invalid")
	origin := name.MustParse("example.invalid")
	mname := name.MustParse("ns1.example.invalid")
	rname := name.MustParse("hostmaster.example.invalid")
	soa := rdata.NewSOA(origin, 1, mname, rname)

	resp := &Response{
		ID:            2,
		Authoritative: true,
		RCode:         RCodeNXDomain,
		Question:      Question{Name: owner, Type: 1},
		SOAOwner:      origin,
		SOA:           &soa,
	}
	out, err := EncodeResponse(resp)
	require.NoError(t, err)

	// NSCOUNT field (bytes 8-9) must be 1
	assert.Equal(t, byte(0x00), out[8])
	assert.Equal(t, byte(0x01), out[9])
	assert.Equal(t, byte(RCodeNXDomain), out[3]&0x0F)
}
