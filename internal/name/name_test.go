package name

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	n, err := Parse("www.example.com.")
	require.NoError(t, err)
	assert.Equal(t, 3, len(n.Labels()))
	assert.Equal(t, "www.example.com", n.String())
}

func TestParseNoTrailingDot(t *testing.T) {
	n, err := Parse("example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", n.String())
}

func TestParseRoot(t *testing.T) {
	for _, s := range []string{"", "."} {
		n, err := Parse(s)
		require.NoError(t, err)
		assert.True(t, n.IsEmpty())
		assert.Equal(t, "", n.String())
	}
}

func TestParseEmptyLabel(t *testing.T) {
	_, err := Parse("www..example.com")
	assert.ErrorIs(t, err, ErrEmptyLabel)
}

func TestParseLowercases(t *testing.T) {
	n, err := Parse("WWW.Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", n.String())
}

func TestParseServiceLabel(t *testing.T) {
	n, err := Parse("_sip._tcp.example.com")
	require.NoError(t, err)
	assert.Equal(t, "_sip._tcp.example.com", n.String())
}

func TestParseLabelTooLong(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	_, err := Parse(string(long) + ".com")
	assert.ErrorIs(t, err, ErrLabelTooLong)
}

func TestNameTooLong(t *testing.T) {
	label := make([]byte, 63)
	for i := range label {
		label[i] = 'a'
	}
	s := ""
	for i := 0; i < 5; i++ {
		s += string(label) + "."
	}
	_, err := Parse(s + "com")
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestEqualCaseInsensitive(t *testing.T) {
	a := MustParse("www.example.com")
	b, err := FromWireLabels([][]byte{[]byte("WWW"), []byte("Example"), []byte("COM")})
	require.NoError(t, err)
	assert.True(t, Equal(a, b))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestEqualDifferentLength(t *testing.T) {
	a := MustParse("www.example.com")
	b := MustParse("example.com")
	assert.False(t, Equal(a, b))
}

func TestIsSubdomainOf(t *testing.T) {
	origin := MustParse("example.com")
	sub := MustParse("www.example.com")
	assert.True(t, IsSubdomainOf(sub, origin))
	assert.True(t, IsSubdomainOf(origin, origin))
	assert.False(t, IsSubdomainOf(origin, sub))

	other := MustParse("example.net")
	assert.False(t, IsSubdomainOf(other, origin))
}

func TestPop(t *testing.T) {
	n := MustParse("www.example.com")
	assert.Equal(t, "example.com", n.Pop().String())
	assert.Equal(t, "com", n.Pop().Pop().String())
	assert.True(t, n.Pop().Pop().Pop().IsEmpty())
}

func TestExtend(t *testing.T) {
	rel := MustParse("www")
	origin := MustParse("example.com")
	full := rel.Extend(origin)
	assert.Equal(t, "www.example.com", full.String())
}

func TestFromIPv4(t *testing.T) {
	n := FromIPv4([4]byte{192, 0, 2, 42})
	assert.Equal(t, "42.2.0.192.in-addr.arpa", n.String())
}

func TestFromIPv6(t *testing.T) {
	ip := [16]byte{0x20, 0x01, 0x0d, 0xb8}
	n := FromIPv6(ip)
	labels := n.Labels()
	// 32 nibble labels + ip6 + arpa
	assert.Equal(t, 34, len(labels))
	// low nibble of the rightmost octet first: octet 15 is 0x00, so the
	// first label is "0"; the low nibble of octet 3 (0xb8) is label 24.
	assert.Equal(t, "0", labels[0].String())
	assert.Equal(t, "8", labels[24].String())
	assert.Equal(t, "ip6", labels[32].String())
	assert.Equal(t, "arpa", labels[33].String())
}

func TestEncodedLen(t *testing.T) {
	n := MustParse("www.example.com")
	// 3("www")+1 + 7("example")+1 + 3("com")+1 + 1(root) = 17
	assert.Equal(t, 17, n.EncodedLen())
	assert.Equal(t, 1, Root.EncodedLen())
}

func TestFromWireLabelsPreservesCase(t *testing.T) {
	n, err := FromWireLabels([][]byte{[]byte("WwW"), []byte("example"), []byte("com")})
	require.NoError(t, err)
	assert.Equal(t, []byte("WwW"), n.Labels()[0].Bytes())
}

func TestIDNAPunycode(t *testing.T) {
	n, err := Parse("münchen.example.")
	require.NoError(t, err)
	assert.Contains(t, string(n.Labels()[0].Bytes()), "xn--")
	assert.Equal(t, "münchen.example", n.String())
}
