// Package name implements the domain-name value type: fully-qualified
// names as ordered sequences of byte labels, with case-insensitive
// equality, UTS #46 normalization on parse, Unicode display, and helpers
// for building reverse-DNS names from IP addresses.
package name

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dchest/siphash"
	"golang.org/x/net/idna"
)

// Errors returned while parsing a Name or Label.
var (
	ErrEmptyLabel   = errors.New("name: empty label")
	ErrInvalidLabel = errors.New("name: invalid label")
	ErrLabelTooLong = errors.New("name: label too long")
	ErrNameTooLong  = errors.New("name: encoded name exceeds 255 octets")
)

const (
	maxLabelLength = 63
	maxNameLength  = 255
)

// profile implements the UTS #46 "to-ASCII"/"to-Unicode" processing this
// package's parse and display paths rely on. UseSTD3ASCIIRules,
// TransitionalProcessing, and VerifyDnsLength are all enabled per spec.
var profile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(true),
	idna.Transitional(true),
	idna.VerifyDNSLength(true),
)

// hashKey seeds the SipHash-2-4 instance used to fingerprint Name values.
// It has no security purpose (there is no adversary guessing Name
// hashes); it exists only to seed a well-distributed, non-cryptographic
// hash.
var hashKey = [16]byte{'p', 'e', 'p', 'b', 'u', 't', '-', 'n', 's', 'd', '-', 'n', 'a', 'm', 'e', 0}

// Label is an immutable byte sequence of length 1-63 forming one
// component of a domain name.
type Label struct {
	raw    []byte // bytes as encountered (wire case, or canonical ASCII for parsed labels)
	folded []byte // ASCII-lowercased copy of raw, used for comparison and hashing
}

func foldASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

// isServiceLabel reports whether s is a service label ("_sip", "_tcp",
// ...): a leading underscore followed by alphanumerics or hyphens. Service
// labels skip UTS #46 and are only lowercased.
func isServiceLabel(s string) bool {
	if len(s) < 2 || s[0] != '_' {
		return false
	}
	for _, r := range s[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
			return false
		}
	}
	return true
}

// ParseLabel validates and normalizes a single textual label.
func ParseLabel(s string) (Label, error) {
	if s == "" {
		return Label{}, ErrEmptyLabel
	}

	var canonical string
	if isServiceLabel(s) {
		canonical = strings.ToLower(s)
	} else {
		ascii, err := profile.ToASCII(s)
		if err != nil {
			// VerifyDNSLength rejects an over-long label as a generic
			// idna error; report that case as ErrLabelTooLong.
			noLen := idna.New(idna.MapForLookup(), idna.StrictDomainName(true), idna.Transitional(true))
			if long, lerr := noLen.ToASCII(s); lerr == nil && len(long) > maxLabelLength {
				return Label{}, ErrLabelTooLong
			}
			return Label{}, fmt.Errorf("%w: %v", ErrInvalidLabel, err)
		}
		canonical = ascii
	}

	if len(canonical) == 0 {
		return Label{}, ErrEmptyLabel
	}
	if len(canonical) > maxLabelLength {
		return Label{}, ErrLabelTooLong
	}

	raw := []byte(canonical)
	return Label{raw: raw, folded: foldASCII(raw)}, nil
}

// LabelFromWire constructs a Label from bytes read directly off the wire.
// Wire-decoded labels preserve the case found on the wire; they are not
// run through UTS #46 (the wire format only ever carries ASCII/punycode).
func LabelFromWire(b []byte) (Label, error) {
	if len(b) == 0 {
		return Label{}, ErrEmptyLabel
	}
	if len(b) > maxLabelLength {
		return Label{}, ErrLabelTooLong
	}
	raw := make([]byte, len(b))
	copy(raw, b)
	return Label{raw: raw, folded: foldASCII(raw)}, nil
}

// Bytes returns the label's raw (as-stored) byte representation.
func (l Label) Bytes() []byte { return l.raw }

// Folded returns the label's ASCII-lowercased byte representation, used
// for case-insensitive comparison, hashing, and compression-table keys.
func (l Label) Folded() []byte { return l.folded }

// String renders the label for display, converting canonical ASCII/punycode
// back to Unicode via UTS #46 "to-Unicode". Service labels and labels that
// fail to convert (e.g. raw wire-case labels that aren't valid punycode)
// are returned as their raw ASCII form.
func (l Label) String() string {
	if len(l.raw) > 0 && l.raw[0] == '_' {
		return string(l.raw)
	}
	u, err := profile.ToUnicode(string(l.raw))
	if err != nil {
		return string(l.raw)
	}
	return u
}

func (l Label) equalFold(o Label) bool {
	if len(l.folded) != len(o.folded) {
		return false
	}
	for i := range l.folded {
		if l.folded[i] != o.folded[i] {
			return false
		}
	}
	return true
}

// Name is an ordered, leaf-first sequence of labels: "www.example.com"
// stores [www, example, com]. The empty sequence is the DNS root.
type Name struct {
	labels []Label
}

// Root is the DNS root name (the empty label sequence).
var Root = Name{}

// Parse parses a textual domain name. A trailing "." is allowed and
// discarded. Empty input or a bare "." yields the root. An interior empty
// label fails with ErrEmptyLabel. Parsing lowercases.
func Parse(s string) (Name, error) {
	if s == "" || s == "." {
		return Root, nil
	}
	if strings.HasSuffix(s, ".") {
		s = s[:len(s)-1]
	}
	if s == "" {
		return Root, nil
	}

	parts := strings.Split(s, ".")
	labels := make([]Label, 0, len(parts))
	total := 1 // root byte
	for _, p := range parts {
		if p == "" {
			return Name{}, ErrEmptyLabel
		}
		l, err := ParseLabel(p)
		if err != nil {
			return Name{}, err
		}
		total += len(l.raw) + 1
		labels = append(labels, l)
	}
	if total > maxNameLength {
		return Name{}, ErrNameTooLong
	}
	return Name{labels: labels}, nil
}

// MustParse parses s and panics on error. Intended for tests and
// compile-time constant-like names.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// FromWireLabels builds a Name from labels already split off the wire
// (case preserved, no UTS #46 normalization).
func FromWireLabels(raw [][]byte) (Name, error) {
	labels := make([]Label, 0, len(raw))
	total := 1
	for _, b := range raw {
		l, err := LabelFromWire(b)
		if err != nil {
			return Name{}, err
		}
		total += len(l.raw) + 1
		labels = append(labels, l)
	}
	if total > maxNameLength {
		return Name{}, ErrNameTooLong
	}
	return Name{labels: labels}, nil
}

// FromLabels builds a Name from already-constructed Label values, e.g.
// ones resolved from a zone file's label pool.
func FromLabels(labels []Label) (Name, error) {
	total := 1
	for _, l := range labels {
		total += len(l.raw) + 1
	}
	if total > maxNameLength {
		return Name{}, ErrNameTooLong
	}
	out := make([]Label, len(labels))
	copy(out, labels)
	return Name{labels: out}, nil
}

// String renders the name for display: labels joined by ".", each
// Unicode-decoded via UTS #46 "to-Unicode". The root renders as "".
func (n Name) String() string {
	if len(n.labels) == 0 {
		return ""
	}
	parts := make([]string, len(n.labels))
	for i, l := range n.labels {
		parts[i] = l.String()
	}
	return strings.Join(parts, ".")
}

// IsEmpty reports whether n is the DNS root.
func (n Name) IsEmpty() bool { return len(n.labels) == 0 }

// Labels returns the name's labels, leaf-first. The returned slice must
// not be mutated.
func (n Name) Labels() []Label { return n.labels }

// Pop returns n with its leftmost (most specific) label dropped.
func (n Name) Pop() Name {
	if len(n.labels) == 0 {
		return n
	}
	return Name{labels: n.labels[1:]}
}

// Extend returns a new Name with origin's labels appended after n's own
// labels, i.e. n relative to origin becomes fully qualified.
func (n Name) Extend(origin Name) Name {
	labels := make([]Label, 0, len(n.labels)+len(origin.labels))
	labels = append(labels, n.labels...)
	labels = append(labels, origin.labels...)
	return Name{labels: labels}
}

// EncodedLen returns the number of octets this name would occupy on the
// wire in uncompressed form, including the terminating root label.
func (n Name) EncodedLen() int {
	total := 1
	for _, l := range n.labels {
		total += len(l.raw) + 1
	}
	return total
}

// Equal reports whether a and b are the same name: equal label sequences,
// compared pairwise, ASCII-case-insensitively.
func Equal(a, b Name) bool {
	if len(a.labels) != len(b.labels) {
		return false
	}
	for i := range a.labels {
		if !a.labels[i].equalFold(b.labels[i]) {
			return false
		}
	}
	return true
}

// IsSubdomainOf reports whether n is equal to or a descendant of origin.
func IsSubdomainOf(n, origin Name) bool {
	if len(n.labels) < len(origin.labels) {
		return false
	}
	offset := len(n.labels) - len(origin.labels)
	for i := range origin.labels {
		if !n.labels[offset+i].equalFold(origin.labels[i]) {
			return false
		}
	}
	return true
}

// Key returns an unambiguous, case-insensitive string key for n: each
// label's folded bytes, length-prefixed so no separator byte can be
// confused with label content. Suitable as a map key anywhere Name
// itself can't be (Name holds a slice, so it isn't comparable with ==).
func (n Name) Key() string {
	var b []byte
	for _, l := range n.labels {
		b = append(b, byte(len(l.folded)))
		b = append(b, l.folded...)
	}
	return string(b)
}

// Hash returns a stable 64-bit fingerprint of n, computed by folding each
// label's lowercased bytes through SipHash-2-4. Equal names (per Equal)
// always hash equally.
func (n Name) Hash() uint64 {
	h := siphash.New(hashKey[:])
	for _, l := range n.labels {
		var lenBuf [2]byte
		lenBuf[0] = byte(len(l.folded))
		lenBuf[1] = byte(len(l.folded) >> 8)
		h.Write(lenBuf[:])
		h.Write(l.folded)
	}
	return h.Sum64()
}

// FromIPv4 builds the reverse-DNS name for an IPv4 address under
// in-addr.arpa, e.g. 192.0.2.42 -> 42.2.0.192.in-addr.arpa.
func FromIPv4(ip [4]byte) Name {
	labels := make([]Label, 0, 6)
	for i := 3; i >= 0; i-- {
		l, _ := ParseLabel(fmt.Sprintf("%d", ip[i]))
		labels = append(labels, l)
	}
	inAddr, _ := ParseLabel("in-addr")
	arpa, _ := ParseLabel("arpa")
	labels = append(labels, inAddr, arpa)
	return Name{labels: labels}
}

// FromIPv6 builds the reverse-DNS name for an IPv6 address under
// ip6.arpa: 32 nibble labels, low-nibble-first from the rightmost octet.
func FromIPv6(ip [16]byte) Name {
	const hexDigits = "0123456789abcdef"
	labels := make([]Label, 0, 34)
	for i := 15; i >= 0; i-- {
		lo := ip[i] & 0x0f
		hi := ip[i] >> 4
		labels = append(labels, Label{raw: []byte{hexDigits[lo]}, folded: []byte{hexDigits[lo]}})
		labels = append(labels, Label{raw: []byte{hexDigits[hi]}, folded: []byte{hexDigits[hi]}})
	}
	ip6, _ := ParseLabel("ip6")
	arpa, _ := ParseLabel("arpa")
	labels = append(labels, ip6, arpa)
	return Name{labels: labels}
}

// FromNetIP builds the reverse-DNS name for a net.IP, dispatching to
// FromIPv4 or FromIPv6 as appropriate.
func FromNetIP(ip net.IP) (Name, bool) {
	if v4 := ip.To4(); v4 != nil {
		var a [4]byte
		copy(a[:], v4)
		return FromIPv4(a), true
	}
	if v6 := ip.To16(); v6 != nil {
		var a [16]byte
		copy(a[:], v6)
		return FromIPv6(a), true
	}
	return Name{}, false
}
