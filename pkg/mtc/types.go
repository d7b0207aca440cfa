// Package mtc implements the Merkle Tree Certificate assertion model: the
// concrete record and vector types (assertion, claim list, subject info,
// IP/DNS claim lists) that compose codec primitives into MTC wire shapes,
// plus the domain-separated hash inputs the Merkle tree builder and
// certificate verifier share.
package mtc

import (
	"fmt"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
)

// SHA256Hash is a 32-byte digest, serialized as a fixed Array<32>.
type SHA256Hash [32]byte

func (h SHA256Hash) Serialize() []byte { return h[:] }

// ParseSHA256Hash reads a fixed 32-byte array at offset.
func ParseSHA256Hash(data []byte, offset int) (SHA256Hash, int, error) {
	b, next, err := codec.ParseArray(data, offset, 32)
	if err != nil {
		return SHA256Hash{}, offset, err
	}
	var h SHA256Hash
	copy(h[:], b)
	return h, next, nil
}

// SkipSHA256Hash advances past a fixed 32-byte array.
func SkipSHA256Hash(data []byte, offset int) (int, error) {
	return codec.SkipArray(data, offset, 32)
}

// issuerIDSpec is the OpaqueVector bounds for IssuerID: [0,32] bytes,
// which needs a 1-byte marker.
var issuerIDSpec = codec.NewOpaqueVector(0, 32)

// IssuerID identifies the certification authority and is bound into
// every Merkle hash input as a domain-separation label component.
type IssuerID []byte

func (id IssuerID) Serialize() []byte { return issuerIDSpec.Serialize(id) }

func (id IssuerID) Validate() error {
	if len(id) > 32 {
		return &codec.ValidationError{Field: "issuer_id", Code: "TOO_LONG", Message: fmt.Sprintf("issuer_id is %d bytes, max 32", len(id))}
	}
	return nil
}

// ParseIssuerID reads an IssuerID opaque vector at offset.
func ParseIssuerID(data []byte, offset int) (IssuerID, int, error) {
	b, next, err := issuerIDSpec.Parse(data, offset)
	if err != nil {
		return nil, offset, err
	}
	return IssuerID(b), next, nil
}

// SkipIssuerID advances past an IssuerID opaque vector.
func SkipIssuerID(data []byte, offset int) (int, error) {
	return issuerIDSpec.Skip(data, offset)
}

// dnsNameSpec is the OpaqueVector bounds for DNSName: [1,255] bytes.
var dnsNameSpec = codec.NewOpaqueVector(1, 255)

// DNSName is an opaque ASCII byte string naming a DNS subject or claim
// value. Normalization (lowercasing, IDNA) is out of scope for the core
// — see spec Open Question (iii).
type DNSName []byte

func (n DNSName) Serialize() []byte { return dnsNameSpec.Serialize(n) }

func (n DNSName) Validate() error {
	if len(n) < 1 || len(n) > 255 {
		return &codec.ValidationError{Field: "dns_name", Code: "BAD_LENGTH", Message: fmt.Sprintf("dns_name length %d out of bounds [1,255]", len(n))}
	}
	return nil
}

// ParseDNSName reads a DNSName opaque vector at offset.
func ParseDNSName(data []byte, offset int) (DNSName, int, error) {
	b, next, err := dnsNameSpec.Parse(data, offset)
	if err != nil {
		return nil, offset, err
	}
	return DNSName(b), next, nil
}

// SkipDNSName advances past a DNSName opaque vector.
func SkipDNSName(data []byte, offset int) (int, error) {
	return dnsNameSpec.Skip(data, offset)
}

// IPv4Address is a fixed 4-byte array.
type IPv4Address [4]byte

func (a IPv4Address) Serialize() []byte { return a[:] }

func ParseIPv4Address(data []byte, offset int) (IPv4Address, int, error) {
	b, next, err := codec.ParseArray(data, offset, 4)
	if err != nil {
		return IPv4Address{}, offset, err
	}
	var a IPv4Address
	copy(a[:], b)
	return a, next, nil
}

func SkipIPv4Address(data []byte, offset int) (int, error) { return codec.SkipArray(data, offset, 4) }

// IPv6Address is a fixed 16-byte array.
type IPv6Address [16]byte

func (a IPv6Address) Serialize() []byte { return a[:] }

func ParseIPv6Address(data []byte, offset int) (IPv6Address, int, error) {
	b, next, err := codec.ParseArray(data, offset, 16)
	if err != nil {
		return IPv6Address{}, offset, err
	}
	var a IPv6Address
	copy(a[:], b)
	return a, next, nil
}

func SkipIPv6Address(data []byte, offset int) (int, error) { return codec.SkipArray(data, offset, 16) }

// SubjectType enumerates the kind of subject an Assertion certifies.
// Serialized as a 2-byte enum.
type SubjectType uint16

const SubjectTypeTLS SubjectType = 0

func (t SubjectType) Validate() error {
	if t != SubjectTypeTLS {
		return &codec.ValidationError{Field: "subject_type", Code: "UNKNOWN_MEMBER", Message: fmt.Sprintf("subject_type %d is not a known SubjectType member", uint16(t))}
	}
	return nil
}

func (t SubjectType) Serialize() []byte { return codec.WriteUint16(uint16(t)) }

func ParseSubjectType(data []byte, offset int) (SubjectType, int, error) {
	v, next, err := codec.ReadUint16(data, offset)
	if err != nil {
		return 0, offset, err
	}
	return SubjectType(v), next, nil
}

func SkipSubjectType(data []byte, offset int) (int, error) {
	_, next, err := codec.ReadUint16(data, offset)
	return next, err
}

// ClaimType enumerates the kind of claim within a ClaimList. Serialized
// as a 2-byte enum.
type ClaimType uint16

const (
	ClaimTypeDNS         ClaimType = 0
	ClaimTypeDNSWildcard ClaimType = 1
	ClaimTypeIPv4        ClaimType = 2
	ClaimTypeIPv6        ClaimType = 3
)

func (t ClaimType) Valid() bool {
	switch t {
	case ClaimTypeDNS, ClaimTypeDNSWildcard, ClaimTypeIPv4, ClaimTypeIPv6:
		return true
	default:
		return false
	}
}

func (t ClaimType) String() string {
	switch t {
	case ClaimTypeDNS:
		return "dns"
	case ClaimTypeDNSWildcard:
		return "dns_wildcard"
	case ClaimTypeIPv4:
		return "ipv4"
	case ClaimTypeIPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("claim_type(%d)", uint16(t))
	}
}

func (t ClaimType) Serialize() []byte { return codec.WriteUint16(uint16(t)) }

func ParseClaimType(data []byte, offset int) (ClaimType, int, error) {
	v, next, err := codec.ReadUint16(data, offset)
	if err != nil {
		return 0, offset, err
	}
	t := ClaimType(v)
	if !t.Valid() {
		return 0, offset, &codec.ParsingError{Context: "claim_type", Reason: fmt.Sprintf("tag %d is not a known ClaimType member", v)}
	}
	return t, next, nil
}

func SkipClaimType(data []byte, offset int) (int, error) {
	_, next, err := codec.ReadUint16(data, offset)
	return next, err
}

// subjectInfoSpec is the OpaqueVector bounds for SubjectInfo: [0, 2^16-1]
// bytes, a 2-byte marker.
var subjectInfoSpec = codec.NewOpaqueVector(0, 1<<16-1)

// SubjectInfo is opaque bytes whose meaning for subject_type=tls is
// outside the core (spec Open Question (ii)).
type SubjectInfo []byte

func (s SubjectInfo) Serialize() []byte { return subjectInfoSpec.Serialize(s) }

func ParseSubjectInfo(data []byte, offset int) (SubjectInfo, int, error) {
	b, next, err := subjectInfoSpec.Parse(data, offset)
	if err != nil {
		return nil, offset, err
	}
	return SubjectInfo(b), next, nil
}

func SkipSubjectInfo(data []byte, offset int) (int, error) {
	return subjectInfoSpec.Skip(data, offset)
}

// Distinguisher is the one-byte domain-separation tag prepended to every
// SHA-256 hash input via HashHead.
type Distinguisher uint8

const (
	DistinguisherHashEmptyInput     Distinguisher = 0
	DistinguisherHashNodeInput      Distinguisher = 1
	DistinguisherHashAssertionInput Distinguisher = 2
)

func (d Distinguisher) Serialize() []byte { return codec.WriteUint8(uint8(d)) }
