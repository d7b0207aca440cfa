package mtc

import (
	"fmt"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
)

// Claim is a tagged union over ClaimType: the wire shape is the 2-byte
// ClaimType tag followed by the body matching that tag. Exactly one of
// the typed fields is meaningful, selected by Type.
type Claim struct {
	Type        ClaimType
	DNSName     DNSName
	IPv4Address IPv4Address
	IPv6Address IPv6Address
}

func NewDNSClaim(name DNSName) Claim         { return Claim{Type: ClaimTypeDNS, DNSName: name} }
func NewDNSWildcardClaim(name DNSName) Claim { return Claim{Type: ClaimTypeDNSWildcard, DNSName: name} }
func NewIPv4Claim(addr IPv4Address) Claim    { return Claim{Type: ClaimTypeIPv4, IPv4Address: addr} }
func NewIPv6Claim(addr IPv6Address) Claim    { return Claim{Type: ClaimTypeIPv6, IPv6Address: addr} }

func (c Claim) Serialize() []byte {
	out := c.Type.Serialize()
	switch c.Type {
	case ClaimTypeDNS, ClaimTypeDNSWildcard:
		out = append(out, c.DNSName.Serialize()...)
	case ClaimTypeIPv4:
		out = append(out, c.IPv4Address.Serialize()...)
	case ClaimTypeIPv6:
		out = append(out, c.IPv6Address.Serialize()...)
	}
	return out
}

func (c Claim) Validate() error {
	switch c.Type {
	case ClaimTypeDNS, ClaimTypeDNSWildcard:
		return c.DNSName.Validate()
	case ClaimTypeIPv4, ClaimTypeIPv6:
		return nil
	default:
		return &codec.ValidationError{Field: "claim.type", Code: "UNKNOWN_MEMBER", Message: fmt.Sprintf("claim type %s is not dispatchable", c.Type)}
	}
}

// ParseClaim reads a Claim variant: the tag, then the body for that tag.
func ParseClaim(data []byte, offset int, opts codec.Options) (Claim, int, error) {
	t, next, err := ParseClaimType(data, offset)
	if err != nil {
		return Claim{}, offset, err
	}
	var c Claim
	c.Type = t
	switch t {
	case ClaimTypeDNS, ClaimTypeDNSWildcard:
		name, n2, err := ParseDNSName(data, next)
		if err != nil {
			return Claim{}, offset, err
		}
		c.DNSName = name
		next = n2
	case ClaimTypeIPv4:
		addr, n2, err := ParseIPv4Address(data, next)
		if err != nil {
			return Claim{}, offset, err
		}
		c.IPv4Address = addr
		next = n2
	case ClaimTypeIPv6:
		addr, n2, err := ParseIPv6Address(data, next)
		if err != nil {
			return Claim{}, offset, err
		}
		c.IPv6Address = addr
		next = n2
	default:
		return Claim{}, offset, &codec.ParsingError{Context: "claim", Reason: fmt.Sprintf("no body dispatch for claim type %s", t)}
	}
	if !opts.SkipValidate {
		if err := c.Validate(); err != nil {
			return Claim{}, offset, err
		}
	}
	return c, next, nil
}

// SkipClaim advances past a Claim variant without materializing it.
func SkipClaim(data []byte, offset int) (int, error) {
	t, next, err := ParseClaimType(data, offset)
	if err != nil {
		return offset, err
	}
	switch t {
	case ClaimTypeDNS, ClaimTypeDNSWildcard:
		return SkipDNSName(data, next)
	case ClaimTypeIPv4:
		return SkipIPv4Address(data, next)
	case ClaimTypeIPv6:
		return SkipIPv6Address(data, next)
	default:
		return offset, &codec.ParsingError{Context: "claim", Reason: fmt.Sprintf("no body dispatch for claim type %s", t)}
	}
}

// claimListSpec bounds a ClaimList payload to [0, 2^16-1] bytes, a
// 2-byte marker.
var claimListSpec = codec.NewVectorSpec(0, 1<<16-1)

// ClaimList is a Vector<Claim> with the additional semantic constraint
// that no two claims share a ClaimType (spec §8 property 3).
type ClaimList struct {
	Claims []Claim
}

func (l ClaimList) Serialize() []byte {
	return codec.SerializeVector(claimListSpec, l.Claims, Claim.Serialize)
}

// Validate checks both per-claim validity and ClaimType uniqueness
// across the list.
func (l ClaimList) Validate() error {
	seen := make(map[ClaimType]bool, len(l.Claims))
	for i, c := range l.Claims {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.Type] {
			return &codec.ValidationError{Field: "claim_list", Code: "DUPLICATE_CLAIM_TYPE", Message: fmt.Sprintf("claim_list has more than one claim of type %s at index %d", c.Type, i)}
		}
		seen[c.Type] = true
	}
	return nil
}

// ParseClaimList reads a length-prefixed vector of Claim values.
func ParseClaimList(data []byte, offset int, opts codec.Options) (ClaimList, int, error) {
	claims, next, err := codec.ParseVector(claimListSpec, data, offset, opts, ParseClaim)
	if err != nil {
		return ClaimList{}, offset, err
	}
	l := ClaimList{Claims: claims}
	if !opts.SkipValidate {
		if err := l.Validate(); err != nil {
			return ClaimList{}, offset, err
		}
	}
	return l, next, nil
}

// SkipClaimList advances past a ClaimList vector.
func SkipClaimList(data []byte, offset int) (int, error) {
	return codec.SkipVector(claimListSpec, data, offset)
}
