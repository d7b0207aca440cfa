package mtc

import (
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
)

func exampleAssertion() Assertion {
	return Assertion{
		SubjectType: SubjectTypeTLS,
		SubjectInfo: SubjectInfo{},
		Claims: ClaimList{
			Claims: []Claim{NewDNSClaim(DNSName("example.com"))},
		},
	}
}

func TestAssertionRoundTrip(t *testing.T) {
	a := exampleAssertion()
	serialized := a.Serialize()

	parsed, n, err := ParseAssertion(serialized, 0, codec.Default())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n != len(serialized) {
		t.Errorf("consumed %d bytes, want %d", n, len(serialized))
	}
	if parsed.SubjectType != a.SubjectType {
		t.Errorf("subject_type mismatch")
	}
	if len(parsed.Claims.Claims) != 1 || string(parsed.Claims.Claims[0].DNSName) != "example.com" {
		t.Errorf("claim round trip mismatch: %+v", parsed.Claims)
	}

	skipN, err := SkipAssertion(serialized, 0)
	if err != nil {
		t.Fatalf("skip failed: %v", err)
	}
	if skipN != n {
		t.Errorf("skip offset %d != parse offset %d", skipN, n)
	}
}

func TestClaimListRejectsDuplicateType(t *testing.T) {
	list := ClaimList{Claims: []Claim{
		NewDNSClaim(DNSName("a.example.com")),
		NewDNSClaim(DNSName("b.example.com")),
	}}
	if err := list.Validate(); err == nil {
		t.Fatal("expected duplicate claim type to be rejected")
	}
}

func TestClaimListAllowsDistinctTypes(t *testing.T) {
	list := ClaimList{Claims: []Claim{
		NewDNSClaim(DNSName("a.example.com")),
		NewIPv4Claim(IPv4Address{93, 184, 216, 34}),
	}}
	if err := list.Validate(); err != nil {
		t.Fatalf("distinct claim types should validate: %v", err)
	}
}

func TestParseAssertionSkipValidateAcceptsDuplicates(t *testing.T) {
	list := ClaimList{Claims: []Claim{
		NewDNSClaim(DNSName("a.example.com")),
		NewDNSClaim(DNSName("b.example.com")),
	}}
	a := Assertion{SubjectType: SubjectTypeTLS, SubjectInfo: SubjectInfo{}, Claims: list}
	serialized := a.Serialize()

	if _, _, err := ParseAssertion(serialized, 0, codec.Default()); err == nil {
		t.Fatal("expected validation to reject duplicate claim types by default")
	}
	if _, _, err := ParseAssertion(serialized, 0, codec.NoValidate()); err != nil {
		t.Fatalf("SkipValidate should bypass claim list validation: %v", err)
	}
}

func TestHashAssertionInputDeterministic(t *testing.T) {
	head := NewHashHead(DistinguisherHashAssertionInput, IssuerID("test.issuer"), 0)
	a := exampleAssertion()

	h1 := LeafHash(head, 0, a)
	h2 := LeafHash(head, 0, a)
	if h1 != h2 {
		t.Fatal("leaf hash is not deterministic for identical inputs")
	}

	h3 := LeafHash(head, 1, a)
	if h1 == h3 {
		t.Fatal("leaf hash must depend on index")
	}
}

func TestEmptyHashDiffersFromNodeAndLeafHash(t *testing.T) {
	head := NewHashHead(DistinguisherHashEmptyInput, IssuerID("test.issuer"), 0)
	empty := EmptyHash(head, 3, 0)

	var zero SHA256Hash
	node := NodeHash(head, 3, 0, zero, zero)
	if empty == node {
		t.Fatal("empty hash and node hash must not collide for the same (index, level)-shaped input")
	}
	leaf := LeafHash(head, 3, exampleAssertion())
	if empty == leaf {
		t.Fatal("empty hash and leaf hash must not collide for the same index")
	}
}

func TestAssertionsRoundTrip(t *testing.T) {
	batch := Assertions{List: []Assertion{exampleAssertion(), exampleAssertion()}}
	serialized := batch.Serialize()
	parsed, n, err := ParseAssertions(serialized, 0, codec.Default())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n != len(serialized) {
		t.Errorf("consumed %d, want %d", n, len(serialized))
	}
	if len(parsed.List) != 2 {
		t.Fatalf("got %d assertions, want 2", len(parsed.List))
	}
}
