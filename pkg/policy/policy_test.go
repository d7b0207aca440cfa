package policy

import (
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

func TestClaimGateAllowsDNSUnderAllowedSuffix(t *testing.T) {
	gate, err := NewClaimGate(`claims.exists(c, c.type == "dns" && c.value.endsWith(".example.com"))`)
	if err != nil {
		t.Fatalf("new claim gate failed: %v", err)
	}

	a := mtc.Assertion{
		SubjectType: mtc.SubjectTypeTLS,
		SubjectInfo: mtc.SubjectInfo{},
		Claims:      mtc.ClaimList{Claims: []mtc.Claim{mtc.NewDNSClaim(mtc.DNSName("api.example.com"))}},
	}
	allowed, err := gate.Allow(a)
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if !allowed {
		t.Fatal("expected api.example.com to be allowed")
	}

	b := mtc.Assertion{
		SubjectType: mtc.SubjectTypeTLS,
		SubjectInfo: mtc.SubjectInfo{},
		Claims:      mtc.ClaimList{Claims: []mtc.Claim{mtc.NewDNSClaim(mtc.DNSName("api.evil.com"))}},
	}
	allowed, err = gate.Allow(b)
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if allowed {
		t.Fatal("expected api.evil.com to be rejected")
	}
}

func TestClaimGateRejectsBadExpression(t *testing.T) {
	if _, err := NewClaimGate(`this is not cel`); err == nil {
		t.Fatal("expected invalid CEL expression to fail compilation")
	}
}

func TestNormalizeDNSNameLowercases(t *testing.T) {
	got, err := NormalizeDNSName("Example.COM")
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if got != "example.com" {
		t.Fatalf("got %q, want %q", got, "example.com")
	}
}
