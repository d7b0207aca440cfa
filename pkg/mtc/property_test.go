//go:build property
// +build property

package mtc_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

// TestClaimListRejectsDuplicateTypes verifies property 3: a ClaimList
// with two claims of the same type always fails validation, regardless
// of how many distinct-typed claims surround them.
func TestClaimListRejectsDuplicateTypes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("duplicate claim types are always rejected", prop.ForAll(
		func(dupType int) bool {
			ct := mtc.ClaimType(dupType % 4)
			claims := []mtc.Claim{claimOfType(ct), claimOfType(ct)}
			list := mtc.ClaimList{Claims: claims}
			return list.Validate() != nil
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}

// TestAssertionRoundTrip verifies property 1 for the Assertion shape:
// Serialize then Parse is the identity for any well-formed assertion.
func TestAssertionRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("assertion round-trips through Serialize/ParseAssertion", prop.ForAll(
		func(name string) bool {
			if len(name) == 0 || len(name) > 255 {
				return true
			}
			a := mtc.Assertion{
				SubjectType: mtc.SubjectTypeTLS,
				Claims:      mtc.ClaimList{Claims: []mtc.Claim{mtc.NewDNSClaim(mtc.DNSName(name))}},
			}
			data := a.Serialize()
			got, next, err := mtc.ParseAssertion(data, 0, codec.Default())
			if err != nil || next != len(data) {
				return false
			}
			return string(got.Claims.Claims[0].DNSName) == name
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func claimOfType(t mtc.ClaimType) mtc.Claim {
	switch t {
	case mtc.ClaimTypeDNS:
		return mtc.NewDNSClaim(mtc.DNSName("a.example"))
	case mtc.ClaimTypeDNSWildcard:
		return mtc.NewDNSWildcardClaim(mtc.DNSName("*.example"))
	case mtc.ClaimTypeIPv4:
		return mtc.NewIPv4Claim(mtc.IPv4Address{1, 2, 3, 4})
	default:
		return mtc.NewIPv6Claim(mtc.IPv6Address{})
	}
}
