// Package policy gates which assertions an issuer is willing to put
// into a batch: a CEL expression decides, per assertion, whether its
// claims are authorized. NormalizeDNSName canonicalizes a DNS name on
// request; the gate does not apply it, so the expression sees claim values
// exactly as they appear in the assertion. Both are glue around the
// core — the core's codec and Merkle layers never see a rejected
// assertion.
package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"golang.org/x/net/idna"

	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

// ClaimGate evaluates a CEL expression against each assertion's claims
// to decide whether the issuer is willing to certify it.
type ClaimGate struct {
	env     *cel.Env
	program cel.Program
	rawExpr string
}

// NewClaimGate compiles expr once; expr must evaluate to a bool given
// the "claims" variable, a list of maps with "type" and "value" keys.
func NewClaimGate(expr string) (*ClaimGate, error) {
	env, err := cel.NewEnv(
		cel.Variable("claims", cel.ListType(cel.MapType(cel.StringType, cel.StringType))),
		cel.Variable("subject_type", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("policy: build CEL env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("policy: compile claim policy %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("policy: build program for %q: %w", expr, err)
	}
	return &ClaimGate{env: env, program: prg, rawExpr: expr}, nil
}

// Allow reports whether a is authorized for issuance under the gate's
// policy.
func (g *ClaimGate) Allow(a mtc.Assertion) (bool, error) {
	claims := make([]map[string]string, 0, len(a.Claims.Claims))
	for _, c := range a.Claims.Claims {
		claims = append(claims, map[string]string{
			"type":  c.Type.String(),
			"value": claimValue(c),
		})
	}

	out, _, err := g.program.Eval(map[string]interface{}{
		"claims":       claims,
		"subject_type": subjectTypeName(a.SubjectType),
	})
	if err != nil {
		return false, fmt.Errorf("policy: evaluate %q: %w", g.rawExpr, err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy: expression %q did not evaluate to a bool", g.rawExpr)
	}
	return allowed, nil
}

func claimValue(c mtc.Claim) string {
	switch c.Type {
	case mtc.ClaimTypeDNS, mtc.ClaimTypeDNSWildcard:
		return string(c.DNSName)
	case mtc.ClaimTypeIPv4:
		return fmt.Sprintf("%d.%d.%d.%d", c.IPv4Address[0], c.IPv4Address[1], c.IPv4Address[2], c.IPv4Address[3])
	case mtc.ClaimTypeIPv6:
		return fmt.Sprintf("%x", c.IPv6Address[:])
	default:
		return ""
	}
}

func subjectTypeName(t mtc.SubjectType) string {
	if t == mtc.SubjectTypeTLS {
		return "tls"
	}
	return fmt.Sprintf("subject_type(%d)", uint16(t))
}

// dnsProfile lowercases and applies IDNA2008 mapping without
// converting Unicode labels to ASCII/Punycode — issuers keep claim
// values in the form they were submitted, just canonicalized.
var dnsProfile = idna.New(idna.MapForLookup(), idna.Transitional(false))

// NormalizeDNSName canonicalizes a DNS claim value per IDNA so issuers
// comparing claim values against a hostname allowlist do not get
// tripped up by case or Unicode normalization mismatches. This is a
// policy-layer convenience, not a core codec concern — see the
// DNSName data model entry.
func NormalizeDNSName(name string) (string, error) {
	normalized, err := dnsProfile.ToUnicode(name)
	if err != nil {
		return "", fmt.Errorf("policy: normalize DNS name %q: %w", name, err)
	}
	return normalized, nil
}
