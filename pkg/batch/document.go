package batch

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

// Document is the JSON shape an issuer submits for ingestion: one
// issuer ID and the assertions to certify in the next batch.
type Document struct {
	SchemaVersion string           `json:"schema_version"`
	IssuerID      string           `json:"issuer_id"`
	Assertions    []assertionInput `json:"assertions"`
}

type assertionInput struct {
	SubjectType string       `json:"subject_type"`
	SubjectInfo string       `json:"subject_info"`
	Claims      []claimInput `json:"claims"`
}

type claimInput struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Ingested is the result of decoding and validating a Document: the
// issuer's identity plus the assertions ready for Merkle tree
// construction.
type Ingested struct {
	IssuerID   mtc.IssuerID
	Assertions mtc.Assertions
}

// Parse validates raw against the embedded JSON schema, checks its
// schema_version, and decodes it field-by-field into typed assertions.
// A malformed document (schema violation, bad hex, unknown claim type)
// surfaces as a codec.ValidationError — the JSON itself parsed fine,
// but what it describes is not a valid batch.
func Parse(raw []byte) (*Ingested, error) {
	schema, _, err := compiler()
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("batch: invalid JSON: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, &codec.ValidationError{Field: "document", Code: "SCHEMA_VIOLATION", Message: err.Error()}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("batch: decode document: %w", err)
	}
	if err := checkSchemaVersion(doc.SchemaVersion); err != nil {
		return nil, err
	}

	issuerID, err := hex.DecodeString(doc.IssuerID)
	if err != nil {
		return nil, &codec.ValidationError{Field: "issuer_id", Code: "BAD_HEX", Message: err.Error()}
	}

	assertions := make([]mtc.Assertion, 0, len(doc.Assertions))
	for i, ai := range doc.Assertions {
		a, err := decodeAssertion(ai)
		if err != nil {
			return nil, fmt.Errorf("batch: assertion %d: %w", i, err)
		}
		assertions = append(assertions, a)
	}

	return &Ingested{
		IssuerID:   mtc.IssuerID(issuerID),
		Assertions: mtc.Assertions{List: assertions},
	}, nil
}

func decodeAssertion(in assertionInput) (mtc.Assertion, error) {
	if in.SubjectType != "tls" {
		return mtc.Assertion{}, &codec.ValidationError{Field: "subject_type", Code: "UNKNOWN_MEMBER", Message: fmt.Sprintf("unsupported subject_type %q", in.SubjectType)}
	}

	var subjectInfo mtc.SubjectInfo
	if in.SubjectInfo != "" {
		b, err := hex.DecodeString(in.SubjectInfo)
		if err != nil {
			return mtc.Assertion{}, &codec.ValidationError{Field: "subject_info", Code: "BAD_HEX", Message: err.Error()}
		}
		subjectInfo = mtc.SubjectInfo(b)
	}

	claims := make([]mtc.Claim, 0, len(in.Claims))
	for i, ci := range in.Claims {
		c, err := decodeClaim(ci)
		if err != nil {
			return mtc.Assertion{}, fmt.Errorf("claim %d: %w", i, err)
		}
		claims = append(claims, c)
	}

	a := mtc.Assertion{
		SubjectType: mtc.SubjectTypeTLS,
		SubjectInfo: subjectInfo,
		Claims:      mtc.ClaimList{Claims: claims},
	}
	if err := a.Validate(); err != nil {
		return mtc.Assertion{}, err
	}
	return a, nil
}

func decodeClaim(in claimInput) (mtc.Claim, error) {
	switch in.Type {
	case "dns":
		return mtc.NewDNSClaim(mtc.DNSName(in.Value)), nil
	case "dns_wildcard":
		return mtc.NewDNSWildcardClaim(mtc.DNSName(in.Value)), nil
	case "ipv4":
		addr, err := parseIPv4(in.Value)
		if err != nil {
			return mtc.Claim{}, &codec.ValidationError{Field: "claims.value", Code: "BAD_IPV4", Message: err.Error()}
		}
		return mtc.NewIPv4Claim(addr), nil
	case "ipv6":
		addr, err := parseIPv6(in.Value)
		if err != nil {
			return mtc.Claim{}, &codec.ValidationError{Field: "claims.value", Code: "BAD_IPV6", Message: err.Error()}
		}
		return mtc.NewIPv6Claim(addr), nil
	default:
		return mtc.Claim{}, &codec.ValidationError{Field: "claims.type", Code: "UNKNOWN_MEMBER", Message: fmt.Sprintf("unsupported claim type %q", in.Type)}
	}
}
