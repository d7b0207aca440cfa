package batch

import (
	"strings"
	"testing"
)

const validDoc = `{
  "schema_version": "1.0.0",
  "issuer_id": "aabbcc",
  "assertions": [
    {
      "subject_type": "tls",
      "subject_info": "",
      "claims": [
        {"type": "dns", "value": "example.com"},
        {"type": "ipv4", "value": "192.0.2.1"}
      ]
    }
  ]
}`

func TestParseValidDocument(t *testing.T) {
	ingested, err := Parse([]byte(validDoc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(ingested.Assertions.List) != 1 {
		t.Fatalf("got %d assertions, want 1", len(ingested.Assertions.List))
	}
	if len(ingested.Assertions.List[0].Claims.Claims) != 2 {
		t.Fatalf("got %d claims, want 2", len(ingested.Assertions.List[0].Claims.Claims))
	}
}

func TestParseRejectsUnsupportedSchemaVersion(t *testing.T) {
	doc := strings.Replace(validDoc, `"1.0.0"`, `"9.0.0"`, 1)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected schema_version 9.0.0 to be rejected")
	}
}

func TestParseRejectsUnknownClaimType(t *testing.T) {
	doc := strings.Replace(validDoc, `"type": "dns"`, `"type": "carrier_pigeon"`, 1)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected unknown claim type to be rejected")
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Fatal("expected malformed JSON to fail")
	}
}

func TestAuditHashStableAcrossFieldOrder(t *testing.T) {
	a := `{"b": 1, "a": 2}`
	b := `{"a": 2, "b": 1}`

	ha, err := AuditHash([]byte(a))
	if err != nil {
		t.Fatalf("audit hash a: %v", err)
	}
	hb, err := AuditHash([]byte(b))
	if err != nil {
		t.Fatalf("audit hash b: %v", err)
	}
	if ha != hb {
		t.Fatalf("audit hashes differ across field order: %s vs %s", ha, hb)
	}
}
