package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClaimPolicy pins a CEL authorization expression to a claim type.
type ClaimPolicy struct {
	ClaimType string `yaml:"claim_type"`
	Allow     string `yaml:"allow"`
}

// PublicationTarget selects and configures one publication backend.
type PublicationTarget struct {
	Backend string `yaml:"backend"` // "local" | "s3"
	Root    string `yaml:"root"`
	Bucket  string `yaml:"bucket,omitempty"`
	Region  string `yaml:"region,omitempty"`
	Prefix  string `yaml:"prefix,omitempty"`
}

// IssuerPolicy is the per-issuer YAML document governing how a CA builds
// and certifies its batches: window depth, where signed validity windows
// land, which claim types it will certify, and under what authorization
// expression.
type IssuerPolicy struct {
	IssuerID          string            `yaml:"issuer_id"`
	WindowSize        uint32            `yaml:"window_size"`
	ValidateByDefault bool              `yaml:"validate_by_default"`
	AllowedClaims     []string          `yaml:"allowed_claims"`
	ClaimPolicies     []ClaimPolicy     `yaml:"claim_policies"`
	Publication       PublicationTarget `yaml:"publication"`
	SchemaConstraint  string            `yaml:"schema_constraint,omitempty"`
}

// DefaultWindowSize is used when an issuer policy omits window_size; it
// follows the reference issuer's rolling-window depth of two weeks' worth
// of daily batches.
const DefaultWindowSize uint32 = 14

// LoadIssuerPolicy reads and parses an issuer policy document from path.
func LoadIssuerPolicy(path string) (*IssuerPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read issuer policy %s: %w", path, err)
	}

	var policy IssuerPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("config: parse issuer policy %s: %w", path, err)
	}

	if policy.WindowSize == 0 {
		policy.WindowSize = DefaultWindowSize
	}
	if policy.IssuerID == "" {
		return nil, fmt.Errorf("config: issuer policy %s missing issuer_id", path)
	}

	return &policy, nil
}

// AllowsClaimType reports whether claimType is in the issuer's allowlist.
// An empty allowlist permits every claim type.
func (p *IssuerPolicy) AllowsClaimType(claimType string) bool {
	if len(p.AllowedClaims) == 0 {
		return true
	}
	for _, c := range p.AllowedClaims {
		if c == claimType {
			return true
		}
	}
	return false
}
