package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPolicyYAML = `
issuer_id: "aabbcc"
window_size: 5
allowed_claims: ["dns", "ipv4"]
claim_policies:
  - claim_type: dns
    allow: 'claims.exists(c, c.type == "dns")'
publication:
  backend: local
  root: /tmp/mtc
`

func TestLoadIssuerPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPolicyYAML), 0644))

	p, err := LoadIssuerPolicy(path)
	require.NoError(t, err)
	require.Equal(t, "aabbcc", p.IssuerID)
	require.EqualValues(t, 5, p.WindowSize)
	require.True(t, p.AllowsClaimType("dns"))
	require.False(t, p.AllowsClaimType("ipv6"))
}

func TestLoadIssuerPolicyDefaultsWindowSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("issuer_id: \"aabbcc\"\n"), 0644))

	p, err := LoadIssuerPolicy(path)
	require.NoError(t, err)
	require.Equal(t, DefaultWindowSize, p.WindowSize)
}

func TestLoadIssuerPolicyRequiresIssuerID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_size: 3\n"), 0644))

	_, err := LoadIssuerPolicy(path)
	require.Error(t, err)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")

	cfg := Load()
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, "redis.internal:6379", cfg.RedisAddr)
}
