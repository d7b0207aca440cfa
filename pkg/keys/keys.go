// Package keys loads and persists the Ed25519 issuer signing key: plain
// PEM for local development, and an optional passphrase-protected
// keystore (argon2id-derived AES-256-GCM) for production deployment.
package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// LoadSignerFromPEM reads an unencrypted PKCS#8-encoded Ed25519 private
// key from a PEM file.
func LoadSignerFromPEM(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keys: read PEM %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("keys: %s contains no PEM block", path)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("keys: parse PKCS8 key in %s: %w", path, err)
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("keys: %s does not hold an Ed25519 private key", path)
	}
	return priv, nil
}

// LoadVerifierFromPEM reads an Ed25519 public key from a PEM file,
// for relying parties that hold only the issuer's public key.
func LoadVerifierFromPEM(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keys: read PEM %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("keys: %s contains no PEM block", path)
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("keys: parse PKIX key in %s: %w", path, err)
	}
	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("keys: %s does not hold an Ed25519 public key", path)
	}
	return pub, nil
}

// WritePrivatePEM writes priv as a PKCS#8 PEM file with 0600
// permissions.
func WritePrivatePEM(path string, priv ed25519.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return fmt.Errorf("keys: marshal PKCS8 key: %w", err)
	}
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("keys: create dir: %w", err)
	}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0600)
}

// WritePublicPEM writes pub as a PKIX PEM file.
func WritePublicPEM(path string, pub ed25519.PublicKey) error {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return fmt.Errorf("keys: marshal PKIX key: %w", err)
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("keys: create dir: %w", err)
	}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0644)
}

// keystoreFile is the on-disk JSON format of a passphrase-protected
// signing key: the key itself is AES-256-GCM-sealed under a key
// derived from the passphrase with argon2id.
type keystoreFile struct {
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	saltSize      = 16
)

// SealPassphraseProtected derives an AES-256-GCM key from passphrase
// with argon2id and writes priv, sealed, to path.
func SealPassphraseProtected(path string, priv ed25519.PrivateKey, passphrase string) error {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("keys: generate salt: %w", err)
	}
	derived := argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return fmt.Errorf("keys: aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("keys: gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("keys: generate nonce: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, priv, nil)

	out := keystoreFile{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("keys: marshal keystore: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("keys: create dir: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// OpenPassphraseProtected reverses SealPassphraseProtected, deriving
// the same key from passphrase and opening the sealed private key.
func OpenPassphraseProtected(path string, passphrase string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keys: read keystore %s: %w", path, err)
	}
	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("keys: parse keystore %s: %w", path, err)
	}

	salt, err := base64.StdEncoding.DecodeString(ks.Salt)
	if err != nil {
		return nil, fmt.Errorf("keys: decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(ks.Nonce)
	if err != nil {
		return nil, fmt.Errorf("keys: decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(ks.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("keys: decode ciphertext: %w", err)
	}

	derived := argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("keys: aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keys: gcm: %w", err)
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, errors.New("keys: stored nonce has unexpected length")
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("keys: wrong passphrase or corrupted keystore: %w", err)
	}
	if len(plaintext) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keys: sealed key has unexpected length %d", len(plaintext))
	}
	return ed25519.PrivateKey(plaintext), nil
}

// GenerateKeyPair generates a new Ed25519 key pair.
func GenerateKeyPair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("keys: generate key pair: %w", err)
	}
	return pub, priv, nil
}
