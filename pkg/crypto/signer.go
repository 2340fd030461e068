// Package crypto provides the signature scheme used to authorize update
// packages: Ed25519 with hex-encoded keys and signatures.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Signer signs update payloads for an authorized key.
type Signer interface {
	Sign(data []byte) (string, error)
	PublicKey() string
}

// Ed25519Signer holds a generated or provisioned Ed25519 keypair.
type Ed25519Signer struct {
	privKey ed25519.PrivateKey
	pubKey  ed25519.PublicKey
	KeyID   string
}

// NewEd25519Signer generates a fresh keypair.
func NewEd25519Signer(keyID string) (*Ed25519Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("key generation failed: %w", err)
	}
	return &Ed25519Signer{
		privKey: priv,
		pubKey:  pub,
		KeyID:   keyID,
	}, nil
}

// NewEd25519SignerFromKey wraps an existing private key.
func NewEd25519SignerFromKey(priv ed25519.PrivateKey, keyID string) *Ed25519Signer {
	return &Ed25519Signer{
		privKey: priv,
		pubKey:  priv.Public().(ed25519.PublicKey),
		KeyID:   keyID,
	}
}

// Sign returns the hex-encoded Ed25519 signature over data.
func (s *Ed25519Signer) Sign(data []byte) (string, error) {
	sig := ed25519.Sign(s.privKey, data)
	return hex.EncodeToString(sig), nil
}

// PublicKey returns the hex-encoded public key.
func (s *Ed25519Signer) PublicKey() string {
	return hex.EncodeToString(s.pubKey)
}

// PrivateKey returns the hex-encoded private key. Demo provisioning only;
// production deployments provision keys out of band and never export the
// private half.
func (s *Ed25519Signer) PrivateKey() string {
	return hex.EncodeToString(s.privKey)
}

// Verify checks a hex-encoded Ed25519 signature over data against a
// hex-encoded public key. It is deterministic and side-effect-free.
func Verify(pubKeyHex, sigHex string, data []byte) (bool, error) {
	pubKey, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return false, fmt.Errorf("invalid public key hex: %w", err)
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, fmt.Errorf("invalid signature hex: %w", err)
	}

	if len(pubKey) != ed25519.PublicKeySize {
		return false, fmt.Errorf("invalid public key size")
	}
	if len(sig) != ed25519.SignatureSize {
		return false, fmt.Errorf("invalid signature size")
	}

	return ed25519.Verify(ed25519.PublicKey(pubKey), data, sig), nil
}
