// Package trust holds the authorized-key registry: the set of public keys
// whose signatures the update pipeline accepts.
package trust

import (
	"sync"

	"github.com/gridlink-labs/gridlink/pkg/crypto"
)

// Keypair is the result of demo bootstrap provisioning. Returning the
// private half is acceptable only for local demos and test harnesses.
type Keypair struct {
	KeyID      string
	PublicKey  string
	PrivateKey string
}

// KeyRegistry maps key identifiers to hex-encoded Ed25519 public keys.
// Registration is an unconditional upsert: re-registering a keyID replaces
// the previous key material.
type KeyRegistry struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewKeyRegistry creates an empty registry.
func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{
		keys: make(map[string]string),
	}
}

// Register upserts public key material under keyID.
func (r *KeyRegistry) Register(keyID, publicKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[keyID] = publicKey
}

// Lookup returns the public key registered under keyID.
func (r *KeyRegistry) Lookup(keyID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.keys[keyID]
	return key, ok
}

// Len returns the number of registered keys.
func (r *KeyRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// Bootstrap generates a demo keypair and registers its public half under
// the "admin" key identifier. Production deployments provision keys out of
// band (see config.LoadTrustedKeys) and must not use this path.
func (r *KeyRegistry) Bootstrap() (Keypair, error) {
	signer, err := crypto.NewEd25519Signer("admin")
	if err != nil {
		return Keypair{}, err
	}
	r.Register(signer.KeyID, signer.PublicKey())
	return Keypair{
		KeyID:      signer.KeyID,
		PublicKey:  signer.PublicKey(),
		PrivateKey: signer.PrivateKey(),
	}, nil
}
