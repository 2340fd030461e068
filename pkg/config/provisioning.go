package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TrustedKey is one authorized-key entry in a provisioning file.
type TrustedKey struct {
	KeyID     string `yaml:"key_id" json:"key_id"`
	PublicKey string `yaml:"public_key" json:"public_key"`
}

// TrustedKeys is the provisioning file shape:
//
//	keys:
//	  - key_id: admin
//	    public_key: <hex ed25519 public key>
//
// This is the out-of-band provisioning path that replaces demo bootstrap in
// real deployments.
type TrustedKeys struct {
	Keys []TrustedKey `yaml:"keys" json:"keys"`
}

// LoadTrustedKeys reads and validates a YAML provisioning file.
func LoadTrustedKeys(path string) (*TrustedKeys, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trusted keys file: %w", err)
	}

	var keys TrustedKeys
	if err := yaml.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("parsing trusted keys file %s: %w", path, err)
	}

	for i, k := range keys.Keys {
		if k.KeyID == "" {
			return nil, fmt.Errorf("trusted keys file %s: entry %d missing key_id", path, i)
		}
		if k.PublicKey == "" {
			return nil, fmt.Errorf("trusted keys file %s: entry %d (%s) missing public_key", path, i, k.KeyID)
		}
	}
	return &keys, nil
}
