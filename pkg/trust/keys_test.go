package trust

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	reg := NewKeyRegistry()

	_, ok := reg.Lookup("admin")
	require.False(t, ok)

	reg.Register("admin", "aabbcc")
	key, ok := reg.Lookup("admin")
	require.True(t, ok)
	require.Equal(t, "aabbcc", key)
}

func TestRegisterUpserts(t *testing.T) {
	reg := NewKeyRegistry()

	reg.Register("admin", "old")
	reg.Register("admin", "new")

	key, ok := reg.Lookup("admin")
	require.True(t, ok)
	require.Equal(t, "new", key)
	require.Equal(t, 1, reg.Len())
}

func TestBootstrapRegistersAdminKey(t *testing.T) {
	reg := NewKeyRegistry()

	kp, err := reg.Bootstrap()
	require.NoError(t, err)
	require.Equal(t, "admin", kp.KeyID)
	require.NotEmpty(t, kp.PublicKey)
	require.NotEmpty(t, kp.PrivateKey)

	registered, ok := reg.Lookup("admin")
	require.True(t, ok)
	require.Equal(t, kp.PublicKey, registered)
}
