package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	signer, err := NewEd25519Signer("test-key")
	require.NoError(t, err)

	data := []byte(`(define x 5)`)
	sig, err := signer.Sign(data)
	require.NoError(t, err)

	ok, err := Verify(signer.PublicKey(), sig, data)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	signer, err := NewEd25519Signer("test-key")
	require.NoError(t, err)

	sig, err := signer.Sign([]byte("original"))
	require.NoError(t, err)

	ok, err := Verify(signer.PublicKey(), sig, []byte("tampered"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	signer, err := NewEd25519Signer("a")
	require.NoError(t, err)
	other, err := NewEd25519Signer("b")
	require.NoError(t, err)

	data := []byte("payload")
	sig, err := signer.Sign(data)
	require.NoError(t, err)

	ok, err := Verify(other.PublicKey(), sig, data)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyMalformedInputs(t *testing.T) {
	signer, err := NewEd25519Signer("test-key")
	require.NoError(t, err)
	sig, err := signer.Sign([]byte("x"))
	require.NoError(t, err)

	tests := []struct {
		name string
		pub  string
		sig  string
	}{
		{"bad public key hex", "zz", sig},
		{"bad signature hex", signer.PublicKey(), "zz"},
		{"short public key", "abcd", sig},
		{"short signature", signer.PublicKey(), "abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Verify(tt.pub, tt.sig, []byte("x"))
			require.Error(t, err)
			require.False(t, ok)
		})
	}
}
