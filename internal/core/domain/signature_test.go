package domain

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingSignatureRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	hash := HashCredentialData([]byte(`{"degree":"BSc","university":"MIT"}`))
	msg := BindingMessage("c1", "did:example:issuer", "did:example:bob", hash)

	sig, err := SignBinding(msg, key)
	require.NoError(t, err)

	t.Run("should recover the signer address", func(t *testing.T) {
		got, err := RecoverSigner(msg, sig)
		require.NoError(t, err)
		assert.Equal(t, signer, got)
	})

	t.Run("should accept 27/28 recovery ids", func(t *testing.T) {
		legacy := make([]byte, len(sig))
		copy(legacy, sig)
		legacy[64] += 27
		got, err := RecoverSigner(msg, legacy)
		require.NoError(t, err)
		assert.Equal(t, signer, got)
	})

	t.Run("should not recover the signer for a different message", func(t *testing.T) {
		other := BindingMessage("c2", "did:example:issuer", "did:example:bob", hash)
		got, err := RecoverSigner(other, sig)
		if err == nil {
			assert.NotEqual(t, signer, got)
		}
	})

	t.Run("should reject malformed signatures", func(t *testing.T) {
		_, err := RecoverSigner(msg, sig[:10])
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestBindingMessageIsDeterministic(t *testing.T) {
	hash := HashCredentialData([]byte(`{"a":1}`))
	m1 := BindingMessage("c1", "did:x:i", "did:x:s", hash)
	m2 := BindingMessage("c1", "did:x:i", "did:x:s", hash)
	assert.Equal(t, m1, m2)

	m3 := BindingMessage("c1", "did:x:i", "did:x:t", hash)
	assert.NotEqual(t, m1, m3)
}
