package domain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidSignature is returned when a signature cannot be recovered to a signer
var ErrInvalidSignature = errors.New("invalid signature")

const signatureLen = 65

// HashCredentialData returns the keccak256 hash of the raw credential data
// document. The hash is computed over the JSON bytes as submitted, so callers
// must sign the exact payload they send.
func HashCredentialData(data []byte) common.Hash {
	return crypto.Keccak256Hash(data)
}

// BindingMessage returns the canonical message a credential issuance must be
// signed over: keccak256 of the packed concatenation of the credential id,
// the issuer DID, the subject DID and the hex form of the content hash.
func BindingMessage(id, issuerDID, subjectDID string, credentialHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(
		[]byte(id),
		[]byte(issuerDID),
		[]byte(subjectDID),
		[]byte(credentialHash.Hex()),
	)
}

// SignBinding signs the binding message with the given key using the ethereum
// personal message scheme. It exists for tests and client tooling, the server
// never holds issuer keys.
func SignBinding(msg common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg.Bytes()), key)
	if err != nil {
		return nil, fmt.Errorf("signing binding message: %w", err)
	}
	return sig, nil
}

// RecoverSigner returns the address that signed the binding message. It
// accepts both 0/1 and 27/28 recovery ids.
func RecoverSigner(msg common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != signatureLen {
		return common.Address{}, ErrInvalidSignature
	}
	s := make([]byte, signatureLen)
	copy(s, sig)
	if s[64] >= 27 {
		s[64] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(msg.Bytes()), s)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pub), nil
}
