package ports

import "context"

// Ledger groups the registry and verifier contracts executed by the ledger
// together with the connectivity probe used by health checks.
type Ledger interface {
	DIDRegistry
	CredentialRegistry
	CredentialVerifier
	// LatestBlock returns the current block height. An error means the ledger
	// is unreachable.
	LatestBlock(ctx context.Context) (uint64, error)
}
