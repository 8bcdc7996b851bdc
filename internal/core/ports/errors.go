package ports

import "errors"

// Registry sentinel errors. Both the embedded ledger and the ethereum
// gateways translate their failures into these so the service layer can map
// them to caller facing categories.
var (
	// ErrDIDAlreadyExists the DID is already registered
	ErrDIDAlreadyExists = errors.New("DID already registered")
	// ErrDIDNotFound the DID is not registered
	ErrDIDNotFound = errors.New("DID not found")
	// ErrDIDInactive the DID document has been deactivated
	ErrDIDInactive = errors.New("DID is not active")
	// ErrCredentialAlreadyExists a credential with the same id is already on the ledger
	ErrCredentialAlreadyExists = errors.New("credential id already exists")
	// ErrCredentialNotFound the credential is not on the ledger
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrCredentialAlreadyRevoked the credential is in the terminal revoked state
	ErrCredentialAlreadyRevoked = errors.New("credential already revoked")
	// ErrNotController the caller does not control the DID it acts for
	ErrNotController = errors.New("caller is not the DID controller")
)
