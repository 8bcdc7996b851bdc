package services

import "errors"

var (
	// ErrEmptyCredentialData the claim payload is missing
	ErrEmptyCredentialData = errors.New("credential data can not be empty")
	// ErrEmptyCredentialID the credential id is missing
	ErrEmptyCredentialID = errors.New("credential id can not be empty")
	// ErrContentStoreUnavailable the content store write or read failed
	ErrContentStoreUnavailable = errors.New("content store unavailable")
	// ErrLedgerUnavailable the ledger could not be reached
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)
