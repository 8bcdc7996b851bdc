package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidDID is returned when a DID string does not follow the did:<method>:<identifier> scheme
var ErrInvalidDID = errors.New("invalid DID format")

var didPattern = regexp.MustCompile(`^did:[a-z0-9]+:[A-Za-z0-9._:%-]+$`)

// DIDDocument is the on ledger record a DID resolves to. It is created once by
// its controller and never physically deleted. Deactivation flips Active to false.
type DIDDocument struct {
	DID             string
	Controller      common.Address
	PublicKey       string
	ServiceEndpoint string
	Created         time.Time
	Updated         time.Time
	Active          bool
}

// ValidateDID checks the did:<method>:<identifier> scheme
func ValidateDID(did string) error {
	if !didPattern.MatchString(did) {
		return ErrInvalidDID
	}
	return nil
}
