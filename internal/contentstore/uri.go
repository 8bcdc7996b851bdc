package contentstore

import (
	"strings"

	"github.com/pkg/errors"
)

// Scheme is the uri scheme used for stored metadata documents.
const Scheme = "ipfs://"

// ErrInvalidURI is returned when a metadata uri has an unexpected format.
var ErrInvalidURI = errors.New("invalid content uri")

// CID extracts the content identifier from an ipfs:// uri.
func CID(uri string) (string, error) {
	cid, ok := strings.CutPrefix(uri, Scheme)
	if !ok || cid == "" {
		return "", errors.Wrap(ErrInvalidURI, uri)
	}
	return cid, nil
}

// URI builds an ipfs:// uri from a content identifier.
func URI(cid string) string {
	return Scheme + cid
}
