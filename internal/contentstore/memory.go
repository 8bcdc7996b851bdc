package contentstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/veridlabs/id-node/internal/core/ports"
)

// ErrContentNotFound is returned when a uri does not resolve to a document.
var ErrContentNotFound = errors.New("content not found")

// memoryStore keeps documents in process. Content identifiers are derived
// from the document bytes so equal documents share a uri, like ipfs CIDs.
type memoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns an in memory ContentStore for tests and the
// embedded ledger mode.
func NewMemoryStore() ports.ContentStore {
	return &memoryStore{docs: map[string][]byte{}}
}

func (s *memoryStore) Put(_ context.Context, doc any) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "encoding document")
	}
	cid := crypto.Keccak256Hash(raw).Hex()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[cid] = raw

	return URI(cid), nil
}

func (s *memoryStore) Get(_ context.Context, uri string, dst any) error {
	cid, err := CID(uri)
	if err != nil {
		return err
	}

	s.mu.RLock()
	raw, ok := s.docs[cid]
	s.mu.RUnlock()
	if !ok {
		return errors.Wrap(ErrContentNotFound, uri)
	}

	return errors.Wrap(json.Unmarshal(raw, dst), "decoding document")
}
