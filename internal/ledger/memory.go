package ledger

import (
	"context"
	"sync"

	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
)

// memoryStore keeps the ledger state in process. Used in tests and when no
// database is configured. State does not survive restarts.
type memoryStore struct {
	mu           sync.RWMutex
	dids         map[string]domain.DIDDocument
	credentials  map[string]domain.Credential
	subjectIndex map[string][]string
	block        uint64
}

// NewMemoryStore returns an in memory ledger store
func NewMemoryStore() Store {
	return &memoryStore{
		dids:         make(map[string]domain.DIDDocument),
		credentials:  make(map[string]domain.Credential),
		subjectIndex: make(map[string][]string),
	}
}

func (m *memoryStore) CreateDID(_ context.Context, doc *domain.DIDDocument) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.dids[doc.DID]; ok {
		return 0, ports.ErrDIDAlreadyExists
	}
	m.dids[doc.DID] = *doc
	m.block++
	return m.block, nil
}

func (m *memoryStore) GetDID(_ context.Context, did string) (*domain.DIDDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.dids[did]
	if !ok {
		return nil, ports.ErrDIDNotFound
	}
	return &doc, nil
}

func (m *memoryStore) CreateCredential(_ context.Context, cred *domain.Credential) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.credentials[cred.ID]; ok {
		return 0, ports.ErrCredentialAlreadyExists
	}
	m.credentials[cred.ID] = *cred
	m.subjectIndex[cred.SubjectDID] = append(m.subjectIndex[cred.SubjectDID], cred.ID)
	m.block++
	return m.block, nil
}

func (m *memoryStore) GetCredential(_ context.Context, credentialID string) (*domain.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cred, ok := m.credentials[credentialID]
	if !ok {
		return nil, ports.ErrCredentialNotFound
	}
	return &cred, nil
}

func (m *memoryStore) RevokeCredential(_ context.Context, credentialID string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, ok := m.credentials[credentialID]
	if !ok {
		return 0, ports.ErrCredentialNotFound
	}
	if cred.Status == domain.StatusRevoked {
		return 0, ports.ErrCredentialAlreadyRevoked
	}
	cred.Status = domain.StatusRevoked
	m.credentials[credentialID] = cred
	m.block++
	return m.block, nil
}

func (m *memoryStore) SubjectCredentials(_ context.Context, subjectDID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.subjectIndex[subjectDID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *memoryStore) LatestBlock(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.block, nil
}
