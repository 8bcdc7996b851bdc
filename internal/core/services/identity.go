package services

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/veridlabs/id-node/internal/cache"
	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/internal/log"
	"github.com/veridlabs/id-node/pkg/pubsub"
)

type identity struct {
	registry ports.DIDRegistry
	cache    cache.Cache
	events   pubsub.Publisher
	didTTL   time.Duration
}

// NewIdentity creates an identity service over a DID registry.
func NewIdentity(registry ports.DIDRegistry, cachex cache.Cache, events pubsub.Publisher, didTTL time.Duration) ports.IdentityService {
	return &identity{
		registry: registry,
		cache:    cachex,
		events:   events,
		didTTL:   didTTL,
	}
}

// Create anchors a new DID document and publishes the didCreated event.
func (i *identity) Create(ctx context.Context, req *ports.CreateDIDRequest) (*domain.TxReceipt, error) {
	if err := domain.ValidateDID(req.DID); err != nil {
		return nil, err
	}

	receipt, err := i.registry.CreateDID(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := i.cache.Delete(ctx, didCacheKey(req.DID)); err != nil {
		log.Warn(ctx, "invalidating did cache entry", "err", err, "did", req.DID)
	}

	if err := i.events.Publish(ctx, pubsub.EventDIDCreated, &pubsub.DIDCreatedEvent{
		DID:        req.DID,
		Controller: req.Controller.Hex(),
	}); err != nil {
		log.Error(ctx, "publishing didCreated event", "err", err, "did", req.DID)
	}

	return receipt, nil
}

// Get resolves a DID document, serving repeated lookups from cache.
func (i *identity) Get(ctx context.Context, did string) (*domain.DIDDocument, error) {
	if err := domain.ValidateDID(did); err != nil {
		return nil, err
	}

	var doc domain.DIDDocument
	if i.cache.Get(ctx, didCacheKey(did), &doc) {
		return &doc, nil
	}

	resolved, err := i.registry.GetDIDDocument(ctx, did)
	if err != nil {
		return nil, err
	}

	if err := i.cache.Set(ctx, didCacheKey(did), resolved, i.didTTL); err != nil {
		log.Warn(ctx, "caching did document", "err", err, "did", did)
	}

	return resolved, nil
}

// VerifyController reports whether identity controls an active did.
func (i *identity) VerifyController(ctx context.Context, did string, controller common.Address) (bool, error) {
	if err := domain.ValidateDID(did); err != nil {
		return false, err
	}
	return i.registry.VerifyController(ctx, did, controller)
}

func didCacheKey(did string) string {
	return "did-doc:" + did
}
