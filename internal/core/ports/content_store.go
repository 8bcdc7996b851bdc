package ports

import "context"

// ContentStore is a content addressed blob store (IPFS like). Put pins a
// JSON document and returns its ipfs:// uri. Get fetches a document into dst.
// Both may fail transiently, callers decide whether a failure is fatal.
type ContentStore interface {
	Put(ctx context.Context, doc any) (uri string, err error)
	Get(ctx context.Context, uri string, dst any) error
}
