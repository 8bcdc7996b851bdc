package contentstore

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/veridlabs/id-node/internal/core/ports"
	client "github.com/veridlabs/id-node/pkg/http"
)

// ErrReadOnlyStore is returned when writing through a gateway backed store.
var ErrReadOnlyStore = errors.New("content store is read only")

type gatewayStore struct {
	gatewayURL string
	http       *client.Client
}

// NewGatewayStore returns a read only ContentStore that resolves ipfs:// uris
// through a public http gateway. Put always fails.
func NewGatewayStore(gatewayURL string, httpClient *client.Client) ports.ContentStore {
	return &gatewayStore{
		gatewayURL: strings.TrimSuffix(gatewayURL, "/"),
		http:       httpClient,
	}
}

// Put is not supported on gateway backed stores.
func (s *gatewayStore) Put(_ context.Context, _ any) (string, error) {
	return "", ErrReadOnlyStore
}

// Get fetches the document at uri through the gateway and decodes it into dst.
func (s *gatewayStore) Get(ctx context.Context, uri string, dst any) error {
	cid, err := CID(uri)
	if err != nil {
		return err
	}

	body, err := s.http.Get(ctx, s.gatewayURL+"/ipfs/"+cid)
	if err != nil {
		return errors.Wrap(err, "fetching document from gateway")
	}

	return errors.Wrap(json.Unmarshal(body, dst), "decoding document")
}
