package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/pkg/errors"

	"github.com/veridlabs/id-node/internal/core/ports"
)

type ipfsStore struct {
	shell *shell.Shell
}

// NewIPFSStore returns a ContentStore backed by an IPFS node API.
// timeout bounds each Put and Get call.
func NewIPFSStore(apiAddress string, timeout time.Duration) ports.ContentStore {
	sh := shell.NewShell(apiAddress)
	sh.SetTimeout(timeout)
	return &ipfsStore{shell: sh}
}

// Put pins the json encoding of doc and returns its ipfs:// uri.
func (s *ipfsStore) Put(_ context.Context, doc any) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "encoding document")
	}

	cid, err := s.shell.Add(bytes.NewReader(raw), shell.Pin(true))
	if err != nil {
		return "", errors.Wrap(err, "adding document to ipfs")
	}

	return URI(cid), nil
}

// Get fetches the document at uri and decodes it into dst.
func (s *ipfsStore) Get(_ context.Context, uri string, dst any) error {
	cid, err := CID(uri)
	if err != nil {
		return err
	}

	body, err := s.shell.Cat(cid)
	if err != nil {
		return errors.Wrap(err, "fetching document from ipfs")
	}
	defer func() { _ = body.Close() }()

	raw, err := io.ReadAll(body)
	if err != nil {
		return errors.Wrap(err, "reading ipfs response")
	}

	return errors.Wrap(json.Unmarshal(raw, dst), "decoding document")
}
