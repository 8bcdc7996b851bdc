package api

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridlabs/id-node/internal/cache"
	"github.com/veridlabs/id-node/internal/config"
	"github.com/veridlabs/id-node/internal/contentstore"
	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/services"
	"github.com/veridlabs/id-node/internal/health"
	"github.com/veridlabs/id-node/internal/ledger"
	"github.com/veridlabs/id-node/pkg/pubsub"
)

const (
	authUser     = "idnode"
	authPassword = "test-password"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Configuration{
		ServerURL:  "http://localhost:3001",
		ServerPort: 3001,
		HTTPBasicAuth: config.HTTPBasicAuth{
			User:     authUser,
			Password: authPassword,
		},
	}

	l := ledger.New(ledger.NewMemoryStore())
	store := contentstore.NewMemoryStore()
	cachex := cache.NewMemoryCache()
	events := pubsub.NewMock()

	identityService := services.NewIdentity(l, cachex, events, time.Minute)
	credentialService := services.NewCredential(l, store, events)
	verificationService := services.NewVerification(l, store, cachex, time.Minute)

	server := NewServer(cfg, identityService, credentialService, verificationService, l, health.New(health.LedgerPinger{Ledger: l}))
	mux := chi.NewRouter()
	server.Routes(context.Background(), mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, payload any, auth bool) (*http.Response, []byte) {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.SetBasicAuth(authUser, authPassword)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

type apiIssuer struct {
	DID     string
	Key     *ecdsa.PrivateKey
	Address common.Address
}

func createIdentity(t *testing.T, ts *httptest.Server, did string) apiIssuer {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/identities", CreateIdentityRequest{
		DID:             did,
		Controller:      addr.Hex(),
		PublicKey:       hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey)),
		ServiceEndpoint: "https://issuer.example.com",
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return apiIssuer{DID: did, Key: key, Address: addr}
}

func issueCredential(t *testing.T, ts *httptest.Server, issuer apiIssuer, credentialID, subjectDID string, data json.RawMessage) IssueCredentialResponse {
	t.Helper()
	hash := domain.HashCredentialData(data)
	msg := domain.BindingMessage(credentialID, issuer.DID, subjectDID, hash)
	sig, err := domain.SignBinding(msg, issuer.Key)
	require.NoError(t, err)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/issue", IssueCredentialRequest{
		CredentialID:    credentialID,
		IssuerDID:       issuer.DID,
		SubjectDID:      subjectDID,
		CredentialType:  "DegreeCredential",
		CredentialData:  data,
		Signature:       hexutil.Encode(sig),
		SigningIdentity: issuer.Address.Hex(),
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out IssueCredentialResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestCredentialLifecycle(t *testing.T) {
	ts := newTestServer(t)
	issuer := createIdentity(t, ts, "did:verid:university")
	subject := "did:verid:alice"
	data := json.RawMessage(`{"degree":"BSc","graduated":2024}`)

	issued := issueCredential(t, ts, issuer, "cred-1", subject, data)
	assert.Equal(t, domain.HashCredentialData(data).Hex(), issued.CredentialHash)
	assert.NotEmpty(t, issued.Receipt.TxID)

	t.Run("should verify the active credential", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/verify", VerifyCredentialRequest{CredentialID: "cred-1"}, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out VerifyCredentialResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.True(t, out.IsValid)
		assert.Empty(t, out.Reason)
		require.NotNil(t, out.Credential)
		assert.Equal(t, "active", out.Credential.Status)
		assert.NotNil(t, out.Metadata)
	})

	t.Run("should verify with a matching hash proof", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/verify", VerifyCredentialRequest{
			CredentialID: "cred-1",
			ExpectedHash: issued.CredentialHash,
		}, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out VerifyCredentialResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.True(t, out.IsValid)
	})

	t.Run("should report a hash mismatch", func(t *testing.T) {
		tampered := domain.HashCredentialData(json.RawMessage(`{"degree":"forged"}`))
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/verify", VerifyCredentialRequest{
			CredentialID: "cred-1",
			ExpectedHash: tampered.Hex(),
		}, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out VerifyCredentialResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.False(t, out.IsValid)
		assert.Equal(t, domain.ReasonHashMismatch, out.Reason)
	})

	t.Run("should list the subject credentials", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/credentials/subject/"+subject, nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out ListBySubjectResponse
		require.NoError(t, json.Unmarshal(body, &out))
		require.Len(t, out.Credentials, 1)
		assert.Equal(t, "cred-1", out.Credentials[0].Credential.ID)
		assert.True(t, out.Credentials[0].IsValid)
		assert.NotNil(t, out.Credentials[0].Metadata)
	})

	t.Run("should revoke and then fail verification", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/revoke", RevokeCredentialRequest{
			CredentialID: "cred-1",
			Signer:       issuer.Address.Hex(),
		}, true)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		resp, body = doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/verify", VerifyCredentialRequest{CredentialID: "cred-1"}, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out VerifyCredentialResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.False(t, out.IsValid)
		assert.Equal(t, domain.ReasonRevoked, out.Reason)
	})

	t.Run("should refuse to revoke twice", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/revoke", RevokeCredentialRequest{
			CredentialID: "cred-1",
			Signer:       issuer.Address.Hex(),
		}, true)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestIssueErrors(t *testing.T) {
	ts := newTestServer(t)
	issuer := createIdentity(t, ts, "did:verid:issuer1")
	data := json.RawMessage(`{"a":1}`)

	t.Run("should reject a duplicate credential id", func(t *testing.T) {
		issueCredential(t, ts, issuer, "cred-dup", "did:verid:subject1", data)

		hash := domain.HashCredentialData(data)
		msg := domain.BindingMessage("cred-dup", issuer.DID, "did:verid:subject1", hash)
		sig, err := domain.SignBinding(msg, issuer.Key)
		require.NoError(t, err)

		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/issue", IssueCredentialRequest{
			CredentialID:    "cred-dup",
			IssuerDID:       issuer.DID,
			SubjectDID:      "did:verid:subject1",
			CredentialType:  "DegreeCredential",
			CredentialData:  data,
			Signature:       hexutil.Encode(sig),
			SigningIdentity: issuer.Address.Hex(),
		}, true)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("should reject a signature from a non controller", func(t *testing.T) {
		intruderKey, err := crypto.GenerateKey()
		require.NoError(t, err)

		hash := domain.HashCredentialData(data)
		msg := domain.BindingMessage("cred-2", issuer.DID, "did:verid:subject1", hash)
		sig, err := domain.SignBinding(msg, intruderKey)
		require.NoError(t, err)

		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/issue", IssueCredentialRequest{
			CredentialID:    "cred-2",
			IssuerDID:       issuer.DID,
			SubjectDID:      "did:verid:subject1",
			CredentialType:  "DegreeCredential",
			CredentialData:  data,
			Signature:       hexutil.Encode(sig),
			SigningIdentity: crypto.PubkeyToAddress(intruderKey.PublicKey).Hex(),
		}, true)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("should reject an unknown issuer", func(t *testing.T) {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)

		hash := domain.HashCredentialData(data)
		msg := domain.BindingMessage("cred-3", "did:verid:ghost", "did:verid:subject1", hash)
		sig, err := domain.SignBinding(msg, key)
		require.NoError(t, err)

		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/issue", IssueCredentialRequest{
			CredentialID:    "cred-3",
			IssuerDID:       "did:verid:ghost",
			SubjectDID:      "did:verid:subject1",
			CredentialType:  "DegreeCredential",
			CredentialData:  data,
			Signature:       hexutil.Encode(sig),
			SigningIdentity: crypto.PubkeyToAddress(key.PublicKey).Hex(),
		}, true)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("should require basic auth", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/issue", IssueCredentialRequest{}, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("should refuse a revocation from a non controller", func(t *testing.T) {
		issueCredential(t, ts, issuer, "cred-4", "did:verid:subject1", data)
		other, err := crypto.GenerateKey()
		require.NoError(t, err)

		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/credentials/revoke", RevokeCredentialRequest{
			CredentialID: "cred-4",
			Signer:       crypto.PubkeyToAddress(other.PublicKey).Hex(),
		}, true)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestIdentityEndpoints(t *testing.T) {
	ts := newTestServer(t)
	issuer := createIdentity(t, ts, "did:verid:alice")

	t.Run("should resolve an anchored did", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/identities/did:verid:alice", nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out DIDDocument
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, issuer.Address.Hex(), out.Controller)
		assert.True(t, out.Active)
	})

	t.Run("should return 404 for an unknown did", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/v1/identities/did:verid:bob", nil, false)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("should return 409 for a duplicate did", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/identities", CreateIdentityRequest{
			DID:        "did:verid:alice",
			Controller: issuer.Address.Hex(),
		}, true)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("should return 400 for a malformed did", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/identities", CreateIdentityRequest{
			DID:        "not-a-did",
			Controller: issuer.Address.Hex(),
		}, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestStatusEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/status", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out StatusResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "healthy", out.Status)
	assert.True(t, out.Ledger.Connected)
	assert.True(t, out.Checks["ledger"])
}

func TestQuickVerifyEndpoint(t *testing.T) {
	ts := newTestServer(t)
	issuer := createIdentity(t, ts, "did:verid:issuer1")
	issueCredential(t, ts, issuer, "cred-1", "did:verid:subject1", json.RawMessage(`{"x":1}`))

	t.Run("should return the cheap verdict", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/v1/credentials/%s/quick-verify", ts.URL, "cred-1"), nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out QuickVerifyResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.True(t, out.IsValid)
		assert.Equal(t, issuer.DID, out.IssuerDID)
		assert.Equal(t, "active", out.Status)
	})

	t.Run("should fail closed for an unknown credential", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/v1/credentials/%s/quick-verify", ts.URL, "missing"), nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out QuickVerifyResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.False(t, out.IsValid)
	})
}
