package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/internal/db"
	"github.com/veridlabs/id-node/internal/ledger"
)

const duplicateViolationErrorCode = "23505"

type ledgerStore struct {
	conn db.Querier
}

// NewLedgerStore returns a postgres backed store for the embedded ledger.
// Commits run inside a single transaction and bump the block counter once.
func NewLedgerStore(conn db.Querier) ledger.Store {
	return &ledgerStore{conn: conn}
}

// CreateDID persists a DID document
func (s *ledgerStore) CreateDID(ctx context.Context, doc *domain.DIDDocument) (uint64, error) {
	var block uint64
	err := s.conn.BeginFunc(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO did_documents (did, controller, public_key, service_endpoint, created_at, updated_at, active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			doc.DID, doc.Controller.Hex(), doc.PublicKey, doc.ServiceEndpoint, doc.Created, doc.Updated, doc.Active)
		if err != nil {
			if isDuplicate(err) {
				return ports.ErrDIDAlreadyExists
			}
			return err
		}
		block, err = bumpBlock(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return block, nil
}

// GetDID returns the stored DID document
func (s *ledgerStore) GetDID(ctx context.Context, did string) (*domain.DIDDocument, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT did, controller, public_key, service_endpoint, created_at, updated_at, active
		 FROM did_documents WHERE did = $1`, did)

	var (
		doc        domain.DIDDocument
		controller string
	)
	err := row.Scan(&doc.DID, &controller, &doc.PublicKey, &doc.ServiceEndpoint, &doc.Created, &doc.Updated, &doc.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrDIDNotFound
		}
		return nil, err
	}
	doc.Controller = common.HexToAddress(controller)
	return &doc, nil
}

// CreateCredential persists a credential and its subject index entry
func (s *ledgerStore) CreateCredential(ctx context.Context, cred *domain.Credential) (uint64, error) {
	var block uint64
	err := s.conn.BeginFunc(ctx, func(tx pgx.Tx) error {
		var expiration *time.Time
		if !cred.ExpirationDate.IsZero() {
			expiration = &cred.ExpirationDate
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO credentials (id, issuer_did, subject_did, credential_type, credential_hash, metadata_uri,
			                          issuance_date, expiration_date, status, signature)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			cred.ID, cred.IssuerDID, cred.SubjectDID, cred.CredentialType, cred.CredentialHash.Bytes(),
			cred.MetadataURI, cred.IssuanceDate, expiration, int16(cred.Status), cred.Signature)
		if err != nil {
			if isDuplicate(err) {
				return ports.ErrCredentialAlreadyExists
			}
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO credential_subject_index (subject_did, credential_id) VALUES ($1, $2)`,
			cred.SubjectDID, cred.ID); err != nil {
			return err
		}
		block, err = bumpBlock(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return block, nil
}

// GetCredential returns the stored credential record
func (s *ledgerStore) GetCredential(ctx context.Context, credentialID string) (*domain.Credential, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT id, issuer_did, subject_did, credential_type, credential_hash, metadata_uri,
		        issuance_date, expiration_date, status, signature
		 FROM credentials WHERE id = $1`, credentialID)

	var (
		cred       domain.Credential
		hash       []byte
		expiration sql.NullTime
		status     int16
	)
	err := row.Scan(&cred.ID, &cred.IssuerDID, &cred.SubjectDID, &cred.CredentialType, &hash,
		&cred.MetadataURI, &cred.IssuanceDate, &expiration, &status, &cred.Signature)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrCredentialNotFound
		}
		return nil, err
	}
	cred.CredentialHash = common.BytesToHash(hash)
	if expiration.Valid {
		cred.ExpirationDate = expiration.Time
	}
	cred.Status = domain.CredentialStatus(status)
	return &cred, nil
}

// RevokeCredential flips the stored status to Revoked
func (s *ledgerStore) RevokeCredential(ctx context.Context, credentialID string) (uint64, error) {
	var block uint64
	err := s.conn.BeginFunc(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE credentials SET status = $1 WHERE id = $2 AND status <> $1`,
			int16(domain.StatusRevoked), credentialID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var status int16
			err := tx.QueryRow(ctx, `SELECT status FROM credentials WHERE id = $1`, credentialID).Scan(&status)
			if errors.Is(err, pgx.ErrNoRows) {
				return ports.ErrCredentialNotFound
			}
			if err != nil {
				return err
			}
			return ports.ErrCredentialAlreadyRevoked
		}
		block, err = bumpBlock(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return block, nil
}

// SubjectCredentials returns credential ids for the subject in issuance order
func (s *ledgerStore) SubjectCredentials(ctx context.Context, subjectDID string) ([]string, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT credential_id FROM credential_subject_index WHERE subject_did = $1 ORDER BY position`,
		subjectDID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LatestBlock returns the current block height
func (s *ledgerStore) LatestBlock(ctx context.Context) (uint64, error) {
	var height uint64
	if err := s.conn.QueryRow(ctx, `SELECT height FROM ledger_blocks`).Scan(&height); err != nil {
		return 0, fmt.Errorf("reading ledger height: %w", err)
	}
	return height, nil
}

func bumpBlock(ctx context.Context, tx pgx.Tx) (uint64, error) {
	var height uint64
	err := tx.QueryRow(ctx, `UPDATE ledger_blocks SET height = height + 1 RETURNING height`).Scan(&height)
	return height, err
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == duplicateViolationErrorCode
}
