// Copyright 2025 Veyra Protocol
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/veyra-network/vey-core/pkg/revocation"
	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// RevocationStore implements collaborator.RevocationStorage over a
// single-row-per-issuer table, storing each list as its JSON document
// (the whole list is small and always read/written as a unit — spec
// §4.F's successor lists are append-and-replace, not row-per-entry).
type RevocationStore struct {
	client *Client
}

// NewRevocationStore wraps client.
func NewRevocationStore(client *Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// LatestList implements collaborator.RevocationStorage.
func (s *RevocationStore) LatestList(issuer string) (revocation.List, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()

	var doc []byte
	err := s.client.DB().QueryRowContext(ctx,
		`SELECT document FROM revocation_lists WHERE issuer = $1`, issuer).Scan(&doc)
	if err != nil {
		return revocation.List{}, fmt.Errorf("%w: no revocation list for issuer %s: %v", vyerr.ErrInvalidFormat, issuer, err)
	}
	var list revocation.List
	if err := json.Unmarshal(doc, &list); err != nil {
		return revocation.List{}, fmt.Errorf("postgres: decode revocation list: %w", err)
	}
	return list, nil
}

// Append implements collaborator.RevocationStorage, upserting the
// issuer's row when list advances its stored version.
func (s *RevocationStore) Append(list revocation.List) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()

	doc, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("postgres: encode revocation list: %w", err)
	}
	_, err = s.client.DB().ExecContext(ctx, `
		INSERT INTO revocation_lists (issuer, version, created_at, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (issuer) DO UPDATE
		SET version = EXCLUDED.version, created_at = EXCLUDED.created_at, document = EXCLUDED.document
		WHERE revocation_lists.version < EXCLUDED.version
	`, list.Issuer, list.Version, list.CreatedAt, doc)
	if err != nil {
		return fmt.Errorf("postgres: append revocation list: %w", err)
	}
	return nil
}
