// Copyright 2025 Veyra Protocol
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veyra-network/vey-core/pkg/audit"
)

const defaultQueryTimeout = 5 * time.Second

// AuditSink implements collaborator.AuditSink over the audit_entries
// table. Write commits synchronously so the resolver's "durable before
// response" requirement (spec §9) holds without any buffering layer.
type AuditSink struct {
	client *Client
}

// NewAuditSink wraps client.
func NewAuditSink(client *Client) *AuditSink {
	return &AuditSink{client: client}
}

// Write implements collaborator.AuditSink.
func (a *AuditSink) Write(entry audit.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	var metaJSON []byte
	if len(entry.Metadata) > 0 {
		var err error
		metaJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("postgres: encode audit metadata: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()
	_, err := a.client.DB().ExecContext(ctx, `
		INSERT INTO audit_entries (id, pid, accessor_did, action, result, occurred_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.PID, entry.AccessorDID, entry.Action, string(entry.Result), entry.Timestamp, metaJSON)
	if err != nil {
		return fmt.Errorf("postgres: write audit entry: %w", err)
	}
	return nil
}
