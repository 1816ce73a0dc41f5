// Copyright 2025 Veyra Protocol
//
// Package firestore backs collaborator.AuditSink with a durable
// Firestore-backed store, grounded on the teacher's
// pkg/firestore/client.go: Firebase Admin SDK init, an Enabled flag
// that turns every write into a no-op for local development, and one
// document per entry, keyed by the entry's ID, rather than the teacher's
// per-user subcollection (each entry records the PID it concerns and is
// not filed under a user, per spec §3).
package firestore

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	gcpfirestore "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/veyra-network/vey-core/pkg/audit"
)

// Config configures the Sink.
type Config struct {
	ProjectID       string
	CredentialsFile string
	Collection      string // defaults to "auditEntries"
	Enabled         bool
	Logger          *log.Logger
}

// Sink implements collaborator.AuditSink over a Firestore collection.
// When disabled, Write is a logged no-op — matching the teacher's
// local-development escape hatch.
type Sink struct {
	client     *gcpfirestore.Client
	app        *firebase.App
	collection string
	logger     *log.Logger
	enabled    bool
}

// New creates a Sink per cfg. With cfg.Enabled false, no Firebase app is
// initialized and every Write call is a no-op.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "[AuditFirestore] ", log.LstdFlags)
	}
	if cfg.Collection == "" {
		cfg.Collection = "auditEntries"
	}

	s := &Sink{collection: cfg.Collection, logger: cfg.Logger, enabled: cfg.Enabled}
	if !cfg.Enabled {
		cfg.Logger.Println("firestore audit sink disabled - writes are no-ops")
		return s, nil
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore: project id is required when enabled")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: init app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore: init client: %w", err)
	}
	s.app, s.client = app, client
	cfg.Logger.Printf("firestore audit sink initialized for project %s", cfg.ProjectID)
	return s, nil
}

// Close releases the underlying Firestore client.
func (s *Sink) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Write implements collaborator.AuditSink, committing entry before
// returning — no buffering — so the resolver's durable-before-response
// requirement (spec §9) holds against the real backend too.
func (s *Sink) Write(entry audit.Entry) error {
	if !s.enabled {
		s.logger.Printf("disabled - skipping audit entry pid=%s action=%s", entry.PID, entry.Action)
		return nil
	}
	if s.client == nil {
		return fmt.Errorf("firestore: client not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.client.Collection(s.collection).Doc(entry.ID).Set(ctx, map[string]interface{}{
		"pid":         entry.PID,
		"accessorDid": entry.AccessorDID,
		"action":      entry.Action,
		"result":      string(entry.Result),
		"timestamp":   entry.Timestamp,
		"metadata":    entry.Metadata,
	})
	if err != nil {
		s.logger.Printf("failed to write audit entry pid=%s: %v", entry.PID, err)
		return fmt.Errorf("firestore: write audit entry: %w", err)
	}
	return nil
}
