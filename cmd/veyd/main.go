// Copyright 2025 Veyra Protocol
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veyra-network/vey-core/pkg/amf"
	"github.com/veyra-network/vey-core/pkg/audit/firestore"
	"github.com/veyra-network/vey-core/pkg/collaborator"
	"github.com/veyra-network/vey-core/pkg/config"
	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	"github.com/veyra-network/vey-core/pkg/did"
	"github.com/veyra-network/vey-core/pkg/grammar"
	"github.com/veyra-network/vey-core/pkg/merkle"
	"github.com/veyra-network/vey-core/pkg/pid"
	"github.com/veyra-network/vey-core/pkg/provider"
	"github.com/veyra-network/vey-core/pkg/resolver"
	"github.com/veyra-network/vey-core/pkg/revocation"
	"github.com/veyra-network/vey-core/pkg/storage/memory"
	"github.com/veyra-network/vey-core/pkg/storage/postgres"
	"github.com/veyra-network/vey-core/pkg/telemetry"
	"github.com/veyra-network/vey-core/pkg/vc"
	"github.com/veyra-network/vey-core/pkg/zkp"
	"github.com/veyra-network/vey-core/pkg/zkp/address"
	"github.com/veyra-network/vey-core/pkg/zkp/groth16backend"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags)
	log.Printf("starting veyd - ZKP address protocol core demo host")

	var (
		policyFile = flag.String("policy-file", "", "path to a YAML access-control policy file (overrides VEY_POLICY_FILE)")
		showHelp   = flag.Bool("help", false, "show help message")
	)
	flag.Parse()
	if *showHelp {
		fmt.Println("veyd wires vey-core collaborators together and exercises the registration -> shipping -> resolution -> revocation lifecycle.")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *policyFile != "" {
		cfg.PolicyFilePath = *policyFile
	}
	if err := cfg.ValidateForDevelopment(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Phase 1: storage and audit collaborators. A Postgres DSN is
	// optional in development (spec §9/§4.F EXPANSION); absent one, the
	// in-memory reference stores carry the demo.
	revStore, auditSink, closeStorage := wireStorage(cfg)
	defer closeStorage()

	vcStore := memory.NewVCStore()
	keystore := memory.NewKeystore()
	clock := collaborator.SystemClock{}
	countryData := grammar.NewReferenceTable()

	backend := selectBackend(cfg)
	log.Printf("zkp backend: %s", backend.Name())

	// Phase 2: registration — issue a signed AddressPIDCredential.
	issuerDID := "did:web:issuer.example"
	issuerKP, err := vcrypto.GenerateKeyPair()
	if err != nil {
		log.Fatalf("internal crypto failure generating issuer key: %v", err)
	}
	keystore.Register(issuerDID, "key-1", issuerKP.PublicKey)
	issuerDoc := did.NewDocument(issuerDID, issuerKP.PublicKey)
	log.Printf("issuer did document: %s (%d verification methods)", issuerDoc.ID, len(issuerDoc.VerificationMethod))

	g, err := countryData.Grammar("JP")
	if err != nil {
		log.Fatalf("grammar lookup: %v", err)
	}
	rawAddress := map[string]string{
		"country":  "JP",
		"province": "13",
		"city":     "113",
		"ward":     "01",
	}
	normalized, err := amf.Normalize(rawAddress, "JP", countryData)
	if err != nil {
		log.Fatalf("normalize address: %v", err)
	}
	subjectPID, err := pid.EncodePID(normalized, g.Depth, g)
	if err != nil {
		log.Fatalf("encode pid: %v", err)
	}
	log.Printf("encoded pid: %s", subjectPID)

	subjectDID := "did:key:subject-1"
	now := clock.Now()
	unsigned, err := vc.AddressPIDCredential("cred-1", subjectDID, issuerDID, vc.AddressPIDSubject{
		PID:            string(subjectPID),
		Country:        g.Country,
		GrammarVersion: g.RulesVersion,
	}, now, nil)
	if err != nil {
		log.Fatalf("build credential: %v", err)
	}
	signed, err := vc.Sign(unsigned, issuerKP.PrivateKey, issuerDID+"#key-1", now)
	if err != nil {
		log.Fatalf("sign credential: %v", err)
	}
	vcStore.Put(string(subjectPID), vc.TypeAddressPID, signed)
	log.Printf("issued and stored credential %s for subject %s", signed.ID, subjectDID)

	// Phase 3: shipping validation over a Merkle tree of accepted PIDs.
	tree := buildAcceptedTree(subjectPID)
	carrierDID := "did:web:carrier.example"
	shipReq := resolver.ShippingRequest{
		PID:         subjectPID,
		RequesterID: carrierDID,
		Conditions:  resolver.Conditions{AllowedCountries: []string{"JP"}},
		Metadata:    resolver.ShipmentMetadata{Weight: 1.5, CarrierInfo: "demo-carrier"},
		Timestamp:   now,
	}
	shipResult, err := resolver.ValidateShipping(backend, tree, g, shipReq, normalized, now, cfg.ShippingSkew)
	if err != nil {
		log.Fatalf("internal crypto failure validating shipment: %v", err)
	}
	if !shipResult.Valid {
		log.Fatalf("shipping validation denied: %s", shipResult.Error)
	}
	log.Printf("shipping validation succeeded, pidToken length=%d", len(shipResult.PIDToken))

	if err := address.VerifyMembership(shipResult.ZKProof.Membership, tree.RootHex()); err != nil {
		log.Fatalf("membership verification failed: %v", err)
	}
	if err := address.VerifyStructure(backend, shipResult.ZKProof.Structure, g); err != nil {
		log.Fatalf("structure verification failed: %v", err)
	}
	log.Printf("composite shipping proof independently re-verified")

	waybill, err := resolver.CreateWaybill(shipResult, "TRACK-DEMO-0001", shipReq.Metadata, now)
	if err != nil {
		log.Fatalf("create waybill: %v", err)
	}
	ledger := resolver.NewTrackingLedger()
	event := ledger.CreateTrackingEvent(waybill.WaybillID, "accepted", "origin-facility", now)
	log.Printf("created waybill %s, addrPid=%s, first event=%s@%s", waybill.WaybillID, waybill.AddrPID, event.Status, event.Location)

	// Phase 4: provider registry.
	providerKP, err := vcrypto.GenerateKeyPair()
	if err != nil {
		log.Fatalf("internal crypto failure generating provider key: %v", err)
	}
	registry := provider.NewRegistry()
	registry.Register(provider.Record{
		DID:                "did:web:provider.example",
		DisplayName:        "Demo ZKP Provider",
		VerificationPubKey: providerKP.PublicKey,
		EndpointURL:        "https://provider.example/zkp",
		SupportedCircuits:  []string{backend.Name()},
	})

	// Phase 5: resolution under policy.
	policies := []resolver.Policy{{ID: "pol-1", Principal: carrierDID, Resource: "JP-13-*", Action: resolver.ActionResolve}}
	if cfg.PolicyFilePath != "" {
		if loaded, err := config.LoadPolicies(cfg.PolicyFilePath); err != nil {
			log.Printf("warning: failed to load policy file %s: %v", cfg.PolicyFilePath, err)
		} else {
			policies = loaded
		}
	}

	resolveReq := resolver.ResolveRequest{PID: string(subjectPID), RequesterID: carrierDID, Timestamp: now}
	result, err := resolver.Resolve(resolveReq, policies, issuerDID, revStore, vcStore, auditSink, clock)
	if err != nil {
		log.Fatalf("resolve failed: %v", err)
	}
	log.Printf("resolve result: success=%v accessLogId=%s address=%v", result.Success, result.AccessLogID, result.Address)

	// Phase 6: revocation — revoke the PID and demonstrate the denial.
	revokeEntry, err := revocation.NewEntry(string(subjectPID), clock.Now(), revocation.ReasonUserRequest, "")
	if err != nil {
		log.Fatalf("build revocation entry: %v", err)
	}
	list := revocation.NewList(issuerDID, clock.Now(), []revocation.Entry{revokeEntry})
	if err := revStore.Append(list); err != nil {
		log.Fatalf("append revocation list: %v", err)
	}
	postRevoke, err := resolver.Resolve(resolveReq, policies, issuerDID, revStore, vcStore, auditSink, clock)
	if err != nil {
		log.Fatalf("resolve after revocation failed: %v", err)
	}
	log.Printf("post-revocation resolve result: success=%v error=%q", postRevoke.Success, postRevoke.Error)

	// Phase 7: metrics endpoint.
	metrics := telemetry.New()
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	httpServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		log.Printf("metrics listening on %s", cfg.MetricsAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down veyd")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}
	log.Printf("veyd stopped")
}

// wireStorage builds the revocation and audit collaborators, preferring
// Postgres/Firestore when configured and falling back to the in-memory
// reference implementations for local development.
func wireStorage(cfg *config.Config) (collaborator.RevocationStorage, collaborator.AuditSink, func()) {
	noop := func() {}

	var revStore collaborator.RevocationStorage = memory.NewRevocationStore()
	if cfg.DBHost != "" && cfg.DBName != "" {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
		client, err := postgres.NewClient(postgres.Config{
			DSN:             dsn,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			log.Printf("postgres unavailable, using in-memory revocation storage: %v", err)
		} else {
			if err := client.MigrateUp(context.Background()); err != nil {
				log.Printf("postgres migration failed: %v", err)
			}
			revStore = postgres.NewRevocationStore(client)
			noop = func() { _ = client.Close() }
		}
	}

	var auditSink collaborator.AuditSink = memory.NewAuditSink()
	if cfg.FirestoreEnabled {
		sink, err := firestore.New(context.Background(), firestore.Config{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.FirebaseCredentialsFile,
			Collection:      cfg.FirestoreCollection,
			Enabled:         true,
		})
		if err != nil {
			log.Printf("firestore unavailable, using in-memory audit sink: %v", err)
		} else {
			auditSink = sink
		}
	}

	return revStore, auditSink, noop
}

// selectBackend picks the zkp.Backend named by cfg.ZKPBackend.
func selectBackend(cfg *config.Config) zkp.Backend {
	if cfg.ZKPBackend == "groth16" {
		return groth16backend.New()
	}
	return zkp.NewTestBackend()
}

// buildAcceptedTree builds the issuer's accepted-PID Merkle tree for the
// membership leg of shipping validation. A real deployment publishes
// this tree (or its root) per issuer; the demo seeds it with the one
// PID just registered plus a few neighbors so membership is non-trivial.
func buildAcceptedTree(accepted pid.PID) *merkle.Tree {
	pids := []pid.PID{accepted, "JP-13-113-02", "US-CA-SF-01"}
	leaves := make([][]byte, len(pids))
	for i, p := range pids {
		leaves[i] = merkle.LeafHash([]byte(p))
	}
	tree, err := merkle.Build(leaves)
	if err != nil {
		log.Fatalf("build accepted-pid tree: %v", err)
	}
	return tree
}
