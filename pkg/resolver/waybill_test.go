// Copyright 2025 Veyra Protocol
package resolver

import (
	"errors"
	"testing"
	"time"

	"github.com/veyra-network/vey-core/pkg/pid"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

func validShippingResult(t *testing.T) ShippingResult {
	t.Helper()
	backend := zkp.NewTestBackend()
	g := jpGrammar(t)
	target := pid.PID("JP-13-113-01")
	tree := buildTree(t, []pid.PID{target})
	now := time.Now().UTC()
	req := ShippingRequest{PID: target, RequesterID: "did:web:shipper", Timestamp: now}
	result, err := ValidateShipping(backend, tree, g, req, map[string]string{"country": "JP"}, now, 0)
	if err != nil || !result.Valid {
		t.Fatalf("expected a valid shipping result, got %+v err=%v", result, err)
	}
	return result
}

func TestCreateWaybill_Immutable(t *testing.T) {
	result := validShippingResult(t)
	now := time.Now().UTC()
	wb, err := CreateWaybill(result, "TRACK123", ShipmentMetadata{Weight: 2.5}, now)
	if err != nil {
		t.Fatalf("create waybill: %v", err)
	}
	if wb.AddrPID == "" {
		t.Error("expected a non-empty addr_pid commitment")
	}
	if wb.TrackingNumber != "TRACK123" {
		t.Errorf("tracking number mismatch: %s", wb.TrackingNumber)
	}
}

func TestCreateWaybill_RejectsDeniedResult(t *testing.T) {
	denied := ShippingResult{Valid: false, Error: "denied"}
	if _, err := CreateWaybill(denied, "TRACK1", ShipmentMetadata{}, time.Now().UTC()); !errors.Is(err, vyerr.ErrProofRejected) {
		t.Errorf("expected ErrProofRejected, got %v", err)
	}
}

func TestTrackingLedger_AppendOnly(t *testing.T) {
	ledger := NewTrackingLedger()
	now := time.Now().UTC()
	ledger.CreateTrackingEvent("wb1", "created", "warehouse", now)
	ledger.CreateTrackingEvent("wb1", "in_transit", "hub-1", now.Add(time.Hour))

	history := ledger.History("wb1")
	if len(history) != 2 {
		t.Fatalf("expected 2 events, got %d", len(history))
	}
	if history[0].Status != "created" || history[1].Status != "in_transit" {
		t.Errorf("unexpected event order: %+v", history)
	}
}
